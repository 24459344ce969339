// Package fx resolves currency conversion rates from the free
// fawazahmed0 currency-api CDN. It is the only I/O-bound dependency of
// the ledger core, so every lookup carries a timeout and a
// deterministic fallback chain: requested date → latest → error.
package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gagyebu/internal/cache"
	"gagyebu/internal/core"
	"gagyebu/internal/log"
)

// DefaultBaseURL is the public CDN endpoint. Rate tables are published
// per source currency per day.
const DefaultBaseURL = "https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api"

const (
	// Latest asks for the most recent published table.
	Latest = "latest"

	defaultTimeout  = 5 * time.Second
	cacheTTL        = time.Hour
	cacheSize       = 256
	ratePrecision   = 4
	maxResponseSize = 1 << 20 // rate tables are a few hundred KB at most
)

// Rate is a resolved conversion rate and the date the rate table it
// came from was published for.
type Rate struct {
	Rate decimal.Decimal
	Date string
}

// rateTable is the decoded per-source table: target currency → rate.
type rateTable struct {
	Date  string
	Rates map[string]decimal.Decimal
}

type Resolver struct {
	baseURL string
	client  *http.Client
	cache   *cache.LRUCache[rateTable]
	logger  *log.Logger
}

// NewResolver creates a resolver against the given base URL (empty for
// the public CDN). Tables are cached for an hour keyed by
// (date, source currency) to bound external call volume.
func NewResolver(baseURL string, timeout time.Duration, logger *log.Logger) *Resolver {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Resolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		cache:   cache.NewLRUCache[rateTable](cacheSize, cacheTTL),
		logger:  logger.WithComponent(log.ComponentFX),
	}
}

// Resolve returns the from→to conversion rate for a date ("YYYY-MM-DD"
// or Latest), rounded to 4 decimal places. Same-currency requests
// short-circuit to 1 without any lookup. When the dated table cannot be
// fetched the latest table is tried once; when both fail, or the target
// rate is absent or zero, the call fails with core.ErrRateUnavailable.
// A stale cached table is never used to fabricate a rate.
func (r *Resolver) Resolve(ctx context.Context, from, to, date string) (Rate, error) {
	from = strings.ToLower(strings.TrimSpace(from))
	to = strings.ToLower(strings.TrimSpace(to))
	if date == "" {
		date = Latest
	}

	if from == to {
		return Rate{Rate: decimal.NewFromInt(1), Date: date}, nil
	}

	table, err := r.table(ctx, from, date)
	if err != nil && date != Latest {
		r.logger.WarnContext(ctx, "Dated rate lookup failed, retrying latest",
			log.FieldCurrency, from, log.FieldRateDate, date, log.FieldError, err)
		table, err = r.table(ctx, from, Latest)
	}
	if err != nil {
		return Rate{}, fmt.Errorf("%w: %s→%s: %v", core.ErrRateUnavailable, from, to, err)
	}

	rate, ok := table.Rates[to]
	if !ok || !rate.IsPositive() {
		return Rate{}, fmt.Errorf("%w: no %s rate in %s table", core.ErrRateUnavailable, to, from)
	}

	return Rate{Rate: rate.Round(ratePrecision), Date: table.Date}, nil
}

func (r *Resolver) table(ctx context.Context, from, date string) (rateTable, error) {
	key := date + "|" + from
	if table, ok := r.cache.Get(key); ok {
		return table, nil
	}

	url := fmt.Sprintf("%s@%s/v1/currencies/%s.json", r.baseURL, date, from)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return rateTable{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return rateTable{}, fmt.Errorf("fetch rate table: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return rateTable{}, fmt.Errorf("rate service returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return rateTable{}, fmt.Errorf("read rate table: %w", err)
	}

	table, err := decodeTable(body, from)
	if err != nil {
		return rateTable{}, err
	}

	r.cache.Set(key, table)
	r.logger.DebugContext(ctx, "Rate table cached",
		log.FieldCurrency, from, log.FieldRateDate, table.Date)
	return table, nil
}

// decodeTable parses the CDN payload, shaped as
// {"date": "2025-03-01", "<from>": {"krw": 42.1234, ...}}.
func decodeTable(body []byte, from string) (rateTable, error) {
	var raw struct {
		Date string `json:"date"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return rateTable{}, fmt.Errorf("decode rate table: %w", err)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return rateTable{}, fmt.Errorf("decode rate table: %w", err)
	}
	inner, ok := envelope[from]
	if !ok {
		return rateTable{}, fmt.Errorf("rate table missing %q section", from)
	}

	rates := make(map[string]decimal.Decimal)
	if err := json.Unmarshal(inner, &rates); err != nil {
		return rateTable{}, fmt.Errorf("decode %s rates: %w", from, err)
	}

	return rateTable{Date: raw.Date, Rates: rates}, nil
}
