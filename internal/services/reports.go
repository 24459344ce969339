package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
	"gagyebu/internal/log"
	"gagyebu/internal/store"
)

// ReportService owns shared report links and the aggregates behind the
// annual report page and the public shared view.
type ReportService struct {
	links        store.SharedLinkStore
	reader       store.ShareReader
	transactions store.TransactionStore
	logger       *log.Logger
}

func NewReportService(links store.SharedLinkStore, reader store.ShareReader, transactions store.TransactionStore, logger *log.Logger) *ReportService {
	return &ReportService{
		links:        links,
		reader:       reader,
		transactions: transactions,
		logger:       logger.WithComponent(log.ComponentReport),
	}
}

// newToken builds an unguessable 64-character link token from two
// dashless UUIDs.
func newToken() string {
	a := strings.ReplaceAll(uuid.New().String(), "-", "")
	b := strings.ReplaceAll(uuid.New().String(), "-", "")
	return a + b
}

// tokenPrefix keeps full tokens out of the logs.
func tokenPrefix(token string) string {
	if len(token) > 8 {
		return token[:8]
	}
	return token
}

// LinkInput describes a new shared link. ExpiryDays 0 means the link
// never expires.
type LinkInput struct {
	StartDate        string
	EndDate          string
	ExpiryDays       int
	ShowIncome       bool
	ShowSummary      bool
	ShowStackedChart bool
	DisplayCurrency  core.DisplayCurrency
}

// CreateLink mints a tokenized read-only link over a fixed date range.
func (s *ReportService) CreateLink(ctx context.Context, ownerID uuid.UUID, input LinkInput) (core.SharedLink, error) {
	start, err := core.ParseDate(input.StartDate)
	if err != nil {
		return core.SharedLink{}, &core.ValidationError{Field: "start_date", Message: "must be YYYY-MM-DD"}
	}
	end, err := core.ParseDate(input.EndDate)
	if err != nil {
		return core.SharedLink{}, &core.ValidationError{Field: "end_date", Message: "must be YYYY-MM-DD"}
	}
	if input.ExpiryDays < 0 {
		return core.SharedLink{}, &core.ValidationError{Field: "expiry_days", Message: "must not be negative"}
	}

	link := core.SharedLink{
		Token:            newToken(),
		OwnerID:          ownerID,
		StartDate:        start,
		EndDate:          end,
		ShowIncome:       input.ShowIncome,
		ShowSummary:      input.ShowSummary,
		ShowStackedChart: input.ShowStackedChart,
		DisplayCurrency:  input.DisplayCurrency,
		CreatedAt:        time.Now().UTC(),
	}
	if link.DisplayCurrency == "" {
		link.DisplayCurrency = core.DisplayKRW
	}
	if input.ExpiryDays > 0 {
		expires := link.CreatedAt.AddDate(0, 0, input.ExpiryDays)
		link.ExpiresAt = &expires
	}
	if err := link.Validate(); err != nil {
		return core.SharedLink{}, err
	}

	if err := s.links.CreateSharedLink(ctx, link); err != nil {
		return core.SharedLink{}, err
	}
	return link, nil
}

func (s *ReportService) ListLinks(ctx context.Context, ownerID uuid.UUID) ([]core.SharedLink, error) {
	return s.links.ListSharedLinks(ctx, ownerID)
}

func (s *ReportService) DeleteLink(ctx context.Context, token string, ownerID uuid.UUID) error {
	return s.links.DeleteSharedLink(ctx, token, ownerID)
}

type (
	// SharedEntry is one redacted row of the shared list. Only what the
	// public page renders crosses this boundary; owner ids, memos,
	// receipts and payment methods never do.
	SharedEntry struct {
		Type         core.TransactionType
		CategoryName string
		Amount       decimal.Decimal
	}

	SharedDay struct {
		Date    string
		Entries []SharedEntry
		Expense decimal.Decimal
	}

	// SharedReport is the redacted payload behind a link token. Sections
	// the link disables are nil. The owner is identified only by display
	// name.
	SharedReport struct {
		OwnerName       string
		StartDate       string
		EndDate         string
		DisplayCurrency core.DisplayCurrency
		Totals          *ledger.Totals
		Report          *ledger.RangeReport
		Days            []SharedDay
	}
)

// BuildShared resolves a token to its redacted report. An unknown token
// is core.ErrNotFound; a known but expired one is core.ErrLinkExpired,
// so the caller can distinguish "gone" from "never existed".
//
// Aggregates are always computed from the full transaction set; the
// link's toggles redact the shaped response, not the engine input. With
// income hidden, the summary card still reports the true income total
// while the list and the chart's income series omit it.
func (s *ReportService) BuildShared(ctx context.Context, token string, now time.Time) (SharedReport, error) {
	link, err := s.reader.GetSharedLink(ctx, token)
	if err != nil {
		return SharedReport{}, err
	}
	if link.Expired(now) {
		s.logger.InfoContext(ctx, "Expired shared link accessed", log.FieldToken, tokenPrefix(token))
		return SharedReport{}, core.ErrLinkExpired
	}

	txs, err := s.reader.ListOwnerTransactions(ctx, link.OwnerID, link.StartDate, link.EndDate)
	if err != nil {
		return SharedReport{}, err
	}

	ownerName, err := s.reader.OwnerDisplayName(ctx, link.OwnerID)
	if err != nil {
		return SharedReport{}, err
	}

	shared := SharedReport{
		OwnerName:       ownerName,
		StartDate:       link.StartDate.String(),
		EndDate:         link.EndDate.String(),
		DisplayCurrency: link.DisplayCurrency,
	}
	for _, day := range ledger.GroupByDate(txs, link.DisplayCurrency) {
		sd := SharedDay{Date: day.Date, Expense: day.Expense}
		for _, t := range day.Transactions {
			if t.Type == core.Income && !link.ShowIncome {
				continue
			}
			sd.Entries = append(sd.Entries, SharedEntry{
				Type:         t.Type,
				CategoryName: ledger.CategoryLabel(t),
				Amount:       ledger.DisplayAmount(t, link.DisplayCurrency),
			})
		}
		if len(sd.Entries) > 0 {
			shared.Days = append(shared.Days, sd)
		}
	}
	if link.ShowSummary {
		totals := ledger.SumTotals(txs, link.DisplayCurrency)
		shared.Totals = &totals
	}
	if link.ShowStackedChart {
		report := ledger.BuildRangeReport(txs, link.DisplayCurrency, link.StartDate, link.EndDate)
		if !link.ShowIncome {
			report.IncomeByMonth = make(map[string]decimal.Decimal)
			report.GrandIncome = decimal.Zero
		}
		shared.Report = &report
	}
	return shared, nil
}

// Range builds the authenticated month×category report over an
// arbitrary date range.
func (s *ReportService) Range(ctx context.Context, ownerID uuid.UUID, start, end core.Date, currency core.DisplayCurrency) (ledger.RangeReport, error) {
	txs, err := s.transactions.ListTransactions(ctx, ownerID, start, end)
	if err != nil {
		return ledger.RangeReport{}, err
	}
	return ledger.BuildRangeReport(txs, currency, start, end), nil
}
