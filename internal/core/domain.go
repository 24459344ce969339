package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Expense TransactionType = "expense"
	Income  TransactionType = "income"
)

// Home and secondary display currencies. KRW is the primary reporting
// currency; TRY amounts are always computed alongside and budgets are
// kept in TRY.
const (
	HomeCurrency      = "KRW"
	SecondaryCurrency = "TRY"
)

type (
	TransactionType string

	// DisplayCurrency selects which stored valuation a view reads.
	// Only the home and secondary currencies are valid display choices.
	DisplayCurrency string

	Date struct {
		time.Time
	}

	Transaction struct {
		ID              uuid.UUID
		OwnerID         uuid.UUID
		Date            Date
		Type            TransactionType
		CategoryID      *uuid.UUID // nil = uncategorized
		CategoryName    string
		PaymentMethodID *uuid.UUID
		Currency        string
		OriginalAmount  decimal.Decimal
		// ExchangeRate is the source→KRW multiplier captured at entry
		// time. KRWAmount may be manually overridden, so it is not
		// guaranteed to equal OriginalAmount × ExchangeRate.
		ExchangeRate decimal.Decimal
		KRWAmount    decimal.Decimal
		// TRYAmount is nil for transactions predating the secondary
		// valuation. Frozen at entry/edit time, never recomputed.
		TRYAmount  *decimal.Decimal
		Content    string
		Memo       string
		ReceiptURL string
		CreatedAt  time.Time
	}

	Category struct {
		ID     uuid.UUID
		Name   string
		Type   TransactionType
		Active bool
	}

	PaymentMethod struct {
		ID     uuid.UUID
		Name   string
		Active bool
	}

	// Budget is one row of the two-level budget model: Month == ""
	// marks the default applying to every month without an override,
	// otherwise Month is "YYYY-MM". Amounts are in TRY.
	Budget struct {
		OwnerID    uuid.UUID
		CategoryID uuid.UUID
		Month      string
		Amount     decimal.Decimal
	}

	SharedLink struct {
		Token            string
		OwnerID          uuid.UUID
		StartDate        Date
		EndDate          Date
		ExpiresAt        *time.Time
		ShowIncome       bool
		ShowSummary      bool
		ShowStackedChart bool
		DisplayCurrency  DisplayCurrency
		CreatedAt        time.Time
	}

	// Template pre-fills the new-transaction form. No aggregation role.
	Template struct {
		ID            uuid.UUID
		OwnerID       uuid.UUID
		Name          string
		Type          TransactionType
		CategoryID    *uuid.UUID
		CategoryName  string
		Currency      string
		DefaultAmount *decimal.Decimal
	}
)

const (
	DisplayKRW DisplayCurrency = DisplayCurrency(HomeCurrency)
	DisplayTRY DisplayCurrency = DisplayCurrency(SecondaryCurrency)
)

var (
	ErrNotFound            = errors.New("not found")
	ErrLinkExpired         = errors.New("shared link expired")
	ErrRateUnavailable     = errors.New("exchange rate unavailable")
	ErrPersistenceRejected = errors.New("persistence rejected write")
)

// ValidationError reports a single malformed input field. No partial
// write happens when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ParseDisplayCurrency maps a request parameter to a display currency,
// defaulting to TRY like the original views.
func ParseDisplayCurrency(s string) DisplayCurrency {
	if strings.EqualFold(s, HomeCurrency) {
		return DisplayKRW
	}
	return DisplayTRY
}

func (c DisplayCurrency) Valid() bool {
	return c == DisplayKRW || c == DisplayTRY
}

func (t TransactionType) Valid() bool {
	return t == Expense || t == Income
}

// NewDate creates a calendar date (no time component, UTC).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, invalid("date", "must be YYYY-MM-DD")
	}
	return Date{Time: t}, nil
}

// String returns the ISO form used as a grouping key everywhere.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MonthKey returns the YYYY-MM key used for budget months and report
// columns.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

func (d Date) Year() int  { return d.Time.Year() }
func (d Date) Month() int { return int(d.Time.Month()) }

// MonthKeyOf builds a YYYY-MM key from numeric year and month.
func MonthKeyOf(year, month int) string {
	return NewDate(year, month, 1).MonthKey()
}

func (d Date) Validate() error {
	if d.IsZero() {
		return invalid("date", "cannot be empty")
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Type.Valid() {
		return invalid("type", "must be expense or income")
	}
	if t.Currency == "" || len(t.Currency) > 10 {
		return invalid("currency", "must be 1-10 characters")
	}
	if !t.OriginalAmount.IsPositive() {
		return invalid("original_amount", "must be greater than zero")
	}
	if t.ExchangeRate.IsNegative() {
		return invalid("exchange_rate", "must not be negative")
	}
	if !t.KRWAmount.IsPositive() {
		return invalid("krw_amount", "must be greater than zero")
	}
	if t.TRYAmount != nil && !t.TRYAmount.IsPositive() {
		return invalid("try_amount", "must be greater than zero")
	}
	content := strings.TrimSpace(t.Content)
	if content == "" {
		return invalid("content", "cannot be empty")
	}
	if len([]rune(content)) > 200 {
		return invalid("content", "must be at most 200 characters")
	}
	if len([]rune(t.Memo)) > 500 {
		return invalid("memo", "must be at most 500 characters")
	}
	return nil
}

func (c Category) Validate() error {
	if err := validateName(c.Name); err != nil {
		return err
	}
	if !c.Type.Valid() {
		return invalid("type", "must be expense or income")
	}
	return nil
}

func (p PaymentMethod) Validate() error {
	return validateName(p.Name)
}

func validateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return invalid("name", "cannot be empty")
	}
	if len([]rune(trimmed)) > 50 {
		return invalid("name", "must be at most 50 characters")
	}
	return nil
}

func (l SharedLink) Validate() error {
	if err := l.StartDate.Validate(); err != nil {
		return invalid("start_date", "must be YYYY-MM-DD")
	}
	if err := l.EndDate.Validate(); err != nil {
		return invalid("end_date", "must be YYYY-MM-DD")
	}
	if l.EndDate.Before(l.StartDate.Time) {
		return invalid("end_date", "must not precede start date")
	}
	if !l.DisplayCurrency.Valid() {
		return invalid("display_currency", "must be KRW or TRY")
	}
	return nil
}

// Expired reports whether the link is past its expiry at the given
// instant. Links without expiry never expire.
func (l SharedLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}
