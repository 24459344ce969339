package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gagyebu/internal/core"
)

const (
	StatusNone    BudgetStatus = "none"
	StatusOK      BudgetStatus = "ok"
	StatusWarning BudgetStatus = "warning"
	StatusOver    BudgetStatus = "over"
)

// warningRatio is the fixed spent/budget ratio above which a budget is
// flagged, strictly: exactly 80% is still ok.
var warningRatio = decimal.NewFromFloat(0.8)

type (
	BudgetStatus string

	// BudgetBook layers month-specific budget overrides on top of
	// per-category defaults. Precedence lives here and nowhere else:
	// override for the month if present, else the default, else no
	// budget. Defaults carry no month stamp, so a default set mid-year
	// also applies to earlier months that lack an override.
	BudgetBook struct {
		defaults  map[uuid.UUID]decimal.Decimal
		overrides map[uuid.UUID]map[string]decimal.Decimal
	}
)

// NewBudgetBook folds raw budget rows into the two-level map. Rows with
// an empty month are defaults; the rest are YYYY-MM overrides.
func NewBudgetBook(rows []core.Budget) *BudgetBook {
	b := &BudgetBook{
		defaults:  make(map[uuid.UUID]decimal.Decimal),
		overrides: make(map[uuid.UUID]map[string]decimal.Decimal),
	}
	for _, row := range rows {
		if row.Month == "" {
			b.defaults[row.CategoryID] = row.Amount
			continue
		}
		byMonth, ok := b.overrides[row.CategoryID]
		if !ok {
			byMonth = make(map[string]decimal.Decimal)
			b.overrides[row.CategoryID] = byMonth
		}
		byMonth[row.Month] = row.Amount
	}
	return b
}

// Effective returns the budget applying to a category for a month, and
// whether any budget applies at all.
func (b *BudgetBook) Effective(categoryID uuid.UUID, monthKey string) (decimal.Decimal, bool) {
	if byMonth, ok := b.overrides[categoryID]; ok {
		if amount, ok := byMonth[monthKey]; ok {
			return amount, true
		}
	}
	amount, ok := b.defaults[categoryID]
	return amount, ok
}

// HasDefault reports whether the category carries a default budget.
// Used to pick which categories the annual monitoring table shows.
func (b *BudgetBook) HasDefault(categoryID uuid.UUID) bool {
	_, ok := b.defaults[categoryID]
	return ok
}

// Total sums the effective budgets of every budgeted category for a
// month.
func (b *BudgetBook) Total(monthKey string) decimal.Decimal {
	seen := make(map[uuid.UUID]struct{}, len(b.defaults))
	total := decimal.Zero
	for id := range b.defaults {
		seen[id] = struct{}{}
	}
	for id := range b.overrides {
		seen[id] = struct{}{}
	}
	for id := range seen {
		if amount, ok := b.Effective(id, monthKey); ok {
			total = total.Add(amount)
		}
	}
	return total
}

// Status classifies spending against a budget. An absent or
// non-positive budget yields StatusNone; otherwise over when spent
// exceeds the budget, warning above 80% (strict), ok below.
func Status(spent, budget decimal.Decimal, hasBudget bool) BudgetStatus {
	if !hasBudget || !budget.IsPositive() {
		return StatusNone
	}
	if spent.GreaterThan(budget) {
		return StatusOver
	}
	if spent.Div(budget).GreaterThan(warningRatio) {
		return StatusWarning
	}
	return StatusOK
}

// PercentOf returns round(spent/budget × 100) or false when the budget
// is not positive; callers never divide by zero.
func PercentOf(spent, budget decimal.Decimal) (int64, bool) {
	if !budget.IsPositive() {
		return 0, false
	}
	return spent.Div(budget).Mul(decimal.NewFromInt(100)).Round(0).IntPart(), true
}
