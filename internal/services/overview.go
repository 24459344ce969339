package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
	"gagyebu/internal/log"
	"gagyebu/internal/store"
)

// OverviewService assembles the month dashboard: summary totals, the
// category breakdown with budget status, and the date-grouped list.
type OverviewService struct {
	transactions store.TransactionStore
	budgets      store.BudgetStore
	logger       *log.Logger
}

func NewOverviewService(t store.TransactionStore, b store.BudgetStore, logger *log.Logger) *OverviewService {
	return &OverviewService{
		transactions: t,
		budgets:      b,
		logger:       logger.WithComponent(log.ComponentLedger),
	}
}

type (
	// BreakdownRow is one category of the month's expenses with its
	// budget position. Budget amounts and status are evaluated in TRY
	// regardless of the display currency; the Amount follows the
	// display currency of the view.
	BreakdownRow struct {
		CategoryID uuid.UUID
		Name       string
		Amount     decimal.Decimal
		Budget     *decimal.Decimal
		Status     ledger.BudgetStatus
		Percent    int64
	}

	MonthOverview struct {
		Year      int
		Month     int
		Currency  core.DisplayCurrency
		Totals    ledger.Totals
		Breakdown []BreakdownRow
		Days      []ledger.DayGroup
	}

	// ListFilter narrows the date-grouped transaction list. The summary
	// and breakdown always cover the whole month; only Days is filtered.
	ListFilter struct {
		Type       core.TransactionType // "" = all
		CategoryID *uuid.UUID
		Search     string // case-insensitive match on content and memo
	}
)

func (f ListFilter) empty() bool {
	return f.Type == "" && f.CategoryID == nil && f.Search == ""
}

func (f ListFilter) matches(t core.Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.CategoryID != nil {
		if t.CategoryID == nil || *t.CategoryID != *f.CategoryID {
			return false
		}
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Content), needle) &&
			!strings.Contains(strings.ToLower(t.Memo), needle) {
			return false
		}
	}
	return true
}

// monthRange returns the first and last day of a month.
func monthRange(year, month int) (core.Date, core.Date) {
	start := core.NewDate(year, month, 1)
	end := core.Date{Time: start.AddDate(0, 1, -1)}
	return start, end
}

// Month builds the dashboard for one calendar month.
func (s *OverviewService) Month(ctx context.Context, ownerID uuid.UUID, year, month int, currency core.DisplayCurrency, filter ListFilter) (MonthOverview, error) {
	start, end := monthRange(year, month)

	txs, err := s.transactions.ListTransactions(ctx, ownerID, start, end)
	if err != nil {
		return MonthOverview{}, err
	}
	rows, err := s.budgets.ListBudgets(ctx, ownerID)
	if err != nil {
		return MonthOverview{}, err
	}
	book := ledger.NewBudgetBook(rows)
	monthKey := core.MonthKeyOf(year, month)

	// Budget comparisons run against TRY spending since budgets are
	// kept in TRY.
	spentTRY := make(map[uuid.UUID]decimal.Decimal)
	for _, row := range ledger.CategoryBreakdown(txs, core.DisplayTRY) {
		spentTRY[row.CategoryID] = row.Amount
	}

	breakdown := make([]BreakdownRow, 0)
	for _, total := range ledger.CategoryBreakdown(txs, currency) {
		row := BreakdownRow{
			CategoryID: total.CategoryID,
			Name:       total.Name,
			Amount:     total.Amount,
			Status:     ledger.StatusNone,
		}
		if budget, ok := book.Effective(total.CategoryID, monthKey); ok {
			spent := spentTRY[total.CategoryID]
			row.Budget = &budget
			row.Status = ledger.Status(spent, budget, true)
			if percent, ok := ledger.PercentOf(spent, budget); ok {
				row.Percent = percent
			}
		}
		breakdown = append(breakdown, row)
	}

	listed := txs
	if !filter.empty() {
		listed = make([]core.Transaction, 0, len(txs))
		for _, t := range txs {
			if filter.matches(t) {
				listed = append(listed, t)
			}
		}
	}

	overview := MonthOverview{
		Year:      year,
		Month:     month,
		Currency:  currency,
		Totals:    ledger.SumTotals(txs, currency),
		Breakdown: breakdown,
		Days:      ledger.GroupByDate(listed, currency),
	}

	s.logger.DebugContext(ctx, "Month overview built",
		log.FieldOwnerID, ownerID, log.FieldMonth, monthKey, "transactions", len(txs))
	return overview, nil
}
