package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
	"gagyebu/internal/log"
	"gagyebu/internal/store"
)

// BudgetService owns the two-level budget model (per-category default
// plus monthly overrides) and the monthly and annual monitoring views.
type BudgetService struct {
	budgets      store.BudgetStore
	transactions store.TransactionStore
	catalog      store.CatalogStore
	logger       *log.Logger
}

func NewBudgetService(b store.BudgetStore, t store.TransactionStore, c store.CatalogStore, logger *log.Logger) *BudgetService {
	return &BudgetService{
		budgets:      b,
		transactions: t,
		catalog:      c,
		logger:       logger.WithComponent(log.ComponentBudget),
	}
}

// Upsert sets a category's budget for a month. Saving writes both the
// default and the month's row, so the amount becomes the baseline for
// future months while the history of the edited month stays pinned. A
// zero or negative amount clears the budget entirely, both rows.
func (s *BudgetService) Upsert(ctx context.Context, ownerID, categoryID uuid.UUID, month string, amount decimal.Decimal) error {
	if _, err := core.ParseDate(month + "-01"); err != nil {
		return &core.ValidationError{Field: "month", Message: "must be YYYY-MM"}
	}

	if !amount.IsPositive() {
		s.logger.InfoContext(ctx, "Budget cleared",
			log.FieldOwnerID, ownerID, log.FieldCategoryID, categoryID, log.FieldMonth, month)
		return s.budgets.DeleteBudget(ctx, ownerID, categoryID, month)
	}

	base := core.Budget{OwnerID: ownerID, CategoryID: categoryID, Amount: amount}

	defaultRow := base
	defaultRow.Month = ""
	if err := s.budgets.UpsertBudget(ctx, defaultRow); err != nil {
		return err
	}

	monthRow := base
	monthRow.Month = month
	if err := s.budgets.UpsertBudget(ctx, monthRow); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Budget saved",
		log.FieldOwnerID, ownerID, log.FieldCategoryID, categoryID,
		log.FieldMonth, month, "amount", amount)
	return nil
}

type (
	// MonthBudgetRow is one category of the monthly budget page. Spent
	// and status are in TRY, the budget currency.
	MonthBudgetRow struct {
		CategoryID uuid.UUID
		Name       string
		Budget     decimal.Decimal
		Spent      decimal.Decimal
		Status     ledger.BudgetStatus
		Percent    int64
	}

	MonthBudgetPage struct {
		Month       string // YYYY-MM
		Rows        []MonthBudgetRow
		TotalBudget decimal.Decimal
		TotalSpent  decimal.Decimal
	}

	// YearBudgetCell is one month of a category's annual row.
	YearBudgetCell struct {
		Month   int
		Budget  *decimal.Decimal
		Spent   decimal.Decimal
		Status  ledger.BudgetStatus
		Percent int64
	}

	YearBudgetRow struct {
		CategoryID uuid.UUID
		Name       string
		Cells      []YearBudgetCell
		TotalSpent decimal.Decimal
	}

	YearBudgetTable struct {
		Year          int
		Rows          []YearBudgetRow
		IncomeByMonth map[int]decimal.Decimal
	}
)

// MonthPage builds the budget page for one month: every expense
// category with either an effective budget or spending, evaluated in
// TRY.
func (s *BudgetService) MonthPage(ctx context.Context, ownerID uuid.UUID, year, month int) (MonthBudgetPage, error) {
	start, end := monthRange(year, month)
	monthKey := core.MonthKeyOf(year, month)

	txs, err := s.transactions.ListTransactions(ctx, ownerID, start, end)
	if err != nil {
		return MonthBudgetPage{}, err
	}
	budgetRows, err := s.budgets.ListBudgets(ctx, ownerID)
	if err != nil {
		return MonthBudgetPage{}, err
	}
	categories, err := s.catalog.ListCategories(ctx, true)
	if err != nil {
		return MonthBudgetPage{}, err
	}

	book := ledger.NewBudgetBook(budgetRows)
	spent := make(map[uuid.UUID]decimal.Decimal)
	for _, total := range ledger.CategoryBreakdown(txs, core.DisplayTRY) {
		spent[total.CategoryID] = total.Amount
	}

	page := MonthBudgetPage{
		Month:       monthKey,
		TotalBudget: book.Total(monthKey),
		TotalSpent:  decimal.Zero,
	}
	for _, cat := range categories {
		if cat.Type != core.Expense {
			continue
		}
		budget, hasBudget := book.Effective(cat.ID, monthKey)
		catSpent := spent[cat.ID]
		if !hasBudget && catSpent.IsZero() {
			continue
		}
		row := MonthBudgetRow{
			CategoryID: cat.ID,
			Name:       cat.Name,
			Budget:     budget,
			Spent:      catSpent,
			Status:     ledger.Status(catSpent, budget, hasBudget),
		}
		if percent, ok := ledger.PercentOf(catSpent, budget); ok {
			row.Percent = percent
		}
		page.Rows = append(page.Rows, row)
		page.TotalSpent = page.TotalSpent.Add(catSpent)
	}
	return page, nil
}

// YearTable builds the annual monitoring table: monitored categories
// (spending in the year or a default budget) against all twelve months.
func (s *BudgetService) YearTable(ctx context.Context, ownerID uuid.UUID, year int) (YearBudgetTable, error) {
	start := core.NewDate(year, 1, 1)
	end := core.NewDate(year, 12, 31)

	txs, err := s.transactions.ListTransactions(ctx, ownerID, start, end)
	if err != nil {
		return YearBudgetTable{}, err
	}
	budgetRows, err := s.budgets.ListBudgets(ctx, ownerID)
	if err != nil {
		return YearBudgetTable{}, err
	}
	categories, err := s.catalog.ListCategories(ctx, true)
	if err != nil {
		return YearBudgetTable{}, err
	}

	book := ledger.NewBudgetBook(budgetRows)
	matrix := ledger.BuildYearMatrix(txs, core.DisplayTRY)

	expense := make([]core.Category, 0, len(categories))
	for _, cat := range categories {
		if cat.Type == core.Expense {
			expense = append(expense, cat)
		}
	}

	table := YearBudgetTable{Year: year, IncomeByMonth: matrix.IncomeByMonth}
	for _, cat := range ledger.MonitoredCategories(expense, matrix, book) {
		row := YearBudgetRow{CategoryID: cat.ID, Name: cat.Name, TotalSpent: decimal.Zero}
		for month := 1; month <= 12; month++ {
			cell := YearBudgetCell{Month: month, Spent: matrix.Spending[cat.ID][month]}
			budget, hasBudget := book.Effective(cat.ID, core.MonthKeyOf(year, month))
			if hasBudget {
				cell.Budget = &budget
			}
			cell.Status = ledger.Status(cell.Spent, budget, hasBudget)
			if percent, ok := ledger.PercentOf(cell.Spent, budget); ok {
				cell.Percent = percent
			}
			row.TotalSpent = row.TotalSpent.Add(cell.Spent)
			row.Cells = append(row.Cells, cell)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}
