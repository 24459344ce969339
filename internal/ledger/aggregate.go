package ledger

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gagyebu/internal/core"
)

// uncategorizedName labels the implicit bucket for transactions whose
// category reference is null.
const uncategorizedName = "미분류"

type (
	// CategoryTotal is one row of the expense-by-category breakdown.
	// CategoryID is uuid.Nil for the uncategorized bucket.
	CategoryTotal struct {
		CategoryID uuid.UUID
		Name       string
		Amount     decimal.Decimal
	}

	// DayGroup is one calendar day of the transaction list, most
	// recent entry first.
	DayGroup struct {
		Date         string
		Transactions []core.Transaction
		Expense      decimal.Decimal
	}

	// Totals carries the plain sums for a set of transactions.
	Totals struct {
		Expense decimal.Decimal
		Income  decimal.Decimal
	}

	// MonthColumn identifies one report column.
	MonthColumn struct {
		Year  int
		Month int
		Key   string // YYYY-MM
	}

	// ReportCategory is one row of the range report: per-month expense
	// cells plus the row total, in display currency.
	ReportCategory struct {
		CategoryID uuid.UUID
		Name       string
		ByMonth    map[string]decimal.Decimal
		Total      decimal.Decimal
	}

	// RangeReport is the month×category aggregate behind both the
	// annual report page and the shared view. Categories are ordered
	// by descending total.
	RangeReport struct {
		Months        []MonthColumn
		Categories    []ReportCategory
		ColumnTotals  map[string]decimal.Decimal
		IncomeByMonth map[string]decimal.Decimal
		GrandExpense  decimal.Decimal
		GrandIncome   decimal.Decimal
	}

	// YearMatrix is per-category monthly spending for one calendar
	// year (month numbers 1–12) plus the income series, used by the
	// annual budget-monitoring table.
	YearMatrix struct {
		Spending      map[uuid.UUID]map[int]decimal.Decimal
		IncomeByMonth map[int]decimal.Decimal
	}
)

func categoryKey(t core.Transaction) uuid.UUID {
	if t.CategoryID == nil {
		return uuid.Nil
	}
	return *t.CategoryID
}

// CategoryLabel names a transaction's category, falling back to the
// uncategorized bucket label for null or unresolved references.
func CategoryLabel(t core.Transaction) string {
	if t.CategoryID == nil || t.CategoryName == "" {
		return uncategorizedName
	}
	return t.CategoryName
}

// SumTotals adds up expense and income display amounts.
func SumTotals(txs []core.Transaction, currency core.DisplayCurrency) Totals {
	totals := Totals{Expense: decimal.Zero, Income: decimal.Zero}
	for _, t := range txs {
		amount := DisplayAmount(t, currency)
		if t.Type == core.Expense {
			totals.Expense = totals.Expense.Add(amount)
		} else {
			totals.Income = totals.Income.Add(amount)
		}
	}
	return totals
}

// CategoryBreakdown sums expense display amounts per category,
// descending by amount. Uncategorized transactions form their own
// bucket. Income is excluded.
func CategoryBreakdown(txs []core.Transaction, currency core.DisplayCurrency) []CategoryTotal {
	sums := make(map[uuid.UUID]*CategoryTotal)
	order := make([]uuid.UUID, 0)
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		key := categoryKey(t)
		entry, ok := sums[key]
		if !ok {
			entry = &CategoryTotal{CategoryID: key, Name: CategoryLabel(t), Amount: decimal.Zero}
			sums[key] = entry
			order = append(order, key)
		}
		entry.Amount = entry.Amount.Add(DisplayAmount(t, currency))
	}

	result := make([]CategoryTotal, 0, len(order))
	for _, key := range order {
		result = append(result, *sums[key])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Amount.GreaterThan(result[j].Amount)
	})
	return result
}

// GroupByDate groups transactions by calendar day for the list view:
// days descending, entries within a day by creation time descending.
// Each group carries its expense total in display currency.
func GroupByDate(txs []core.Transaction, currency core.DisplayCurrency) []DayGroup {
	byDate := make(map[string][]core.Transaction)
	for _, t := range txs {
		key := t.Date.String()
		byDate[key] = append(byDate[key], t)
	}

	keys := make([]string, 0, len(byDate))
	for key := range byDate {
		keys = append(keys, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	groups := make([]DayGroup, 0, len(keys))
	for _, key := range keys {
		rows := byDate[key]
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		})
		expense := decimal.Zero
		for _, t := range rows {
			if t.Type == core.Expense {
				expense = expense.Add(DisplayAmount(t, currency))
			}
		}
		groups = append(groups, DayGroup{Date: key, Transactions: rows, Expense: expense})
	}
	return groups
}

// MonthsInRange lists the YYYY-MM columns spanned by [start, end],
// inclusive of both endpoint months.
func MonthsInRange(start, end core.Date) []MonthColumn {
	columns := make([]MonthColumn, 0, 12)
	y, m := start.Year(), start.Month()
	endY, endM := end.Year(), end.Month()
	for y < endY || (y == endY && m <= endM) {
		columns = append(columns, MonthColumn{Year: y, Month: m, Key: core.MonthKeyOf(y, m)})
		m++
		if m > 12 {
			m = 1
			y++
		}
	}
	return columns
}

// BuildRangeReport folds transactions into the month×category report
// for an arbitrary date range. The input is assumed already scoped to
// one owner and the range; the fold itself is order-independent.
func BuildRangeReport(txs []core.Transaction, currency core.DisplayCurrency, start, end core.Date) RangeReport {
	report := RangeReport{
		Months:        MonthsInRange(start, end),
		ColumnTotals:  make(map[string]decimal.Decimal),
		IncomeByMonth: make(map[string]decimal.Decimal),
		GrandExpense:  decimal.Zero,
		GrandIncome:   decimal.Zero,
	}

	rows := make(map[uuid.UUID]*ReportCategory)
	order := make([]uuid.UUID, 0)
	for _, t := range txs {
		monthKey := t.Date.MonthKey()
		amount := DisplayAmount(t, currency)
		if t.Type == core.Income {
			report.GrandIncome = report.GrandIncome.Add(amount)
			report.IncomeByMonth[monthKey] = report.IncomeByMonth[monthKey].Add(amount)
			continue
		}
		report.GrandExpense = report.GrandExpense.Add(amount)
		key := categoryKey(t)
		row, ok := rows[key]
		if !ok {
			row = &ReportCategory{
				CategoryID: key,
				Name:       CategoryLabel(t),
				ByMonth:    make(map[string]decimal.Decimal),
				Total:      decimal.Zero,
			}
			rows[key] = row
			order = append(order, key)
		}
		row.ByMonth[monthKey] = row.ByMonth[monthKey].Add(amount)
		row.Total = row.Total.Add(amount)
	}

	report.Categories = make([]ReportCategory, 0, len(order))
	for _, key := range order {
		report.Categories = append(report.Categories, *rows[key])
	}
	sort.SliceStable(report.Categories, func(i, j int) bool {
		return report.Categories[i].Total.GreaterThan(report.Categories[j].Total)
	})

	for _, row := range report.Categories {
		for monthKey, amount := range row.ByMonth {
			report.ColumnTotals[monthKey] = report.ColumnTotals[monthKey].Add(amount)
		}
	}
	return report
}

// BuildYearMatrix folds one year of transactions into per-category
// monthly spending plus the monthly income series. Uncategorized
// expenses are skipped, matching the annual monitoring table.
func BuildYearMatrix(txs []core.Transaction, currency core.DisplayCurrency) YearMatrix {
	matrix := YearMatrix{
		Spending:      make(map[uuid.UUID]map[int]decimal.Decimal),
		IncomeByMonth: make(map[int]decimal.Decimal),
	}
	for _, t := range txs {
		month := t.Date.Month()
		amount := DisplayAmount(t, currency)
		if t.Type == core.Income {
			matrix.IncomeByMonth[month] = matrix.IncomeByMonth[month].Add(amount)
			continue
		}
		if t.CategoryID == nil {
			continue
		}
		byMonth, ok := matrix.Spending[*t.CategoryID]
		if !ok {
			byMonth = make(map[int]decimal.Decimal)
			matrix.Spending[*t.CategoryID] = byMonth
		}
		byMonth[month] = byMonth[month].Add(amount)
	}
	return matrix
}

// MonitoredCategories filters the annual table to categories that have
// either spending in the year or a default budget, so categories never
// used don't render an empty grid row.
func MonitoredCategories(categories []core.Category, matrix YearMatrix, book *BudgetBook) []core.Category {
	monitored := make([]core.Category, 0, len(categories))
	for _, cat := range categories {
		if _, spent := matrix.Spending[cat.ID]; spent || book.HasDefault(cat.ID) {
			monitored = append(monitored, cat)
		}
	}
	return monitored
}
