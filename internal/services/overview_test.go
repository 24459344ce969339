package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
)

func TestMonthOverview(t *testing.T) {
	store := newFakeStore()
	svc := NewOverviewService(store, store, testLogger())
	owner := uuid.New()
	food := uuid.New()

	seedExpense(store, owner, &food, "식비", "2025-03-10", "900")
	seedExpense(store, owner, nil, "", "2025-03-12", "50")
	// Outside the month, must not appear.
	seedExpense(store, owner, &food, "식비", "2025-04-01", "77")
	store.budgets[budgetKey(owner, food, "")] = core.Budget{
		OwnerID: owner, CategoryID: food, Month: "", Amount: d("1000"),
	}

	overview, err := svc.Month(context.Background(), owner, 2025, 3, core.DisplayTRY, ListFilter{})
	if err != nil {
		t.Fatalf("Month() error = %v", err)
	}

	if !overview.Totals.Expense.Equal(d("950")) {
		t.Errorf("Expense = %s, want 950", overview.Totals.Expense)
	}
	if len(overview.Breakdown) != 2 {
		t.Fatalf("len(Breakdown) = %d, want 2", len(overview.Breakdown))
	}

	top := overview.Breakdown[0]
	if top.CategoryID != food {
		t.Fatalf("Breakdown[0] = %+v, want the food category first", top)
	}
	if top.Budget == nil || !top.Budget.Equal(d("1000")) {
		t.Errorf("food budget = %v, want 1000", top.Budget)
	}
	if top.Status != ledger.StatusWarning {
		t.Errorf("food status = %s, want warning", top.Status)
	}
	if top.Percent != 90 {
		t.Errorf("food percent = %d, want 90", top.Percent)
	}

	uncategorized := overview.Breakdown[1]
	if uncategorized.Status != ledger.StatusNone {
		t.Errorf("uncategorized status = %s, want none", uncategorized.Status)
	}

	if len(overview.Days) != 2 {
		t.Errorf("len(Days) = %d, want 2", len(overview.Days))
	}
}

func TestMonthOverviewListFilter(t *testing.T) {
	store := newFakeStore()
	svc := NewOverviewService(store, store, testLogger())
	owner := uuid.New()
	food := uuid.New()

	seedExpense(store, owner, &food, "식비", "2025-03-10", "900")
	seedExpense(store, owner, nil, "", "2025-03-12", "50")

	overview, err := svc.Month(context.Background(), owner, 2025, 3, core.DisplayTRY, ListFilter{
		CategoryID: &food,
	})
	if err != nil {
		t.Fatalf("Month() error = %v", err)
	}

	// Summary and breakdown still cover the whole month.
	if !overview.Totals.Expense.Equal(d("950")) {
		t.Errorf("Expense = %s, want unfiltered 950", overview.Totals.Expense)
	}
	if len(overview.Breakdown) != 2 {
		t.Errorf("len(Breakdown) = %d, want unfiltered 2", len(overview.Breakdown))
	}
	// The list is narrowed.
	if len(overview.Days) != 1 {
		t.Fatalf("len(Days) = %d, want 1", len(overview.Days))
	}
	if overview.Days[0].Date != "2025-03-10" {
		t.Errorf("Days[0].Date = %s", overview.Days[0].Date)
	}
}

func TestListFilterMatches(t *testing.T) {
	cat := uuid.New()
	tx := core.Transaction{
		Type:       core.Expense,
		CategoryID: &cat,
		Content:    "Kipa Market",
		Memo:       "weekly groceries",
	}

	tests := []struct {
		name   string
		filter ListFilter
		want   bool
	}{
		{"empty matches all", ListFilter{}, true},
		{"type match", ListFilter{Type: core.Expense}, true},
		{"type mismatch", ListFilter{Type: core.Income}, false},
		{"category match", ListFilter{CategoryID: &cat}, true},
		{"search content case-insensitive", ListFilter{Search: "kipa"}, true},
		{"search memo", ListFilter{Search: "groceries"}, true},
		{"search miss", ListFilter{Search: "pharmacy"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.matches(tx); got != tt.want {
				t.Errorf("matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
