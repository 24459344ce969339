package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gagyebu/internal/core"
)

func newTransactionService(store *fakeStore, resolver RateResolver) *TransactionService {
	return NewTransactionService(store, resolver, testLogger())
}

func TestCreateTransactionValuates(t *testing.T) {
	store := newFakeStore()
	resolver := &fakeResolver{rates: map[string]decimal.Decimal{
		"USD→KRW": d("1400"),
		"USD→TRY": d("32.5"),
	}}
	svc := newTransactionService(store, resolver)
	owner := uuid.New()

	tx, err := svc.Create(context.Background(), owner, TransactionInput{
		Date:           "2025-03-15",
		Type:           core.Expense,
		Currency:       "USD",
		OriginalAmount: d("10"),
		Content:        "coffee",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if !tx.KRWAmount.Equal(d("14000")) {
		t.Errorf("KRWAmount = %s, want 14000", tx.KRWAmount)
	}
	if tx.TRYAmount == nil || !tx.TRYAmount.Equal(d("325")) {
		t.Errorf("TRYAmount = %v, want 325", tx.TRYAmount)
	}
	if !tx.ExchangeRate.Equal(d("1400")) {
		t.Errorf("ExchangeRate = %s, want 1400", tx.ExchangeRate)
	}
	if _, ok := store.transactions[tx.ID]; !ok {
		t.Error("transaction not persisted")
	}
}

func TestCreateTransactionTRYSourceKeepsExactOriginal(t *testing.T) {
	store := newFakeStore()
	resolver := &fakeResolver{rates: map[string]decimal.Decimal{
		"TRY→KRW": d("42.1234"),
	}}
	svc := newTransactionService(store, resolver)

	tx, err := svc.Create(context.Background(), uuid.New(), TransactionInput{
		Date:           "2025-03-15",
		Type:           core.Expense,
		Currency:       "TRY",
		OriginalAmount: d("123.45"),
		Content:        "market",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if tx.TRYAmount == nil || !tx.TRYAmount.Equal(d("123.45")) {
		t.Errorf("TRYAmount = %v, want exact original 123.45", tx.TRYAmount)
	}
	if !tx.KRWAmount.Equal(d("5200")) {
		t.Errorf("KRWAmount = %s, want 5200", tx.KRWAmount)
	}
}

func TestCreateTransactionHomeRateFallsBackToOne(t *testing.T) {
	store := newFakeStore()
	// No rates at all: KRW falls back to 1, TRY amount is dropped.
	svc := newTransactionService(store, &fakeResolver{rates: map[string]decimal.Decimal{}})

	tx, err := svc.Create(context.Background(), uuid.New(), TransactionInput{
		Date:           "2025-03-15",
		Type:           core.Expense,
		Currency:       "USD",
		OriginalAmount: d("25"),
		Content:        "book",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !tx.ExchangeRate.Equal(d("1")) {
		t.Errorf("ExchangeRate = %s, want fallback 1", tx.ExchangeRate)
	}
	if !tx.KRWAmount.Equal(d("25")) {
		t.Errorf("KRWAmount = %s, want 25", tx.KRWAmount)
	}
	if tx.TRYAmount != nil {
		t.Errorf("TRYAmount = %s, want nil when secondary rate is unavailable", tx.TRYAmount)
	}
}

func TestCreateTransactionManualOverride(t *testing.T) {
	store := newFakeStore()
	resolver := &fakeResolver{rates: map[string]decimal.Decimal{
		"USD→KRW": d("1400"),
		"USD→TRY": d("32.5"),
	}}
	svc := newTransactionService(store, resolver)

	tx, err := svc.Create(context.Background(), uuid.New(), TransactionInput{
		Date:           "2025-03-15",
		Type:           core.Expense,
		Currency:       "USD",
		OriginalAmount: d("10"),
		KRWOverride:    dp("13500"),
		Content:        "card statement amount",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !tx.KRWAmount.Equal(d("13500")) {
		t.Errorf("KRWAmount = %s, want the override 13500", tx.KRWAmount)
	}
}

func TestCreateTransactionRejectsInvalidInput(t *testing.T) {
	svc := newTransactionService(newFakeStore(), &fakeResolver{rates: map[string]decimal.Decimal{
		"USD→KRW": d("1400"),
		"USD→TRY": d("32.5"),
	}})

	tests := []struct {
		name  string
		input TransactionInput
	}{
		{"bad date", TransactionInput{Date: "15-03-2025", Type: core.Expense, Currency: "USD", OriginalAmount: d("1"), Content: "x"}},
		{"zero amount", TransactionInput{Date: "2025-03-15", Type: core.Expense, Currency: "USD", OriginalAmount: decimal.Zero, Content: "x"}},
		{"empty content", TransactionInput{Date: "2025-03-15", Type: core.Expense, Currency: "USD", OriginalAmount: d("1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), uuid.New(), tt.input)
			var validation *core.ValidationError
			if !errors.As(err, &validation) {
				t.Errorf("Create() error = %v, want *ValidationError", err)
			}
		})
	}
}

func TestUpdateTransactionRevaluates(t *testing.T) {
	store := newFakeStore()
	resolver := &fakeResolver{rates: map[string]decimal.Decimal{
		"USD→KRW": d("1400"),
		"USD→TRY": d("32.5"),
	}}
	svc := newTransactionService(store, resolver)
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, TransactionInput{
		Date: "2025-03-15", Type: core.Expense, Currency: "USD",
		OriginalAmount: d("10"), Content: "coffee",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := svc.Update(context.Background(), created.ID, owner, TransactionInput{
		Date: "2025-03-15", Type: core.Expense, Currency: "USD",
		OriginalAmount: d("20"), Content: "coffee for two",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.ID != created.ID {
		t.Error("Update() must keep the id")
	}
	if !updated.KRWAmount.Equal(d("28000")) {
		t.Errorf("KRWAmount = %s, want 28000", updated.KRWAmount)
	}
}

func TestUpdateTransactionScopedToOwner(t *testing.T) {
	store := newFakeStore()
	resolver := &fakeResolver{rates: map[string]decimal.Decimal{
		"USD→KRW": d("1400"),
		"USD→TRY": d("32.5"),
	}}
	svc := newTransactionService(store, resolver)

	created, err := svc.Create(context.Background(), uuid.New(), TransactionInput{
		Date: "2025-03-15", Type: core.Expense, Currency: "USD",
		OriginalAmount: d("10"), Content: "coffee",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.Update(context.Background(), created.ID, uuid.New(), TransactionInput{
		Date: "2025-03-15", Type: core.Expense, Currency: "USD",
		OriginalAmount: d("20"), Content: "hijack",
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Update() by another owner = %v, want ErrNotFound", err)
	}

	if err := svc.Delete(context.Background(), created.ID, uuid.New()); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Delete() by another owner = %v, want ErrNotFound", err)
	}
}
