package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gagyebu/internal/core"
	"gagyebu/internal/fx"
	"gagyebu/internal/log"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

// fakeStore is an in-memory implementation of every store port,
// sufficient for service tests.
type fakeStore struct {
	transactions map[uuid.UUID]core.Transaction
	budgets      map[string]core.Budget // key owner|category|month
	categories   []core.Category
	links        map[string]core.SharedLink
	users        map[uuid.UUID]string
	templates    map[uuid.UUID]core.Template
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		transactions: make(map[uuid.UUID]core.Transaction),
		budgets:      make(map[string]core.Budget),
		links:        make(map[string]core.SharedLink),
		users:        make(map[uuid.UUID]string),
		templates:    make(map[uuid.UUID]core.Template),
	}
}

func budgetKey(ownerID, categoryID uuid.UUID, month string) string {
	return fmt.Sprintf("%s|%s|%s", ownerID, categoryID, month)
}

func (f *fakeStore) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	f.transactions[t.ID] = t
	return t, nil
}

func (f *fakeStore) UpdateTransaction(_ context.Context, t core.Transaction) error {
	existing, ok := f.transactions[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return core.ErrNotFound
	}
	f.transactions[t.ID] = t
	return nil
}

func (f *fakeStore) DeleteTransaction(_ context.Context, id, ownerID uuid.UUID) error {
	existing, ok := f.transactions[id]
	if !ok || existing.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(f.transactions, id)
	return nil
}

func (f *fakeStore) GetTransaction(_ context.Context, id, ownerID uuid.UUID) (core.Transaction, error) {
	t, ok := f.transactions[id]
	if !ok || t.OwnerID != ownerID {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) ListTransactions(_ context.Context, ownerID uuid.UUID, start, end core.Date) ([]core.Transaction, error) {
	var result []core.Transaction
	for _, t := range f.transactions {
		if t.OwnerID != ownerID {
			continue
		}
		if t.Date.Before(start.Time) || t.Date.After(end.Time) {
			continue
		}
		result = append(result, t)
	}
	return result, nil
}

func (f *fakeStore) ListBudgets(_ context.Context, ownerID uuid.UUID) ([]core.Budget, error) {
	var result []core.Budget
	for _, b := range f.budgets {
		if b.OwnerID == ownerID {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeStore) UpsertBudget(_ context.Context, b core.Budget) error {
	f.budgets[budgetKey(b.OwnerID, b.CategoryID, b.Month)] = b
	return nil
}

func (f *fakeStore) DeleteBudget(_ context.Context, ownerID, categoryID uuid.UUID, month string) error {
	delete(f.budgets, budgetKey(ownerID, categoryID, ""))
	delete(f.budgets, budgetKey(ownerID, categoryID, month))
	return nil
}

func (f *fakeStore) ListCategories(_ context.Context, activeOnly bool) ([]core.Category, error) {
	var result []core.Category
	for _, c := range f.categories {
		if activeOnly && !c.Active {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

func (f *fakeStore) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.categories = append(f.categories, c)
	return c, nil
}

func (f *fakeStore) RenameCategory(_ context.Context, id uuid.UUID, name string) error {
	for i, c := range f.categories {
		if c.ID == id {
			f.categories[i].Name = name
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeStore) SetCategoryActive(_ context.Context, id uuid.UUID, active bool) error {
	for i, c := range f.categories {
		if c.ID == id {
			f.categories[i].Active = active
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeStore) ListPaymentMethods(context.Context, bool) ([]core.PaymentMethod, error) {
	return nil, nil
}

func (f *fakeStore) CreatePaymentMethod(_ context.Context, p core.PaymentMethod) (core.PaymentMethod, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return p, nil
}

func (f *fakeStore) RenamePaymentMethod(context.Context, uuid.UUID, string) error { return nil }

func (f *fakeStore) SetPaymentMethodActive(context.Context, uuid.UUID, bool) error { return nil }

func (f *fakeStore) ListTemplates(_ context.Context, ownerID uuid.UUID) ([]core.Template, error) {
	var result []core.Template
	for _, t := range f.templates {
		if t.OwnerID == ownerID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (f *fakeStore) CreateTemplate(_ context.Context, t core.Template) (core.Template, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	f.templates[t.ID] = t
	return t, nil
}

func (f *fakeStore) DeleteTemplate(_ context.Context, id, ownerID uuid.UUID) error {
	t, ok := f.templates[id]
	if !ok || t.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(f.templates, id)
	return nil
}

func (f *fakeStore) CreateSharedLink(_ context.Context, l core.SharedLink) error {
	f.links[l.Token] = l
	return nil
}

func (f *fakeStore) ListSharedLinks(_ context.Context, ownerID uuid.UUID) ([]core.SharedLink, error) {
	var result []core.SharedLink
	for _, l := range f.links {
		if l.OwnerID == ownerID {
			result = append(result, l)
		}
	}
	return result, nil
}

func (f *fakeStore) DeleteSharedLink(_ context.Context, token string, ownerID uuid.UUID) error {
	l, ok := f.links[token]
	if !ok || l.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(f.links, token)
	return nil
}

func (f *fakeStore) GetSharedLink(_ context.Context, token string) (core.SharedLink, error) {
	l, ok := f.links[token]
	if !ok {
		return core.SharedLink{}, core.ErrNotFound
	}
	return l, nil
}

func (f *fakeStore) ListOwnerTransactions(ctx context.Context, ownerID uuid.UUID, start, end core.Date) ([]core.Transaction, error) {
	return f.ListTransactions(ctx, ownerID, start, end)
}

func (f *fakeStore) OwnerDisplayName(_ context.Context, ownerID uuid.UUID) (string, error) {
	return f.users[ownerID], nil
}

func (f *fakeStore) UpsertUser(_ context.Context, id uuid.UUID, displayName string) error {
	f.users[id] = displayName
	return nil
}

// fakeResolver returns canned rates keyed "from→to", or
// core.ErrRateUnavailable when absent.
type fakeResolver struct {
	rates map[string]decimal.Decimal
}

func (f *fakeResolver) Resolve(_ context.Context, from, to, date string) (fx.Rate, error) {
	if from == to {
		return fx.Rate{Rate: decimal.NewFromInt(1), Date: date}, nil
	}
	rate, ok := f.rates[from+"→"+to]
	if !ok {
		return fx.Rate{}, fmt.Errorf("%w: %s→%s", core.ErrRateUnavailable, from, to)
	}
	return fx.Rate{Rate: rate, Date: date}, nil
}

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}
