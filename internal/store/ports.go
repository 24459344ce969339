package store

import (
	"context"

	"github.com/google/uuid"

	"gagyebu/internal/core"
)

// Ports for the persistence collaborator. Services consume
// already-filtered collections; aggregation happens in memory.
type (
	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		// UpdateTransaction fully replaces the valuation fields. Scoped
		// by id and owner; zero rows updated means core.ErrNotFound.
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, id, ownerID uuid.UUID) error
		GetTransaction(ctx context.Context, id, ownerID uuid.UUID) (core.Transaction, error)
		// ListTransactions returns the owner's transactions with date
		// in [start, end], joined with category and payment method
		// names.
		ListTransactions(ctx context.Context, ownerID uuid.UUID, start, end core.Date) ([]core.Transaction, error)
	}

	BudgetStore interface {
		// ListBudgets returns every budget row (defaults and monthly
		// overrides) for the owner.
		ListBudgets(ctx context.Context, ownerID uuid.UUID) ([]core.Budget, error)
		// UpsertBudget writes one row; month "" targets the default.
		UpsertBudget(ctx context.Context, b core.Budget) error
		// DeleteBudget removes both the default and the given month's
		// row for the category, clearing the budget entirely.
		DeleteBudget(ctx context.Context, ownerID, categoryID uuid.UUID, month string) error
	}

	CatalogStore interface {
		ListCategories(ctx context.Context, activeOnly bool) ([]core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		RenameCategory(ctx context.Context, id uuid.UUID, name string) error
		SetCategoryActive(ctx context.Context, id uuid.UUID, active bool) error

		ListPaymentMethods(ctx context.Context, activeOnly bool) ([]core.PaymentMethod, error)
		CreatePaymentMethod(ctx context.Context, p core.PaymentMethod) (core.PaymentMethod, error)
		RenamePaymentMethod(ctx context.Context, id uuid.UUID, name string) error
		SetPaymentMethodActive(ctx context.Context, id uuid.UUID, active bool) error

		ListTemplates(ctx context.Context, ownerID uuid.UUID) ([]core.Template, error)
		CreateTemplate(ctx context.Context, t core.Template) (core.Template, error)
		DeleteTemplate(ctx context.Context, id, ownerID uuid.UUID) error
	}

	SharedLinkStore interface {
		CreateSharedLink(ctx context.Context, l core.SharedLink) error
		ListSharedLinks(ctx context.Context, ownerID uuid.UUID) ([]core.SharedLink, error)
		DeleteSharedLink(ctx context.Context, token string, ownerID uuid.UUID) error
	}

	UserStore interface {
		// UpsertUser records or updates the owner's public display name.
		UpsertUser(ctx context.Context, id uuid.UUID, displayName string) error
	}

	// ShareReader is the elevated-privilege path behind shared report
	// links. It bypasses per-owner scoping, so it is deliberately
	// narrow: a link by its token, that link owner's transactions, and
	// the owner's public display name. Nothing else.
	ShareReader interface {
		GetSharedLink(ctx context.Context, token string) (core.SharedLink, error)
		ListOwnerTransactions(ctx context.Context, ownerID uuid.UUID, start, end core.Date) ([]core.Transaction, error)
		OwnerDisplayName(ctx context.Context, ownerID uuid.UUID) (string, error)
	}
)
