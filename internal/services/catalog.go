package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"gagyebu/internal/core"
	"gagyebu/internal/log"
	"gagyebu/internal/store"
)

// CatalogService manages the reference data behind the transaction
// form: categories, payment methods, templates and the owner's public
// display name.
type CatalogService struct {
	catalog store.CatalogStore
	users   store.UserStore
	logger  *log.Logger
}

func NewCatalogService(catalog store.CatalogStore, users store.UserStore, logger *log.Logger) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		users:   users,
		logger:  logger.WithComponent(log.ComponentCatalog),
	}
}

func (s *CatalogService) Categories(ctx context.Context, activeOnly bool) ([]core.Category, error) {
	return s.catalog.ListCategories(ctx, activeOnly)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string, kind core.TransactionType) (core.Category, error) {
	c := core.Category{Name: strings.TrimSpace(name), Type: kind, Active: true}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return s.catalog.CreateCategory(ctx, c)
}

func (s *CatalogService) RenameCategory(ctx context.Context, id uuid.UUID, name string) error {
	c := core.Category{Name: strings.TrimSpace(name), Type: core.Expense}
	if err := c.Validate(); err != nil {
		return err
	}
	return s.catalog.RenameCategory(ctx, id, c.Name)
}

// SetCategoryActive deactivates or reactivates a category. Categories
// are never deleted so historical transactions keep their label.
func (s *CatalogService) SetCategoryActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.catalog.SetCategoryActive(ctx, id, active)
}

func (s *CatalogService) PaymentMethods(ctx context.Context, activeOnly bool) ([]core.PaymentMethod, error) {
	return s.catalog.ListPaymentMethods(ctx, activeOnly)
}

func (s *CatalogService) CreatePaymentMethod(ctx context.Context, name string) (core.PaymentMethod, error) {
	p := core.PaymentMethod{Name: strings.TrimSpace(name), Active: true}
	if err := p.Validate(); err != nil {
		return core.PaymentMethod{}, err
	}
	return s.catalog.CreatePaymentMethod(ctx, p)
}

func (s *CatalogService) RenamePaymentMethod(ctx context.Context, id uuid.UUID, name string) error {
	p := core.PaymentMethod{Name: strings.TrimSpace(name)}
	if err := p.Validate(); err != nil {
		return err
	}
	return s.catalog.RenamePaymentMethod(ctx, id, p.Name)
}

func (s *CatalogService) SetPaymentMethodActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.catalog.SetPaymentMethodActive(ctx, id, active)
}

func (s *CatalogService) Templates(ctx context.Context, ownerID uuid.UUID) ([]core.Template, error) {
	return s.catalog.ListTemplates(ctx, ownerID)
}

func (s *CatalogService) CreateTemplate(ctx context.Context, t core.Template) (core.Template, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" || len([]rune(t.Name)) > 50 {
		return core.Template{}, &core.ValidationError{Field: "name", Message: "must be 1-50 characters"}
	}
	if !t.Type.Valid() {
		return core.Template{}, &core.ValidationError{Field: "type", Message: "must be expense or income"}
	}
	return s.catalog.CreateTemplate(ctx, t)
}

func (s *CatalogService) DeleteTemplate(ctx context.Context, id, ownerID uuid.UUID) error {
	return s.catalog.DeleteTemplate(ctx, id, ownerID)
}

// SetDisplayName records the owner's public name shown on shared
// reports.
func (s *CatalogService) SetDisplayName(ctx context.Context, ownerID uuid.UUID, name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || len([]rune(trimmed)) > 50 {
		return &core.ValidationError{Field: "display_name", Message: "must be 1-50 characters"}
	}
	s.logger.InfoContext(ctx, "Display name updated", log.FieldOwnerID, ownerID)
	return s.users.UpsertUser(ctx, ownerID, trimmed)
}
