package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gagyebu/internal/core"
	"gagyebu/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the persistence collaborator. It implements every
// store port, including the narrow share-reader path used by
// unauthenticated report links.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = `t.id, t.owner_id, t.date, t.type, t.category_id, c.name,
	t.payment_method_id, t.currency, t.original_amount, t.exchange_rate,
	t.krw_amount, t.try_amount, t.content, t.memo, t.receipt_url, t.created_at`

const transactionJoin = `FROM transactions t LEFT JOIN categories c ON c.id = t.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t               core.Transaction
		id, owner       string
		date            string
		categoryID      sql.NullString
		categoryName    sql.NullString
		paymentMethodID sql.NullString
		original, rate  string
		krw             string
		try             sql.NullString
	)
	err := row.Scan(&id, &owner, &date, &t.Type, &categoryID, &categoryName,
		&paymentMethodID, &t.Currency, &original, &rate,
		&krw, &try, &t.Content, &t.Memo, &t.ReceiptURL, &t.CreatedAt)
	if err != nil {
		return core.Transaction{}, err
	}

	if t.ID, err = uuid.Parse(id); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction id: %w", err)
	}
	if t.OwnerID, err = uuid.Parse(owner); err != nil {
		return core.Transaction{}, fmt.Errorf("parse owner id: %w", err)
	}
	if t.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date: %w", err)
	}
	if categoryID.Valid {
		catID, err := uuid.Parse(categoryID.String)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse category id: %w", err)
		}
		t.CategoryID = &catID
		t.CategoryName = categoryName.String
	}
	if paymentMethodID.Valid {
		pmID, err := uuid.Parse(paymentMethodID.String)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse payment method id: %w", err)
		}
		t.PaymentMethodID = &pmID
	}
	if t.OriginalAmount, err = decimal.NewFromString(original); err != nil {
		return core.Transaction{}, fmt.Errorf("parse original amount: %w", err)
	}
	if t.ExchangeRate, err = decimal.NewFromString(rate); err != nil {
		return core.Transaction{}, fmt.Errorf("parse exchange rate: %w", err)
	}
	if t.KRWAmount, err = decimal.NewFromString(krw); err != nil {
		return core.Transaction{}, fmt.Errorf("parse krw amount: %w", err)
	}
	if try.Valid {
		amount, err := decimal.NewFromString(try.String)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse try amount: %w", err)
		}
		t.TRYAmount = &amount
	}
	return t, nil
}

func nullableUUID(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func nullableDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

// CreateTransaction implements store.TransactionStore.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, owner_id, date, type, category_id,
			payment_method_id, currency, original_amount, exchange_rate,
			krw_amount, try_amount, content, memo, receipt_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.OwnerID.String(), t.Date.String(), t.Type,
		nullableUUID(t.CategoryID), nullableUUID(t.PaymentMethodID),
		t.Currency, t.OriginalAmount.String(), t.ExchangeRate.String(),
		t.KRWAmount.String(), nullableDecimal(t.TRYAmount),
		t.Content, t.Memo, t.ReceiptURL, t.CreatedAt)
	if err != nil {
		return core.Transaction{}, writeErr("create transaction", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID, "type", t.Type, "currency", t.Currency, "date", t.Date.String())
	return t, nil
}

// UpdateTransaction implements store.TransactionStore. The statement is
// scoped by both id and owner; updating someone else's row reports
// core.ErrNotFound rather than revealing its existence.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET date = ?, type = ?, category_id = ?, payment_method_id = ?,
			currency = ?, original_amount = ?, exchange_rate = ?,
			krw_amount = ?, try_amount = ?, content = ?, memo = ?, receipt_url = ?
		WHERE id = ? AND owner_id = ?`,
		t.Date.String(), t.Type, nullableUUID(t.CategoryID), nullableUUID(t.PaymentMethodID),
		t.Currency, t.OriginalAmount.String(), t.ExchangeRate.String(),
		t.KRWAmount.String(), nullableDecimal(t.TRYAmount), t.Content, t.Memo, t.ReceiptURL,
		t.ID.String(), t.OwnerID.String())
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireAffected(res, "update transaction")
}

// DeleteTransaction implements store.TransactionStore. Hard delete.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id, ownerID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner_id = ?`,
		id.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireAffected(res, "delete transaction")
}

// GetTransaction implements store.TransactionStore.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id, ownerID uuid.UUID) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` `+transactionJoin+` WHERE t.id = ? AND t.owner_id = ?`,
		id.String(), ownerID.String())
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListTransactions implements store.TransactionStore.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, ownerID uuid.UUID, start, end core.Date) ([]core.Transaction, error) {
	return r.listTransactions(ctx, ownerID, start, end)
}

// ListOwnerTransactions implements store.ShareReader. Same query as
// ListTransactions; the separate method keeps the elevated call sites
// auditable.
func (r *SQLiteRepository) ListOwnerTransactions(ctx context.Context, ownerID uuid.UUID, start, end core.Date) ([]core.Transaction, error) {
	return r.listTransactions(ctx, ownerID, start, end)
}

func (r *SQLiteRepository) listTransactions(ctx context.Context, ownerID uuid.UUID, start, end core.Date) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` `+transactionJoin+`
		WHERE t.owner_id = ? AND t.date >= ? AND t.date <= ?
		ORDER BY t.date DESC, t.created_at DESC`,
		ownerID.String(), start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var result []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return result, nil
}

// ListBudgets implements store.BudgetStore.
func (r *SQLiteRepository) ListBudgets(ctx context.Context, ownerID uuid.UUID) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category_id, month, amount FROM category_budgets WHERE owner_id = ?`,
		ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var result []core.Budget
	for rows.Next() {
		var (
			categoryID string
			b          = core.Budget{OwnerID: ownerID}
			amount     string
		)
		if err := rows.Scan(&categoryID, &b.Month, &amount); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		if b.CategoryID, err = uuid.Parse(categoryID); err != nil {
			return nil, fmt.Errorf("parse budget category id: %w", err)
		}
		if b.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse budget amount: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	return result, nil
}

// UpsertBudget implements store.BudgetStore.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO category_budgets (owner_id, category_id, month, amount, currency)
		VALUES (?, ?, ?, ?, 'TRY')
		ON CONFLICT (owner_id, category_id, month) DO UPDATE SET amount = excluded.amount`,
		b.OwnerID.String(), b.CategoryID.String(), b.Month, b.Amount.String())
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}
	return nil
}

// DeleteBudget implements store.BudgetStore. Removes the default and
// the given month's override in one statement so clearing a budget
// leaves no stale rows behind.
func (r *SQLiteRepository) DeleteBudget(ctx context.Context, ownerID, categoryID uuid.UUID, month string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM category_budgets
		WHERE owner_id = ? AND category_id = ? AND month IN ('', ?)`,
		ownerID.String(), categoryID.String(), month)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return nil
}

// ListCategories implements store.CatalogStore.
func (r *SQLiteRepository) ListCategories(ctx context.Context, activeOnly bool) ([]core.Category, error) {
	query := `SELECT id, name, type, is_active FROM categories`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var result []core.Category
	for rows.Next() {
		var (
			c  core.Category
			id string
		)
		if err := rows.Scan(&id, &c.Name, &c.Type, &c.Active); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if c.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse category id: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return result, nil
}

// CreateCategory implements store.CatalogStore.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, type, is_active) VALUES (?, ?, ?, ?)`,
		c.ID.String(), c.Name, c.Type, c.Active)
	if err != nil {
		return core.Category{}, writeErr("create category", err)
	}
	return c, nil
}

// RenameCategory implements store.CatalogStore.
func (r *SQLiteRepository) RenameCategory(ctx context.Context, id uuid.UUID, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ? WHERE id = ?`, name, id.String())
	if err != nil {
		return fmt.Errorf("rename category: %w", err)
	}
	return requireAffected(res, "rename category")
}

// SetCategoryActive implements store.CatalogStore. Categories are never
// deleted, only deactivated, so historical transactions keep their
// reference.
func (r *SQLiteRepository) SetCategoryActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET is_active = ? WHERE id = ?`, active, id.String())
	if err != nil {
		return fmt.Errorf("set category active: %w", err)
	}
	return requireAffected(res, "set category active")
}

// ListPaymentMethods implements store.CatalogStore.
func (r *SQLiteRepository) ListPaymentMethods(ctx context.Context, activeOnly bool) ([]core.PaymentMethod, error) {
	query := `SELECT id, name, is_active FROM payment_methods`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var result []core.PaymentMethod
	for rows.Next() {
		var (
			p  core.PaymentMethod
			id string
		)
		if err := rows.Scan(&id, &p.Name, &p.Active); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		if p.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse payment method id: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	return result, nil
}

// CreatePaymentMethod implements store.CatalogStore.
func (r *SQLiteRepository) CreatePaymentMethod(ctx context.Context, p core.PaymentMethod) (core.PaymentMethod, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payment_methods (id, name, is_active) VALUES (?, ?, ?)`,
		p.ID.String(), p.Name, p.Active)
	if err != nil {
		return core.PaymentMethod{}, writeErr("create payment method", err)
	}
	return p, nil
}

// RenamePaymentMethod implements store.CatalogStore.
func (r *SQLiteRepository) RenamePaymentMethod(ctx context.Context, id uuid.UUID, name string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payment_methods SET name = ? WHERE id = ?`, name, id.String())
	if err != nil {
		return fmt.Errorf("rename payment method: %w", err)
	}
	return requireAffected(res, "rename payment method")
}

// SetPaymentMethodActive implements store.CatalogStore.
func (r *SQLiteRepository) SetPaymentMethodActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payment_methods SET is_active = ? WHERE id = ?`, active, id.String())
	if err != nil {
		return fmt.Errorf("set payment method active: %w", err)
	}
	return requireAffected(res, "set payment method active")
}

// ListTemplates implements store.CatalogStore.
func (r *SQLiteRepository) ListTemplates(ctx context.Context, ownerID uuid.UUID) ([]core.Template, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT tt.id, tt.name, tt.type, tt.category_id, c.name, tt.currency, tt.default_amount
		FROM transaction_templates tt
		LEFT JOIN categories c ON c.id = tt.category_id
		WHERE tt.owner_id = ?
		ORDER BY tt.name`,
		ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var result []core.Template
	for rows.Next() {
		var (
			t            = core.Template{OwnerID: ownerID}
			id           string
			categoryID   sql.NullString
			categoryName sql.NullString
			amount       sql.NullString
		)
		if err := rows.Scan(&id, &t.Name, &t.Type, &categoryID, &categoryName, &t.Currency, &amount); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		if t.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse template id: %w", err)
		}
		if categoryID.Valid {
			catID, err := uuid.Parse(categoryID.String)
			if err != nil {
				return nil, fmt.Errorf("parse template category id: %w", err)
			}
			t.CategoryID = &catID
			t.CategoryName = categoryName.String
		}
		if amount.Valid {
			d, err := decimal.NewFromString(amount.String)
			if err != nil {
				return nil, fmt.Errorf("parse template amount: %w", err)
			}
			t.DefaultAmount = &d
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return result, nil
}

// CreateTemplate implements store.CatalogStore.
func (r *SQLiteRepository) CreateTemplate(ctx context.Context, t core.Template) (core.Template, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transaction_templates (id, owner_id, name, type, category_id, currency, default_amount)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.OwnerID.String(), t.Name, t.Type,
		nullableUUID(t.CategoryID), t.Currency, nullableDecimal(t.DefaultAmount))
	if err != nil {
		return core.Template{}, writeErr("create template", err)
	}
	return t, nil
}

// DeleteTemplate implements store.CatalogStore.
func (r *SQLiteRepository) DeleteTemplate(ctx context.Context, id, ownerID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transaction_templates WHERE id = ? AND owner_id = ?`,
		id.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return requireAffected(res, "delete template")
}

// CreateSharedLink implements store.SharedLinkStore.
func (r *SQLiteRepository) CreateSharedLink(ctx context.Context, l core.SharedLink) error {
	var expiresAt any
	if l.ExpiresAt != nil {
		expiresAt = *l.ExpiresAt
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO shared_links (token, owner_id, start_date, end_date, expires_at,
			show_income, show_summary, show_stacked_chart, display_currency, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.Token, l.OwnerID.String(), l.StartDate.String(), l.EndDate.String(), expiresAt,
		l.ShowIncome, l.ShowSummary, l.ShowStackedChart, string(l.DisplayCurrency), l.CreatedAt)
	if err != nil {
		return writeErr("create shared link", err)
	}

	slog.InfoContext(ctx, "Shared link created",
		"owner_id", l.OwnerID, "start", l.StartDate.String(), "end", l.EndDate.String())
	return nil
}

// ListSharedLinks implements store.SharedLinkStore.
func (r *SQLiteRepository) ListSharedLinks(ctx context.Context, ownerID uuid.UUID) ([]core.SharedLink, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT token, owner_id, start_date, end_date, expires_at,
			show_income, show_summary, show_stacked_chart, display_currency, created_at
		FROM shared_links WHERE owner_id = ? ORDER BY created_at DESC`,
		ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("list shared links: %w", err)
	}
	defer rows.Close()

	var result []core.SharedLink
	for rows.Next() {
		l, err := scanSharedLink(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list shared links: %w", err)
	}
	return result, nil
}

// DeleteSharedLink implements store.SharedLinkStore.
func (r *SQLiteRepository) DeleteSharedLink(ctx context.Context, token string, ownerID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM shared_links WHERE token = ? AND owner_id = ?`,
		token, ownerID.String())
	if err != nil {
		return fmt.Errorf("delete shared link: %w", err)
	}
	return requireAffected(res, "delete shared link")
}

// GetSharedLink implements store.ShareReader. Token lookup only; no
// owner scoping, by design.
func (r *SQLiteRepository) GetSharedLink(ctx context.Context, token string) (core.SharedLink, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT token, owner_id, start_date, end_date, expires_at,
			show_income, show_summary, show_stacked_chart, display_currency, created_at
		FROM shared_links WHERE token = ?`, token)
	l, err := scanSharedLink(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SharedLink{}, core.ErrNotFound
	}
	if err != nil {
		return core.SharedLink{}, fmt.Errorf("get shared link: %w", err)
	}
	return l, nil
}

// OwnerDisplayName implements store.ShareReader. Only the display name
// leaves this method; the owner's id or email is never surfaced to the
// shared view.
func (r *SQLiteRepository) OwnerDisplayName(ctx context.Context, ownerID uuid.UUID) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT display_name FROM users WHERE id = ?`, ownerID.String()).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get owner display name: %w", err)
	}
	return name, nil
}

// UpsertUser records or updates the owner's display name.
func (r *SQLiteRepository) UpsertUser(ctx context.Context, id uuid.UUID, displayName string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, display_name) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET display_name = excluded.display_name`,
		id.String(), displayName)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func scanSharedLink(row rowScanner) (core.SharedLink, error) {
	var (
		l          core.SharedLink
		owner      string
		start, end string
		expiresAt  sql.NullTime
		currency   string
	)
	err := row.Scan(&l.Token, &owner, &start, &end, &expiresAt,
		&l.ShowIncome, &l.ShowSummary, &l.ShowStackedChart, &currency, &l.CreatedAt)
	if err != nil {
		return core.SharedLink{}, err
	}
	if l.OwnerID, err = uuid.Parse(owner); err != nil {
		return core.SharedLink{}, fmt.Errorf("parse link owner id: %w", err)
	}
	if l.StartDate, err = core.ParseDate(start); err != nil {
		return core.SharedLink{}, fmt.Errorf("parse link start date: %w", err)
	}
	if l.EndDate, err = core.ParseDate(end); err != nil {
		return core.SharedLink{}, fmt.Errorf("parse link end date: %w", err)
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		l.ExpiresAt = &t
	}
	l.DisplayCurrency = core.DisplayCurrency(currency)
	return l, nil
}

// writeErr surfaces constraint violations as core.ErrPersistenceRejected
// so callers can tell a rejected write from an infrastructure failure.
func writeErr(op string, err error) error {
	if strings.Contains(err.Error(), "constraint") {
		return fmt.Errorf("%s: %w: %v", op, core.ErrPersistenceRejected, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}
