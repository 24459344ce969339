package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gagyebu/internal/core"
	"gagyebu/internal/fx"
	"gagyebu/internal/services"
)

// ownerHeader carries the authenticated user's id, set by the fronting
// auth proxy. The API itself performs no authentication.
const ownerHeader = "X-User-ID"

type RateResolver interface {
	Resolve(ctx context.Context, from, to, date string) (fx.Rate, error)
}

type Handler struct {
	transactions *services.TransactionService
	overview     *services.OverviewService
	budgets      *services.BudgetService
	reports      *services.ReportService
	catalog      *services.CatalogService
	resolver     RateResolver
	now          func() time.Time
}

func NewHandler(
	transactions *services.TransactionService,
	overview *services.OverviewService,
	budgets *services.BudgetService,
	reports *services.ReportService,
	catalog *services.CatalogService,
	resolver RateResolver,
) *Handler {
	return &Handler{
		transactions: transactions,
		overview:     overview,
		budgets:      budgets,
		reports:      reports,
		catalog:      catalog,
		resolver:     resolver,
		now:          time.Now,
	}
}

func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /api/overview", h.getOverview)

	mux.HandleFunc("POST /api/transactions", h.createTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", h.getTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", h.updateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", h.deleteTransaction)

	mux.HandleFunc("GET /api/categories", h.listCategories)
	mux.HandleFunc("POST /api/categories", h.createCategory)
	mux.HandleFunc("PATCH /api/categories/{id}", h.patchCategory)

	mux.HandleFunc("GET /api/payment-methods", h.listPaymentMethods)
	mux.HandleFunc("POST /api/payment-methods", h.createPaymentMethod)
	mux.HandleFunc("PATCH /api/payment-methods/{id}", h.patchPaymentMethod)

	mux.HandleFunc("GET /api/templates", h.listTemplates)
	mux.HandleFunc("POST /api/templates", h.createTemplate)
	mux.HandleFunc("DELETE /api/templates/{id}", h.deleteTemplate)

	mux.HandleFunc("PUT /api/budgets", h.upsertBudget)
	mux.HandleFunc("GET /api/budgets/month", h.getMonthBudgets)
	mux.HandleFunc("GET /api/budgets/year", h.getYearBudgets)

	mux.HandleFunc("GET /api/reports/range", h.getRangeReport)

	mux.HandleFunc("POST /api/share", h.createSharedLink)
	mux.HandleFunc("GET /api/share", h.listSharedLinks)
	mux.HandleFunc("DELETE /api/share/{token}", h.deleteSharedLink)

	mux.HandleFunc("PUT /api/profile", h.updateProfile)

	mux.HandleFunc("GET /api/exchange-rate", h.getExchangeRate)

	// Public, token-authorized.
	mux.HandleFunc("GET /share/{token}", h.getSharedReport)

	return mux
}

func ownerID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.Header.Get(ownerHeader))
	if err != nil {
		return uuid.Nil, &core.ValidationError{Field: "X-User-ID", Message: "missing or malformed user id"}
	}
	return id, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, &core.ValidationError{Field: name, Message: "must be a UUID"}
	}
	return id, nil
}

// yearMonth reads year and month query parameters, defaulting to the
// current month.
func (h *Handler) yearMonth(r *http.Request) (int, int, error) {
	now := h.now()
	year, month := now.Year(), int(now.Month())
	if v := r.URL.Query().Get("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, &core.ValidationError{Field: "year", Message: "must be a number"}
		}
		year = parsed
	}
	if v := r.URL.Query().Get("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 12 {
			return 0, 0, &core.ValidationError{Field: "month", Message: "must be 1-12"}
		}
		month = parsed
	}
	return year, month, nil
}

func (h *Handler) getOverview(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	year, month, err := h.yearMonth(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	currency := core.ParseDisplayCurrency(q.Get("currency"))

	filter := services.ListFilter{Search: q.Get("q")}
	if v := q.Get("type"); v != "" {
		kind := core.TransactionType(v)
		if !kind.Valid() {
			writeError(w, r, &core.ValidationError{Field: "type", Message: "must be expense or income"})
			return
		}
		filter.Type = kind
	}
	if v := q.Get("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeError(w, r, &core.ValidationError{Field: "category_id", Message: "must be a UUID"})
			return
		}
		filter.CategoryID = &id
	}

	overview, err := h.overview.Month(r.Context(), owner, year, month, currency, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

type transactionRequest struct {
	Date            string           `json:"date"`
	Type            string           `json:"type"`
	CategoryID      *uuid.UUID       `json:"category_id"`
	PaymentMethodID *uuid.UUID       `json:"payment_method_id"`
	Currency        string           `json:"currency"`
	OriginalAmount  decimal.Decimal  `json:"original_amount"`
	KRWOverride     *decimal.Decimal `json:"krw_amount_override"`
	Content         string           `json:"content"`
	Memo            string           `json:"memo"`
	ReceiptURL      string           `json:"receipt_url"`
}

func (req transactionRequest) input() services.TransactionInput {
	return services.TransactionInput{
		Date:            req.Date,
		Type:            core.TransactionType(req.Type),
		CategoryID:      req.CategoryID,
		PaymentMethodID: req.PaymentMethodID,
		Currency:        req.Currency,
		OriginalAmount:  req.OriginalAmount,
		KRWOverride:     req.KRWOverride,
		Content:         req.Content,
		Memo:            req.Memo,
		ReceiptURL:      req.ReceiptURL,
	}
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &core.ValidationError{Field: "body", Message: "malformed JSON"}
	}
	return nil
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.transactions.Create(r.Context(), owner, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.transactions.Get(r.Context(), id, owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) updateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req transactionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.transactions.Update(r.Context(), id, owner, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.transactions.Delete(r.Context(), id, owner); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	categories, err := h.catalog.Categories(r.Context(), activeOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.catalog.CreateCategory(r.Context(), req.Name, core.TransactionType(req.Type))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) patchCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Name   *string `json:"name"`
		Active *bool   `json:"active"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Name != nil {
		if err := h.catalog.RenameCategory(r.Context(), id, *req.Name); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if req.Active != nil {
		if err := h.catalog.SetCategoryActive(r.Context(), id, *req.Active); err != nil {
			writeError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listPaymentMethods(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	methods, err := h.catalog.PaymentMethods(r.Context(), activeOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, methods)
}

func (h *Handler) createPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.catalog.CreatePaymentMethod(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) patchPaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Name   *string `json:"name"`
		Active *bool   `json:"active"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Name != nil {
		if err := h.catalog.RenamePaymentMethod(r.Context(), id, *req.Name); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if req.Active != nil {
		if err := h.catalog.SetPaymentMethodActive(r.Context(), id, *req.Active); err != nil {
			writeError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	templates, err := h.catalog.Templates(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *Handler) createTemplate(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		Name          string           `json:"name"`
		Type          string           `json:"type"`
		CategoryID    *uuid.UUID       `json:"category_id"`
		Currency      string           `json:"currency"`
		DefaultAmount *decimal.Decimal `json:"default_amount"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.catalog.CreateTemplate(r.Context(), core.Template{
		OwnerID:       owner,
		Name:          req.Name,
		Type:          core.TransactionType(req.Type),
		CategoryID:    req.CategoryID,
		Currency:      req.Currency,
		DefaultAmount: req.DefaultAmount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.catalog.DeleteTemplate(r.Context(), id, owner); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) upsertBudget(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		CategoryID uuid.UUID       `json:"category_id"`
		Month      string          `json:"month"`
		Amount     decimal.Decimal `json:"amount"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.budgets.Upsert(r.Context(), owner, req.CategoryID, req.Month, req.Amount); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getMonthBudgets(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	year, month, err := h.yearMonth(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := h.budgets.MonthPage(r.Context(), owner, year, month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) getYearBudgets(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	year, _, err := h.yearMonth(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	table, err := h.budgets.YearTable(r.Context(), owner, year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (h *Handler) getRangeReport(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, err := core.ParseDate(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, r, &core.ValidationError{Field: "start", Message: "must be YYYY-MM-DD"})
		return
	}
	end, err := core.ParseDate(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, r, &core.ValidationError{Field: "end", Message: "must be YYYY-MM-DD"})
		return
	}
	currency := core.ParseDisplayCurrency(r.URL.Query().Get("currency"))

	report, err := h.reports.Range(r.Context(), owner, start, end, currency)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) createSharedLink(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		StartDate        string `json:"start_date"`
		EndDate          string `json:"end_date"`
		ExpiryDays       int    `json:"expiry_days"`
		ShowIncome       bool   `json:"show_income"`
		ShowSummary      bool   `json:"show_summary"`
		ShowStackedChart bool   `json:"show_stacked_chart"`
		DisplayCurrency  string `json:"display_currency"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	link, err := h.reports.CreateLink(r.Context(), owner, services.LinkInput{
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		ExpiryDays:       req.ExpiryDays,
		ShowIncome:       req.ShowIncome,
		ShowSummary:      req.ShowSummary,
		ShowStackedChart: req.ShowStackedChart,
		DisplayCurrency:  core.ParseDisplayCurrency(req.DisplayCurrency),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (h *Handler) listSharedLinks(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	links, err := h.reports.ListLinks(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

func (h *Handler) deleteSharedLink(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.reports.DeleteLink(r.Context(), r.PathValue("token"), owner); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req struct {
		DisplayName string `json:"display_name"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.catalog.SetDisplayName(r.Context(), owner, req.DisplayName); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getExchangeRate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" {
		writeError(w, r, &core.ValidationError{Field: "from", Message: "from is required"})
		return
	}
	if to == "" {
		to = core.HomeCurrency
	}
	rate, err := h.resolver.Resolve(r.Context(), from, to, q.Get("date"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rate": rate.Rate, "date": rate.Date})
}

// getSharedReport is the only endpoint reachable without the owner
// header. The token alone authorizes the redacted read.
func (h *Handler) getSharedReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.BuildShared(r.Context(), r.PathValue("token"), h.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
