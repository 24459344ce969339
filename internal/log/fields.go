package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldOwnerID    = "owner_id"
	FieldCurrency   = "currency"
	FieldRateDate   = "rate_date"
	FieldMonth      = "month"
	FieldCategoryID = "category_id"
	FieldToken      = "token"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentFX      = "fx"
	ComponentLedger  = "ledger"
	ComponentBudget  = "budget"
	ComponentReport  = "report"
	ComponentCatalog = "catalog"
)
