package log

// Common field names for structured logging.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldPeriod        = "period"
	FieldYear          = "year"
	FieldAmountCents   = "amount_cents"
	FieldCategory      = "category"
	FieldProject       = "project"
	FieldRowsDropped   = "rows_dropped"
	FieldRowsParsed    = "rows_parsed"
	FieldSnapshotVer   = "snapshot_version"
)

// Components defines standard component names.
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentHistorical = "historical"
	ComponentDashboard  = "dashboard"
	ComponentExport     = "export"
)

// Operations defines standard operation names.
const (
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpToggle  = "toggle_status"
	OpPayment = "register_payment"
	OpNote    = "add_note"
	OpFetch   = "fetch"
	OpExport  = "export"
)
