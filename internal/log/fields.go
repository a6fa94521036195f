package log

// Shared field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status"
	FieldDuration   = "duration_ms"
	FieldError      = "error"

	FieldUserID      = "user_id"
	FieldExpenseID   = "expense_id"
	FieldCategory    = "category"
	FieldAmountCents = "amount_cents"
	FieldEventType   = "event_type"
	FieldBackend     = "backend"
	FieldMonth       = "month"
	FieldYear        = "year"
)

// Standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentAuth    = "auth"
	ComponentStore   = "store"
	ComponentBackend = "backend"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
)
