package log

// Attribute keys shared by every component.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldClientID      = "client_id"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldTransactionID = "transaction_id"
	FieldTitle         = "title"
	FieldAmount        = "amount"
	FieldCategory      = "category"
	FieldPaymentMode   = "payment_mode"
	FieldRowRef        = "row"
	FieldCount         = "count"
)

// Component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentViews     = "views"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentAdvisor   = "advisor"
	ComponentWebsocket = "websocket"
	ComponentBackend   = "backend"
	ComponentLoop      = "loop"
)

// Operation names.
const (
	OpCreate   = "create"
	OpList     = "list"
	OpRefresh  = "refresh"
	OpSeed     = "seed"
	OpSync     = "sync"
	OpValidate = "validate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// Fields accumulates key/value pairs in insertion order, ready to be
// passed to the slog methods.
type Fields []any

func (f Fields) Add(key string, value any) Fields {
	return append(f, key, value)
}

func (f Fields) Error(err error) Fields {
	if err == nil {
		return f
	}
	return append(f, FieldError, err.Error())
}

func (f Fields) Operation(op string) Fields {
	return append(f, FieldOperation, op)
}

// Transaction adds the identifying columns of a stored transaction.
func (f Fields) Transaction(id int64, title, amount, category, paymentMode string) Fields {
	return append(f,
		FieldTransactionID, id,
		FieldTitle, title,
		FieldAmount, amount,
		FieldCategory, category,
		FieldPaymentMode, paymentMode)
}

func (f Fields) Request(method, path, userAgent string) Fields {
	f = append(f, FieldMethod, method, FieldPath, path)
	if userAgent != "" {
		f = append(f, FieldUserAgent, userAgent)
	}
	return f
}

func (f Fields) Response(statusCode int, durationMs int64) Fields {
	return append(f, FieldStatusCode, statusCode, FieldDuration, durationMs)
}
