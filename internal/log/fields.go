package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldSessionID  = "session_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldMonths     = "months"
	FieldFirstMonth = "first_month"
	FieldLastMonth  = "last_month"
	FieldAccrual    = "monthly_accrual"
	FieldTotalPaid  = "total_paid"
	FieldRemaining  = "remaining_balance"
	FieldFormat     = "format"
	FieldFile       = "file"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentHTTP   = "http"
	ComponentLedger = "ledger"
	ComponentCache  = "cache"
	ComponentCLI    = "cli"
	ComponentTrace  = "trace"
)

// Operations defines standard operation names
const (
	OpOpen      = "open"
	OpGenerate  = "generate"
	OpPayments  = "payments"
	OpView      = "view"
	OpExport    = "export"
	OpRender    = "render"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
	OpCleanup   = "cleanup"
	OpParseForm = "parse_form"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithSession(sessionID string) LogFields {
	f[FieldSessionID] = sessionID
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithLedger adds the range and totals of a generated ledger
func (f LogFields) WithLedger(months int, first, last, accrual, totalPaid, remaining string) LogFields {
	f[FieldMonths] = months
	if months > 0 {
		f[FieldFirstMonth] = first
		f[FieldLastMonth] = last
	}
	f[FieldAccrual] = accrual
	f[FieldTotalPaid] = totalPaid
	f[FieldRemaining] = remaining
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	return f
}

// ToSlice converts LogFields to a slice for slog. A component key is
// dropped because Logger adds its own.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		if k == FieldComponent {
			continue
		}
		slice = append(slice, k, v)
	}
	return slice
}
