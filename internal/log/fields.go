package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldQuestion   = "question"
	FieldClause     = "clause"
	FieldBranch     = "branch"
	FieldCustomer   = "customer"
	FieldDivision   = "division"
	FieldOwner      = "account_owner"
	FieldRows       = "rows"
	FieldVersion    = "snapshot_version"
	FieldSource     = "source"
	FieldCacheHit   = "cache_hit"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentBackend   = "backend"
	ComponentTemplate  = "template"
	ComponentResolver  = "resolver"
	ComponentRouter    = "router"
	ComponentLoader    = "loader"
	ComponentSnapshot  = "snapshot"
	ComponentImport    = "import"
)

// Operations defines standard operation names
const (
	OpRead     = "read"
	OpAnswer   = "answer"
	OpResolve  = "resolve"
	OpReload   = "reload"
	OpImport   = "import"
	OpValidate = "validate"
	OpParse    = "parse"
	OpRender   = "render"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithRequestID adds request ID field
func (f LogFields) WithRequestID(requestID string) LogFields {
	if requestID != "" {
		f[FieldRequestID] = requestID
	}
	return f
}

// WithClientIP adds client IP field
func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithResolution adds the parameters resolved for one clause. Empty values
// are left out.
func (f LogFields) WithResolution(branch, customer, division, owner string, month, year int) LogFields {
	f[FieldBranch] = branch
	if customer != "" {
		f[FieldCustomer] = customer
	}
	if division != "" {
		f[FieldDivision] = division
	}
	if owner != "" {
		f[FieldOwner] = owner
	}
	if month != 0 {
		f[FieldMonth] = month
	}
	if year != 0 {
		f[FieldYear] = year
	}
	return f
}

// WithSnapshot adds snapshot fields
func (f LogFields) WithSnapshot(version uint64, rows int, source string) LogFields {
	f[FieldVersion] = version
	f[FieldRows] = rows
	if source != "" {
		f[FieldSource] = source
	}
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	if query != "" {
		f[FieldQuery] = query
	}
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
