package log

import (
	"log/slog"
	"net/http"
)

// Attribute keys shared by every component.
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
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldTransactionID   = "transaction_id"
	FieldTransactionType = "transaction_type"
	FieldAmount          = "amount"
	FieldCategory        = "category"
	FieldDate            = "date"
	FieldSource          = "source"

	FieldSegmentID = "segment_id"
	FieldContextID = "context_id"
	FieldIntent    = "intent"
	FieldIsFinal   = "is_final"
	FieldEntity    = "entity"
)

const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentTracker  = "tracker"
	ComponentVoice    = "voice"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentCharts   = "charts"
	ComponentCache    = "cache"
	ComponentSecurity = "security"
	ComponentBackend  = "backend"
)

const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpReset    = "reset"
	OpParse    = "parse"
	OpRender   = "render"
	OpConsume  = "consume"
	OpPublish  = "publish"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields collects attributes in the order they were added, so related
// keys stay together in text output.
type LogFields struct {
	attrs []slog.Attr
}

func NewFields() *LogFields {
	return &LogFields{}
}

// Add appends one attribute. Empty keys are ignored.
func (f *LogFields) Add(key string, value any) *LogFields {
	if key != "" {
		f.attrs = append(f.attrs, slog.Any(key, value))
	}
	return f
}

func (f *LogFields) WithRequestID(requestID string) *LogFields {
	return f.Add(FieldRequestID, requestID)
}

func (f *LogFields) WithClientIP(ip string) *LogFields {
	return f.Add(FieldClientIP, ip)
}

// WithError records err's message; a nil err adds nothing.
func (f *LogFields) WithError(err error) *LogFields {
	if err == nil {
		return f
	}
	return f.Add(FieldError, err.Error())
}

func (f *LogFields) WithOperation(op string) *LogFields {
	return f.Add(FieldOperation, op)
}

func (f *LogFields) WithTransaction(id, txType, amount, category, date string) *LogFields {
	return f.Add(FieldTransactionID, id).
		Add(FieldTransactionType, txType).
		Add(FieldAmount, amount).
		Add(FieldCategory, category).
		Add(FieldDate, date)
}

func (f *LogFields) WithSegment(id int, contextID, intent string, isFinal bool) *LogFields {
	return f.Add(FieldSegmentID, id).
		Add(FieldContextID, contextID).
		Add(FieldIntent, intent).
		Add(FieldIsFinal, isFinal)
}

// WithHTTPRequest records the request line. Empty query and agent values are skipped.
func (f *LogFields) WithHTTPRequest(r *http.Request) *LogFields {
	f.Add(FieldMethod, r.Method).Add(FieldPath, r.URL.Path)
	if r.URL.RawQuery != "" {
		f.Add(FieldQuery, r.URL.RawQuery)
	}
	if ua := r.UserAgent(); ua != "" {
		f.Add(FieldUserAgent, ua)
	}
	return f
}

func (f *LogFields) WithHTTPResponse(statusCode int, durationMs int64) *LogFields {
	return f.Add(FieldStatusCode, statusCode).Add(FieldDuration, durationMs)
}

// ToSlice returns the attributes as slog arguments.
func (f *LogFields) ToSlice() []any {
	out := make([]any, len(f.attrs))
	for i, a := range f.attrs {
		out[i] = a
	}
	return out
}

// Len reports how many attributes were collected.
func (f *LogFields) Len() int { return len(f.attrs) }

// Get returns the value stored under key, if any.
func (f *LogFields) Get(key string) (any, bool) {
	for _, a := range f.attrs {
		if a.Key == key {
			return a.Value.Any(), true
		}
	}
	return nil, false
}
