package logger

import "time"

// Field keys shared by every log line the service writes.
const (
	FieldComponent  = "component"
	FieldTraceID    = "trace_id"
	FieldSpanID     = "span_id"
	FieldRequestID  = "request_id"
	FieldSessionID  = "session_id"
	FieldOperation  = "operation"
	FieldStatus     = "status"
	FieldError      = "error"
	FieldDuration   = "duration_ms"
	FieldQuery      = "query"
	FieldGeneration = "generation"
	FieldHeroID     = "hero_id"
	FieldCount      = "count"
)

// Fields pairs up alternating keys and values. Pairs with a non-string
// key and a trailing odd value are dropped.
//
//	log.Info("lookup done", logger.Fields(logger.FieldQuery, "mag", logger.FieldCount, 2))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 1; i < len(kvs); i += 2 {
		if key, ok := kvs[i-1].(string); ok {
			m[key] = kvs[i]
		}
	}
	return m
}

func ErrorFields(op string, err error) map[string]any {
	return MergeWithError(Fields(FieldOperation, op), err)
}

func DurationFields(op string, d time.Duration) map[string]any {
	return MergeWithDuration(Fields(FieldOperation, op), d)
}

// QueryFields identifies one dispatched search query.
func QueryFields(query string, generation uint64) map[string]any {
	return Fields(FieldQuery, query, FieldGeneration, generation)
}

// MergeWithError sets the error field on fields, allocating when nil.
func MergeWithError(fields map[string]any, err error) map[string]any {
	return set(fields, FieldError, err.Error())
}

// MergeWithDuration sets the duration field in milliseconds.
func MergeWithDuration(fields map[string]any, d time.Duration) map[string]any {
	return set(fields, FieldDuration, d.Milliseconds())
}

func set(fields map[string]any, key string, value any) map[string]any {
	if fields == nil {
		fields = make(map[string]any, 1)
	}
	fields[key] = value
	return fields
}
