package logger

import "context"

type ctxKey int

const (
	traceIDKey ctxKey = iota
	requestIDKey
	sessionIDKey
)

// ctxFields lists, in output order, the context values WithContext copies
// into log lines.
var ctxFields = []struct {
	key   ctxKey
	field string
}{
	{traceIDKey, FieldTraceID},
	{requestIDKey, FieldRequestID},
	{sessionIDKey, FieldSessionID},
}

func ContextWithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the id stored by ContextWithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ContextWithSessionID stores the search session a request belongs to.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// WithContext copies the trace, request and session ids found in ctx into
// the returned logger.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	zc := l.zl.With()
	for _, f := range ctxFields {
		if id, ok := ctx.Value(f.key).(string); ok && id != "" {
			zc = zc.Str(f.field, id)
		}
	}
	return l.derive(zc)
}
