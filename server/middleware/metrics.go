package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/heroes/observability"
)

// Metrics records request counters and latency. A nil m records nothing.
func Metrics(m *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.RecordRequestStart(r.Context())
			sw := newStatusWriter(w)
			defer func() {
				m.RecordRequestEnd(r.Context(), r.URL.Path, r.Method, sw.code(), time.Since(start))
			}()
			next.ServeHTTP(sw, r)
		})
	}
}
