package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/heroes/logger"
)

var probePaths = map[string]bool{
	"/health":  true,
	"/ready":   true,
	"/alive":   true,
	"/metrics": true,
}

// RequestLogger returns middleware that logs every request with method,
// path, status code, and duration. Probe paths are skipped.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if probePaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			fields := logger.DurationFields("http", time.Since(start))
			fields["method"] = r.Method
			fields["path"] = r.URL.Path
			fields[logger.FieldStatus] = sw.code()
			fields["bytes"] = sw.written
			if q := r.URL.RawQuery; q != "" {
				fields["query_string"] = q
			}
			logByStatus(log.WithContext(r.Context()), fields, sw.code())
		})
	}
}

// logByStatus logs request fields at a level derived from the status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
