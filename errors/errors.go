package errors

import "fmt"

// AppError is the error type every layer hands to the HTTP surface.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the cause and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets one detail and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates an AppError whose status and retryable flag follow code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: StatusFor(code),
		Retryable:  IsRetryableCode(code),
	}
}

// newf is New with a formatted message and optional key/value details.
func newf(code ErrorCode, kv []any, format string, args ...any) *AppError {
	e := New(code, fmt.Sprintf(format, args...))
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			e.WithDetail(k, kv[i+1])
		}
	}
	return e
}

// NotFound reports a missing hero or search session. An empty id is left
// out of the details.
func NotFound(resource, id string) *AppError {
	e := newf(ErrCodeNotFound, []any{"resource", resource}, "The requested %s was not found.", resource)
	if id != "" {
		e.WithDetail("id", id)
	}
	return e
}

// InvalidInput rejects a malformed field.
func InvalidInput(field, reason string) *AppError {
	var kv []any
	if field != "" {
		kv = []any{"field", field}
	}
	return newf(ErrCodeInvalidInput, kv, "Invalid input: %s", reason)
}

// Validation rejects a request body.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

// MissingField rejects a request without a required field.
func MissingField(field string) *AppError {
	return newf(ErrCodeMissingField, []any{"field", field}, "Missing required field: %s", field)
}

// Timeout reports an operation that ran out of time.
func Timeout(operation string) *AppError {
	return newf(ErrCodeTimeout, []any{"operation", operation}, "%s timed out.", operation)
}

// ServiceUnavailable reports a service that cannot take work right now.
func ServiceUnavailable(service string) *AppError {
	return newf(ErrCodeServiceUnavailable, []any{"service", service}, "The %s is temporarily unavailable.", service)
}

// ConnectionFailed reports an unreachable service.
func ConnectionFailed(service string) *AppError {
	return newf(ErrCodeConnectionFailed, []any{"service", service}, "Unable to connect to %s.", service)
}

// ExternalServiceError reports a failure answer from another service.
func ExternalServiceError(service string, cause error) *AppError {
	return newf(ErrCodeExternalService, []any{"service", service}, "The %s service returned an error.", service).WithCause(cause)
}

// Internal hides cause behind a generic message.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred.").WithCause(cause)
}
