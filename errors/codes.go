package errors

import "net/http"

// ErrorCode is the machine-readable code of an AppError.
type ErrorCode string

const (
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField       ErrorCode = "MISSING_FIELD"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeConnectionFailed   ErrorCode = "CONNECTION_FAILED"
	ErrCodeExternalService    ErrorCode = "EXTERNAL_SERVICE_ERROR"
	// ErrCodeLookupFailed marks a failed hero lookup. The search pipeline
	// replaces it with an empty result instead of ending the stream.
	ErrCodeLookupFailed ErrorCode = "LOOKUP_FAILED"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

type codeTrait struct {
	status    int
	retryable bool
}

var codeTraits = map[ErrorCode]codeTrait{
	ErrCodeNotFound:           {http.StatusNotFound, false},
	ErrCodeInvalidInput:       {http.StatusBadRequest, false},
	ErrCodeMissingField:       {http.StatusBadRequest, false},
	ErrCodeTimeout:            {http.StatusGatewayTimeout, true},
	ErrCodeServiceUnavailable: {http.StatusServiceUnavailable, true},
	ErrCodeConnectionFailed:   {http.StatusServiceUnavailable, true},
	ErrCodeExternalService:    {http.StatusBadGateway, true},
	ErrCodeLookupFailed:       {http.StatusBadGateway, true},
	ErrCodeInternal:           {http.StatusInternalServerError, false},
}

// IsRetryableCode reports whether a request failing with code may succeed
// when repeated.
func IsRetryableCode(code ErrorCode) bool {
	return codeTraits[code].retryable
}

// StatusFor returns the HTTP status for code, 500 for unknown codes.
func StatusFor(code ErrorCode) int {
	if t, ok := codeTraits[code]; ok {
		return t.status
	}
	return http.StatusInternalServerError
}
