package errors

import stderrors "errors"

// LookupError wraps any failure of a hero lookup for query: transport
// errors, non-2xx answers and undecodable bodies all end up here.
func LookupError(query string, cause error) *AppError {
	return newf(ErrCodeLookupFailed, []any{"query", query}, "Hero lookup failed.").WithCause(cause)
}

// IsLookupError reports whether err (or anything it wraps) is a lookup failure.
func IsLookupError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == ErrCodeLookupFailed
}

// HTTPStatusOf returns the HTTP status carried by err, 500 when err is not
// an AppError.
func HTTPStatusOf(err error) int {
	if appErr, ok := AsAppError(err); ok && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return StatusFor(ErrCodeInternal)
}
