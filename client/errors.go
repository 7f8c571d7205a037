package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/kbukum/heroes/errors"
)

// ErrorCode says which way a backend call failed.
type ErrorCode int

const (
	ErrCodeTimeout ErrorCode = iota
	ErrCodeConnection
	ErrCodeNotFound
	// ErrCodeValidation covers 4xx answers and requests that could not be built.
	ErrCodeValidation
	ErrCodeServer
	ErrCodeDecode
)

var codeNames = [...]string{"timeout", "connection", "not_found", "validation", "server", "decode"}

func (c ErrorCode) String() string {
	if c < 0 || int(c) >= len(codeNames) {
		return "unknown"
	}
	return codeNames[c]
}

// Error is a failed backend call. StatusCode is zero when no response
// arrived; Message is taken from the backend's error body when it has one.
type Error struct {
	StatusCode int
	Code       ErrorCode
	Message    string
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("client: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("client: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func wrapped(code ErrorCode, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Err: err}
}

func NewTimeoutError(err error) *Error    { return wrapped(ErrCodeTimeout, err) }
func NewConnectionError(err error) *Error { return wrapped(ErrCodeConnection, err) }

func NewValidationError(msg string) *Error {
	return &Error{Code: ErrCodeValidation, Message: msg}
}

func NewDecodeError(statusCode int, body []byte, err error) *Error {
	e := wrapped(ErrCodeDecode, err)
	e.StatusCode, e.Body = statusCode, body
	return e
}

// ClassifyStatusCode returns nil for 2xx and a classified *Error otherwise.
func ClassifyStatusCode(statusCode int, body []byte) *Error {
	var code ErrorCode
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusNotFound:
		code = ErrCodeNotFound
	case statusCode >= 400 && statusCode < 500:
		code = ErrCodeValidation
	default:
		code = ErrCodeServer
	}
	return &Error{StatusCode: statusCode, Code: code, Message: bodyMessage(statusCode, body), Body: body}
}

func bodyMessage(statusCode int, body []byte) string {
	var resp apperrors.ErrorResponse
	if json.Unmarshal(body, &resp) == nil && resp.Error.Message != "" {
		return resp.Error.Message
	}
	return fmt.Sprintf("HTTP %d", statusCode)
}

// AppError translates e into the service error taxonomy with e as the cause.
func (e *Error) AppError() *apperrors.AppError {
	const backend = "heroes backend"
	var appErr *apperrors.AppError
	switch e.Code {
	case ErrCodeTimeout:
		appErr = apperrors.Timeout(backend + " request")
	case ErrCodeConnection:
		appErr = apperrors.ConnectionFailed(backend)
	case ErrCodeNotFound:
		appErr = apperrors.New(apperrors.ErrCodeNotFound, e.Message)
	case ErrCodeValidation:
		appErr = apperrors.Validation(e.Message)
	default:
		appErr = apperrors.ExternalServiceError(backend, nil)
	}
	return appErr.WithCause(e)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

func IsTimeout(err error) bool     { return hasCode(err, ErrCodeTimeout) }
func IsConnection(err error) bool  { return hasCode(err, ErrCodeConnection) }
func IsNotFound(err error) bool    { return hasCode(err, ErrCodeNotFound) }
func IsServerError(err error) bool { return hasCode(err, ErrCodeServer) }
