// Package errors holds the error type shared by the hero backend, its HTTP
// client and the search pipeline. Each code maps to an HTTP status and a
// retryable flag; ToResponse renders the JSON body clients see.
package errors
