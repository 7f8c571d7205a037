// Package validation checks handler and service input with
// go-playground/validator and reports failures as INVALID_INPUT AppErrors
// carrying per-field details.
//
//	type heroInput struct {
//	    Name string `json:"name" validate:"notblank,max=64"`
//	}
//	err := validation.Validate(in)
//	err = validation.SessionID(id)
package validation
