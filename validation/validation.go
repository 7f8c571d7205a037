package validation

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/heroes/errors"
)

// FieldError is one rejected field, listed under the "fields" detail.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// sessionIDPattern allows 1 to 64 letters, digits, dashes or underscores,
// which covers UUIDs.
var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

var engine = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return toSnakeCase(f.Name)
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("session_id", func(fl validator.FieldLevel) bool {
		return sessionIDPattern.MatchString(fl.Field().String())
	})
	return v
})

// Validate checks s against its `validate` struct tags. Field names in the
// error follow the json tags. Besides the built-in tags, notblank rejects
// whitespace-only strings and session_id enforces the session id format.
func Validate(s any) error {
	return report(engine().Struct(s), "")
}

// Var checks a single value against tag, reporting failures under field.
func Var(field string, value any, tag string) error {
	return report(engine().Var(value, tag), field)
}

// SessionID rejects anything that is not a usable search session id.
func SessionID(value string) error {
	return Var("session", value, "notblank,session_id")
}

// Required rejects a blank value.
func Required(field, value string) error {
	return Var(field, value, "notblank")
}

func report(err error, field string) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation("validation failed")
	}
	fields := make([]FieldError, len(verrs))
	parts := make([]string, len(verrs))
	for i, e := range verrs {
		name := field
		if name == "" {
			name = e.Field()
		}
		fields[i] = FieldError{Field: name, Message: describe(e)}
		parts[i] = name + ": " + fields[i].Message
	}
	return errors.Validation(strings.Join(parts, "; ")).WithDetail("fields", fields)
}

func describe(e validator.FieldError) string {
	unit := ""
	if e.Kind() == reflect.String {
		unit = " characters"
	}
	switch e.Tag() {
	case "required", "notblank":
		return "is required"
	case "min":
		return "must be at least " + e.Param() + unit
	case "max":
		return "must be at most " + e.Param() + unit
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "session_id":
		return "does not match required format"
	default:
		return "is invalid"
	}
}

// toSnakeCase lowercases s and puts an underscore before every inner capital.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		lower := r >= 'A' && r <= 'Z'
		if lower {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
