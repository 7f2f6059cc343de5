package registration

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field names a validated form field by its wire name.
type Field string

const (
	FieldUsername        Field = "username"
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirmPassword"
	FieldEmail           Field = "email"
	FieldPhone           Field = "phone"
	FieldNewsletter      Field = "newsletter"
)

// FieldErrors maps a field to the message shown under it.
// A nil or empty map means the input is valid.
type FieldErrors map[Field]string

// Empty reports whether there are no errors.
func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

// Error implements error so FieldErrors can travel as one.
func (e FieldErrors) Error() string {
	order := []Field{FieldUsername, FieldPassword, FieldConfirmPassword, FieldEmail, FieldPhone, FieldNewsletter}
	var parts []string
	for _, f := range order {
		if msg, ok := e[f]; ok {
			parts = append(parts, string(f)+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}

// messages is keyed by field then by the failing validator tag.
var messages = map[Field]map[string]string{
	FieldUsername: {
		"required": "Username is required.",
		"min":      "Username should be 5 chars min.",
	},
	FieldPassword: {
		"required": "Password is required.",
		"min":      "Password should be 8 chars min.",
	},
	FieldConfirmPassword: {
		"eqfield": "Passwords must match.",
	},
	FieldEmail: {
		"required": "Email is required.",
		"email":    "Invalid email format.",
	},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks in against the registration schema and returns one
// message per invalid field.
func Validate(in Input) FieldErrors {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Only InvalidValidationError lands here, which a struct value never triggers.
		return FieldErrors{FieldUsername: err.Error()}
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := Field(fe.Field())
		if _, seen := out[field]; seen {
			continue
		}
		msg, ok := messages[field][fe.Tag()]
		if !ok {
			msg = "Invalid value."
		}
		out[field] = msg
	}
	return out
}
