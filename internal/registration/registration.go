// Package registration defines the registration record exchanged with the
// remote registration resource, the create payload and its validation rules.
package registration

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Registration is a record as returned by the remote resource.
// ID and Text are assigned by the server and never set by the client.
type Registration struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	Password        string     `json:"password,omitempty"`
	ConfirmPassword string     `json:"confirmPassword,omitempty"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Newsletter      Newsletter `json:"newsletter"`
	Text            string     `json:"text"`
}

// Input is the create payload: every field of Registration except ID and Text.
type Input struct {
	Username        string `json:"username" validate:"required,min=5"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone"`
	Newsletter      bool   `json:"newsletter"`
}

// InitialInput returns the values a fresh or reset form starts with.
func InitialInput() Input {
	return Input{Newsletter: true}
}

// Ack is the acknowledgement returned by a successful create.
type Ack struct {
	Message string `json:"message"`
}

// Newsletter holds the raw JSON newsletter value. The resource normally
// stores a boolean but nothing stops it from holding anything else, and
// non-boolean values are shown as they are.
type Newsletter struct {
	raw json.RawMessage
}

// NewsletterOf wraps a boolean.
func NewsletterOf(subscribed bool) Newsletter {
	return Newsletter{raw: json.RawMessage(strconv.FormatBool(subscribed))}
}

// Bool reports the boolean value and whether the raw value was a boolean.
func (n Newsletter) Bool() (value, ok bool) {
	switch string(bytes.TrimSpace(n.raw)) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// Cell renders the value for display: "yes"/"no" for booleans, strings
// unquoted, null or missing as empty, anything else verbatim.
func (n Newsletter) Cell() string {
	if v, ok := n.Bool(); ok {
		if v {
			return "yes"
		}
		return "no"
	}

	trimmed := bytes.TrimSpace(n.raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}

// MarshalJSON implements json.Marshaler.
func (n Newsletter) MarshalJSON() ([]byte, error) {
	if len(bytes.TrimSpace(n.raw)) == 0 {
		return []byte("null"), nil
	}
	return n.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Newsletter) UnmarshalJSON(data []byte) error {
	n.raw = append(n.raw[:0], data...)
	return nil
}
