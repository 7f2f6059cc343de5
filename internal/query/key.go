// Package query is a small client-side query/mutation cache.
//
// Reads are Query bindings keyed by (tag, scope); writes are Mutation
// bindings with idle/loading/success/error status. A successful mutation
// invalidates matching queries through Client.Invalidate, observers are told
// via Event and re-fetch. Concurrent fetches of one key share a single
// request.
package query

// Tag names an operation.
type Tag string

const (
	TagGetRegistrations   Tag = "get-registrations"
	TagCreateRegistration Tag = "create-registration"
	TagDeleteRegistration Tag = "delete-registration"
)

// Key identifies a cache entry: an operation tag and a scope, usually the
// tenant identifier.
type Key struct {
	Tag   Tag
	Scope string
}

func (k Key) String() string {
	if k.Scope == "" {
		return string(k.Tag)
	}
	return string(k.Tag) + "/" + k.Scope
}

// Matches reports whether key is selected by filter. A filter with an empty
// scope selects every scope of its tag.
func Matches(key, filter Key) bool {
	if key.Tag != filter.Tag {
		return false
	}
	return filter.Scope == "" || filter.Scope == key.Scope
}

// Status is the lifecycle of a query or mutation.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}
