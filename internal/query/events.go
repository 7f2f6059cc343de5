package query

import (
	"github.com/zjrosen/signup/internal/pubsub"
)

// EventKind says what changed in the cache.
type EventKind int

const (
	// EventFetching is published when a fetch for Key starts.
	EventFetching EventKind = iota
	// EventFetched is published when a fetch for Key finishes, successfully or not.
	EventFetched
	// EventInvalidated is published for each key marked stale by Invalidate.
	// Observers of Key are expected to re-fetch.
	EventInvalidated
	// EventMutationChanged is published whenever a mutation changes status.
	EventMutationChanged
)

func (k EventKind) String() string {
	switch k {
	case EventFetching:
		return "fetching"
	case EventFetched:
		return "fetched"
	case EventInvalidated:
		return "invalidated"
	case EventMutationChanged:
		return "mutation"
	default:
		return "unknown"
	}
}

// Event describes one cache change.
type Event struct {
	Kind   EventKind
	Key    Key
	Status Status
}

// EventMsg is the tea.Msg delivered by a Listener.
type EventMsg = pubsub.Event[Event]

// Listener delivers cache events into a Bubble Tea update loop.
type Listener = pubsub.ContinuousListener[Event]
