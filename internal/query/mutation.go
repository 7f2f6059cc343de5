package query

import (
	"context"
	"sync"
	"time"

	"github.com/zjrosen/signup/internal/log"
)

// MutationState is the observable state of a mutation binding.
type MutationState[R any] struct {
	Status    Status
	Data      R
	Err       error
	UpdatedAt time.Time
}

// Loading reports whether a mutation is in flight.
func (s MutationState[R]) Loading() bool {
	return s.Status == StatusLoading
}

// MutationOptions configures a mutation binding.
type MutationOptions[I, R any] struct {
	// OnSuccess runs after a successful call, before the state becomes
	// StatusSuccess. Use it to invalidate queries.
	OnSuccess func(c *Client, input I, result R)
}

type mutationSnapshotter interface {
	snapshot() MutationSnapshot
}

// Mutation runs a write against the server and tracks its status. Calls to
// Mutate on one binding run one at a time.
type Mutation[I, R any] struct {
	client *Client
	key    Key
	fn     func(context.Context, I) (R, error)
	opts   MutationOptions[I, R]

	run   sync.Mutex
	mu    sync.Mutex
	state MutationState[R]
	gen   uint64 // bumped by Reset
}

// NewMutation creates a mutation binding and registers it with client.
func NewMutation[I, R any](client *Client, key Key, fn func(context.Context, I) (R, error), opts MutationOptions[I, R]) *Mutation[I, R] {
	m := &Mutation[I, R]{client: client, key: key, fn: fn, opts: opts}
	client.registerMutation(m)
	return m
}

// Key returns the mutation key.
func (m *Mutation[I, R]) Key() Key {
	return m.key
}

// Mutate performs the write. The returned error is also recorded in State.
func (m *Mutation[I, R]) Mutate(ctx context.Context, input I) (R, error) {
	m.run.Lock()
	defer m.run.Unlock()

	var zero R
	if m.client.isClosed() {
		return zero, ErrClosed
	}

	gen := m.setLoading()
	result, err := m.fn(ctx, input)
	if err != nil {
		log.ErrorErr(log.CatCache, "mutation failed", err, "key", m.key)
		m.finish(gen, MutationState[R]{Status: StatusError, Err: err})
		return zero, err
	}

	if m.opts.OnSuccess != nil {
		m.opts.OnSuccess(m.client, input, result)
	}
	m.finish(gen, MutationState[R]{Status: StatusSuccess, Data: result})
	return result, nil
}

// State returns the mutation's current state.
func (m *Mutation[I, R]) State() MutationState[R] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Reset returns the mutation to idle. A call still in flight no longer
// updates the state when it completes.
func (m *Mutation[I, R]) Reset() {
	m.mu.Lock()
	m.gen++
	m.state = MutationState[R]{Status: StatusIdle, UpdatedAt: m.client.now()}
	m.mu.Unlock()

	m.client.publish(Event{Kind: EventMutationChanged, Key: m.key, Status: StatusIdle})
}

func (m *Mutation[I, R]) setLoading() uint64 {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.state = MutationState[R]{Status: StatusLoading, Data: m.state.Data, UpdatedAt: m.client.now()}
	m.mu.Unlock()

	m.client.publish(Event{Kind: EventMutationChanged, Key: m.key, Status: StatusLoading})
	return gen
}

func (m *Mutation[I, R]) finish(gen uint64, st MutationState[R]) {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return
	}
	st.UpdatedAt = m.client.now()
	m.state = st
	m.mu.Unlock()

	m.client.publish(Event{Kind: EventMutationChanged, Key: m.key, Status: st.Status})
}

func (m *Mutation[I, R]) snapshot() MutationSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MutationSnapshot{
		Key:       m.key,
		Status:    m.state.Status,
		Err:       m.state.Err,
		UpdatedAt: m.state.UpdatedAt,
	}
}
