package query

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// QueryState is what an observer renders. Data is retained from the last
// successful fetch while a refetch is running or after it fails.
type QueryState[T any] struct {
	Data      T
	Err       error
	Status    Status
	Fetching  bool
	Stale     bool
	UpdatedAt time.Time
}

// Loading reports whether the query has never succeeded and is fetching.
func (s QueryState[T]) Loading() bool {
	return s.Status == StatusLoading
}

// Query binds one observer to a cache key.
type Query[T any] struct {
	client *Client
	key    Key
	fetch  func(context.Context) (T, error)

	once sync.Once
}

// NewQuery registers an observer for key. Call Close when the observer goes
// away so the entry can be garbage collected.
func NewQuery[T any](client *Client, key Key, fetch func(context.Context) (T, error)) *Query[T] {
	client.observe(key)
	return &Query[T]{client: client, key: key, fetch: fetch}
}

// Key returns the cache key the query observes.
func (q *Query[T]) Key() Key {
	return q.key
}

// Fetch loads the key, sharing any fetch already in flight for it.
func (q *Query[T]) Fetch(ctx context.Context) (T, error) {
	v, err := q.client.fetch(ctx, q.key, func(ctx context.Context) (any, error) {
		return q.fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	data, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("query %s: unexpected data type %T", q.key, v)
	}
	return data, nil
}

// State returns the current state of the key.
func (q *Query[T]) State() QueryState[T] {
	e, ok := q.client.entrySnapshot(q.key)
	if !ok {
		return QueryState[T]{Status: StatusIdle}
	}
	st := QueryState[T]{
		Err:       e.err,
		Status:    e.status,
		Fetching:  e.fetching,
		Stale:     e.stale,
		UpdatedAt: e.updatedAt,
	}
	if data, ok := e.data.(T); ok {
		st.Data = data
	}
	return st
}

// Close releases the observer. It is safe to call more than once.
func (q *Query[T]) Close() {
	q.once.Do(func() {
		q.client.unobserve(q.key)
	})
}
