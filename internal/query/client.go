package query

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/zjrosen/signup/internal/log"
	"github.com/zjrosen/signup/internal/pubsub"
)

// DefaultGCTime is how long an unobserved entry is kept.
const DefaultGCTime = 5 * time.Minute

// ErrClosed is returned by fetches and mutations after Client.Close.
var ErrClosed = errors.New("query client closed")

// Options configures a Client.
type Options struct {
	// GCTime is how long entries without observers are kept. Zero means DefaultGCTime.
	GCTime time.Duration
	// Now is the clock used for UpdatedAt. Nil means time.Now.
	Now func() time.Time
}

// Client owns every cache entry and mutation of an application. Create one
// at the application root and pass it to the bindings that need it.
type Client struct {
	mu        sync.Mutex
	store     *store
	mutations []mutationSnapshotter
	group     singleflight.Group
	broker    *pubsub.Broker[Event]
	now       func() time.Time
	closed    bool
}

// NewClient creates an empty cache.
func NewClient(opts Options) *Client {
	gc := opts.GCTime
	if gc <= 0 {
		gc = DefaultGCTime
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		store:  newStore(gc),
		broker: pubsub.NewBroker[Event](),
		now:    now,
	}
}

// Subscribe returns a channel of cache events that closes with ctx.
func (c *Client) Subscribe(ctx context.Context) <-chan pubsub.Event[Event] {
	return c.broker.Subscribe(ctx)
}

// Listen subscribes for the lifetime of ctx and returns a Bubble Tea listener.
func (c *Client) Listen(ctx context.Context) *Listener {
	return pubsub.NewContinuousListener[Event](ctx, c.broker)
}

// Close drops every entry and closes all subscriptions. Fetches and
// mutations started afterwards fail with ErrClosed.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.store.flush()
	c.mu.Unlock()

	c.broker.Close()
}

// Invalidate marks every entry matching filter as stale and publishes one
// EventInvalidated per key. It returns the keys it invalidated.
func (c *Client) Invalidate(filter Key) []Key {
	c.mu.Lock()
	var keys []Key
	for _, e := range c.store.all() {
		if !Matches(e.key, filter) {
			continue
		}
		e.stale = true
		e.gen++
		keys = append(keys, e.key)
	}
	c.mu.Unlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	log.Debug(log.CatCache, "invalidate", "filter", filter, "matched", len(keys))
	for _, k := range keys {
		c.publish(Event{Kind: EventInvalidated, Key: k})
	}
	return keys
}

func (c *Client) publish(ev Event) {
	c.broker.Publish(pubsub.UpdatedEvent, ev)
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// observe registers interest in key so it is never garbage collected.
func (c *Client) observe(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.store.getOrCreate(key)
	e.observers++
	c.store.put(e)
}

func (c *Client) unobserve(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.store.get(key)
	if !ok {
		return
	}
	if e.observers > 0 {
		e.observers--
	}
	c.store.put(e)
}

// fetch runs fn for key, sharing one in-flight call between concurrent
// callers. If the key is invalidated while the shared call is in flight the
// result is considered stale and fetched once more.
func (c *Client) fetch(ctx context.Context, key Key, fn func(context.Context) (any, error)) (any, error) {
	for attempt := 0; ; attempt++ {
		if c.isClosed() {
			return nil, ErrClosed
		}

		v, err, shared := c.group.Do(key.String(), func() (any, error) {
			gen := c.beginFetch(key)
			data, err := fn(ctx)
			c.endFetch(key, gen, data, err)
			return data, err
		})
		if shared {
			log.Debug(log.CatCache, "fetch coalesced", "key", key)
		}

		if err != nil || attempt > 0 || !c.staleAfterFetch(key) {
			return v, err
		}
		log.Debug(log.CatCache, "invalidated during fetch, refetching", "key", key)
	}
}

func (c *Client) beginFetch(key Key) uint64 {
	c.mu.Lock()
	e := c.store.getOrCreate(key)
	e.fetching = true
	if e.status != StatusSuccess {
		e.status = StatusLoading
	}
	gen := e.gen
	status := e.status
	c.store.put(e)
	c.mu.Unlock()

	c.publish(Event{Kind: EventFetching, Key: key, Status: status})
	return gen
}

func (c *Client) endFetch(key Key, gen uint64, data any, err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	e := c.store.getOrCreate(key)
	e.fetching = false
	if err != nil {
		e.err = err
		e.status = StatusError
	} else {
		e.data = data
		e.err = nil
		e.status = StatusSuccess
		e.updatedAt = c.now()
		if e.gen == gen {
			e.stale = false
		}
	}
	status := e.status
	c.store.put(e)
	c.mu.Unlock()

	if err != nil {
		log.ErrorErr(log.CatCache, "fetch failed", err, "key", key)
	}
	c.publish(Event{Kind: EventFetched, Key: key, Status: status})
}

func (c *Client) staleAfterFetch(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.store.get(key)
	return ok && e.stale
}

// entrySnapshot copies the entry for key; ok is false when there is none.
func (c *Client) entrySnapshot(key Key) (entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.store.get(key)
	if !ok {
		return entry{}, false
	}
	return *e, true
}

func (c *Client) registerMutation(m mutationSnapshotter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mutations = append(c.mutations, m)
}

// EntrySnapshot describes one cached query.
type EntrySnapshot struct {
	Key       Key
	Status    Status
	Fetching  bool
	Stale     bool
	Observers int
	UpdatedAt time.Time
	Err       error
	Data      any
}

// MutationSnapshot describes one mutation binding.
type MutationSnapshot struct {
	Key       Key
	Status    Status
	Err       error
	UpdatedAt time.Time
}

// Snapshot is a point-in-time view of the whole cache, sorted by key.
type Snapshot struct {
	Entries   []EntrySnapshot
	Mutations []MutationSnapshot
	// Listeners is the number of live event subscriptions.
	Listeners int
}

// Snapshot copies the current cache state.
func (c *Client) Snapshot() Snapshot {
	c.mu.Lock()
	var snap Snapshot
	for _, e := range c.store.all() {
		snap.Entries = append(snap.Entries, EntrySnapshot{
			Key:       e.key,
			Status:    e.status,
			Fetching:  e.fetching,
			Stale:     e.stale,
			Observers: e.observers,
			UpdatedAt: e.updatedAt,
			Err:       e.err,
			Data:      e.data,
		})
	}
	mutations := append([]mutationSnapshotter(nil), c.mutations...)
	c.mu.Unlock()

	for _, m := range mutations {
		snap.Mutations = append(snap.Mutations, m.snapshot())
	}

	snap.Listeners = c.broker.SubscriberCount()

	sort.Slice(snap.Entries, func(i, j int) bool {
		return snap.Entries[i].Key.String() < snap.Entries[j].Key.String()
	})
	sort.SliceStable(snap.Mutations, func(i, j int) bool {
		return snap.Mutations[i].Key.String() < snap.Mutations[j].Key.String()
	})
	return snap
}
