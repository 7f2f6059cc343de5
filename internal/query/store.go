package query

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/signup/internal/log"
)

// entry is the cached state of one query key. Fields are guarded by Client.mu.
type entry struct {
	key       Key
	data      any
	err       error
	status    Status
	fetching  bool
	stale     bool
	gen       uint64 // bumped by every invalidation
	updatedAt time.Time
	observers int
}

// store keeps entries in go-cache. Observed entries never expire; an entry
// nobody observes is dropped after gcTime.
type store struct {
	cache  *gocache.Cache
	gcTime time.Duration
}

func newStore(gcTime time.Duration) *store {
	return &store{
		cache:  gocache.New(gocache.NoExpiration, gcTime),
		gcTime: gcTime,
	}
}

func (s *store) get(key Key) (*entry, bool) {
	v, found := s.cache.Get(key.String())
	if !found {
		return nil, false
	}
	e, ok := v.(*entry)
	if !ok {
		log.Error(log.CatCache, "wrong type in query store", "key", key)
		return nil, false
	}
	return e, true
}

// getOrCreate returns the entry for key, creating an idle one if needed.
func (s *store) getOrCreate(key Key) *entry {
	if e, ok := s.get(key); ok {
		return e
	}
	e := &entry{key: key, status: StatusIdle}
	s.put(e)
	return e
}

// put (re)stores e with an expiration derived from its observer count.
func (s *store) put(e *entry) {
	ttl := gocache.NoExpiration
	if e.observers <= 0 {
		ttl = s.gcTime
	}
	s.cache.Set(e.key.String(), e, ttl)
}

func (s *store) all() []*entry {
	items := s.cache.Items()
	out := make([]*entry, 0, len(items))
	for _, item := range items {
		if e, ok := item.Object.(*entry); ok {
			out = append(out, e)
		}
	}
	return out
}

func (s *store) flush() {
	s.cache.Flush()
}
