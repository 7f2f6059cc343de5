package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/signup/internal/pubsub"
)

func collect(t *testing.T, ch <-chan pubsub.Event[Event], n int) []Event {
	t.Helper()
	var out []Event
	for len(out) < n {
		select {
		case ev, ok := <-ch:
			require.True(t, ok, "event channel closed")
			out = append(out, ev.Payload)
		case <-time.After(time.Second):
			require.Failf(t, "timeout", "got %d of %d events: %v", len(out), n, out)
		}
	}
	return out
}

func kinds(events []Event, kind EventKind) []Key {
	var keys []Key
	for _, ev := range events {
		if ev.Kind == kind {
			keys = append(keys, ev.Key)
		}
	}
	return keys
}

func TestQuery_FetchStoresData(t *testing.T) {
	c := NewClient(Options{})
	defer c.Close()

	q := NewQuery(c, RegistrationsKey("a"), func(context.Context) ([]string, error) {
		return []string{"ann"}, nil
	})
	defer q.Close()

	st := q.State()
	require.Equal(t, StatusIdle, st.Status)
	require.Nil(t, st.Data)

	data, err := q.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"ann"}, data)

	st = q.State()
	require.Equal(t, StatusSuccess, st.Status)
	require.Equal(t, []string{"ann"}, st.Data)
	require.False(t, st.Fetching)
	require.False(t, st.Stale)
	require.False(t, st.UpdatedAt.IsZero())
}

func TestQuery_LoadingOnlyBeforeFirstSuccess(t *testing.T) {
	c := NewClient(Options{})
	defer c.Close()

	release := make(chan struct{})
	started := make(chan struct{}, 2)
	q := NewQuery(c, RegistrationsKey("a"), func(context.Context) (int, error) {
		started <- struct{}{}
		<-release
		return 1, nil
	})
	defer q.Close()

	done := make(chan struct{})
	go func() {
		_, _ = q.Fetch(context.Background())
		close(done)
	}()
	<-started
	require.True(t, q.State().Loading())
	require.True(t, q.State().Fetching)
	release <- struct{}{}
	<-done

	go func() {
		_, _ = q.Fetch(context.Background())
	}()
	<-started
	st := q.State()
	require.False(t, st.Loading(), "refetch keeps success status")
	require.True(t, st.Fetching)
	require.Equal(t, 1, st.Data)
	close(release)
}

func TestQuery_ConcurrentFetchesShareOneCall(t *testing.T) {
	c := NewClient(Options{})
	defer c.Close()

	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})
	q := NewQuery(c, RegistrationsKey("a"), func(context.Context) (int, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return 7, nil
	})
	defer q.Close()

	var wg sync.WaitGroup
	results := make([]int, 3)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = q.Fetch(context.Background())
	}()
	<-started
	for i := 1; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = q.Fetch(context.Background())
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, []int{7, 7, 7}, results)
}

func TestQuery_ErrorRetainsPreviousData(t *testing.T) {
	c := NewClient(Options{})
	defer c.Close()

	fail := false
	boom := errors.New("Internal Server Error")
	q := NewQuery(c, RegistrationsKey("a"), func(context.Context) ([]string, error) {
		if fail {
			return nil, boom
		}
		return []string{"ann"}, nil
	})
	defer q.Close()

	_, err := q.Fetch(context.Background())
	require.NoError(t, err)

	fail = true
	_, err = q.Fetch(context.Background())
	require.ErrorIs(t, err, boom)

	st := q.State()
	require.Equal(t, StatusError, st.Status)
	require.ErrorIs(t, st.Err, boom)
	require.Equal(t, []string{"ann"}, st.Data)
}

func TestClient_InvalidatePublishesPerMatchingKey(t *testing.T) {
	c := NewClient(Options{})
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := NewQuery(c, RegistrationsKey("a"), func(context.Context) (int, error) { return 1, nil })
	b := NewQuery(c, RegistrationsKey("b"), func(context.Context) (int, error) { return 2, nil })
	other := NewQuery(c, Key{Tag: TagDeleteRegistration, Scope: "a"}, func(context.Context) (int, error) { return 3, nil })
	defer a.Close()
	defer b.Close()
	defer other.Close()

	events := c.Subscribe(ctx)

	keys := c.Invalidate(Key{Tag: TagGetRegistrations})
	require.Equal(t, []Key{RegistrationsKey("a"), RegistrationsKey("b")}, keys)

	got := collect(t, events, 2)
	require.ElementsMatch(t, keys, kinds(got, EventInvalidated))

	require.True(t, a.State().Stale)
	require.True(t, b.State().Stale)
	require.False(t, other.State().Stale)

	keys = c.Invalidate(RegistrationsKey("b"))
	require.Equal(t, []Key{RegistrationsKey("b")}, keys)
}

func TestClient_InvalidateDuringFetchRefetches(t *testing.T) {
	c := NewClient(Options{})
	defer c.Close()

	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	q := NewQuery(c, RegistrationsKey("a"), func(context.Context) (int32, error) {
		n := calls.Add(1)
		if n == 1 {
			close(started)
			<-release
		}
		return n, nil
	})
	defer q.Close()

	done := make(chan int32)
	go func() {
		v, _ := q.Fetch(context.Background())
		done <- v
	}()

	<-started
	c.Invalidate(RegistrationsKey("a"))
	close(release)

	require.Equal(t, int32(2), <-done)
	require.Equal(t, int32(2), calls.Load())
	require.False(t, q.State().Stale)
}

func TestClient_UnobservedEntriesExpire(t *testing.T) {
	c := NewClient(Options{GCTime: 20 * time.Millisecond})
	defer c.Close()

	kept := NewQuery(c, RegistrationsKey("kept"), func(context.Context) (int, error) { return 1, nil })
	defer kept.Close()
	dropped := NewQuery(c, RegistrationsKey("dropped"), func(context.Context) (int, error) { return 1, nil })

	_, err := kept.Fetch(context.Background())
	require.NoError(t, err)
	_, err = dropped.Fetch(context.Background())
	require.NoError(t, err)
	dropped.Close()
	dropped.Close()

	require.Eventually(t, func() bool {
		return len(c.Snapshot().Entries) == 1
	}, time.Second, 10*time.Millisecond)

	snap := c.Snapshot()
	require.Equal(t, RegistrationsKey("kept"), snap.Entries[0].Key)
	require.Equal(t, 1, snap.Entries[0].Observers)
}

func TestClient_Close(t *testing.T) {
	c := NewClient(Options{})

	q := NewQuery(c, RegistrationsKey("a"), func(context.Context) (int, error) { return 1, nil })
	m := NewMutation(c, Key{Tag: TagDeleteRegistration}, func(context.Context, string) (int, error) { return 1, nil }, MutationOptions[string, int]{})
	events := c.Subscribe(context.Background())

	c.Close()
	c.Close()

	_, ok := <-events
	require.False(t, ok)

	_, err := q.Fetch(context.Background())
	require.ErrorIs(t, err, ErrClosed)
	_, err = m.Mutate(context.Background(), "1")
	require.ErrorIs(t, err, ErrClosed)
	require.Empty(t, c.Snapshot().Entries)
}

func TestClient_Snapshot(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewClient(Options{Now: func() time.Time { return now }})
	defer c.Close()

	b := NewQuery(c, RegistrationsKey("b"), func(context.Context) (int, error) { return 2, nil })
	a := NewQuery(c, RegistrationsKey("a"), func(context.Context) (int, error) { return 1, nil })
	defer a.Close()
	defer b.Close()
	_, err := a.Fetch(context.Background())
	require.NoError(t, err)

	NewMutation(c, Key{Tag: TagDeleteRegistration, Scope: "a"}, func(context.Context, string) (int, error) { return 0, nil }, MutationOptions[string, int]{})
	NewMutation(c, Key{Tag: TagCreateRegistration, Scope: "a"}, func(context.Context, string) (int, error) { return 0, nil }, MutationOptions[string, int]{})

	snap := c.Snapshot()
	require.Len(t, snap.Entries, 2)
	require.Equal(t, RegistrationsKey("a"), snap.Entries[0].Key)
	require.Equal(t, StatusSuccess, snap.Entries[0].Status)
	require.Equal(t, now, snap.Entries[0].UpdatedAt)
	require.Equal(t, 1, snap.Entries[0].Data)
	require.Equal(t, StatusIdle, snap.Entries[1].Status)

	require.Len(t, snap.Mutations, 2)
	require.Equal(t, TagCreateRegistration, snap.Mutations[0].Key.Tag)
	require.Equal(t, TagDeleteRegistration, snap.Mutations[1].Key.Tag)
	require.Zero(t, snap.Listeners)

	ctx, cancel := context.WithCancel(context.Background())
	c.Subscribe(ctx)
	require.Equal(t, 1, c.Snapshot().Listeners)
	cancel()
	require.Eventually(t, func() bool { return c.Snapshot().Listeners == 0 }, time.Second, 5*time.Millisecond)
}
