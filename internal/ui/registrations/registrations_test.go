package registrations

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/signup/internal/pubsub"
	"github.com/zjrosen/signup/internal/query"
	"github.com/zjrosen/signup/internal/registration"
	"github.com/zjrosen/signup/internal/ui/toaster"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	m.Run()
}

type fakeAPI struct {
	mu        sync.Mutex
	regs      []registration.Registration
	deleteErr error
	deletes   int
}

func (f *fakeAPI) List(context.Context, string) ([]registration.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]registration.Registration(nil), f.regs...), nil
}

func (f *fakeAPI) Create(context.Context, string, registration.Input) (registration.Ack, error) {
	return registration.Ack{}, nil
}

func (f *fakeAPI) Delete(_ context.Context, _ string, id string) (registration.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return registration.Registration{}, f.deleteErr
	}
	for i, r := range f.regs {
		if r.ID == id {
			f.regs = append(f.regs[:i:i], f.regs[i+1:]...)
			return r, nil
		}
	}
	return registration.Registration{}, errors.New("Not Found")
}

func run[T any](cmd tea.Cmd) (T, bool) {
	var zero T
	if cmd == nil {
		return zero, false
	}
	switch msg := cmd().(type) {
	case T:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if got, ok := run[T](c); ok {
				return got, true
			}
		}
	}
	return zero, false
}

type fixture struct {
	api    *fakeAPI
	client *query.Client
	list   *query.RegistrationsQuery
	del    *query.DeleteMutation
}

func newFixture(t *testing.T, regs ...registration.Registration) *fixture {
	t.Helper()
	api := &fakeAPI{regs: regs}
	c := query.NewClient(query.Options{})
	t.Cleanup(c.Close)
	return &fixture{
		api:    api,
		client: c,
		list:   query.NewRegistrationsQuery(c, api, "acme"),
		del:    query.NewDeleteMutation(c, api, "acme"),
	}
}

func (f *fixture) table(t *testing.T) Model {
	t.Helper()
	m := New(Config{List: f.list, Delete: f.del}).SetSize(100, 10).Focus()
	fetched, ok := run[FetchedMsg](m.Init())
	require.True(t, ok)
	m, _ = m.Update(fetched)
	return m
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sample() []registration.Registration {
	var odd registration.Newsletter
	_ = json.Unmarshal([]byte(`"weekly"`), &odd)
	return []registration.Registration{
		{ID: "1", Username: "ann", Email: "a@a.com", Phone: "", Newsletter: registration.NewsletterOf(true), Text: "t"},
		{ID: "2", Username: "bob", Email: "b@b.com", Newsletter: registration.NewsletterOf(false), Text: "u"},
		{ID: "3", Username: "cy", Email: "c@c.com", Newsletter: odd, Text: "v"},
	}
}

func TestView_RendersHeadersAndRows(t *testing.T) {
	m := newFixture(t, sample()...).table(t)

	lines := strings.Split(ansi.Strip(zone.Scan(m.View())), "\n")
	require.Contains(t, lines[0], "Name")
	require.Contains(t, lines[0], "Contact Information")
	require.Contains(t, lines[0], "Subscription")
	for _, h := range []string{"Username", "Email", "Phone", "Newsletter", "Text"} {
		require.Contains(t, lines[1], h)
	}

	require.Contains(t, lines[2], "ann")
	require.Contains(t, lines[2], "yes")
	require.Contains(t, lines[2], "[Delete]")
	require.Contains(t, lines[3], "no")
	require.Contains(t, lines[4], "weekly")
	require.Contains(t, lines[len(lines)-1], "3 registrations")
}

func TestInit_StartsSpinnerWithFetch(t *testing.T) {
	f := newFixture(t, sample()...)
	m := New(Config{List: f.list, Delete: f.del})
	require.True(t, m.Loading())

	batch, ok := m.Init()().(tea.BatchMsg)
	require.True(t, ok)
	require.Len(t, batch, 2)

	tick, ok := run[spinner.TickMsg](m.Init())
	require.True(t, ok)
	_, cmd := m.Update(tick)
	require.NotNil(t, cmd, "spinner keeps ticking while the first fetch is pending")

	fetched, ok := run[FetchedMsg](m.Init())
	require.True(t, ok)
	m, _ = m.Update(fetched)
	require.False(t, m.Loading())
	_, cmd = m.Update(tick)
	require.Nil(t, cmd)
}

func TestView_Empty(t *testing.T) {
	m := newFixture(t).table(t)
	require.Contains(t, ansi.Strip(zone.Scan(m.View())), "No registrations")
}

func TestSelection_Clamps(t *testing.T) {
	m := newFixture(t, sample()...).table(t)

	m, _ = m.Update(keyPress("k"))
	require.Equal(t, 0, m.Selected())
	m, _ = m.Update(keyPress("j"))
	m, _ = m.Update(keyPress("j"))
	m, _ = m.Update(keyPress("j"))
	require.Equal(t, 2, m.Selected())
}

func TestDelete_SuccessRefetchesAfterInvalidation(t *testing.T) {
	f := newFixture(t, sample()...)
	m := f.table(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := f.client.Subscribe(ctx)

	m, cmd := m.Update(keyPress("d"))
	require.False(t, m.CanDelete(), "disabled while pending")

	deleted, ok := run[DeletedMsg](cmd)
	require.True(t, ok)
	require.NoError(t, deleted.Err)
	require.Equal(t, "1", deleted.ID)
	m, _ = m.Update(deleted)
	require.True(t, m.CanDelete())

	var invalidated pubsub.Event[query.Event]
	for ev := range events {
		if ev.Payload.Kind == query.EventInvalidated {
			invalidated = ev
			break
		}
	}
	require.Equal(t, f.list.Key(), invalidated.Payload.Key)

	m, cmd = m.Update(invalidated)
	require.True(t, m.Loading())
	fetched, ok := run[FetchedMsg](cmd)
	require.True(t, ok)
	m, _ = m.Update(fetched)

	require.Len(t, m.Rows(), 2)
	for _, r := range m.Rows() {
		require.NotEqual(t, "1", r.ID)
	}
	require.NotContains(t, ansi.Strip(zone.Scan(m.View())), "ann")
}

func TestDelete_ErrorShowsBannerUntilEsc(t *testing.T) {
	f := newFixture(t, sample()...)
	f.api.deleteErr = errors.New("Not Found")
	m := f.table(t)

	m, cmd := m.Update(keyPress("d"))
	deleted, ok := run[DeletedMsg](cmd)
	require.True(t, ok)
	m, _ = m.Update(deleted)

	require.True(t, m.Banner().Visible())
	require.Equal(t, "Registration Deletion Error: Not Found", m.Banner().Message())
	require.False(t, m.CanDelete())

	_, cmd = m.Update(keyPress("d"))
	require.Nil(t, cmd, "delete ignored while the error is retained")
	require.Equal(t, 1, f.api.deletes)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.Banner().Visible())
	require.Equal(t, query.StatusIdle, f.del.State().Status)
	require.True(t, m.CanDelete())
}

func TestDelete_BannerTimesOut(t *testing.T) {
	f := newFixture(t, sample()...)
	f.api.deleteErr = errors.New("Internal Server Error")
	m := New(Config{List: f.list, Delete: f.del, Notice: 1}).SetSize(100, 10).Focus()

	_, cmd := m.Update(keyPress("d"))
	require.Nil(t, cmd, "no rows before the first fetch")

	fetched, _ := run[FetchedMsg](m.Init())
	m, _ = m.Update(fetched)
	m, cmd = m.Update(keyPress("d"))
	deleted, _ := run[DeletedMsg](cmd)

	m, cmd = m.Update(deleted)
	dismiss, ok := run[toaster.DismissMsg](cmd)
	require.True(t, ok)

	m, _ = m.Update(dismiss)
	require.False(t, m.Banner().Visible())
	require.Equal(t, query.StatusIdle, f.del.State().Status)
}

func TestRefresh_Refetches(t *testing.T) {
	f := newFixture(t)
	m := f.table(t)
	f.api.regs = sample()

	m, cmd := m.Update(keyPress("r"))
	fetched, ok := run[FetchedMsg](cmd)
	require.True(t, ok)
	m, _ = m.Update(fetched)
	require.Len(t, m.Rows(), 3)
}

func TestBlurred_IgnoresKeys(t *testing.T) {
	f := newFixture(t, sample()...)
	m := f.table(t).Blur()

	_, cmd := m.Update(keyPress("d"))
	require.Nil(t, cmd)
}

func TestOtherTenantEventsIgnored(t *testing.T) {
	m := newFixture(t).table(t)

	_, cmd := m.Update(query.EventMsg{Payload: query.Event{Kind: query.EventInvalidated, Key: query.RegistrationsKey("other")}})
	require.Nil(t, cmd)
}

func TestColumnWidths(t *testing.T) {
	widths := columnWidths(columns, 100)
	total := len(columnGap) * (len(columns) - 1)
	for _, w := range widths {
		total += w
	}
	require.Equal(t, 100, total)
	require.Equal(t, 10, widths[3])
	require.Equal(t, len(deleteLabel), widths[5])

	narrow := columnWidths(columns, 10)
	for i, c := range columns {
		if c.Width == 0 {
			require.GreaterOrEqual(t, narrow[i], minFlexWidth)
		}
	}
}
