// Package registrations is the table of registrations for one tenant, with
// a delete control on every row and an error banner for failed deletes.
package registrations

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/signup/internal/keys"
	"github.com/zjrosen/signup/internal/log"
	"github.com/zjrosen/signup/internal/query"
	"github.com/zjrosen/signup/internal/registration"
	"github.com/zjrosen/signup/internal/ui/styles"
	"github.com/zjrosen/signup/internal/ui/toaster"
)

// BannerPrefix starts the delete error banner.
const BannerPrefix = "Registration Deletion Error: "

const (
	bannerID   = "delete-error"
	zoneRow    = "registration-row-"
	zoneDelete = "registration-delete-"
)

// FetchedMsg reports a finished list fetch started by the table.
type FetchedMsg struct {
	Err error
}

// DeletedMsg reports a finished delete started by the table.
type DeletedMsg struct {
	ID  string
	Err error
}

// Config wires the table to the cache.
type Config struct {
	Ctx    context.Context
	List   *query.RegistrationsQuery
	Delete *query.DeleteMutation
	// Notice is how long the delete error banner stays up.
	Notice time.Duration
}

// Model is the table state.
type Model struct {
	cfg      Config
	state    query.QueryState[[]registration.Registration]
	selected int
	offset   int
	focused  bool
	fetching bool // a fetch started here is pending
	deleting bool // a delete started here is pending

	spinner spinner.Model
	banner  toaster.Model
	width   int
	height  int
}

// New creates a table. Call Init to load the first page.
func New(cfg Config) Model {
	if cfg.Ctx == nil {
		cfg.Ctx = context.Background()
	}
	m := Model{
		cfg:      cfg,
		fetching: true, // Init fetches
		spinner:  spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(styles.MutedStyle.Foreground(styles.SpinnerColor))),
		banner:   toaster.New(bannerID, toaster.Banner),
		width:    80,
		height:   12,
	}
	m.sync()
	return m
}

// Init starts the first fetch and its spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetchCmd())
}

// Fetch re-fetches the list.
func (m Model) Fetch() (Model, tea.Cmd) {
	m.fetching = true
	return m, tea.Batch(m.spinner.Tick, m.fetchCmd())
}

func (m Model) fetchCmd() tea.Cmd {
	list, ctx := m.cfg.List, m.cfg.Ctx
	return func() tea.Msg {
		_, err := list.Fetch(ctx)
		return FetchedMsg{Err: err}
	}
}

// SetSize sets the inner size of the table.
func (m Model) SetSize(width, height int) Model {
	m.width, m.height = width, height
	m.clamp()
	return m
}

// Focus gives the table keyboard focus.
func (m Model) Focus() Model {
	m.focused = true
	return m
}

// Blur removes keyboard focus.
func (m Model) Blur() Model {
	m.focused = false
	return m
}

// Focused reports whether the table has keyboard focus.
func (m Model) Focused() bool {
	return m.focused
}

// Rows returns the registrations currently shown.
func (m Model) Rows() []registration.Registration {
	return m.state.Data
}

// Selected returns the index of the highlighted row.
func (m Model) Selected() int {
	return m.selected
}

// Loading reports whether the list is being fetched.
func (m Model) Loading() bool {
	return m.fetching || m.state.Fetching
}

// Banner is the delete error banner, composited by the parent.
func (m Model) Banner() toaster.Model {
	return m.banner
}

// CanDelete reports whether the delete controls are enabled.
func (m Model) CanDelete() bool {
	if m.deleting {
		return false
	}
	st := m.cfg.Delete.State()
	return st.Status != query.StatusLoading && st.Status != query.StatusError
}

// sync copies the latest list state out of the cache.
func (m *Model) sync() {
	m.state = m.cfg.List.State()
	m.clamp()
}

func (m *Model) clamp() {
	n := len(m.state.Data)
	m.selected = max(min(m.selected, n-1), 0)

	visible := m.visibleRows()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+visible {
		m.offset = m.selected - visible + 1
	}
	m.offset = max(min(m.offset, n-visible), 0)
}

// visibleRows is the number of data rows that fit below the two header
// rows and above the status line.
func (m Model) visibleRows() int {
	return max(m.height-3, 1)
}

// Update handles cache events, command results, keys while focused and
// mouse clicks.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case query.EventMsg:
		return m.handleEvent(msg.Payload)

	case FetchedMsg:
		m.fetching = false
		m.sync()
		return m, nil

	case DeletedMsg:
		return m.handleDeleted(msg)

	case toaster.DismissMsg:
		var dismissed bool
		m.banner, dismissed = m.banner.Update(msg)
		if dismissed {
			m.cfg.Delete.Reset()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.Loading() && !m.deleting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleEvent(ev query.Event) (Model, tea.Cmd) {
	if ev.Key != m.cfg.List.Key() {
		return m, nil
	}
	switch ev.Kind {
	case query.EventInvalidated:
		log.Debug(log.CatUI, "registrations invalidated, refetching", "key", ev.Key)
		return m.Fetch()
	case query.EventFetching, query.EventFetched:
		m.sync()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Table.Up):
		if m.selected > 0 {
			m.selected--
			m.clamp()
		}
	case key.Matches(msg, keys.Table.Down):
		if m.selected < len(m.state.Data)-1 {
			m.selected++
			m.clamp()
		}
	case key.Matches(msg, keys.Table.Delete):
		return m.deleteRow(m.selected)
	case key.Matches(msg, keys.Table.Refresh):
		return m.Fetch()
	case key.Matches(msg, keys.Table.Escape):
		if m.banner.Visible() {
			m.banner = m.banner.Hide()
			m.cfg.Delete.Reset()
		}
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	last := min(m.offset+m.visibleRows(), len(m.state.Data))
	for i := m.offset; i < last; i++ {
		if z := zone.Get(zoneDelete + m.state.Data[i].ID); z != nil && z.InBounds(msg) {
			m.selected = i
			return m.deleteRow(i)
		}
		if z := zone.Get(zoneRow + m.state.Data[i].ID); z != nil && z.InBounds(msg) {
			m.selected = i
			m.clamp()
			return m, nil
		}
	}
	return m, nil
}

func (m Model) deleteRow(i int) (Model, tea.Cmd) {
	if i < 0 || i >= len(m.state.Data) {
		return m, nil
	}
	if !m.CanDelete() {
		log.Debug(log.CatUI, "delete ignored while another is pending or failed")
		return m, nil
	}

	id := m.state.Data[i].ID
	m.deleting = true
	del, ctx := m.cfg.Delete, m.cfg.Ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		_, err := del.Mutate(ctx, id)
		return DeletedMsg{ID: id, Err: err}
	})
}

func (m Model) handleDeleted(msg DeletedMsg) (Model, tea.Cmd) {
	m.deleting = false
	if msg.Err == nil {
		log.Info(log.CatUI, "registration deleted", "id", msg.ID)
		return m, nil
	}

	log.ErrorErr(log.CatUI, "delete registration failed", msg.Err, "id", msg.ID)
	if m.cfg.Delete.State().Status != query.StatusError {
		// reset while in flight
		return m, nil
	}
	var cmd tea.Cmd
	m.banner, cmd = m.banner.Show(BannerPrefix+msg.Err.Error(), toaster.StyleError, m.cfg.Notice)
	return m, cmd
}
