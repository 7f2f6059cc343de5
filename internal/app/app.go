// Package app contains the root Bubble Tea model: the registration form and
// the registrations table side by side, sharing one query client.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/signup/internal/config"
	"github.com/zjrosen/signup/internal/keys"
	"github.com/zjrosen/signup/internal/log"
	"github.com/zjrosen/signup/internal/query"
	"github.com/zjrosen/signup/internal/ui/devtools"
	"github.com/zjrosen/signup/internal/ui/form"
	"github.com/zjrosen/signup/internal/ui/help"
	"github.com/zjrosen/signup/internal/ui/registrations"
	"github.com/zjrosen/signup/internal/ui/styles"
	"github.com/zjrosen/signup/internal/ui/toaster"
)

// Pane identifies which half of the screen has keyboard focus.
type Pane int

const (
	PaneForm Pane = iota
	PaneTable
)

func (p Pane) String() string {
	if p == PaneTable {
		return "table"
	}
	return "form"
}

const (
	zonePaneForm  = "pane-form"
	zonePaneTable = "pane-table"

	minFormWidth = 34
	maxFormWidth = 48
)

// Model is the application state.
type Model struct {
	cfg    config.Config
	ctx    context.Context
	cancel context.CancelFunc

	client *query.Client
	list   *query.RegistrationsQuery
	create *query.CreateMutation
	del    *query.DeleteMutation

	events *query.Listener
	logs   *log.LogListener

	// focusCmd starts the cursor of the initially focused field.
	focusCmd tea.Cmd

	form     form.Model
	table    registrations.Model
	help     help.Model
	showHelp bool
	devtools devtools.Model

	focus  Pane
	width  int
	height int
}

// New creates the application model against api. Requests run under a
// context that Close cancels.
func New(cfg config.Config, api query.RegistrationsAPI) Model {
	ctx, cancel := context.WithCancel(context.Background())

	client := query.NewClient(query.Options{})
	list := query.NewRegistrationsQuery(client, api, cfg.Tenant)
	create := query.NewCreateMutation(client, api, cfg.Tenant)
	del := query.NewDeleteMutation(client, api, cfg.Tenant)

	m := Model{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
		client: client,
		list:   list,
		create: create,
		del:    del,
		events: client.Listen(ctx),
		form: form.New(form.Config{
			Ctx:    ctx,
			Create: create,
			Notice: cfg.UI.CreateNotice,
		}),
		table: registrations.New(registrations.Config{
			Ctx:    ctx,
			List:   list,
			Delete: del,
			Notice: cfg.UI.DeleteNotice,
		}),
		help:     help.New(),
		devtools: devtools.New(client),
		focus:    PaneForm,
	}
	m.form, m.focusCmd = m.form.Focus()
	if cfg.Devtools {
		m.logs = log.NewListener(ctx)
	}
	return m
}

// Init starts the first fetch and subscribes to cache and log events.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.focusCmd, m.table.Init(), m.events.Listen()}
	if m.logs != nil {
		cmds = append(cmds, m.logs.Listen())
	}
	return tea.Batch(cmds...)
}

// Focus reports which pane has keyboard focus.
func (m Model) Focus() Pane {
	return m.focus
}

// Form returns the form sub-model.
func (m Model) Form() form.Model {
	return m.form
}

// Table returns the registrations sub-model.
func (m Model) Table() registrations.Model {
	return m.table
}

// HelpVisible reports whether the help overlay is shown.
func (m Model) HelpVisible() bool {
	return m.showHelp
}

// DevtoolsVisible reports whether the cache inspector is shown.
func (m Model) DevtoolsVisible() bool {
	return m.devtools.Visible()
}

// Client exposes the shared query client.
func (m Model) Client() *query.Client {
	return m.client
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m = m.layout()
		return m, nil

	case query.EventMsg:
		var tableCmd tea.Cmd
		m.table, tableCmd = m.table.Update(msg)
		m.devtools, _ = m.devtools.Update(msg)
		return m, tea.Batch(tableCmd, m.events.Listen())

	case log.LogEvent:
		m.devtools, _ = m.devtools.Update(msg)
		if m.logs == nil {
			return m, nil
		}
		return m, m.logs.Listen()

	case form.SubmittedMsg:
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd

	case registrations.FetchedMsg, registrations.DeletedMsg:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd

	case toaster.DismissMsg, spinner.TickMsg:
		return m.broadcast(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	default:
		// Cursor blinks belong to the form's inputs.
		var cmd tea.Cmd
		m.form, cmd = m.form.Update(msg)
		return m, cmd
	}
}

// broadcast sends msg to both panes. Each ignores messages addressed to
// another toaster or spinner id.
func (m Model) broadcast(msg tea.Msg) (Model, tea.Cmd) {
	var formCmd, tableCmd tea.Cmd
	m.form, formCmd = m.form.Update(msg)
	m.table, tableCmd = m.table.Update(msg)
	return m, tea.Batch(formCmd, tableCmd)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, keys.App.Quit) {
		return m, tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, keys.App.Help) || msg.Type == tea.KeyEsc {
			m.showHelp = false
			return m, nil
		}
		var cmd tea.Cmd
		m.help, cmd = m.help.Update(msg)
		return m, cmd
	}

	if m.cfg.Devtools && key.Matches(msg, keys.App.Devtools) {
		m.devtools = m.devtools.Toggle()
		return m, nil
	}
	if m.devtools.Visible() {
		if msg.Type == tea.KeyEsc {
			m.devtools = m.devtools.Toggle()
			return m, nil
		}
		var cmd tea.Cmd
		m.devtools, cmd = m.devtools.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, keys.App.SwitchPane):
		return m.switchFocus()
	case key.Matches(msg, keys.App.Help) && !m.form.Typing():
		m.showHelp = true
		m.help = m.help.SetSize(m.width, m.height)
		return m, nil
	case key.Matches(msg, keys.Table.Quit) && m.focus == PaneTable:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	if m.focus == PaneTable {
		m.table, cmd = m.table.Update(msg)
	} else {
		m.form, cmd = m.form.Update(msg)
	}
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if m.showHelp || m.devtools.Visible() {
		return m, nil
	}

	var focusCmd tea.Cmd
	if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
		switch {
		case m.focus != PaneForm && inZone(zonePaneForm, msg):
			m, focusCmd = m.switchFocus()
		case m.focus != PaneTable && inZone(zonePaneTable, msg):
			m, focusCmd = m.switchFocus()
		}
	}

	m, cmd := m.broadcast(msg)
	return m, tea.Batch(focusCmd, cmd)
}

func inZone(id string, msg tea.MouseMsg) bool {
	z := zone.Get(id)
	return z != nil && z.InBounds(msg)
}

func (m Model) switchFocus() (Model, tea.Cmd) {
	if m.focus == PaneForm {
		m.focus = PaneTable
		m.form = m.form.Blur()
		m.table = m.table.Focus()
		log.Debug(log.CatUI, "focus changed", "pane", m.focus)
		return m, nil
	}

	m.focus = PaneForm
	m.table = m.table.Blur()
	var cmd tea.Cmd
	m.form, cmd = m.form.Focus()
	log.Debug(log.CatUI, "focus changed", "pane", m.focus)
	return m, cmd
}

// layout splits the window between the panes. The form takes a third of
// the width within fixed bounds; the table gets the rest.
func (m Model) layout() Model {
	formW, tableW := m.paneWidths()
	paneH := max(m.height-2, 3) // header and status bar

	m.form = m.form.SetWidth(max(formW-2, 1))
	m.table = m.table.SetSize(max(tableW-2, 1), max(paneH-2, 1))
	m.help = m.help.SetSize(m.width, m.height)
	m.devtools = m.devtools.SetSize(m.width, m.height)
	return m
}

func (m Model) paneWidths() (int, int) {
	formW := min(max(m.width/3, minFormWidth), maxFormWidth)
	if formW > m.width {
		formW = m.width
	}
	return formW, max(m.width-formW, 0)
}

// View renders the screen.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	formW, tableW := m.paneWidths()
	formPane := zone.Mark(zonePaneForm, styles.RenderPane(m.form.View(), "Register", formW, m.focus == PaneForm))
	tablePane := zone.Mark(zonePaneTable, styles.RenderPane(m.table.View(), "Registrations", tableW, m.focus == PaneTable))

	body := lipgloss.JoinHorizontal(lipgloss.Top, formPane, tablePane)
	view := lipgloss.JoinVertical(lipgloss.Left, m.header(), body, m.statusBar())
	view = lipgloss.Place(m.width, m.height, lipgloss.Left, lipgloss.Top, view)
	if lines := strings.Split(view, "\n"); len(lines) > m.height {
		view = strings.Join(lines[:m.height], "\n")
	}

	view = m.form.Notice().Overlay(view, m.width, m.height)
	view = m.table.Banner().Overlay(view, m.width, m.height)
	if m.showHelp {
		view = m.help.Overlay(view)
	}
	if m.devtools.Visible() {
		view = m.devtools.Overlay(view)
	}
	return zone.Scan(view)
}

func (m Model) header() string {
	title := styles.HeaderStyle.Render("Signup")
	tenant := styles.MutedStyle.Render(" tenant " + m.cfg.Tenant)
	return styles.TruncateString(title+tenant, m.width)
}

func (m Model) statusBar() string {
	bindings := keys.ShortHelp(m.focus == PaneTable)
	if m.cfg.Devtools {
		bindings = append(bindings, keys.App.Devtools)
	}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, fmt.Sprintf("%s %s", h.Key, h.Desc))
	}
	return styles.StatusBarStyle.Render(styles.TruncateString(strings.Join(parts, " • "), max(m.width-2, 0)))
}

// Close cancels in-flight requests and releases the query client.
func (m Model) Close() error {
	if m.cancel != nil {
		m.cancel()
	}
	if m.list != nil {
		m.list.Close()
	}
	if m.client != nil {
		m.client.Close()
	}
	return nil
}
