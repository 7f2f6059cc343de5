// Package form is the registration form: five text fields, a newsletter
// checkbox and a submit button bound to the create mutation.
package form

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/signup/internal/keys"
	"github.com/zjrosen/signup/internal/log"
	"github.com/zjrosen/signup/internal/query"
	"github.com/zjrosen/signup/internal/registration"
	"github.com/zjrosen/signup/internal/ui/styles"
	"github.com/zjrosen/signup/internal/ui/toaster"
)

// State is the form lifecycle.
type State int

const (
	StateEditing State = iota
	StateSubmitting
	// StateSubmitted lasts until the success notice goes away or the user
	// edits again.
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// DefaultNotice is shown when the server acknowledges without a message.
const DefaultNotice = "Registration submitted."

const (
	noticeID     = "create-notice"
	zoneSubmit   = "form-submit"
	zoneField    = "form-field-"
	defaultWidth = 40
)

type focusTarget int

const (
	focusUsername focusTarget = iota
	focusPassword
	focusConfirm
	focusEmail
	focusPhone
	focusNewsletter
	focusSubmit
	focusCount
)

// textFields lists the text inputs in focus order with their error key.
var textFields = []struct {
	label    string
	field    registration.Field
	password bool
}{
	{"Username", registration.FieldUsername, false},
	{"Password", registration.FieldPassword, true},
	{"Confirm Password", registration.FieldConfirmPassword, true},
	{"Email", registration.FieldEmail, false},
	{"Phone Number", registration.FieldPhone, false},
}

// SubmittedMsg carries the result of a create mutation started by the form.
type SubmittedMsg struct {
	Ack registration.Ack
	Err error
}

// Config wires the form to the cache.
type Config struct {
	// Ctx bounds the create request.
	Ctx    context.Context
	Create *query.CreateMutation
	// Notice is how long the success notice stays up.
	Notice time.Duration
}

// Model is the form state.
type Model struct {
	cfg        Config
	inputs     []textinput.Model
	newsletter bool
	focus      focusTarget
	focused    bool

	errors    registration.FieldErrors
	validated bool
	state     State

	spinner spinner.Model
	notice  toaster.Model
	width   int
}

// New creates a form holding the initial values.
func New(cfg Config) Model {
	if cfg.Ctx == nil {
		cfg.Ctx = context.Background()
	}

	inputs := make([]textinput.Model, len(textFields))
	for i, f := range textFields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = f.label
		ti.Width = defaultWidth
		if f.password {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		inputs[i] = ti
	}

	m := Model{
		cfg:     cfg,
		inputs:  inputs,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.MutedStyle.Foreground(styles.SpinnerColor))),
		notice:  toaster.New(noticeID, toaster.Snackbar),
		width:   defaultWidth,
	}
	m.setValues(registration.InitialInput())
	return m
}

// Input returns the current field values as a create payload.
func (m Model) Input() registration.Input {
	return registration.Input{
		Username:        m.inputs[focusUsername].Value(),
		Password:        m.inputs[focusPassword].Value(),
		ConfirmPassword: m.inputs[focusConfirm].Value(),
		Email:           m.inputs[focusEmail].Value(),
		Phone:           m.inputs[focusPhone].Value(),
		Newsletter:      m.newsletter,
	}
}

func (m *Model) setValues(in registration.Input) {
	values := []string{in.Username, in.Password, in.ConfirmPassword, in.Email, in.Phone}
	for i, v := range values {
		m.inputs[i].SetValue(v)
		m.inputs[i].CursorEnd()
	}
	m.newsletter = in.Newsletter
}

// State returns the lifecycle state.
func (m Model) State() State {
	return m.state
}

// Errors returns the messages currently displayed, nil before the first submit.
func (m Model) Errors() registration.FieldErrors {
	return m.errors
}

// Notice is the success snackbar, composited by the parent.
func (m Model) Notice() toaster.Model {
	return m.notice
}

// CanSubmit reports whether the submit button is enabled.
func (m Model) CanSubmit() bool {
	return m.state != StateSubmitting && m.errors.Empty()
}

// Focused reports whether the form has keyboard focus.
func (m Model) Focused() bool {
	return m.focused
}

// Typing reports whether keystrokes go to a text field.
func (m Model) Typing() bool {
	return m.focused && m.focus < focusNewsletter
}

// Focus gives the form keyboard focus.
func (m Model) Focus() (Model, tea.Cmd) {
	m.focused = true
	cmd := m.focusField(m.focus)
	return m, cmd
}

// Blur removes keyboard focus.
func (m Model) Blur() Model {
	m.focused = false
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	return m
}

// SetWidth sets the inner width of the form.
func (m Model) SetWidth(width int) Model {
	m.width = max(width, 10)
	for i := range m.inputs {
		m.inputs[i].Width = m.width - 1
	}
	return m
}

func (m *Model) focusField(target focusTarget) tea.Cmd {
	m.focus = target
	var cmd tea.Cmd
	for i := range m.inputs {
		if focusTarget(i) == target && m.focused {
			cmd = m.inputs[i].Focus()
			continue
		}
		m.inputs[i].Blur()
	}
	return cmd
}

// Update handles keys while focused, mouse clicks on the form, the create
// result and notice timers.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SubmittedMsg:
		return m.handleSubmitted(msg)

	case toaster.DismissMsg:
		var dismissed bool
		m.notice, dismissed = m.notice.Update(msg)
		if dismissed && m.state == StateSubmitted {
			m.state = StateEditing
		}
		return m, nil

	case spinner.TickMsg:
		if m.state != StateSubmitting {
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

	if m.Typing() {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Form.Escape):
		if m.notice.Visible() {
			m.notice = m.notice.Hide()
			if m.state == StateSubmitted {
				m.state = StateEditing
			}
		}
		return m, nil

	case key.Matches(msg, keys.Form.Submit):
		return m.submit()

	case key.Matches(msg, keys.Form.Next):
		cmd := m.focusField((m.focus + 1) % focusCount)
		return m, cmd

	case key.Matches(msg, keys.Form.Prev):
		cmd := m.focusField((m.focus + focusCount - 1) % focusCount)
		return m, cmd

	case key.Matches(msg, keys.Form.Press):
		switch m.focus {
		case focusSubmit:
			return m.submit()
		case focusNewsletter:
			return m.toggleNewsletter(), nil
		default:
			cmd := m.focusField(m.focus + 1)
			return m, cmd
		}

	case key.Matches(msg, keys.Form.Toggle) && m.focus == focusNewsletter:
		return m.toggleNewsletter(), nil
	}

	if m.focus >= focusNewsletter || m.state == StateSubmitting {
		return m, nil
	}

	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if m.inputs[m.focus].Value() != before {
		m.edited()
	}
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if z := zone.Get(zoneSubmit); z != nil && z.InBounds(msg) {
		m.focus = focusSubmit
		return m.submit()
	}
	for i := focusUsername; i < focusSubmit; i++ {
		if z := zone.Get(zoneField + strconv.Itoa(int(i))); z != nil && z.InBounds(msg) {
			cmd := m.focusField(i)
			if i == focusNewsletter {
				m = m.toggleNewsletter()
			}
			return m, cmd
		}
	}
	return m, nil
}

func (m Model) toggleNewsletter() Model {
	if m.state == StateSubmitting {
		return m
	}
	m.newsletter = !m.newsletter
	m.edited()
	return m
}

// edited re-validates after the first submit.
func (m *Model) edited() {
	if m.state == StateSubmitted {
		m.state = StateEditing
	}
	if m.validated {
		m.errors = registration.Validate(m.Input())
	}
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.state == StateSubmitting {
		return m, nil
	}

	in := m.Input()
	m.validated = true
	m.errors = registration.Validate(in)
	if !m.errors.Empty() {
		log.Debug(log.CatUI, "registration rejected by validation", "errors", m.errors.Error())
		return m, nil
	}

	m.state = StateSubmitting
	m.notice = m.notice.Hide()
	log.Debug(log.CatUI, "submitting registration", "username", in.Username)

	create, ctx := m.cfg.Create, m.cfg.Ctx
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		ack, err := create.Mutate(ctx, in)
		return SubmittedMsg{Ack: ack, Err: err}
	})
}

func (m Model) handleSubmitted(msg SubmittedMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		log.ErrorErr(log.CatUI, "create registration failed", msg.Err)
		m.state = StateEditing
		return m, nil
	}

	m.setValues(registration.InitialInput())
	m.errors = nil
	m.validated = false
	m.state = StateSubmitted

	text := msg.Ack.Message
	if text == "" {
		text = DefaultNotice
	}
	var dismiss tea.Cmd
	m.notice, dismiss = m.notice.Show(text, toaster.StyleSuccess, m.cfg.Notice)
	focus := m.focusField(focusUsername)
	return m, tea.Batch(dismiss, focus)
}
