// Package toaster provides dismissible notifications: a snackbar anchored to
// the bottom-left corner and an error banner across the top.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/signup/internal/ui/overlay"
	"github.com/zjrosen/signup/internal/ui/styles"
)

// Style determines the visual appearance of the notification.
type Style int

const (
	StyleSuccess Style = iota
	StyleError
	StyleInfo
)

// Placement is where the notification is drawn.
type Placement int

const (
	// Snackbar sits in the bottom-left corner.
	Snackbar Placement = iota
	// Banner sits at the top, centered.
	Banner
)

// DismissMsg asks the notification named ID to hide. Seq identifies which
// Show scheduled it so a timer from an earlier notification is ignored.
type DismissMsg struct {
	ID  string
	Seq int
}

// Model is one notification slot.
type Model struct {
	id        string
	placement Placement
	message   string
	style     Style
	visible   bool
	seq       int
}

// New creates a hidden notification slot. id must be unique among slots
// sharing an update loop.
func New(id string, placement Placement) Model {
	return Model{id: id, placement: placement}
}

// Show displays message and schedules its dismissal after d. A
// non-positive d keeps it until Hide.
func (m Model) Show(message string, style Style, d time.Duration) (Model, tea.Cmd) {
	m.seq++
	m.message = message
	m.style = style
	m.visible = true
	if d <= 0 {
		return m, nil
	}
	return m, ScheduleDismiss(m.id, m.seq, d)
}

// Hide dismisses the notification.
func (m Model) Hide() Model {
	m.visible = false
	m.message = ""
	return m
}

// Update hides the notification when its own pending dismissal fires.
// The second result reports whether msg dismissed it.
func (m Model) Update(msg tea.Msg) (Model, bool) {
	d, ok := msg.(DismissMsg)
	if !ok || d.ID != m.id || d.Seq != m.seq || !m.visible {
		return m, false
	}
	return m.Hide(), true
}

// Visible returns whether the notification is showing.
func (m Model) Visible() bool {
	return m.visible
}

// Message returns the text being shown.
func (m Model) Message() string {
	return m.message
}

// View renders the notification box.
func (m Model) View() string {
	if !m.visible || m.message == "" {
		return ""
	}

	style := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	var content string
	switch m.style {
	case StyleError:
		style = style.BorderForeground(styles.ToastBorderErrorColor)
		content = "❌ " + m.message
	case StyleInfo:
		style = style.BorderForeground(styles.ToastBorderInfoColor)
		content = "ℹ️ " + m.message
	default:
		style = style.BorderForeground(styles.ToastBorderSuccessColor)
		content = "✅ " + m.message
	}
	return style.Render(content)
}

// Overlay renders the notification on top of bg.
func (m Model) Overlay(bg string, width, height int) string {
	if !m.visible || m.message == "" {
		return bg
	}

	cfg := overlay.Config{Width: width, Height: height, Position: overlay.BottomLeft, Margin: 1}
	if m.placement == Banner {
		cfg.Position = overlay.TopCenter
	}
	return overlay.Place(cfg, m.View(), bg)
}

// ScheduleDismiss returns a command that dismisses notification id after d.
func ScheduleDismiss(id string, seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return DismissMsg{ID: id, Seq: seq}
	})
}
