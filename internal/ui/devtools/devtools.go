// Package devtools is the cache inspector overlay: every query entry, every
// mutation and the tail of the debug log.
package devtools

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/signup/internal/log"
	"github.com/zjrosen/signup/internal/query"
	"github.com/zjrosen/signup/internal/ui/overlay"
	"github.com/zjrosen/signup/internal/ui/styles"
)

const logTail = 20

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.StatusWarningColor).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(styles.StatusWarningColor)
)

// Model is the overlay. It is inert until shown.
type Model struct {
	client   *query.Client
	visible  bool
	viewport viewport.Model
	width    int
	height   int
}

// New creates a hidden overlay over client.
func New(client *query.Client) Model {
	return Model{client: client, viewport: viewport.New(0, 0)}
}

// Visible reports whether the overlay is shown.
func (m Model) Visible() bool {
	return m.visible
}

// Toggle shows or hides the overlay.
func (m Model) Toggle() Model {
	m.visible = !m.visible
	if m.visible {
		m.Refresh()
	}
	return m
}

// SetSize lays the overlay out for a width x height terminal.
func (m Model) SetSize(width, height int) Model {
	m.width, m.height = width, height
	m.viewport.Width = max(width-8, 20)
	m.viewport.Height = max(height-6, 5)
	if m.visible {
		m.Refresh()
	}
	return m
}

// Refresh re-reads the cache and log.
func (m *Model) Refresh() {
	m.viewport.SetContent(Render(m.client.Snapshot(), log.Recent(logTail), m.viewport.Width))
}

// Update scrolls the overlay and refreshes it on cache or log events.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}
	switch msg.(type) {
	case query.EventMsg, log.LogEvent:
		m.Refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// Overlay draws the inspector over bg when visible.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}
	box := boxStyle.Render(sectionStyle.Render("Devtools") + "\n" + m.viewport.View())
	return overlay.Place(overlay.Config{Width: m.width, Height: m.height, Position: overlay.Center}, box, bg)
}

// Render formats a snapshot and log lines as plain text.
func Render(snap query.Snapshot, logs []string, width int) string {
	var b strings.Builder

	b.WriteString(sectionStyle.Render("Queries"))
	b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("  listeners=%d", snap.Listeners)))
	b.WriteString("\n")
	if len(snap.Entries) == 0 {
		b.WriteString(styles.MutedStyle.Render("  none"))
		b.WriteString("\n")
	}
	for _, e := range snap.Entries {
		flags := []string{e.Status.String()}
		if e.Fetching {
			flags = append(flags, "fetching")
		}
		if e.Stale {
			flags = append(flags, "stale")
		}
		updated := "never"
		if !e.UpdatedAt.IsZero() {
			updated = e.UpdatedAt.Format("15:04:05")
		}
		line := fmt.Sprintf("  %s  %s  items=%d  observers=%d  updated=%s",
			e.Key, strings.Join(flags, ","), itemCount(e.Data), e.Observers, updated)
		if e.Err != nil {
			line += "  error=" + e.Err.Error()
		}
		b.WriteString(styles.TruncateString(line, width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Mutations"))
	b.WriteString("\n")
	if len(snap.Mutations) == 0 {
		b.WriteString(styles.MutedStyle.Render("  none"))
		b.WriteString("\n")
	}
	for _, mu := range snap.Mutations {
		line := fmt.Sprintf("  %s  %s", mu.Key, mu.Status)
		if mu.Err != nil {
			line += "  error=" + mu.Err.Error()
		}
		b.WriteString(styles.TruncateString(line, width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Log"))
	b.WriteString("\n")
	if len(logs) == 0 {
		b.WriteString(styles.MutedStyle.Render("  logging is off, run with --debug"))
	}
	for i, l := range logs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(styles.TruncateString("  "+l, width))
	}
	return b.String()
}

// itemCount is the length of slice data, 1 for any other value and 0 for nil.
func itemCount(data any) int {
	if data == nil {
		return 0
	}
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Slice {
		return v.Len()
	}
	return 1
}
