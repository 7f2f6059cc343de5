// Package help renders the key binding reference as a markdown overlay.
package help

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/signup/internal/keys"
	"github.com/zjrosen/signup/internal/log"
	"github.com/zjrosen/signup/internal/ui/overlay"
	"github.com/zjrosen/signup/internal/ui/styles"
)

//go:embed help.md
var intro string

// noMarginStyle removes glamour's document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(styles.BorderFocusColor).
	Padding(0, 1)

// Markdown returns the help page source.
func Markdown() string {
	var b strings.Builder
	b.WriteString(intro)
	for _, g := range keys.FullHelp() {
		fmt.Fprintf(&b, "\n## %s\n\n| Key | Action |\n|---|---|\n", g.Title)
		for _, binding := range g.Bindings {
			h := binding.Help()
			fmt.Fprintf(&b, "| `%s` | %s |\n", h.Key, h.Desc)
		}
	}
	b.WriteString("\nPress `?` or `esc` to close.\n")
	return b.String()
}

// Render renders md for a terminal of the given width. The dark style is
// fixed; auto detection queries the terminal and leaks replies into input.
func Render(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// Model is the scrollable help overlay.
type Model struct {
	viewport viewport.Model
	width    int
	height   int
}

// New creates an unsized help overlay.
func New() Model {
	return Model{viewport: viewport.New(0, 0)}
}

// SetSize lays the page out for a width x height terminal.
func (m Model) SetSize(width, height int) Model {
	m.width, m.height = width, height

	boxW := min(max(width-4, 20), 80)
	boxH := max(height-4, 5)
	innerW := boxW - 4 // border + padding

	m.viewport.Width = innerW
	m.viewport.Height = boxH - 2

	content, err := Render(Markdown(), innerW)
	if err != nil {
		log.ErrorErr(log.CatUI, "render help", err)
		content = Markdown()
	}
	m.viewport.SetContent(strings.TrimRight(content, "\n"))
	return m
}

// Update scrolls the page.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the box on its own.
func (m Model) View() string {
	return boxStyle.Render(m.viewport.View())
}

// Overlay centers the help box over bg.
func (m Model) Overlay(bg string) string {
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), bg)
}
