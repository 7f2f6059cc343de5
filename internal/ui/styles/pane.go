package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// RenderPane draws content in a rounded box of the given outer width with
// the title embedded in the top border:
//
//	╭─ Title ─────╮
//	│content      │
//	╰─────────────╯
//
// Content lines wider than the box are truncated. The border is highlighted
// when focused.
func RenderPane(content, title string, width int, focused bool) string {
	var borderColor lipgloss.TerminalColor = BorderDefaultColor
	titleStyle := lipgloss.NewStyle().Foreground(TextSecondaryColor)
	if focused {
		borderColor = BorderFocusColor
		titleStyle = titleStyle.Foreground(BorderFocusColor).Bold(true)
	}
	border := lipgloss.NewStyle().Foreground(borderColor)

	inner := max(width-2, 1)

	var b strings.Builder
	b.WriteString(topBorder(title, inner, border, titleStyle))
	for _, line := range strings.Split(content, "\n") {
		b.WriteString("\n")
		b.WriteString(border.Render(borderVertical))
		b.WriteString(PadRight(line, inner))
		b.WriteString(border.Render(borderVertical))
	}
	b.WriteString("\n")
	b.WriteString(border.Render(borderBottomLeft + strings.Repeat(borderHorizontal, inner) + borderBottomRight))
	return b.String()
}

func topBorder(title string, inner int, border, titleStyle lipgloss.Style) string {
	// "─ " + title + " " needs at least 4 cells around the title
	if title == "" || inner < 5 {
		return border.Render(borderTopLeft + strings.Repeat(borderHorizontal, inner) + borderTopRight)
	}
	title = TruncateString(title, inner-4)
	rest := max(inner-3-lipgloss.Width(title), 0)
	return border.Render(borderTopLeft+borderHorizontal+" ") +
		titleStyle.Render(title) +
		border.Render(" "+strings.Repeat(borderHorizontal, rest)+borderTopRight)
}
