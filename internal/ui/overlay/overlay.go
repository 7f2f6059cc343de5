// Package overlay composites a foreground block on top of a rendered view.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position is an anchor inside the viewport.
type Position int

const (
	Center Position = iota
	TopCenter
	BottomLeft
	BottomCenter
)

// Config describes the viewport and the anchor.
type Config struct {
	Width    int
	Height   int
	Position Position
	// Margin keeps the foreground away from the anchored edges.
	Margin int
}

// Place draws fg over bg. Styling of both is preserved; cells of bg that fg
// covers are replaced.
func Place(cfg Config, fg, bg string) string {
	rows := strings.Split(bg, "\n")
	for len(rows) < cfg.Height {
		rows = append(rows, "")
	}

	fgRows := strings.Split(fg, "\n")
	x, y := origin(cfg, lipgloss.Width(fg), len(fgRows))

	for i, row := range fgRows {
		if y+i >= len(rows) {
			break
		}
		rows[y+i] = splice(rows[y+i], row, x)
	}
	return strings.Join(rows, "\n")
}

// splice replaces the cells of line starting at column x with fg.
func splice(line, fg string, x int) string {
	left := ansi.Truncate(line, x, "")
	if w := ansi.StringWidth(left); w < x {
		left += strings.Repeat(" ", x-w)
	}

	var right string
	if end := x + ansi.StringWidth(fg); end < ansi.StringWidth(line) {
		right = ansi.TruncateLeft(line, end, "")
	}
	return left + fg + right
}

func origin(cfg Config, w, h int) (x, y int) {
	centerX := (cfg.Width - w) / 2
	switch cfg.Position {
	case TopCenter:
		x, y = centerX, cfg.Margin
	case BottomLeft:
		x, y = cfg.Margin, cfg.Height-h-cfg.Margin
	case BottomCenter:
		x, y = centerX, cfg.Height-h-cfg.Margin
	default:
		x, y = centerX, (cfg.Height-h)/2
	}
	return max(x, 0), max(y, 0)
}
