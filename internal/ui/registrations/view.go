package registrations

import (
	"fmt"
	"strings"

	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/signup/internal/registration"
	"github.com/zjrosen/signup/internal/ui/styles"
)

// View renders the table body. Mouse zones are marked but not scanned.
func (m Model) View() string {
	widths := columnWidths(columns, m.width)
	lines := []string{
		styles.GroupHeaderStyle.Render(groupHeader(columns, widths)),
		styles.HeaderStyle.Render(headerRow(columns, widths)),
	}

	rows := m.state.Data
	visible := m.visibleRows()
	if len(rows) == 0 {
		lines = append(lines, styles.MutedStyle.Render("No registrations"))
	}
	last := min(m.offset+visible, len(rows))
	for i := m.offset; i < last; i++ {
		lines = append(lines, m.renderRow(i, rows[i], widths))
	}
	for len(lines) < visible+2 {
		lines = append(lines, "")
	}

	lines = append(lines, m.statusLine())
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(i int, r registration.Registration, widths []int) string {
	cells := make([]string, 0, len(columns))
	for c, col := range columns {
		if col.Cell == nil {
			continue
		}
		cells = append(cells, styles.PadRight(col.Cell(r), widths[c]))
	}
	line := strings.Join(cells, columnGap)

	selected := i == m.selected
	if selected && m.focused {
		line = styles.SelectedRowStyle.Render(line)
	}

	control := styles.DangerLinkStyle.Render(deleteLabel)
	if !m.CanDelete() {
		control = styles.DisabledLinkStyle.Render(deleteLabel)
	}
	return zone.Mark(zoneRow+r.ID, line) + columnGap + zone.Mark(zoneDelete+r.ID, control)
}

func (m Model) statusLine() string {
	n := len(m.state.Data)
	noun := "registrations"
	if n == 1 {
		noun = "registration"
	}
	status := fmt.Sprintf("%d %s", n, noun)

	switch {
	case m.deleting:
		return m.spinner.View() + styles.MutedStyle.Render(" Deleting... "+status)
	case m.Loading():
		return m.spinner.View() + styles.MutedStyle.Render(" Loading... "+status)
	}
	return styles.MutedStyle.Render(status)
}
