package registrations

import (
	"strings"

	"github.com/zjrosen/signup/internal/registration"
	"github.com/zjrosen/signup/internal/ui/styles"
)

const (
	deleteLabel  = "[Delete]"
	columnGap    = " "
	minFlexWidth = 4
)

// column describes one table column. Width > 0 is fixed; otherwise the
// column shares the remaining width in proportion to Weight.
type column struct {
	Header string
	Group  string
	Width  int
	Weight int
	Cell   func(registration.Registration) string
}

var columns = []column{
	{Header: "Username", Group: "Name", Weight: 2, Cell: func(r registration.Registration) string { return r.Username }},
	{Header: "Email", Group: "Contact Information", Weight: 3, Cell: func(r registration.Registration) string { return r.Email }},
	{Header: "Phone", Group: "Contact Information", Weight: 2, Cell: func(r registration.Registration) string { return r.Phone }},
	{Header: "Newsletter", Group: "Subscription", Width: 10, Cell: func(r registration.Registration) string { return r.Newsletter.Cell() }},
	{Header: "Text", Group: "Subscription", Weight: 3, Cell: func(r registration.Registration) string { return r.Text }},
	{Header: "", Width: len(deleteLabel)},
}

// columnWidths splits total cells between columns, gaps included.
func columnWidths(cols []column, total int) []int {
	widths := make([]int, len(cols))
	remaining := total - len(columnGap)*(len(cols)-1)
	weights := 0
	for i, c := range cols {
		if c.Width > 0 {
			widths[i] = c.Width
			remaining -= c.Width
			continue
		}
		weights += c.Weight
	}

	flex := max(remaining, 0)
	assigned := 0
	last := -1
	for i, c := range cols {
		if c.Width > 0 {
			continue
		}
		widths[i] = max(flex*c.Weight/max(weights, 1), minFlexWidth)
		assigned += widths[i]
		last = i
	}
	// rounding leftovers go to the last flexible column
	if last >= 0 && assigned < flex {
		widths[last] += flex - assigned
	}
	return widths
}

// groupHeader renders the group row, one label spanning each run of
// adjacent columns sharing a group.
func groupHeader(cols []column, widths []int) string {
	var parts []string
	for i := 0; i < len(cols); {
		j, span := i, 0
		for j < len(cols) && cols[j].Group == cols[i].Group {
			if j > i {
				span += len(columnGap)
			}
			span += widths[j]
			j++
		}
		parts = append(parts, styles.PadRight(cols[i].Group, span))
		i = j
	}
	return strings.Join(parts, columnGap)
}

func headerRow(cols []column, widths []int) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = styles.PadRight(c.Header, widths[i])
	}
	return strings.Join(parts, columnGap)
}
