package form

import (
	"strconv"
	"strings"

	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/signup/internal/ui/styles"
)

// View renders the form body. Mouse zones are marked but not scanned.
func (m Model) View() string {
	var rows []string

	for i, f := range textFields {
		target := focusTarget(i)
		label := styles.LabelStyle.Render(f.label)
		if m.focused && m.focus == target {
			label = styles.FocusedLabelStyle.Render(f.label)
		}

		indicator := "  "
		if m.focused && m.focus == target {
			indicator = styles.SelectionIndicatorStyle.Render("> ")
		}

		block := label + "\n" + indicator + m.inputs[i].View()
		if msg, ok := m.errors[f.field]; ok {
			wrapped := wordwrap.String(msg, max(m.width-2, 10))
			block += "\n" + indent.String(styles.FieldErrorStyle.Render(wrapped), 2)
		}
		rows = append(rows, zone.Mark(zoneField+strconv.Itoa(i), block))
	}

	rows = append(rows, zone.Mark(zoneField+strconv.Itoa(int(focusNewsletter)), m.checkboxView()))
	rows = append(rows, m.submitView())

	return strings.Join(rows, "\n\n")
}

func (m Model) checkboxView() string {
	box := "[ ]"
	if m.newsletter {
		box = "[x]"
	}
	text := box + " Newsletter Subscription"
	if m.focused && m.focus == focusNewsletter {
		return styles.SelectionIndicatorStyle.Render("> ") + styles.FocusedLabelStyle.Render(text)
	}
	return "  " + styles.LabelStyle.Render(text)
}

func (m Model) submitView() string {
	var button string
	switch {
	case m.state == StateSubmitting:
		button = styles.DisabledButtonStyle.Render("Submit") + " " + m.spinner.View() + styles.MutedStyle.Render(" Submitting...")
	case !m.CanSubmit():
		button = styles.DisabledButtonStyle.Render("Submit")
	case m.focused && m.focus == focusSubmit:
		button = styles.PrimaryButtonFocusedStyle.Render("Submit")
	default:
		button = styles.PrimaryButtonStyle.Render("Submit")
	}
	return "  " + zone.Mark(zoneSubmit, button)
}
