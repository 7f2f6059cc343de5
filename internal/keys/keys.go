// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// AppKeys are handled by the root model regardless of focus.
type AppKeys struct {
	SwitchPane key.Binding
	Help       key.Binding
	Devtools   key.Binding
	Quit       key.Binding
}

// FormKeys drive the registration form.
type FormKeys struct {
	Next   key.Binding
	Prev   key.Binding
	Toggle key.Binding
	Submit key.Binding
	Press  key.Binding
	Escape key.Binding
}

// TableKeys drive the registrations table.
type TableKeys struct {
	Up      key.Binding
	Down    key.Binding
	Delete  key.Binding
	Refresh key.Binding
	Escape  key.Binding
	Quit    key.Binding
}

// App is the global key map.
var App = AppKeys{
	SwitchPane: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("ctrl+t", "switch form/table"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "toggle help"),
	),
	Devtools: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("ctrl+x", "toggle devtools"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// Form is the form key map.
var Form = FormKeys{
	Next: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab/↓", "next field"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("shift+tab/↑", "previous field"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle newsletter"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "submit"),
	),
	Press: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "press button"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "dismiss notice"),
	),
}

// Table is the table key map.
var Table = TableKeys{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "move up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "move down"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "enter"),
		key.WithHelp("d/enter", "delete registration"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "dismiss error"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp returns keybindings for the status line.
func ShortHelp(tableFocused bool) []key.Binding {
	if tableFocused {
		return []key.Binding{Table.Delete, Table.Refresh, App.SwitchPane, App.Help, Table.Quit}
	}
	return []key.Binding{Form.Next, Form.Submit, App.SwitchPane, App.Help, App.Quit}
}

// Group is a titled set of bindings for the help overlay.
type Group struct {
	Title    string
	Bindings []key.Binding
}

// FullHelp returns every binding, grouped by where it applies.
func FullHelp() []Group {
	return []Group{
		{"Global", []key.Binding{App.SwitchPane, App.Help, App.Devtools, App.Quit}},
		{"Form", []key.Binding{Form.Next, Form.Prev, Form.Toggle, Form.Press, Form.Submit, Form.Escape}},
		{"Table", []key.Binding{Table.Up, Table.Down, Table.Delete, Table.Refresh, Table.Escape, Table.Quit}},
	}
}
