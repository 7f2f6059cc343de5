package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/require"
)

func TestKeyAssignments(t *testing.T) {
	tests := []struct {
		name     string
		binding  key.Binding
		expected []string
	}{
		{"SwitchPane uses ctrl+t", App.SwitchPane, []string{"ctrl+t"}},
		{"Devtools uses ctrl+x", App.Devtools, []string{"ctrl+x"}},
		{"Quit uses ctrl+c only", App.Quit, []string{"ctrl+c"}},
		{"Form next uses tab and down", Form.Next, []string{"tab", "down"}},
		{"Form prev uses shift+tab and up", Form.Prev, []string{"shift+tab", "up"}},
		{"Toggle uses space", Form.Toggle, []string{" "}},
		{"Submit uses ctrl+s", Form.Submit, []string{"ctrl+s"}},
		{"Table delete uses d and enter", Table.Delete, []string{"d", "enter"}},
		{"Table quit uses q", Table.Quit, []string{"q"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.binding.Keys())
		})
	}
}

func TestFullHelp_EveryBindingHasHelp(t *testing.T) {
	for _, g := range FullHelp() {
		require.NotEmpty(t, g.Title)
		for _, b := range g.Bindings {
			require.NotEmpty(t, b.Help().Key, "group %s", g.Title)
			require.NotEmpty(t, b.Help().Desc, "group %s", g.Title)
		}
	}
}

func TestShortHelp_DependsOnFocus(t *testing.T) {
	require.Contains(t, ShortHelp(true), Table.Quit)
	require.Contains(t, ShortHelp(false), Form.Submit)
	require.NotContains(t, ShortHelp(false), Table.Quit)
}
