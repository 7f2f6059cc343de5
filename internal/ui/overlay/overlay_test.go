package overlay

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"
)

func grid(w, h int) string {
	rows := make([]string, h)
	for i := range rows {
		rows[i] = strings.Repeat("A", w)
	}
	return strings.Join(rows, "\n")
}

func TestPlace(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		fg   string
		want []string
	}{
		{
			name: "center",
			cfg:  Config{Width: 5, Height: 3, Position: Center},
			fg:   "X",
			want: []string{"AAAAA", "AAXAA", "AAAAA"},
		},
		{
			name: "top with margin",
			cfg:  Config{Width: 5, Height: 3, Position: TopCenter, Margin: 1},
			fg:   "XX",
			want: []string{"AAAAA", "AXXAA", "AAAAA"},
		},
		{
			name: "bottom left",
			cfg:  Config{Width: 5, Height: 3, Position: BottomLeft},
			fg:   "XX",
			want: []string{"AAAAA", "AAAAA", "XXAAA"},
		},
		{
			name: "bottom left with margin",
			cfg:  Config{Width: 5, Height: 3, Position: BottomLeft, Margin: 1},
			fg:   "XX",
			want: []string{"AAAAA", "AXXAA", "AAAAA"},
		},
		{
			name: "bottom center",
			cfg:  Config{Width: 5, Height: 3, Position: BottomCenter},
			fg:   "X",
			want: []string{"AAAAA", "AAAAA", "AAXAA"},
		},
		{
			name: "foreground larger than viewport",
			cfg:  Config{Width: 3, Height: 2, Position: Center},
			fg:   "XXXXX\nXXXXX\nXXXXX",
			want: []string{"XXXXX", "XXXXX"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Place(tt.cfg, tt.fg, grid(tt.cfg.Width, tt.cfg.Height))
			require.Equal(t, tt.want, strings.Split(got, "\n"))
		})
	}
}

func TestPlace_PadsShortBackground(t *testing.T) {
	got := Place(Config{Width: 4, Height: 3, Position: BottomLeft}, "XX", "AA")
	require.Equal(t, []string{"AA", "", "XX"}, strings.Split(got, "\n"))
}

func TestPlace_PreservesStyledBackground(t *testing.T) {
	bg := lipgloss.NewStyle().Bold(true).Render("ABCDE")
	got := Place(Config{Width: 5, Height: 1, Position: Center}, "X", bg)
	require.Equal(t, 5, lipgloss.Width(got))
	require.Contains(t, got, "X")
}
