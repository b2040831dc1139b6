package preview

import (
	"strings"
	"testing"

	"github.com/tatianab/levelforge/internal/builder"
	"github.com/tatianab/levelforge/internal/grid"
	"github.com/tatianab/levelforge/internal/models"
)

func TestSpyGlyph(t *testing.T) {
	tests := []struct {
		i    int
		want rune
	}{
		{0, '1'},
		{8, '9'},
		{9, 'A'},
		{10, 'B'},
	}
	for _, tt := range tests {
		if got := SpyGlyph(tt.i); got != tt.want {
			t.Errorf("SpyGlyph(%d) = %c, want %c", tt.i, got, tt.want)
		}
	}
}

func TestRender(t *testing.T) {
	level := &models.Level{
		Dimensions: []int{5, 10},
		Start:      []int{2, 2},
		Exit:       []int{4, 9},
		Spies: []models.SpyDef{
			{ID: "a", Pattern: "horizontal", Endpoints: [][]int{{3, 3}, {3, 8}}},
			{ID: "b", Pattern: "vertical", Endpoints: [][]int{{2, 6}, {4, 6}}, Spawn: []int{4, 6}},
			{ID: "lost", Pattern: "zigzag"},
			{ID: "outside", Pattern: "horizontal", Endpoints: [][]int{{9, 9}, {9, 12}}},
		},
	}
	a, _, err := builder.Build(&models.Level{Dimensions: level.Dimensions, Start: level.Start, Exit: level.Exit}, nil)
	if err != nil {
		t.Fatal(err)
	}

	got := Render(a.Grid, Markers(level))
	want := strings.Join([]string{
		"██████████",
		"█S       █",
		"█ 1      █",
		"█    2  Q█",
		"██████████",
	}, "\n")
	if got != want {
		t.Errorf("Render mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestOverlayPadsRaggedRows(t *testing.T) {
	g := grid.Parse("███\n█\n███")
	rows := Overlay(g, []Marker{{Pos: grid.Pos(2, 3), Glyph: 'S'}})
	if string(rows[1]) != "█ S" {
		t.Errorf("Expected the short row to be padded, got %q", string(rows[1]))
	}
}

func TestStyledKeepsText(t *testing.T) {
	g := grid.Parse("█████\n█S Q█\n█████")
	out := Styled(g, nil)
	if !strings.Contains(out, Legend) {
		t.Errorf("Styled output should end with the legend:\n%s", out)
	}
}
