package grid

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompileBorder(t *testing.T) {
	g, err := Compile(Spec{Rows: 5, Cols: 10})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	lines := g.Lines()
	if len(lines) != 5 {
		t.Fatalf("Expected 5 rows, got %d", len(lines))
	}
	border := strings.Repeat(string(Wall), 10)
	if lines[0] != border || lines[4] != border {
		t.Errorf("Top and bottom rows should be all wall, got %q and %q", lines[0], lines[4])
	}
	for row := 1; row <= 5; row++ {
		if !g.IsWall(Pos(row, 1)) || !g.IsWall(Pos(row, 10)) {
			t.Errorf("Row %d should start and end with a wall", row)
		}
	}
	for row := 2; row <= 4; row++ {
		for col := 2; col <= 9; col++ {
			if r, _ := g.At(Pos(row, col)); r != Floor {
				t.Errorf("Position %v should be floor, got %q", Pos(row, col), r)
			}
		}
	}
}

func TestCompileLayers(t *testing.T) {
	exit := Pos(4, 8)
	g, err := Compile(Spec{
		Rows: 10,
		Cols: 10,
		Walls: []WallShape{
			HLine{Row: 3, ColStart: 2, ColEnd: 8},
			VLine{Col: 5, RowStart: 5, RowEnd: 7},
			Rect{Top: 8, Left: 2, Height: 2, Width: 3},
			HLine{Row: 40, ColStart: 1, ColEnd: 100},
		},
		Openings: []OpeningShape{
			Point{Pos: Pos(3, 5)},
			VLine{Col: 1, RowStart: 6, RowEnd: 6},
			Point{Pos: Pos(3, 5)},
			Point{Pos: exit},
		},
		Exit: &exit,
	})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	tests := []struct {
		pos  Position
		want rune
	}{
		{Pos(3, 5), Floor},
		{Pos(3, 4), Wall},
		{Pos(3, 8), Wall},
		{Pos(3, 9), Floor},
		{Pos(6, 5), Wall},
		{Pos(8, 2), Wall},
		{Pos(9, 4), Wall},
		{Pos(9, 5), Floor},
		{Pos(6, 1), Floor},
		{Pos(4, 8), Exit},
	}
	for _, tt := range tests {
		if got, _ := g.At(tt.pos); got != tt.want {
			t.Errorf("At(%v) = %q, want %q", tt.pos, got, tt.want)
		}
	}
}

func TestCompileExitOutOfBounds(t *testing.T) {
	exit := Pos(0, 3)
	g, err := Compile(Spec{Rows: 3, Cols: 3, Exit: &exit})
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if strings.ContainsRune(g.String(), Exit) {
		t.Errorf("Out of bounds exit should not be stamped:\n%s", g)
	}
}

func TestCompileBadDimensions(t *testing.T) {
	if _, err := Compile(Spec{Rows: 0, Cols: 4}); !errors.Is(err, ErrBadDimensions) {
		t.Errorf("Expected ErrBadDimensions, got %v", err)
	}
}

func TestCompileDeterministic(t *testing.T) {
	spec := Spec{
		Rows:     7,
		Cols:     12,
		Walls:    []WallShape{Rect{Top: 2, Left: 3, Height: 3, Width: 4}},
		Openings: []OpeningShape{HLine{Row: 3, ColStart: 1, ColEnd: 12}},
	}
	a, _ := Compile(spec)
	b, _ := Compile(spec)
	if a.String() != b.String() {
		t.Errorf("Compiling the same spec twice gave different grids:\n%s\n---\n%s", a, b)
	}
}

func TestParseMeasuresCodePoints(t *testing.T) {
	g := Parse("████\n████\n")
	if g.Rows() != 2 || g.Cols() != 4 {
		t.Errorf("Expected 2x4, got %dx%d", g.Rows(), g.Cols())
	}

	g = Parse("███\n██████\n████")
	if g.Rows() != 3 || g.Cols() != 6 {
		t.Errorf("Expected 3x6, got %dx%d", g.Rows(), g.Cols())
	}
	if r, ok := g.At(Pos(1, 5)); !ok || r != Void {
		t.Errorf("Short rows should be padded with Void, got %q (ok=%v)", r, ok)
	}
	if g.IsWall(Pos(1, 5)) {
		t.Error("Void padding must not count as wall")
	}
	if diff := cmp.Diff([]string{"███", "██████", "████"}, g.Lines()); diff != "" {
		t.Errorf("Lines mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCRLF(t *testing.T) {
	g := Parse("█████\r\n█   █\r\n█████\r\n")
	if g.Rows() != 3 || g.Cols() != 5 {
		t.Errorf("Expected 3x5, got %dx%d", g.Rows(), g.Cols())
	}
	if diff := cmp.Diff([]string{"█████", "█   █", "█████"}, g.Lines()); diff != "" {
		t.Errorf("Lines mismatch (-want +got):\n%s", diff)
	}
	if r, _ := g.At(Pos(2, 5)); r != Wall {
		t.Errorf("At([2, 5]) = %q, want the wall before the line break", r)
	}
}

func TestParseRoundTrip(t *testing.T) {
	g, _ := Compile(Spec{Rows: 4, Cols: 6, Openings: []OpeningShape{Point{Pos: Pos(2, 1)}}})
	back := Parse(g.String())
	if back.String() != g.String() {
		t.Errorf("Parse(String()) changed the grid:\n%s\n---\n%s", g, back)
	}
	if r, _ := back.At(Pos(2, 1)); r != Floor {
		t.Errorf("Expected opening at [2, 1], got %q", r)
	}
}

func TestAtOutOfBounds(t *testing.T) {
	g := Parse("ab\ncd")
	for _, p := range []Position{Pos(0, 1), Pos(3, 1), Pos(1, 0), Pos(1, 3)} {
		if _, ok := g.At(p); ok {
			t.Errorf("At(%v) should be out of bounds", p)
		}
	}
	if r, _ := g.At(Pos(2, 1)); r != 'c' {
		t.Errorf("At([2, 1]) = %q, want 'c'", r)
	}
	if Parse("").Rows() != 0 {
		t.Error("Empty text should measure 0 rows")
	}
}
