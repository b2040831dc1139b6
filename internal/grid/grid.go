// Package grid compiles wall, opening and exit specifications into a
// rectangular character grid and measures grids read back from disk.
//
// Positions are 1-indexed everywhere outside this package: row 1 is the
// first line, col 1 is the first character (Unicode code point) of a line.
package grid

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Cell glyphs.
const (
	Wall  = '█'
	Floor = ' '
	Exit  = 'Q'

	// Void pads the short rows of a measured grid. It is never a wall.
	Void rune = 0
)

// ErrBadDimensions is returned by Compile when rows or cols is below 1.
var ErrBadDimensions = errors.New("grid dimensions must be at least 1x1")

// Position is a 1-indexed (row, col) pair.
type Position struct {
	Row, Col int
}

// Pos is shorthand for Position{Row: row, Col: col}.
func Pos(row, col int) Position {
	return Position{Row: row, Col: col}
}

func (p Position) String() string {
	return fmt.Sprintf("[%d, %d]", p.Row, p.Col)
}

// Grid is an immutable row-major buffer of cells with a fixed row length.
type Grid struct {
	rows, cols int
	cells      []rune
}

func newFilled(rows, cols int, r rune) *Grid {
	cells := make([]rune, rows*cols)
	for i := range cells {
		cells[i] = r
	}
	return &Grid{rows: rows, cols: cols, cells: cells}
}

// index is the only place 1-indexed positions become buffer offsets.
func (g *Grid) index(p Position) (int, bool) {
	if p.Row < 1 || p.Row > g.rows || p.Col < 1 || p.Col > g.cols {
		return 0, false
	}
	return (p.Row-1)*g.cols + (p.Col - 1), true
}

func (g *Grid) set(p Position, r rune) {
	if i, ok := g.index(p); ok {
		g.cells[i] = r
	}
}

// Rows returns the number of lines.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the row length in code points.
func (g *Grid) Cols() int { return g.cols }

// InBounds reports whether p addresses a cell of g.
func (g *Grid) InBounds(p Position) bool {
	_, ok := g.index(p)
	return ok
}

// At returns the glyph at p. ok is false when p is out of bounds.
func (g *Grid) At(p Position) (r rune, ok bool) {
	i, ok := g.index(p)
	if !ok {
		return Void, false
	}
	return g.cells[i], true
}

// IsWall reports whether p is in bounds and holds a wall.
func (g *Grid) IsWall(p Position) bool {
	r, ok := g.At(p)
	return ok && r == Wall
}

// Lines returns the grid as text rows. Void padding is dropped.
func (g *Grid) Lines() []string {
	lines := make([]string, g.rows)
	var b strings.Builder
	for r := 0; r < g.rows; r++ {
		b.Reset()
		for _, c := range g.cells[r*g.cols : (r+1)*g.cols] {
			if c != Void {
				b.WriteRune(c)
			}
		}
		lines[r] = b.String()
	}
	return lines
}

// String joins Lines with newlines, the maze.txt layout.
func (g *Grid) String() string {
	return strings.Join(g.Lines(), "\n")
}

// Parse measures persisted grid text. CRLF line endings read as LF, one
// trailing newline is ignored, rows are lines and cols is the longest line
// in code points; shorter lines are padded with Void.
func Parse(text string) *Grid {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text == "" {
		return &Grid{}
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	cols := 0
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > cols {
			cols = n
		}
	}
	g := newFilled(len(lines), cols, Void)
	for r, line := range lines {
		c := 0
		for _, ch := range line {
			g.cells[r*cols+c] = ch
			c++
		}
	}
	return g
}
