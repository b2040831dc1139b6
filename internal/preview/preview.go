// Package preview draws a compiled maze with the start, the exit and every
// spy spawn marked on it.
package preview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tatianab/levelforge/internal/grid"
	"github.com/tatianab/levelforge/internal/models"
	"github.com/tatianab/levelforge/internal/patrol"
)

// Legend explains the markers.
const Legend = "S=start, Q=exit, 1-9=spy spawns"

// Marker is a glyph drawn over one cell.
type Marker struct {
	Pos   grid.Position
	Glyph rune
}

// SpyGlyph returns the marker for the i-th spy (0-based): 1-9, then A, B, ...
func SpyGlyph(i int) rune {
	if i < 9 {
		return rune('1' + i)
	}
	return rune('A' + i - 9)
}

// Markers collects the markers of level. Spies whose spawn cannot be
// resolved are skipped.
func Markers(level *models.Level) []Marker {
	var out []Marker
	if p, err := models.Position("start", level.Start); err == nil {
		out = append(out, Marker{Pos: p, Glyph: 'S'})
	}
	if p, err := models.Position("exit", level.Exit); err == nil {
		out = append(out, Marker{Pos: p, Glyph: grid.Exit})
	}
	for i, def := range level.Spies {
		spy, err := def.Spy()
		if err != nil {
			continue
		}
		spawn, err := patrol.SpawnPos(spy)
		if err != nil {
			continue
		}
		out = append(out, Marker{Pos: spawn, Glyph: SpyGlyph(i)})
	}
	return out
}

// Overlay returns the rows of g with markers drawn in order. Markers outside
// the grid are ignored.
func Overlay(g *grid.Grid, markers []Marker) [][]rune {
	rows := make([][]rune, g.Rows())
	for r := range rows {
		rows[r] = make([]rune, g.Cols())
		for c := range rows[r] {
			ch, _ := g.At(grid.Pos(r+1, c+1))
			if ch == grid.Void {
				ch = ' '
			}
			rows[r][c] = ch
		}
	}
	for _, m := range markers {
		if g.InBounds(m.Pos) {
			rows[m.Pos.Row-1][m.Pos.Col-1] = m.Glyph
		}
	}
	return rows
}

// Render draws the overlay as plain text, one line per row.
func Render(g *grid.Grid, markers []Marker) string {
	rows := Overlay(g, markers)
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}

var (
	wallStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5F5F87"))

	exitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00D787")).
			Bold(true)

	startStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	spyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true)

	legendStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)
)

// Styled draws the overlay with colors for terminals. Runs of plain cells
// are styled together.
func Styled(g *grid.Grid, markers []Marker) string {
	rows := Overlay(g, markers)
	lines := make([]string, len(rows))
	for i, row := range rows {
		var b strings.Builder
		start := 0
		for start < len(row) {
			end := start + 1
			for end < len(row) && styleOf(row[end]) == styleOf(row[start]) {
				end++
			}
			b.WriteString(render(row[start], string(row[start:end])))
			start = end
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n") + "\n\n" + legendStyle.Render(Legend)
}

type cellKind int

const (
	plainCell cellKind = iota
	wallCell
	exitCell
	startCell
	spyCell
)

func styleOf(r rune) cellKind {
	switch {
	case r == grid.Wall:
		return wallCell
	case r == grid.Exit:
		return exitCell
	case r == 'S':
		return startCell
	case (r >= '1' && r <= '9') || (r >= 'A' && r <= 'Z'):
		return spyCell
	}
	return plainCell
}

func render(first rune, run string) string {
	switch styleOf(first) {
	case wallCell:
		return wallStyle.Render(run)
	case exitCell:
		return exitStyle.Render(run)
	case startCell:
		return startStyle.Render(run)
	case spyCell:
		return spyStyle.Render(run)
	}
	return run
}
