// Package tmximport converts maps drawn in the Tiled editor into level
// definitions.
//
// The map is read as follows:
//   - every non-empty tile in the "walls" layer is a wall; border cells left
//     empty become openings
//   - objects in the "markers" group named start and exit set the cursors
//   - every object in the "spies" group is a spy whose polyline is its route
//
// Spy objects take their id from the object name and read the optional
// properties pattern, direction and speed.
package tmximport

import (
	"fmt"
	"io/fs"
	"math"

	"github.com/lafriks/go-tiled"

	"github.com/tatianab/levelforge/internal/models"
)

// Layer and object group names read from the map.
const (
	WallLayer   = "walls"
	MarkerGroup = "markers"
	SpyGroup    = "spies"
)

// Import loads the TMX file at path from fsys and converts it.
func Import(fsys fs.FS, path string) (*models.Level, error) {
	m, err := tiled.LoadFile(path, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", path, err)
	}
	level, err := Convert(m)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", path, err)
	}
	return level, nil
}

// Convert turns a loaded map into a level definition.
func Convert(m *tiled.Map) (*models.Level, error) {
	if m.Width < 3 || m.Height < 3 {
		return nil, fmt.Errorf("map is %dx%d, need at least 3x3", m.Height, m.Width)
	}
	if m.TileWidth <= 0 || m.TileHeight <= 0 {
		return nil, fmt.Errorf("bad tile size %dx%d", m.TileWidth, m.TileHeight)
	}

	solid, err := wallCells(m)
	if err != nil {
		return nil, err
	}
	level := &models.Level{
		Dimensions: []int{m.Height, m.Width},
		Walls:      Walls(solid),
		Openings:   Openings(solid),
	}

	c := converter{tileW: float64(m.TileWidth), tileH: float64(m.TileHeight)}
	for _, og := range m.ObjectGroups {
		switch og.Name {
		case MarkerGroup:
			for _, o := range og.Objects {
				switch o.Name {
				case "start":
					level.Start = c.cell(o.X, o.Y)
				case "exit":
					level.Exit = c.cell(o.X, o.Y)
				}
			}
		case SpyGroup:
			for _, o := range og.Objects {
				spy, err := c.spy(o)
				if err != nil {
					return nil, err
				}
				level.Spies = append(level.Spies, spy)
			}
		}
	}
	return level, nil
}

func wallCells(m *tiled.Map) ([][]bool, error) {
	for _, layer := range m.Layers {
		if layer.Name != WallLayer {
			continue
		}
		if len(layer.Tiles) < m.Width*m.Height {
			return nil, fmt.Errorf("layer %q has %d tiles, want %d", WallLayer, len(layer.Tiles), m.Width*m.Height)
		}
		solid := make([][]bool, m.Height)
		for y := 0; y < m.Height; y++ {
			solid[y] = make([]bool, m.Width)
			for x := 0; x < m.Width; x++ {
				tile := layer.Tiles[y*m.Width+x]
				solid[y][x] = tile != nil && !tile.IsNil()
			}
		}
		return solid, nil
	}
	return nil, fmt.Errorf("no %q tile layer", WallLayer)
}

type converter struct {
	tileW, tileH float64
}

// cell maps pixel coordinates to a 1-indexed [row, col].
func (c converter) cell(x, y float64) []int {
	return []int{int(math.Floor(y/c.tileH)) + 1, int(math.Floor(x/c.tileW)) + 1}
}

func (c converter) spy(o *tiled.Object) (models.SpyDef, error) {
	def := models.SpyDef{
		ID:        o.Name,
		Pattern:   o.Properties.GetString("pattern"),
		Direction: o.Properties.GetString("direction"),
	}
	if speed := o.Properties.GetFloat("speed"); speed != 0 {
		def.Speed = &speed
	}

	if len(o.PolyLines) == 0 || o.PolyLines[0].Points == nil {
		return models.SpyDef{}, fmt.Errorf("spy %q has no polyline route", o.Name)
	}
	var points [][]int
	for _, pt := range *o.PolyLines[0].Points {
		cell := c.cell(o.X+pt.X, o.Y+pt.Y)
		if n := len(points); n > 0 && points[n-1][0] == cell[0] && points[n-1][1] == cell[1] {
			continue
		}
		points = append(points, cell)
	}
	if len(points) < 2 {
		return models.SpyDef{}, fmt.Errorf("spy %q route covers a single cell", o.Name)
	}

	if def.Pattern == "" {
		def.Pattern = InferPattern(points)
	}
	switch def.Pattern {
	case "horizontal", "vertical":
		def.Endpoints = [][]int{points[0], points[len(points)-1]}
	default:
		// A closed polyline repeats its first point.
		if n := len(points); n > 2 && points[0][0] == points[n-1][0] && points[0][1] == points[n-1][1] {
			points = points[:n-1]
		}
		def.Waypoints = points
	}
	return def, nil
}

// InferPattern picks the patrol pattern for a route drawn without one:
// a two point route on one row or column patrols back and forth, anything
// else loops.
func InferPattern(points [][]int) string {
	if len(points) == 2 {
		switch {
		case points[0][0] == points[1][0]:
			return "horizontal"
		case points[0][1] == points[1][1]:
			return "vertical"
		}
	}
	return "loop"
}

// Walls collapses the solid interior cells into wall lines. Horizontal runs
// of two or more cells become hlines; the remaining cells are joined into
// vlines, which may be a single cell long. The border is left out since
// every level is walled in.
func Walls(solid [][]bool) []models.WallDef {
	rows := len(solid)
	if rows == 0 {
		return nil
	}
	cols := len(solid[0])
	interior := func(r, c int) bool { return r > 0 && r < rows-1 && c > 0 && c < cols-1 && solid[r][c] }

	var walls []models.WallDef
	covered := make([][]bool, rows)
	for r := range covered {
		covered[r] = make([]bool, cols)
	}
	for r := 1; r < rows-1; r++ {
		for c := 1; c < cols-1; {
			if !interior(r, c) {
				c++
				continue
			}
			end := c
			for interior(r, end+1) {
				end++
			}
			if end > c {
				walls = append(walls, models.WallDef{Type: "hline", Line: []int{r + 1, c + 1, end + 1}})
				for i := c; i <= end; i++ {
					covered[r][i] = true
				}
			}
			c = end + 1
		}
	}

	single := func(r, c int) bool { return interior(r, c) && !covered[r][c] }
	for c := 1; c < cols-1; c++ {
		for r := 1; r < rows-1; {
			if !single(r, c) {
				r++
				continue
			}
			end := r
			for single(end+1, c) {
				end++
			}
			walls = append(walls, models.WallDef{Type: "vline", Line: []int{c + 1, r + 1, end + 1}})
			r = end + 1
		}
	}
	return walls
}

// Openings returns a point opening for every border cell that is not solid.
func Openings(solid [][]bool) []models.OpeningDef {
	rows := len(solid)
	if rows == 0 {
		return nil
	}
	cols := len(solid[0])
	var out []models.OpeningDef
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			border := r == 0 || r == rows-1 || c == 0 || c == cols-1
			if border && !solid[r][c] {
				out = append(out, models.OpeningDef{Type: "point", Pos: []int{r + 1, c + 1}})
			}
		}
	}
	return out
}
