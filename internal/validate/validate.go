// Package validate re-reads persisted level artifacts and checks them
// against each other: meta.vim against the measured maze.txt, and every spy
// route against the maze.
package validate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tatianab/levelforge/internal/grid"
	"github.com/tatianab/levelforge/internal/models"
	"github.com/tatianab/levelforge/internal/patrol"
	"github.com/tatianab/levelforge/internal/report"
	"github.com/tatianab/levelforge/internal/vimlit"
	"github.com/tatianab/levelforge/internal/walker"
)

// Level validates the artifacts in dir.
func Level(dir string) *report.Report {
	rep := &report.Report{}
	a, present, err := models.ReadArtifacts(dir)
	if err != nil {
		rep.Addf(report.IO, report.MissingFile, dir, nil, "%v", err)
		return rep
	}
	if !present[models.MetaFile] {
		rep.Addf(report.IO, report.MissingFile, dir, nil, "%s not found", models.MetaFile)
		return rep
	}
	if !present[models.MazeFile] {
		rep.Addf(report.IO, report.MissingFile, dir, nil, "%s not found", models.MazeFile)
		return rep
	}
	spies := ""
	if present[models.SpiesFile] {
		spies = a.Spies
	}
	rep.Merge(Documents(dir, a.Meta, a.Maze, spies))
	return rep
}

// Documents validates artifact contents. prefix names the level in every
// violation; spies may be empty.
func Documents(prefix, metaText, mazeText, spiesText string) *report.Report {
	rep := &report.Report{}

	v, err := vimlit.Parse(metaText)
	if err != nil {
		rep.Addf(report.Parse, report.Unparsable, prefix, nil, "failed to parse %s: %v", models.MetaFile, err)
		return rep
	}
	meta, ok := v.(vimlit.Dict)
	if !ok {
		rep.Addf(report.Parse, report.Unparsable, prefix, nil, "%s holds a %s, want a dict", models.MetaFile, vimlit.TypeName(v))
		return rep
	}

	g := grid.Parse(mazeText)
	checkDimensions(rep, prefix, meta, g)
	checkCursor(rep, prefix, meta, "start_cursor", g)
	checkCursor(rep, prefix, meta, "exit_cursor", g)

	if raw, ok := meta.Get("spies"); ok {
		checkSpies(rep, prefix, raw, g)
	}
	if spiesText != "" {
		v, err := vimlit.Parse(spiesText)
		if err != nil {
			rep.Addf(report.Parse, report.Unparsable, prefix, nil, "failed to parse %s: %v", models.SpiesFile, err)
			return rep
		}
		checkSpies(rep, prefix, v, g)
	}
	return rep
}

// All validates every level directory under root.
func All(root string) (*report.Report, error) {
	levels, err := models.ScanLevels(root)
	if err != nil {
		return nil, err
	}
	rep := &report.Report{}
	for _, name := range levels {
		rep.Merge(Level(filepath.Join(root, name)))
	}
	return rep, nil
}

// Paths validates the named level directories. A path that does not exist
// is reported rather than returned as an error.
func Paths(paths []string) *report.Report {
	rep := &report.Report{}
	for _, p := range paths {
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			rep.Addf(report.IO, report.MissingFile, p, nil, "directory not found")
			continue
		}
		rep.Merge(Level(p))
	}
	return rep
}

func checkDimensions(rep *report.Report, prefix string, meta vimlit.Dict, g *grid.Grid) {
	raw, ok := meta.Get("maze")
	if !ok {
		rep.Addf(report.Config, report.MissingField, prefix, nil, "missing 'maze' in metadata")
		return
	}
	maze, ok := raw.(vimlit.Dict)
	if !ok {
		rep.Addf(report.Config, report.BadField, prefix, nil, "'maze' is a %s, want a dict", vimlit.TypeName(raw))
		return
	}
	for _, dim := range []struct {
		key    string
		actual int
	}{
		{"lines", g.Rows()},
		{"cols", g.Cols()},
	} {
		expected := int64(0)
		if v, ok := maze.Get(dim.key); ok {
			n, ok := v.(vimlit.Int)
			if !ok {
				rep.Addf(report.Config, report.BadField, prefix, nil, "maze.%s is a %s, want an int", dim.key, vimlit.TypeName(v))
				continue
			}
			expected = int64(n)
		}
		if expected != int64(dim.actual) {
			rep.Addf(report.Format, report.DimensionMismatch, prefix, nil,
				"maze.%s mismatch - meta says %d, actual is %d", dim.key, expected, dim.actual)
		}
	}
}

func checkCursor(rep *report.Report, prefix string, meta vimlit.Dict, key string, g *grid.Grid) {
	raw, ok := meta.Get(key)
	if !ok {
		rep.Addf(report.Config, report.MissingField, prefix, nil, "missing %s", key)
		return
	}
	p, err := position(raw)
	if err != nil {
		rep.Addf(report.Config, report.BadField, prefix, nil, "%s: %v", key, err)
		return
	}
	rep.Extend(walker.Cursor(g, key, p, prefix)...)
}

func checkSpies(rep *report.Report, prefix string, raw vimlit.Value, g *grid.Grid) {
	list, ok := raw.(vimlit.List)
	if !ok {
		rep.Addf(report.Config, report.BadField, prefix, nil, "spies is a %s, want a list", vimlit.TypeName(raw))
		return
	}
	for _, item := range list {
		checkSpy(rep, prefix, item, g)
	}
}

func checkSpy(rep *report.Report, prefix string, item vimlit.Value, g *grid.Grid) {
	spy, ok := item.(vimlit.Dict)
	if !ok {
		rep.Addf(report.Config, report.BadField, prefix, nil, "spy entry is a %s, want a dict", vimlit.TypeName(item))
		return
	}
	id := "unknown"
	if v, ok := spy.Get("id"); ok {
		if s, ok := v.(vimlit.String); ok {
			id = string(s)
		}
	}
	label := fmt.Sprintf("%s spy '%s'", prefix, id)

	rawSpawn, ok := spy.Get("spawn")
	if !ok {
		rep.Addf(report.Config, report.MissingField, label, nil, "missing spawn position")
		return
	}
	spawn, err := position(rawSpawn)
	if err != nil {
		rep.Addf(report.Config, report.BadField, label, nil, "spawn: %v", err)
		return
	}

	rawRoute, ok := spy.Get("route")
	if !ok {
		rep.Addf(report.Config, report.MissingField, label, nil, "missing route")
		return
	}
	route, tokens, err := decodeRoute(rawRoute)
	if err != nil {
		rep.Addf(report.Config, report.BadField, label, nil, "route: %v", err)
		return
	}
	rep.Extend(walker.WalkTokens(g, spawn, route, tokens, label).Violations...)
}

func position(v vimlit.Value) (grid.Position, error) {
	l, ok := v.(vimlit.List)
	if !ok || len(l) != 2 {
		return grid.Position{}, fmt.Errorf("want [line, col], got %s", vimlit.TypeName(v))
	}
	row, ok1 := l[0].(vimlit.Int)
	col, ok2 := l[1].(vimlit.Int)
	if !ok1 || !ok2 {
		return grid.Position{}, fmt.Errorf("want integer coordinates")
	}
	return grid.Pos(int(row), int(col)), nil
}

// decodeRoute reads route vectors along with the direction of each leg as
// written. An unknown direction becomes patrol.Invalid so the walker
// reports it against the right leg.
func decodeRoute(v vimlit.Value) (patrol.Route, []string, error) {
	l, ok := v.(vimlit.List)
	if !ok {
		return nil, nil, fmt.Errorf("want a list, got %s", vimlit.TypeName(v))
	}
	route := make(patrol.Route, 0, len(l))
	tokens := make([]string, 0, len(l))
	for i, item := range l {
		d, ok := item.(vimlit.Dict)
		if !ok {
			return nil, nil, fmt.Errorf("leg %d is a %s, want a dict", i+1, vimlit.TypeName(item))
		}
		rawEnd, ok := d.Get("end")
		if !ok {
			return nil, nil, fmt.Errorf("leg %d has no end", i+1)
		}
		end, err := position(rawEnd)
		if err != nil {
			return nil, nil, fmt.Errorf("leg %d end: %w", i+1, err)
		}
		rawDir, ok := d.Get("dir")
		if !ok {
			return nil, nil, fmt.Errorf("leg %d has no dir", i+1)
		}
		token, ok := rawDir.(vimlit.String)
		if !ok {
			return nil, nil, fmt.Errorf("leg %d dir is a %s, want a string", i+1, vimlit.TypeName(rawDir))
		}
		dir, err := patrol.ParseDirection(string(token))
		if err != nil {
			dir = patrol.Invalid
		}
		route = append(route, patrol.RouteVector{End: end, Dir: dir})
		tokens = append(tokens, string(token))
	}
	return route, tokens, nil
}
