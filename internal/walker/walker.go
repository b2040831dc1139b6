// Package walker checks that a patrol route is playable on a grid by
// stepping through it one cell at a time.
package walker

import (
	"github.com/tatianab/levelforge/internal/grid"
	"github.com/tatianab/levelforge/internal/patrol"
	"github.com/tatianab/levelforge/internal/report"
)

// Result is the outcome of walking one spy.
type Result struct {
	Violations []report.Violation
	Trace      []grid.Position // spawn followed by every cell stepped on
	End        grid.Position
	Aborted    bool
}

// OK reports whether the walk found nothing wrong.
func (r Result) OK() bool { return len(r.Violations) == 0 }

// Walk steps through route from spawn. label prefixes every violation.
//
// Spawn problems are recorded and walking continues. The first bad leg
// stops the walk: an invalid direction, even on a leg that needs no step,
// or a step out of bounds or into a wall. The closure check is only made
// for a walk that finished every leg.
func Walk(g *grid.Grid, spawn grid.Position, route patrol.Route, label string) Result {
	return WalkTokens(g, spawn, route, nil, label)
}

// WalkTokens is Walk for a route read back from text. tokens[i] is the
// direction of leg i as written, and names it when it is not a direction.
func WalkTokens(g *grid.Grid, spawn grid.Position, route patrol.Route, tokens []string, label string) Result {
	var rep report.Report

	switch {
	case !g.InBounds(spawn):
		rep.Addf(report.Geometry, report.SpawnOutOfBounds, label, ptr(spawn),
			"spawn %v out of bounds (1-%d, 1-%d)", spawn, g.Rows(), g.Cols())
	case g.IsWall(spawn):
		rep.Addf(report.Geometry, report.SpawnOnWall, label, ptr(spawn),
			"spawn %v is inside a wall", spawn)
	}

	res := Result{Trace: []grid.Position{spawn}, End: spawn}
	if len(route) == 0 {
		rep.Addf(report.Geometry, report.EmptyRoute, label, nil, "empty route")
		res.Violations = rep.Violations()
		return res
	}

	pos := spawn
walk:
	for i, leg := range route {
		if _, ok := leg.Dir.Step(pos); !ok {
			token := leg.Dir.String()
			if i < len(tokens) {
				token = tokens[i]
			}
			rep.Addf(report.Geometry, report.InvalidDirection, label, ptr(pos),
				"invalid direction '%s' in leg %d", token, i+1)
			res.Aborted = true
			break
		}
		for pos != leg.End {
			pos, _ = leg.Dir.Step(pos)
			res.Trace = append(res.Trace, pos)
			if !g.InBounds(pos) {
				rep.Addf(report.Geometry, report.RouteOutOfBounds, label, ptr(pos),
					"route goes out of bounds at %v", pos)
				res.Aborted = true
				break walk
			}
			if g.IsWall(pos) {
				rep.Addf(report.Geometry, report.RouteHitsWall, label, ptr(pos),
					"route hits wall at %v", pos)
				res.Aborted = true
				break walk
			}
		}
	}
	res.End = pos

	if !res.Aborted && pos != spawn {
		rep.Addf(report.Geometry, report.RouteNotClosed, label, ptr(pos),
			"route does not return to spawn: ends at %v, spawn is %v", pos, spawn)
	}
	res.Violations = rep.Violations()
	return res
}

func ptr(p grid.Position) *grid.Position { return &p }

// Cursor checks that a named cursor such as start_cursor lies inside g and
// off the walls.
func Cursor(g *grid.Grid, name string, p grid.Position, label string) []report.Violation {
	var rep report.Report
	switch {
	case p.Row < 1 || p.Row > g.Rows():
		rep.Addf(report.Geometry, report.CursorOutOfBounds, label, ptr(p),
			"%s line %d out of bounds (1-%d)", name, p.Row, g.Rows())
	case p.Col < 1 || p.Col > g.Cols():
		rep.Addf(report.Geometry, report.CursorOutOfBounds, label, ptr(p),
			"%s col %d out of bounds (1-%d)", name, p.Col, g.Cols())
	case g.IsWall(p):
		rep.Addf(report.Geometry, report.CursorOnWall, label, ptr(p),
			"%s %v is on a wall", name, p)
	}
	return rep.Violations()
}
