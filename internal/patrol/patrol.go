// Package patrol turns declarative patrol patterns into routes: ordered
// legs, each holding one direction until a target position is reached.
package patrol

import (
	"errors"
	"fmt"

	"github.com/tatianab/levelforge/internal/grid"
)

// Direction is the heading of one route leg. The zero value is Invalid.
type Direction uint8

const (
	Invalid Direction = iota
	Up
	Down
	Left
	Right
)

var directionNames = [...]string{
	Invalid: "invalid",
	Up:      "up",
	Down:    "down",
	Left:    "left",
	Right:   "right",
}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return directionNames[Invalid]
}

// ParseDirection maps "up", "down", "left" and "right" to a Direction.
func ParseDirection(s string) (Direction, error) {
	for d := Up; d <= Right; d++ {
		if directionNames[d] == s {
			return d, nil
		}
	}
	return Invalid, fmt.Errorf("invalid direction %q", s)
}

// Step moves p one cell in d. ok is false for Invalid.
func (d Direction) Step(p grid.Position) (next grid.Position, ok bool) {
	switch d {
	case Up:
		p.Row--
	case Down:
		p.Row++
	case Left:
		p.Col--
	case Right:
		p.Col++
	default:
		return p, false
	}
	return p, true
}

// Winding is the traversal order of a Loop.
type Winding uint8

const (
	Clockwise Winding = iota
	CounterClockwise
)

// ParseWinding accepts "cw" and "ccw". An empty string means clockwise.
func ParseWinding(s string) (Winding, error) {
	switch s {
	case "", "cw":
		return Clockwise, nil
	case "ccw":
		return CounterClockwise, nil
	}
	return Clockwise, fmt.Errorf("invalid loop direction %q", s)
}

func (w Winding) String() string {
	if w == CounterClockwise {
		return "ccw"
	}
	return "cw"
}

// Pattern is one of Horizontal, Vertical or Loop.
type Pattern interface {
	pattern()
}

// Horizontal patrols back and forth between two cells of the same row.
type Horizontal struct {
	Endpoints [2]grid.Position
}

// Vertical patrols back and forth between two cells of the same column.
type Vertical struct {
	Endpoints [2]grid.Position
}

// Loop visits Waypoints in order and wraps from the last back to the first.
type Loop struct {
	Waypoints []grid.Position
	Winding   Winding
}

func (Horizontal) pattern() {}
func (Vertical) pattern()   {}
func (Loop) pattern()       {}

// RouteVector is one leg: move in Dir until End is reached.
type RouteVector struct {
	End grid.Position
	Dir Direction
}

// Route is a closed sequence of legs walked from a spawn.
type Route []RouteVector

// ErrTooFewWaypoints is returned for a Loop with fewer than two waypoints.
var ErrTooFewWaypoints = errors.New("loop needs at least 2 waypoints")

// UnknownPatternError reports a pattern tag the planner does not know.
type UnknownPatternError struct {
	Pattern string
}

func (e *UnknownPatternError) Error() string {
	return fmt.Sprintf("unknown pattern: %s", e.Pattern)
}

// NoSpawnError reports a spy whose spawn cannot be derived.
type NoSpawnError struct {
	Spy string
}

func (e *NoSpawnError) Error() string {
	return fmt.Sprintf("spy %q: cannot determine spawn position", e.Spy)
}

// Plan converts a pattern into its route.
//
// A counter-clockwise Loop over w0, w1, ..., wN-1 visits w0, wN-1, ..., w1
// and back to w0. This is the clockwise cycle reversed, not the waypoint
// list reversed, so the route still starts and ends at the first waypoint.
func Plan(p Pattern) (Route, error) {
	switch p := p.(type) {
	case Horizontal:
		a, b := p.Endpoints[0], p.Endpoints[1]
		if b.Col > a.Col {
			return Route{{End: b, Dir: Right}, {End: a, Dir: Left}}, nil
		}
		return Route{{End: b, Dir: Left}, {End: a, Dir: Right}}, nil

	case Vertical:
		a, b := p.Endpoints[0], p.Endpoints[1]
		if b.Row > a.Row {
			return Route{{End: b, Dir: Down}, {End: a, Dir: Up}}, nil
		}
		return Route{{End: b, Dir: Up}, {End: a, Dir: Down}}, nil

	case Loop:
		if len(p.Waypoints) < 2 {
			return nil, ErrTooFewWaypoints
		}
		wps := p.Waypoints
		if p.Winding == CounterClockwise {
			wps = make([]grid.Position, 0, len(p.Waypoints))
			wps = append(wps, p.Waypoints[0])
			for i := len(p.Waypoints) - 1; i > 0; i-- {
				wps = append(wps, p.Waypoints[i])
			}
		}
		route := make(Route, 0, len(wps))
		for i, cur := range wps {
			next := wps[(i+1)%len(wps)]
			route = append(route, RouteVector{End: next, Dir: heading(cur, next)})
		}
		return route, nil
	}
	return nil, &UnknownPatternError{Pattern: fmt.Sprintf("%T", p)}
}

// heading checks rows before columns. A diagonal pair therefore gets the
// vertical direction only.
func heading(from, to grid.Position) Direction {
	switch {
	case to.Row < from.Row:
		return Up
	case to.Row > from.Row:
		return Down
	case to.Col < from.Col:
		return Left
	default:
		return Right
	}
}

// Spy is a compiled patrol.
type Spy struct {
	ID      string
	Pattern Pattern
	Spawn   *grid.Position
	Speed   float64
}

// SpawnPos returns the explicit spawn if set, otherwise the first endpoint
// or waypoint of the pattern.
func SpawnPos(s Spy) (grid.Position, error) {
	if s.Spawn != nil {
		return *s.Spawn, nil
	}
	switch p := s.Pattern.(type) {
	case Horizontal:
		return p.Endpoints[0], nil
	case Vertical:
		return p.Endpoints[0], nil
	case Loop:
		if len(p.Waypoints) > 0 {
			return p.Waypoints[0], nil
		}
	}
	return grid.Position{}, &NoSpawnError{Spy: s.ID}
}
