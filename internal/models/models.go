package models

import (
	"fmt"

	"github.com/tatianab/levelforge/internal/grid"
	"github.com/tatianab/levelforge/internal/patrol"
)

// Level is the declarative definition read from level.yaml.
// All positions are 1-indexed [row, col] pairs.
type Level struct {
	ID                int          `yaml:"id,omitempty"`
	Dimensions        []int        `yaml:"dimensions"` // [rows, cols]
	Start             []int        `yaml:"start,omitempty"`
	Exit              []int        `yaml:"exit,omitempty"`
	Commands          []Command    `yaml:"commands,omitempty"`
	BlockedCategories []string     `yaml:"blocked_categories,omitempty"`
	Features          []string     `yaml:"features,omitempty"`
	Walls             []WallDef    `yaml:"walls,omitempty"`
	Openings          []OpeningDef `yaml:"openings,omitempty"`
	Spies             []SpyDef     `yaml:"spies,omitempty"`
}

// Command is a key the level teaches, e.g. {key: h, desc: left}.
type Command struct {
	Key  string `yaml:"key"`
	Desc string `yaml:"desc"`
}

// WallDef is a raw wall entry: rect [top, left, height, width],
// hline [row, col_start, col_end] or vline [col, row_start, row_end].
type WallDef struct {
	Type string `yaml:"type"`
	Rect []int  `yaml:"rect,omitempty"`
	Line []int  `yaml:"line,omitempty"`
}

// OpeningDef is a raw opening entry: point pos [row, col], hline or vline.
type OpeningDef struct {
	Type string `yaml:"type"`
	Pos  []int  `yaml:"pos,omitempty"`
	Line []int  `yaml:"line,omitempty"`
}

// SpyDef is a raw spy entry.
type SpyDef struct {
	ID        string   `yaml:"id"`
	Pattern   string   `yaml:"pattern"` // horizontal, vertical or loop
	Endpoints [][]int  `yaml:"endpoints,omitempty"`
	Waypoints [][]int  `yaml:"waypoints,omitempty"`
	Direction string   `yaml:"direction,omitempty"` // cw or ccw, loop only
	Spawn     []int    `yaml:"spawn,omitempty"`
	Speed     *float64 `yaml:"speed,omitempty"`
}

// Lore is the narrative text read from lore.json.
type Lore struct {
	Title        string `json:"title" yaml:"title"`
	Description  string `json:"description" yaml:"description"`
	Objective    string `json:"objective" yaml:"objective"`
	Quote        string `json:"quote" yaml:"quote"`
	VictoryQuote string `json:"victory_quote" yaml:"victory_quote"`
}

// DefaultSpeed is used when a spy does not set one.
const DefaultSpeed = 1.0

// ConfigError reports a level definition that cannot be compiled.
type ConfigError struct {
	Level string // level directory, when known
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Level != "" {
		return fmt.Sprintf("%s: %s: %v", e.Level, e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func configErrorf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Err: fmt.Errorf(format, args...)}
}

// Position converts a [row, col] pair.
func Position(field string, v []int) (grid.Position, error) {
	if len(v) != 2 {
		return grid.Position{}, configErrorf(field, "expected [row, col], got %v", v)
	}
	return grid.Pos(v[0], v[1]), nil
}

// OptionalPosition converts a pair that may be absent.
func OptionalPosition(field string, v []int) (*grid.Position, error) {
	if v == nil {
		return nil, nil
	}
	p, err := Position(field, v)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GridSpec converts the geometry of the level.
func (l *Level) GridSpec() (grid.Spec, error) {
	if len(l.Dimensions) != 2 {
		return grid.Spec{}, configErrorf("dimensions", "expected [rows, cols], got %v", l.Dimensions)
	}
	spec := grid.Spec{Rows: l.Dimensions[0], Cols: l.Dimensions[1]}

	for i, w := range l.Walls {
		shape, err := w.Shape()
		if err != nil {
			return grid.Spec{}, &ConfigError{Field: fmt.Sprintf("walls[%d]", i), Err: err}
		}
		spec.Walls = append(spec.Walls, shape)
	}
	for i, o := range l.Openings {
		shape, err := o.Shape()
		if err != nil {
			return grid.Spec{}, &ConfigError{Field: fmt.Sprintf("openings[%d]", i), Err: err}
		}
		spec.Openings = append(spec.Openings, shape)
	}

	exit, err := OptionalPosition("exit", l.Exit)
	if err != nil {
		return grid.Spec{}, err
	}
	spec.Exit = exit
	return spec, nil
}

// Shape converts a wall entry.
func (w WallDef) Shape() (grid.WallShape, error) {
	switch w.Type {
	case "rect":
		if len(w.Rect) != 4 {
			return nil, fmt.Errorf("rect wants [top, left, height, width], got %v", w.Rect)
		}
		return grid.Rect{Top: w.Rect[0], Left: w.Rect[1], Height: w.Rect[2], Width: w.Rect[3]}, nil
	case "hline", "vline":
		return lineShape(w.Type, w.Line)
	}
	return nil, fmt.Errorf("unknown wall type %q", w.Type)
}

// Shape converts an opening entry.
func (o OpeningDef) Shape() (grid.OpeningShape, error) {
	switch o.Type {
	case "point":
		if len(o.Pos) != 2 {
			return nil, fmt.Errorf("point wants pos [row, col], got %v", o.Pos)
		}
		return grid.Point{Pos: grid.Pos(o.Pos[0], o.Pos[1])}, nil
	case "hline", "vline":
		return lineShape(o.Type, o.Line)
	}
	return nil, fmt.Errorf("unknown opening type %q", o.Type)
}

// line shapes are both walls and openings.
type line interface {
	grid.WallShape
	grid.OpeningShape
}

func lineShape(kind string, v []int) (line, error) {
	if len(v) != 3 {
		return nil, fmt.Errorf("%s wants line [a, start, end], got %v", kind, v)
	}
	if kind == "hline" {
		return grid.HLine{Row: v[0], ColStart: v[1], ColEnd: v[2]}, nil
	}
	return grid.VLine{Col: v[0], RowStart: v[1], RowEnd: v[2]}, nil
}

// Spy converts a spy entry into its compiled form.
func (s SpyDef) Spy() (patrol.Spy, error) {
	field := fmt.Sprintf("spy %q", s.ID)
	spy := patrol.Spy{ID: s.ID, Speed: DefaultSpeed}
	if s.Speed != nil {
		spy.Speed = *s.Speed
	}

	var err error
	if spy.Spawn, err = OptionalPosition(field+" spawn", s.Spawn); err != nil {
		return patrol.Spy{}, err
	}

	switch s.Pattern {
	case "horizontal", "vertical":
		if len(s.Endpoints) != 2 {
			return patrol.Spy{}, configErrorf(field, "%s pattern needs exactly 2 endpoints, got %d", s.Pattern, len(s.Endpoints))
		}
		var ends [2]grid.Position
		for i, e := range s.Endpoints {
			if ends[i], err = Position(field+" endpoints", e); err != nil {
				return patrol.Spy{}, err
			}
		}
		if s.Pattern == "horizontal" {
			spy.Pattern = patrol.Horizontal{Endpoints: ends}
		} else {
			spy.Pattern = patrol.Vertical{Endpoints: ends}
		}
	case "loop":
		winding, err := patrol.ParseWinding(s.Direction)
		if err != nil {
			return patrol.Spy{}, &ConfigError{Field: field, Err: err}
		}
		loop := patrol.Loop{Winding: winding}
		for _, w := range s.Waypoints {
			p, err := Position(field+" waypoints", w)
			if err != nil {
				return patrol.Spy{}, err
			}
			loop.Waypoints = append(loop.Waypoints, p)
		}
		spy.Pattern = loop
	default:
		return patrol.Spy{}, &ConfigError{Field: field, Err: &patrol.UnknownPatternError{Pattern: s.Pattern}}
	}
	return spy, nil
}
