// Package report collects validation findings. Findings are structured
// records so callers can filter by category or code without parsing text.
package report

import (
	"fmt"
	"strings"

	"github.com/tatianab/levelforge/internal/grid"
)

// Category groups violations by how callers should treat them.
type Category uint8

const (
	Config   Category = iota // unusable input definition
	Geometry                 // spawn or route problems
	Format                   // persisted artifact disagrees with itself
	Parse                    // malformed literal text
	IO                       // missing or unreadable files
)

func (c Category) String() string {
	switch c {
	case Config:
		return "config"
	case Geometry:
		return "geometry"
	case Format:
		return "format"
	case Parse:
		return "parse"
	case IO:
		return "io"
	}
	return fmt.Sprintf("category(%d)", c)
}

// Code identifies the specific check that failed.
type Code string

const (
	SpawnOutOfBounds  Code = "spawn_out_of_bounds"
	SpawnOnWall       Code = "spawn_on_wall"
	RouteOutOfBounds  Code = "route_out_of_bounds"
	RouteHitsWall     Code = "route_hits_wall"
	RouteNotClosed    Code = "route_not_closed"
	InvalidDirection  Code = "invalid_direction"
	EmptyRoute        Code = "empty_route"
	MissingField      Code = "missing_field"
	BadField          Code = "bad_field"
	DuplicateID       Code = "duplicate_id"
	DimensionMismatch Code = "dimension_mismatch"
	CursorOutOfBounds Code = "cursor_out_of_bounds"
	CursorOnWall      Code = "cursor_on_wall"
	Unparsable        Code = "unparsable"
	MissingFile       Code = "missing_file"
	BadSpec           Code = "bad_spec"
)

// Violation is one recorded finding.
type Violation struct {
	Category Category
	Code     Code
	Subject  string         // level path, spy label, ...
	Pos      *grid.Position // offending cell, when there is one
	Message  string
}

func (v Violation) String() string {
	if v.Subject == "" {
		return v.Message
	}
	return v.Subject + ": " + v.Message
}

// Report accumulates violations in the order they were found.
// The zero value is ready to use.
type Report struct {
	items []Violation
}

// Add records v.
func (r *Report) Add(v Violation) {
	r.items = append(r.items, v)
}

// Addf records a violation with a formatted message.
func (r *Report) Addf(cat Category, code Code, subject string, pos *grid.Position, format string, args ...any) {
	r.Add(Violation{
		Category: cat,
		Code:     code,
		Subject:  subject,
		Pos:      pos,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Extend records vs in order.
func (r *Report) Extend(vs ...Violation) {
	r.items = append(r.items, vs...)
}

// Merge records every violation of other.
func (r *Report) Merge(other *Report) {
	if other != nil {
		r.Extend(other.items...)
	}
}

// Violations returns the recorded violations.
func (r *Report) Violations() []Violation {
	return r.items
}

// Len returns the number of violations.
func (r *Report) Len() int { return len(r.items) }

// OK reports whether nothing was recorded.
func (r *Report) OK() bool { return len(r.items) == 0 }

// Filter returns the violations of one category.
func (r *Report) Filter(cat Category) []Violation {
	var out []Violation
	for _, v := range r.items {
		if v.Category == cat {
			out = append(out, v)
		}
	}
	return out
}

// Has reports whether any violation carries code.
func (r *Report) Has(code Code) bool {
	for _, v := range r.items {
		if v.Code == code {
			return true
		}
	}
	return false
}

// Strings renders every violation as "subject: message".
func (r *Report) Strings() []string {
	out := make([]string, len(r.items))
	for i, v := range r.items {
		out[i] = v.String()
	}
	return out
}

// Err returns nil for an empty report and an *Error otherwise.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return &Error{Violations: r.items}
}

// Error is a non-empty report used as an error value.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	lines := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		lines[i] = v.String()
	}
	return fmt.Sprintf("%d violation(s):\n  - %s", len(e.Violations), strings.Join(lines, "\n  - "))
}
