// Package builder compiles a level definition into its persisted artifacts
// and checks that every spy can walk its patrol.
package builder

import (
	"fmt"
	"strings"

	"github.com/tatianab/levelforge/internal/grid"
	"github.com/tatianab/levelforge/internal/models"
	"github.com/tatianab/levelforge/internal/patrol"
	"github.com/tatianab/levelforge/internal/report"
	"github.com/tatianab/levelforge/internal/vimlit"
	"github.com/tatianab/levelforge/internal/walker"
)

// Comment headers written above the literal documents.
var (
	MetaHeader = []string{
		`" Level metadata`,
		`" Generated by levelforge - do not edit manually`,
	}
	SpiesHeader = []string{
		`" Spy patrol data for this level`,
		`" Generated by levelforge - do not edit manually`,
	}
)

// Artifacts is the compiled form of one level.
type Artifacts struct {
	Grid  *grid.Grid
	Spies []Spy
	Files models.Artifacts
}

// Spy is a spy with its spawn resolved and its route planned.
type Spy struct {
	patrol.Spy
	SpawnAt grid.Position
	Route   patrol.Route
}

// MarshalLiteral renders the spies.vim entry of s.
func (s Spy) MarshalLiteral() (vimlit.Value, error) {
	route := make(vimlit.List, len(s.Route))
	for i, v := range s.Route {
		route[i] = vimlit.Dict{
			{Key: "end", Value: position(v.End)},
			{Key: "dir", Value: vimlit.String(v.Dir.String())},
		}
	}
	return vimlit.Dict{
		{Key: "id", Value: vimlit.String(s.ID)},
		{Key: "spawn", Value: position(s.SpawnAt)},
		{Key: "route", Value: route},
		{Key: "speed", Value: vimlit.Float(s.Speed)},
	}, nil
}

func position(p grid.Position) vimlit.List {
	return vimlit.List{vimlit.Int(p.Row), vimlit.Int(p.Col)}
}

// Build compiles level. Definition errors that stop compilation are
// returned as errors; problems with the compiled level (walls in the way,
// duplicate ids, missing cursors) are collected in the report.
func Build(level *models.Level, lore *models.Lore) (*Artifacts, *report.Report, error) {
	if lore == nil {
		lore = &models.Lore{}
	}
	spec, err := level.GridSpec()
	if err != nil {
		return nil, nil, err
	}
	g, err := grid.Compile(spec)
	if err != nil {
		return nil, nil, &models.ConfigError{Field: "dimensions", Err: err}
	}

	rep := &report.Report{}
	out := &Artifacts{Grid: g}

	seen := make(map[string]bool)
	for i, def := range level.Spies {
		label := def.ID
		if label == "" {
			label = fmt.Sprintf("spies[%d]", i)
			rep.Addf(report.Config, report.MissingField, label, nil, "missing id")
		} else if seen[def.ID] {
			rep.Addf(report.Config, report.DuplicateID, label, nil, "duplicate spy id %q", def.ID)
		}
		seen[def.ID] = true

		spy, err := compileSpy(def)
		if err != nil {
			return nil, nil, err
		}
		if spy.Speed <= 0 {
			rep.Addf(report.Config, report.BadField, label, nil, "speed must be positive, got %v", spy.Speed)
		}
		rep.Extend(walker.Walk(g, spy.SpawnAt, spy.Route, label).Violations...)
		out.Spies = append(out.Spies, spy)
	}

	meta, err := metaDict(level, lore, g, rep)
	if err != nil {
		return nil, nil, err
	}

	out.Files.Maze = g.String()
	if out.Files.Meta, err = document(MetaHeader, meta, models.MetaFile, rep); err != nil {
		return nil, nil, err
	}
	if len(out.Spies) > 0 {
		if out.Files.Spies, err = document(SpiesHeader, out.Spies, models.SpiesFile, rep); err != nil {
			return nil, nil, err
		}
	}
	return out, rep, nil
}

func compileSpy(def models.SpyDef) (Spy, error) {
	spy, err := def.Spy()
	if err != nil {
		return Spy{}, err
	}
	route, err := patrol.Plan(spy.Pattern)
	if err != nil {
		return Spy{}, &models.ConfigError{Field: fmt.Sprintf("spy %q", def.ID), Err: err}
	}
	spawn, err := patrol.SpawnPos(spy)
	if err != nil {
		return Spy{}, &models.ConfigError{Field: fmt.Sprintf("spy %q", def.ID), Err: err}
	}
	return Spy{Spy: spy, SpawnAt: spawn, Route: route}, nil
}

// metaDict assembles meta.vim. Missing or unplayable cursors are reported
// and the cursor key is still written when present.
func metaDict(level *models.Level, lore *models.Lore, g *grid.Grid, rep *report.Report) (vimlit.Dict, error) {
	var meta vimlit.Dict
	if level.ID != 0 {
		meta.Set("id", vimlit.Int(level.ID))
	}
	meta.Set("title", vimlit.String(lore.Title))
	meta.Set("description", vimlit.String(lore.Description))
	meta.Set("objective", vimlit.String(lore.Objective))
	meta.Set("quote", vimlit.String(lore.Quote))
	meta.Set("victory_quote", vimlit.String(lore.VictoryQuote))

	for _, c := range []struct {
		key string
		raw []int
	}{
		{"start_cursor", level.Start},
		{"exit_cursor", level.Exit},
	} {
		p, err := models.OptionalPosition(c.key, c.raw)
		if err != nil {
			return nil, err
		}
		if p == nil {
			rep.Addf(report.Config, report.MissingField, models.LevelFile, nil, "missing %s", c.key)
			continue
		}
		rep.Extend(walker.Cursor(g, c.key, *p, models.LevelFile)...)
		meta.Set(c.key, position(*p))
	}

	meta.Set("maze", vimlit.Dict{
		{Key: "lines", Value: vimlit.Int(g.Rows())},
		{Key: "cols", Value: vimlit.Int(g.Cols())},
	})

	commands := vimlit.List{}
	for _, c := range level.Commands {
		commands = append(commands, vimlit.Dict{
			{Key: "key", Value: vimlit.String(c.Key)},
			{Key: "desc", Value: vimlit.String(c.Desc)},
		})
	}
	meta.Set("commands", commands)

	blocked, err := vimlit.ToValue(nonNil(level.BlockedCategories))
	if err != nil {
		return nil, err
	}
	meta.Set("blocked_categories", blocked)
	features, err := vimlit.ToValue(nonNil(level.Features))
	if err != nil {
		return nil, err
	}
	meta.Set("features", features)
	return meta, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// document renders v under header and checks that the text parses back to
// the same value.
func document(header []string, v any, name string, rep *report.Report) (string, error) {
	val, err := vimlit.ToValue(v)
	if err != nil {
		return "", err
	}
	body, err := vimlit.Marshal(val)
	if err != nil {
		return "", err
	}
	text := strings.Join(header, "\n") + "\n" + body + "\n"

	back, err := vimlit.Parse(text)
	switch {
	case err != nil:
		rep.Addf(report.Parse, report.Unparsable, name, nil, "generated text does not parse: %v", err)
	case !vimlit.Equal(val, back):
		rep.Addf(report.Format, report.Unparsable, name, nil, "generated text parses to a different value")
	}
	return text, nil
}
