// Package forge runs the level pipeline over a levels directory: load,
// build, write, validate and list.
package forge

import (
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/tatianab/levelforge/internal/builder"
	"github.com/tatianab/levelforge/internal/models"
	"github.com/tatianab/levelforge/internal/report"
	"github.com/tatianab/levelforge/internal/validate"
)

// Forge builds and validates the levels under Root.
type Forge struct {
	Root   string
	logger *zap.Logger
}

// New returns a Forge for root. A nil logger disables logging.
func New(root string, logger *zap.Logger) *Forge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Forge{Root: root, logger: logger}
}

// Result is the outcome of building one level directory.
type Result struct {
	Dir       string
	Level     *models.Level
	Lore      *models.Lore
	Artifacts *builder.Artifacts
	Report    *report.Report
}

// BuildLevel compiles the level in dir and writes its artifacts. Artifacts
// are written even when the report has violations. An error means nothing
// was written.
func (f *Forge) BuildLevel(dir string) (*Result, error) {
	level, lore, err := models.LoadLevel(dir)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", dir, err)
	}

	a, rep, err := builder.Build(level, lore)
	if err != nil {
		var cerr *models.ConfigError
		if errors.As(err, &cerr) && cerr.Level == "" {
			cerr.Level = dir
		}
		return nil, err
	}
	if err := models.WriteArtifacts(dir, &a.Files); err != nil {
		return nil, fmt.Errorf("writing artifacts for %s: %w", dir, err)
	}

	f.logger.Info("Built level",
		zap.String("dir", dir),
		zap.Int("rows", a.Grid.Rows()),
		zap.Int("cols", a.Grid.Cols()),
		zap.Int("spies", len(a.Spies)),
		zap.Int("violations", rep.Len()))
	for _, v := range rep.Violations() {
		f.logger.Warn("Level violation",
			zap.String("dir", dir),
			zap.Stringer("category", v.Category),
			zap.String("code", string(v.Code)),
			zap.String("message", v.String()))
	}
	return &Result{Dir: dir, Level: level, Lore: lore, Artifacts: a, Report: rep}, nil
}

// BuildAll builds every level under Root and rewrites the manifest. A level
// that fails to build is recorded in the report and skipped.
func (f *Forge) BuildAll() (*report.Report, error) {
	names, err := models.ScanLevels(f.Root)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("Scanned levels", zap.String("root", f.Root), zap.Int("count", len(names)))

	rep := &report.Report{}
	var entries []builder.ManifestEntry
	for i, name := range names {
		dir := filepath.Join(f.Root, name)
		res, err := f.BuildLevel(dir)
		if err != nil {
			f.logger.Error("Failed to build level", zap.String("dir", dir), zap.Error(err))
			rep.Addf(CategoryOf(err), report.BadSpec, dir, nil, "%v", err)
			continue
		}
		rep.Merge(res.Report)
		entries = append(entries, entry(i, name, res.Level, res.Lore))
	}

	if err := f.writeManifest(entries); err != nil {
		return nil, err
	}
	return rep, nil
}

// Manifest rewrites manifest.vim from the level definitions without
// rebuilding any artifacts.
func (f *Forge) Manifest() error {
	names, err := models.ScanLevels(f.Root)
	if err != nil {
		return err
	}
	var entries []builder.ManifestEntry
	for i, name := range names {
		level, lore, err := models.LoadLevel(filepath.Join(f.Root, name))
		if err != nil {
			f.logger.Warn("Skipping level in manifest", zap.String("dir", name), zap.Error(err))
			continue
		}
		entries = append(entries, entry(i, name, level, lore))
	}
	return f.writeManifest(entries)
}

// Validate checks the persisted artifacts of the given level directories,
// or of every level under Root when none are given.
func (f *Forge) Validate(dirs ...string) (*report.Report, error) {
	var rep *report.Report
	if len(dirs) == 0 {
		var err error
		if rep, err = validate.All(f.Root); err != nil {
			return nil, err
		}
	} else {
		rep = validate.Paths(dirs)
	}
	f.logger.Info("Validated levels", zap.Int("violations", rep.Len()))
	return rep, nil
}

func (f *Forge) writeManifest(entries []builder.ManifestEntry) error {
	text, err := builder.Manifest(entries)
	if err != nil {
		return err
	}
	if err := models.WriteManifest(f.Root, text); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	f.logger.Info("Wrote manifest", zap.String("root", f.Root), zap.Int("levels", len(entries)))
	return nil
}

// entry numbers levels by position when level.yaml has no id.
func entry(i int, dir string, level *models.Level, lore *models.Lore) builder.ManifestEntry {
	id := level.ID
	if id == 0 {
		id = i + 1
	}
	title := dir
	if lore != nil && lore.Title != "" {
		title = lore.Title
	}
	return builder.ManifestEntry{ID: id, Dir: dir, Title: title}
}

// CategoryOf classifies a build failure: Config for a bad definition, IO
// otherwise.
func CategoryOf(err error) report.Category {
	var cerr *models.ConfigError
	if errors.As(err, &cerr) {
		return report.Config
	}
	return report.IO
}
