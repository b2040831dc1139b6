// Package watch rebuilds levels when their source files change.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/tatianab/levelforge/internal/models"
)

// DefaultDebounce lets editors finish writing before a rebuild starts.
const DefaultDebounce = 300 * time.Millisecond

// RebuildFunc is called with a level directory whose sources changed.
type RebuildFunc func(ctx context.Context, dir string)

// Watcher watches level.yaml and lore.json in every level directory under
// a root.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	root     string
	rebuild  RebuildFunc
	logger   *zap.Logger
	pending  map[string]time.Time
	Debounce time.Duration
}

// New creates a Watcher. Call Run to start it.
func New(root string, rebuild RebuildFunc, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		watcher:  fw,
		root:     root,
		rebuild:  rebuild,
		logger:   logger,
		pending:  make(map[string]time.Time),
		Debounce: DefaultDebounce,
	}, nil
}

// Run watches until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.watcher.Add(w.root); err != nil {
		return err
	}
	levels, err := models.ScanLevels(w.root)
	if err != nil {
		return err
	}
	for _, name := range levels {
		w.add(filepath.Join(w.root, name))
	}
	w.logger.Info("Watching levels", zap.String("root", w.root), zap.Int("levels", len(levels)))

	if w.Debounce < time.Millisecond {
		w.Debounce = DefaultDebounce
	}
	ticker := time.NewTicker(w.Debounce / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("Watcher error", zap.Error(err))

		case now := <-ticker.C:
			for _, dir := range w.settled(now) {
				w.logger.Info("Rebuilding level", zap.String("dir", dir))
				w.rebuild(ctx, dir)
			}
		}
	}
}

func (w *Watcher) add(dir string) {
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Warn("Failed to watch level", zap.String("dir", dir), zap.Error(err))
		return
	}
	w.logger.Debug("Watching level", zap.String("dir", dir))
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}

	// A new level directory: watch it and build whatever it already holds.
	if filepath.Dir(event.Name) == filepath.Clean(w.root) && event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() && strings.HasPrefix(info.Name(), models.LevelDirPrefix) {
			w.add(event.Name)
			w.touch(event.Name, time.Now())
		}
		return
	}

	if dir, ok := LevelDirFor(w.root, event.Name); ok {
		w.logger.Debug("Source changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
		w.touch(dir, time.Now())
	}
}

func (w *Watcher) touch(dir string, at time.Time) {
	w.mu.Lock()
	w.pending[dir] = at
	w.mu.Unlock()
}

// settled removes and returns, in name order, the directories that have
// been quiet for the debounce window.
func (w *Watcher) settled(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []string
	for dir, at := range w.pending {
		if now.Sub(at) >= w.Debounce {
			out = append(out, dir)
			delete(w.pending, dir)
		}
	}
	sort.Strings(out)
	return out
}

// LevelDirFor maps a changed file to its level directory when the file is
// a level source directly inside a level directory under root.
func LevelDirFor(root, path string) (string, bool) {
	base := filepath.Base(path)
	if base != models.LevelFile && base != models.LoreFile {
		return "", false
	}
	dir := filepath.Dir(path)
	if filepath.Dir(dir) != filepath.Clean(root) || !strings.HasPrefix(filepath.Base(dir), models.LevelDirPrefix) {
		return "", false
	}
	return dir, true
}
