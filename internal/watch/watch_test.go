package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLevelDirFor(t *testing.T) {
	root := filepath.Join("srv", "levels")
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{filepath.Join(root, "level01", "level.yaml"), filepath.Join(root, "level01"), true},
		{filepath.Join(root, "level01", "lore.json"), filepath.Join(root, "level01"), true},
		{filepath.Join(root, "level01", "maze.txt"), "", false},
		{filepath.Join(root, "level01", "meta.vim"), "", false},
		{filepath.Join(root, "drafts", "level.yaml"), "", false},
		{filepath.Join(root, "level01", "old", "level.yaml"), "", false},
		{filepath.Join(root, "level.yaml"), "", false},
	}
	for _, tt := range tests {
		got, ok := LevelDirFor(root, tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestSettled(t *testing.T) {
	w, err := New(t.TempDir(), nil, nil)
	require.NoError(t, err)
	defer w.watcher.Close()
	w.Debounce = time.Second

	start := time.Now()
	w.touch("level02", start)
	w.touch("level01", start)
	w.touch("level03", start.Add(800*time.Millisecond))

	assert.Empty(t, w.settled(start.Add(500*time.Millisecond)))
	assert.Equal(t, []string{"level01", "level02"}, w.settled(start.Add(time.Second)))
	assert.Empty(t, w.settled(start.Add(time.Second)), "settled directories are removed")
	assert.Equal(t, []string{"level03"}, w.settled(start.Add(2*time.Second)))
}

func TestRunRebuildsOnChange(t *testing.T) {
	root := t.TempDir()
	level := filepath.Join(root, "level01")
	require.NoError(t, os.Mkdir(level, 0755))

	rebuilt := make(chan string, 4)
	w, err := New(root, func(ctx context.Context, dir string) { rebuilt <- dir }, zap.NewNop())
	require.NoError(t, err)
	w.Debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give Run time to register the directories.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(level, "level.yaml"), []byte("dimensions: [5, 5]\n"), 0644))

	select {
	case dir := <-rebuilt:
		assert.Equal(t, level, dir)
	case <-time.After(5 * time.Second):
		t.Fatal("Expected a rebuild after level.yaml changed")
	}
}
