package validate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tatianab/levelforge/internal/builder"
	"github.com/tatianab/levelforge/internal/models"
	"github.com/tatianab/levelforge/internal/report"
)

const maze4x10 = "██████████\n" +
	"█        █\n" +
	"█       Q█\n" +
	"██████████"

func writeLevel(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestBuiltLevelValidates(t *testing.T) {
	level := &models.Level{
		Dimensions: []int{12, 30},
		Start:      []int{2, 2},
		Exit:       []int{11, 29},
		Walls: []models.WallDef{
			{Type: "rect", Rect: []int{4, 10, 3, 2}},
			{Type: "vline", Line: []int{20, 1, 8}},
		},
		Openings: []models.OpeningDef{{Type: "point", Pos: []int{5, 20}}},
		Spies: []models.SpyDef{
			{ID: "guard1", Pattern: "horizontal", Endpoints: [][]int{{10, 3}, {10, 25}}},
			{ID: "patrol1", Pattern: "loop", Waypoints: [][]int{{2, 22}, {2, 28}, {7, 28}, {7, 22}}, Direction: "ccw"},
			{ID: "sentry", Pattern: "vertical", Endpoints: [][]int{{9, 5}, {2, 5}}},
		},
	}
	lore := &models.Lore{Title: "It's the Vault", VictoryQuote: "Out\nat last."}

	a, rep, err := builder.Build(level, lore)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !rep.OK() {
		t.Fatalf("Build reported violations: %v", rep.Strings())
	}

	dir := filepath.Join(t.TempDir(), "level01")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := models.WriteArtifacts(dir, &a.Files); err != nil {
		t.Fatal(err)
	}
	if got := Level(dir); !got.OK() {
		t.Errorf("Built level should validate cleanly, got %v", got.Strings())
	}
}

func TestMissingFiles(t *testing.T) {
	root := t.TempDir()

	noMeta := filepath.Join(root, "level01")
	writeLevel(t, noMeta, map[string]string{models.MazeFile: maze4x10})
	want := []string{noMeta + ": meta.vim not found"}
	if diff := cmp.Diff(want, Level(noMeta).Strings()); diff != "" {
		t.Errorf("Violations mismatch (-want +got):\n%s", diff)
	}

	noMaze := filepath.Join(root, "level02")
	writeLevel(t, noMaze, map[string]string{models.MetaFile: "{}"})
	want = []string{noMaze + ": maze.txt not found"}
	if diff := cmp.Diff(want, Level(noMaze).Strings()); diff != "" {
		t.Errorf("Violations mismatch (-want +got):\n%s", diff)
	}
}

func TestDocuments(t *testing.T) {
	tests := []struct {
		name  string
		meta  string
		maze  string
		spies string
		want  []string
	}{
		{
			name: "valid",
			meta: "{'start_cursor': [2, 2], 'exit_cursor': [3, 9], 'maze': {'lines': 4, 'cols': 10}}",
			maze: maze4x10,
		},
		{
			name: "dimension mismatch",
			meta: "{'start_cursor': [2, 2], 'exit_cursor': [3, 9], 'maze': {'lines': 5, 'cols': 12}}",
			maze: maze4x10,
			want: []string{
				"L: maze.lines mismatch - meta says 5, actual is 4",
				"L: maze.cols mismatch - meta says 12, actual is 10",
			},
		},
		{
			name:  "windows line endings",
			meta:  "{'start_cursor': [2, 2], 'exit_cursor': [3, 9], 'maze': {'lines': 4, 'cols': 10}}\r\n",
			maze:  strings.ReplaceAll(maze4x10, "\n", "\r\n") + "\r\n",
			spies: "[{'id': 'g', 'spawn': [2, 2], 'route': [{'end': [2, 9], 'dir': 'right'}, {'end': [2, 2], 'dir': 'left'}]}]\r\n",
		},
		{
			name: "cursors",
			meta: "{'start_cursor': [1, 1], 'exit_cursor': [9, 2], 'maze': {'lines': 4, 'cols': 10}}",
			maze: maze4x10,
			want: []string{
				"L: start_cursor [1, 1] is on a wall",
				"L: exit_cursor line 9 out of bounds (1-4)",
			},
		},
		{
			name: "missing keys",
			meta: "\" comment only header\n{}",
			maze: maze4x10,
			want: []string{
				"L: missing 'maze' in metadata",
				"L: missing start_cursor",
				"L: missing exit_cursor",
			},
		},
		{
			name: "unparsable meta",
			meta: "{'maze': }",
			maze: maze4x10,
			want: []string{"L: failed to parse meta.vim: line 1, col 10: unexpected '}'"},
		},
		{
			name: "spies in meta",
			meta: `{'start_cursor': [2, 2], 'exit_cursor': [3, 9], 'maze': {'lines': 4, 'cols': 10},
			       'spies': [{'id': 'g', 'spawn': [2, 2], 'route': [{'end': [2, 12], 'dir': 'right'}]}]}`,
			maze: maze4x10,
			want: []string{"L spy 'g': route hits wall at [2, 10]"},
		},
		{
			name:  "spies file",
			meta:  "{'start_cursor': [2, 2], 'exit_cursor': [3, 9], 'maze': {'lines': 4, 'cols': 10}}",
			maze:  maze4x10,
			spies: "\" Spy patrol data\n[{'id': 'a', 'spawn': [2, 2], 'route': []}, {'spawn': [2, 3], 'route': [{'end': [2, 5], 'dir': 'right'}]}]",
			want: []string{
				"L spy 'a': empty route",
				"L spy 'unknown': route does not return to spawn: ends at [2, 5], spawn is [2, 3]",
			},
		},
		{
			name:  "spy without spawn",
			meta:  "{'start_cursor': [2, 2], 'exit_cursor': [3, 9], 'maze': {'lines': 4, 'cols': 10}}",
			maze:  maze4x10,
			spies: "[{'id': 'lost', 'route': []}]",
			want:  []string{"L spy 'lost': missing spawn position"},
		},
		{
			name:  "bad direction",
			meta:  "{'start_cursor': [2, 2], 'exit_cursor': [3, 9], 'maze': {'lines': 4, 'cols': 10}}",
			maze:  maze4x10,
			spies: "[{'id': 'x', 'spawn': [2, 2], 'route': [{'end': [2, 4], 'dir': 'sideways'}]}]",
			want:  []string{"L spy 'x': invalid direction 'sideways' in leg 1"},
		},
		{
			name:  "bad direction on a leg with no steps",
			meta:  "{'start_cursor': [2, 2], 'exit_cursor': [3, 9], 'maze': {'lines': 4, 'cols': 10}}",
			maze:  maze4x10,
			spies: "[{'id': 'g', 'spawn': [2, 2], 'route': [{'end': [2, 5], 'dir': 'right'}, {'end': [2, 2], 'dir': 'left'}, {'end': [2, 2], 'dir': 'diagonal'}], 'speed': 1.0}]",
			want:  []string{"L spy 'g': invalid direction 'diagonal' in leg 3"},
		},
		{
			name:  "leg without dir",
			meta:  "{'start_cursor': [2, 2], 'exit_cursor': [3, 9], 'maze': {'lines': 4, 'cols': 10}}",
			maze:  maze4x10,
			spies: "[{'id': 'g', 'spawn': [2, 2], 'route': [{'end': [2, 2]}]}]",
			want:  []string{"L spy 'g': route: leg 1 has no dir"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Documents("L", tt.meta, tt.maze, tt.spies).Strings()
			if len(got) == 0 {
				got = nil
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Violations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRaggedMazeMeasuredInCodePoints(t *testing.T) {
	maze := "█████\n█ █\n█████████"
	rep := Documents("L", "{'start_cursor': [2, 2], 'exit_cursor': [2, 2], 'maze': {'lines': 3, 'cols': 9}}", maze, "")
	if !rep.OK() {
		t.Errorf("Expected no violations, got %v", rep.Strings())
	}

	// Cells past the end of a short row are not walls.
	rep = Documents("L", "{'start_cursor': [2, 5], 'exit_cursor': [2, 2], 'maze': {'lines': 3, 'cols': 9}}", maze, "")
	if !rep.OK() {
		t.Errorf("Expected no violations, got %v", rep.Strings())
	}
}

func TestAll(t *testing.T) {
	root := t.TempDir()
	good := "{'start_cursor': [2, 2], 'exit_cursor': [3, 9], 'maze': {'lines': 4, 'cols': 10}}"
	writeLevel(t, filepath.Join(root, "level01"), map[string]string{models.MetaFile: good, models.MazeFile: maze4x10})
	writeLevel(t, filepath.Join(root, "level02"), map[string]string{models.MazeFile: maze4x10})
	writeLevel(t, filepath.Join(root, "drafts"), map[string]string{models.MazeFile: maze4x10})

	rep, err := All(root)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Len() != 1 || !strings.HasSuffix(rep.Strings()[0], "level02: meta.vim not found") {
		t.Errorf("Expected only level02 to fail, got %v", rep.Strings())
	}
	if got := rep.Filter(report.IO); len(got) != 1 {
		t.Errorf("Expected one IO violation, got %v", got)
	}
}

func TestPaths(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "level99")
	want := []string{missing + ": directory not found"}
	if diff := cmp.Diff(want, Paths([]string{missing}).Strings()); diff != "" {
		t.Errorf("Violations mismatch (-want +got):\n%s", diff)
	}
}
