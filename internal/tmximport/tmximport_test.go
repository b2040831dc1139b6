package tmximport

import (
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/tatianab/levelforge/internal/models"
)

func solidFrom(rows ...string) [][]bool {
	out := make([][]bool, len(rows))
	for r, row := range rows {
		out[r] = make([]bool, len(row))
		for c, ch := range row {
			out[r][c] = ch == '#'
		}
	}
	return out
}

func TestWalls(t *testing.T) {
	solid := solidFrom(
		"#######",
		"#.###.#",
		"#.....#",
		"#..#..#",
		"#..#.##",
		"#######",
	)
	want := []models.WallDef{
		{Type: "hline", Line: []int{2, 3, 5}},
		{Type: "vline", Line: []int{4, 4, 5}},
		{Type: "vline", Line: []int{6, 5, 5}},
	}
	if diff := cmp.Diff(want, Walls(solid)); diff != "" {
		t.Errorf("Walls mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenings(t *testing.T) {
	solid := solidFrom(
		"##.##",
		"#...#",
		"....#",
		"###.#",
	)
	want := []models.OpeningDef{
		{Type: "point", Pos: []int{1, 3}},
		{Type: "point", Pos: []int{3, 1}},
		{Type: "point", Pos: []int{4, 4}},
	}
	if diff := cmp.Diff(want, Openings(solid)); diff != "" {
		t.Errorf("Openings mismatch (-want +got):\n%s", diff)
	}
}

func TestInferPattern(t *testing.T) {
	tests := []struct {
		points [][]int
		want   string
	}{
		{[][]int{{3, 2}, {3, 9}}, "horizontal"},
		{[][]int{{2, 4}, {8, 4}}, "vertical"},
		{[][]int{{2, 2}, {5, 5}}, "loop"},
		{[][]int{{2, 2}, {2, 6}, {6, 6}}, "loop"},
	}
	for _, tt := range tests {
		if got := InferPattern(tt.points); got != tt.want {
			t.Errorf("InferPattern(%v) = %q, want %q", tt.points, got, tt.want)
		}
	}
}

const sampleTMX = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="5" height="5" tilewidth="8" tileheight="8" infinite="0">
 <tileset firstgid="1" name="walls" tilewidth="8" tileheight="8" tilecount="1" columns="1"/>
 <layer id="1" name="walls" width="5" height="5">
  <data encoding="csv">
1,1,0,1,1,
1,0,0,0,1,
1,1,1,0,1,
1,0,0,0,1,
1,1,1,1,1
</data>
 </layer>
 <objectgroup id="2" name="markers">
  <object id="1" name="start" x="8" y="8"/>
  <object id="2" name="exit" x="24" y="24"/>
 </objectgroup>
 <objectgroup id="3" name="spies">
  <object id="3" name="guard1" x="8" y="24">
   <properties>
    <property name="speed" type="float" value="0.5"/>
   </properties>
   <polyline points="0,0 16,0"/>
  </object>
 </objectgroup>
</map>
`

func TestImport(t *testing.T) {
	fsys := fstest.MapFS{"maps/sample.tmx": {Data: []byte(sampleTMX)}}

	level, err := Import(fsys, "maps/sample.tmx")
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	speed := 0.5
	want := &models.Level{
		Dimensions: []int{5, 5},
		Start:      []int{2, 2},
		Exit:       []int{4, 4},
		Walls:      []models.WallDef{{Type: "hline", Line: []int{3, 2, 3}}},
		Openings:   []models.OpeningDef{{Type: "point", Pos: []int{1, 3}}},
		Spies: []models.SpyDef{{
			ID:        "guard1",
			Pattern:   "horizontal",
			Endpoints: [][]int{{4, 2}, {4, 4}},
			Speed:     &speed,
		}},
	}
	if diff := cmp.Diff(want, level); diff != "" {
		t.Errorf("Import mismatch (-want +got):\n%s", diff)
	}
}

func TestImportErrors(t *testing.T) {
	noWalls := `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" width="4" height="4" tilewidth="8" tileheight="8">
 <objectgroup id="1" name="markers"/>
</map>
`
	fsys := fstest.MapFS{"nowalls.tmx": {Data: []byte(noWalls)}}
	if _, err := Import(fsys, "nowalls.tmx"); err == nil {
		t.Error("Import should fail without a walls layer")
	}
	if _, err := Import(fsys, "missing.tmx"); err == nil {
		t.Error("Import should fail for a missing file")
	}
}
