package forge

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/levelforge/internal/engine"
	"github.com/tatianab/levelforge/internal/models"
)

type fakeDrafter struct {
	draft    string
	repaired string
	draftErr error

	repairs    int
	violations [][]string
}

func (d *fakeDrafter) DraftLevel(ctx context.Context, hint string) (*engine.Draft, error) {
	if d.draftErr != nil {
		return nil, d.draftErr
	}
	level, err := models.DecodeLevel([]byte(d.draft))
	if err != nil {
		return nil, err
	}
	return &engine.Draft{Level: *level, Lore: models.Lore{Title: "Theme: " + hint}}, nil
}

func (d *fakeDrafter) RepairLevel(ctx context.Context, level *models.Level, violations []string) (*models.Level, error) {
	d.repairs++
	d.violations = append(d.violations, violations)
	return models.DecodeLevel([]byte(d.repaired))
}

const blocked = broken + `
walls:
  - type: vline
    line: [10, 1, 5]
`

func TestGenerateRepairs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "level05")
	d := &fakeDrafter{draft: blocked, repaired: vault}

	res, err := New(filepath.Dir(dir), nil).Generate(context.Background(), d, "bank heist", dir, DefaultRepairs)
	require.NoError(t, err)
	assert.True(t, res.Report.OK(), "violations: %v", res.Report.Strings())
	assert.Equal(t, 1, d.repairs)
	require.Len(t, d.violations, 1)
	assert.NotEmpty(t, d.violations[0])

	level, lore, err := models.LoadLevel(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, level.ID, "the repaired level is saved")
	assert.Equal(t, "Theme: bank heist", lore.Title)
	assert.FileExists(t, filepath.Join(dir, models.MazeFile))
}

func TestGenerateGivesUp(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "level05")
	d := &fakeDrafter{draft: blocked, repaired: blocked}

	res, err := New(filepath.Dir(dir), nil).Generate(context.Background(), d, "vault", dir, 2)
	require.NoError(t, err)
	assert.False(t, res.Report.OK())
	assert.Equal(t, 2, d.repairs)
}

func TestGenerateConfigErrors(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "level05")
	d := &fakeDrafter{draft: "dimensions: [8, 20]\nspies:\n  - id: x\n    pattern: zigzag\n", repaired: vault}

	res, err := New(filepath.Dir(dir), nil).Generate(context.Background(), d, "vault", dir, 1)
	require.NoError(t, err)
	assert.True(t, res.Report.OK())
	require.Len(t, d.violations, 1)
	assert.Contains(t, d.violations[0][0], "zigzag")

	d = &fakeDrafter{draft: "dimensions: [8, 20]\nspies:\n  - id: x\n    pattern: zigzag\n", repaired: vault}
	_, err = New(filepath.Dir(dir), nil).Generate(context.Background(), d, "vault", dir, 0)
	var cerr *models.ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestGenerateDraftError(t *testing.T) {
	d := &fakeDrafter{draftErr: errors.New("quota exceeded")}
	_, err := New(t.TempDir(), nil).Generate(context.Background(), d, "vault", filepath.Join(t.TempDir(), "level01"), 1)
	assert.ErrorContains(t, err, "quota exceeded")
}
