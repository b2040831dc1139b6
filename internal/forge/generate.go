package forge

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tatianab/levelforge/internal/engine"
	"github.com/tatianab/levelforge/internal/models"
)

// DefaultRepairs bounds how often Generate asks for a repair.
const DefaultRepairs = 3

// Drafter writes and repairs level definitions. *engine.Engine is one.
type Drafter interface {
	DraftLevel(ctx context.Context, hint string) (*engine.Draft, error)
	RepairLevel(ctx context.Context, level *models.Level, violations []string) (*models.Level, error)
}

// Generate drafts a level themed on hint into dir and builds it. While the
// build reports violations or rejects the definition, the drafter is asked
// for a repair, up to repairs times. The last result is returned even when
// violations remain.
func (f *Forge) Generate(ctx context.Context, d Drafter, hint, dir string, repairs int) (*Result, error) {
	draft, err := d.DraftLevel(ctx, hint)
	if err != nil {
		return nil, fmt.Errorf("drafting level: %w", err)
	}
	f.logger.Info("Drafted level", zap.String("dir", dir), zap.String("title", draft.Lore.Title))

	if err := models.SaveLore(dir, &draft.Lore); err != nil {
		return nil, err
	}
	level := &draft.Level
	for attempt := 0; ; attempt++ {
		if err := models.SaveLevel(dir, level); err != nil {
			return nil, err
		}

		res, buildErr := f.BuildLevel(dir)
		var problems []string
		switch {
		case buildErr != nil:
			var cerr *models.ConfigError
			if !errors.As(buildErr, &cerr) {
				return nil, buildErr
			}
			problems = []string{fmt.Sprintf("%s: %v", cerr.Field, cerr.Err)}
		case !res.Report.OK():
			problems = res.Report.Strings()
		default:
			return res, nil
		}

		if attempt >= repairs {
			if buildErr != nil {
				return nil, buildErr
			}
			return res, nil
		}

		f.logger.Info("Repairing level",
			zap.String("dir", dir),
			zap.Int("attempt", attempt+1),
			zap.Int("problems", len(problems)))
		if level, err = d.RepairLevel(ctx, level, problems); err != nil {
			return nil, fmt.Errorf("repairing level: %w", err)
		}
	}
}
