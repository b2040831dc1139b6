package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tatianab/levelforge/internal/config"
	"github.com/tatianab/levelforge/internal/forge"
	"github.com/tatianab/levelforge/internal/report"
)

var (
	// Global flags
	verbose   bool
	levelsDir string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "levelforge",
	Short: "Compile and validate maze levels",
	Long: `levelforge compiles declarative level definitions (level.yaml and
lore.json) into the maze.txt, meta.vim and spies.vim files the game loads,
and validates those files.

Each level lives in a level* directory under the levels root.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.LoadConfig(); err != nil {
			return err
		}
		if levelsDir != "" {
			cfg.LevelsDir = levelsDir
		}

		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&levelsDir, "levels", "l", "", "Levels root (default: $LEVELFORGE_LEVELS_DIR or ./levels)")

	generateCmd.Flags().StringVar(&generateHint, "hint", "random", "Theme for the generated level")
	generateCmd.Flags().IntVar(&generateRepairs, "repairs", forge.DefaultRepairs, "Maximum repair rounds")
	previewCmd.Flags().BoolVar(&previewPlain, "plain", false, "Print without colors")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(manifestCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(importTMXCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, exitMessage(err))
		os.Exit(1)
	}
}

// exitMessage shortens a report error to its count; the violations are
// already on stdout.
func exitMessage(err error) string {
	var rerr *report.Error
	if errors.As(err, &rerr) {
		return fmt.Sprintf("%d validation error(s) found", len(rerr.Violations))
	}
	return err.Error()
}
