package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tatianab/levelforge/internal/builder"
	"github.com/tatianab/levelforge/internal/engine"
	"github.com/tatianab/levelforge/internal/forge"
	"github.com/tatianab/levelforge/internal/models"
	"github.com/tatianab/levelforge/internal/preview"
	"github.com/tatianab/levelforge/internal/report"
	"github.com/tatianab/levelforge/internal/tmximport"
	"github.com/tatianab/levelforge/internal/tui"
	"github.com/tatianab/levelforge/internal/watch"
)

var (
	generateHint    string
	generateRepairs int
	previewPlain    bool
)

var buildCmd = &cobra.Command{
	Use:   "build [level-dir...]",
	Short: "Compile levels into their game files",
	Long: `Compiles level.yaml and lore.json into maze.txt, meta.vim and spies.vim.

With no arguments every level under the levels root is built and
manifest.vim is rewritten. Files are written even when violations are
found; the command then exits non-zero.`,
	RunE: runBuild,
}

var validateCmd = &cobra.Command{
	Use:   "validate [level-dir...]",
	Short: "Check the game files of levels",
	Long: `Re-reads maze.txt, meta.vim and spies.vim and checks them against each
other. With no arguments every level under the levels root is checked.`,
	RunE: runValidate,
}

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Rewrite manifest.vim from the level definitions",
	Args:  cobra.NoArgs,
	RunE:  runManifest,
}

var previewCmd = &cobra.Command{
	Use:   "preview <level-dir>",
	Short: "Print a level's maze with its markers",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse, build and preview levels interactively",
	Args:  cobra.NoArgs,
	RunE:  runBrowse,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild levels when their definitions change",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

var generateCmd = &cobra.Command{
	Use:   "generate [level-dir]",
	Short: "Draft a new level with Gemini",
	Long: `Asks Gemini for a level themed on --hint, builds it and feeds any
violations back for repair. The level is written to level-dir, or to the
next free levelNN directory under the levels root.

Requires GEMINI_API_KEY.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

var importTMXCmd = &cobra.Command{
	Use:   "import-tmx <map.tmx> <level-dir>",
	Short: "Convert a Tiled map into level.yaml",
	Args:  cobra.ExactArgs(2),
	RunE:  runImportTMX,
}

func runBuild(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	f := forge.New(cfg.LevelsDir, logger)

	if len(args) == 0 {
		rep, err := f.BuildAll()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Written: %s\n", filepath.Join(cfg.LevelsDir, models.ManifestFile))
		return printReport(out, rep, "✓ All validations passed")
	}

	rep := &report.Report{}
	for _, dir := range args {
		res, err := f.BuildLevel(dir)
		if err != nil {
			rep.Addf(forge.CategoryOf(err), report.BadSpec, dir, nil, "%v", err)
			continue
		}
		printSummary(out, res)
		rep.Merge(res.Report)
	}
	return printReport(out, rep, "✓ All validations passed")
}

func printSummary(w io.Writer, res *forge.Result) {
	g := res.Artifacts.Grid
	fmt.Fprintf(w, "=== %s ===\n", res.Dir)
	fmt.Fprintf(w, "Dimensions: %d rows x %d cols\n", g.Rows(), g.Cols())
	fmt.Fprintf(w, "Start: %s\n", cursorText(res.Level.Start))
	fmt.Fprintf(w, "Exit: %s\n", cursorText(res.Level.Exit))
	fmt.Fprintf(w, "Spies: %d\n", len(res.Artifacts.Spies))
}

func cursorText(v []int) string {
	if v == nil {
		return "not set"
	}
	return fmt.Sprint(v)
}

// printReport lists the violations of rep and returns rep.Err().
func printReport(w io.Writer, rep *report.Report, okMessage string) error {
	err := rep.Err()
	if err == nil {
		fmt.Fprintln(w, okMessage)
		return nil
	}
	fmt.Fprintln(w, "VALIDATION ERRORS:")
	for _, v := range rep.Strings() {
		fmt.Fprintf(w, "  - %s\n", v)
	}
	return err
}

func runValidate(cmd *cobra.Command, args []string) error {
	rep, err := forge.New(cfg.LevelsDir, logger).Validate(args...)
	if err != nil {
		return err
	}
	return printReport(cmd.OutOrStdout(), rep, "✓ All levels valid")
}

func runManifest(cmd *cobra.Command, args []string) error {
	if err := forge.New(cfg.LevelsDir, logger).Manifest(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Written: %s\n", filepath.Join(cfg.LevelsDir, models.ManifestFile))
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	level, lore, err := models.LoadLevel(args[0])
	if err != nil {
		return err
	}
	a, rep, err := builder.Build(level, lore)
	if err != nil {
		return err
	}

	markers := preview.Markers(level)
	fmt.Fprintf(out, "\n=== PREVIEW (%s) ===\n\n", preview.Legend)
	if previewPlain {
		fmt.Fprint(out, preview.Render(a.Grid, markers))
	} else {
		fmt.Fprint(out, preview.Styled(a.Grid, markers))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out)
	return printReport(out, rep, "✓ All validations passed")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	store, err := tui.OpenStore()
	if err != nil {
		logger.Warn("Could not open data directory, last level will not be remembered", zap.Error(err))
	}
	return tui.Run(forge.New(cfg.LevelsDir, logger), store)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f := forge.New(cfg.LevelsDir, logger)
	w, err := watch.New(cfg.LevelsDir, rebuilder(f), logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", cfg.LevelsDir)
	return w.Run(ctx)
}

// rebuilder builds one changed level and refreshes the manifest.
func rebuilder(f *forge.Forge) watch.RebuildFunc {
	return func(ctx context.Context, dir string) {
		if _, err := f.BuildLevel(dir); err != nil {
			logger.Error("Rebuild failed", zap.String("dir", dir), zap.Error(err))
			return
		}
		if err := f.Manifest(); err != nil {
			logger.Error("Manifest update failed", zap.Error(err))
		}
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := cfg.RequireGemini(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir := ""
	if len(args) == 1 {
		dir = args[0]
	} else {
		var err error
		if dir, err = nextLevelDir(cfg.LevelsDir); err != nil {
			return err
		}
	}

	eng, err := engine.NewEngine(ctx, cfg.GeminiAPIKey, cfg.Model)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	defer eng.Close()

	f := forge.New(cfg.LevelsDir, logger)
	res, err := f.Generate(ctx, eng, generateHint, dir, generateRepairs)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printSummary(out, res)
	if err := f.Manifest(); err != nil {
		return err
	}
	return printReport(out, res.Report, "✓ All validations passed")
}

// nextLevelDir returns the first levelNN directory under root that does
// not exist yet.
func nextLevelDir(root string) (string, error) {
	levels, err := models.ScanLevels(root)
	if err != nil {
		return "", err
	}
	for n := len(levels) + 1; ; n++ {
		dir := filepath.Join(root, fmt.Sprintf("%s%02d", models.LevelDirPrefix, n))
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return dir, nil
		}
	}
}

func runImportTMX(cmd *cobra.Command, args []string) error {
	path, dir := args[0], args[1]
	level, err := tmximport.Import(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	if err != nil {
		return err
	}
	if err := models.SaveLevel(dir, level); err != nil {
		return err
	}
	logger.Info("Imported map",
		zap.String("map", path),
		zap.String("dir", dir),
		zap.Int("walls", len(level.Walls)),
		zap.Int("spies", len(level.Spies)))
	fmt.Fprintf(cmd.OutOrStdout(), "Written: %s\n", filepath.Join(dir, models.LevelFile))
	return nil
}
