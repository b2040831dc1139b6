package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/tatianab/levelforge/internal/config"
	"github.com/tatianab/levelforge/internal/engine"
	"github.com/tatianab/levelforge/internal/forge"
	"github.com/tatianab/levelforge/internal/preview"
)

const rounds = 3

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.RequireGemini(); err != nil {
		log.Fatal(err)
	}

	// The level designer
	eng, err := engine.NewEngine(ctx, cfg.GeminiAPIKey, cfg.Model)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	defer eng.Close()

	// A second model that only invents themes
	themeClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		log.Fatalf("Failed to create theme client: %v", err)
	}
	defer themeClient.Close()
	themeModel := themeClient.GenerativeModel(cfg.Model)

	root, err := os.MkdirTemp("", "levelforge-sim-*")
	if err != nil {
		log.Fatalf("Failed to create levels root: %v", err)
	}
	fmt.Printf("Levels root: %s\n\n", root)

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	f := forge.New(root, logger)

	clean := 0
	for round := 1; round <= rounds; round++ {
		fmt.Printf("--- Round %d ---\n", round)

		theme := getTheme(ctx, themeModel)
		fmt.Printf("Theme: %s\n", theme)

		dir := filepath.Join(root, fmt.Sprintf("level%02d", round))
		res, err := f.Generate(ctx, eng, theme, dir, forge.DefaultRepairs)
		if err != nil {
			fmt.Printf("Error generating level: %v\n\n", err)
			continue
		}

		fmt.Printf("Title: %s\n", res.Lore.Title)
		fmt.Printf("Size: %d x %d, spies: %d\n", res.Artifacts.Grid.Rows(), res.Artifacts.Grid.Cols(), len(res.Artifacts.Spies))
		fmt.Println(preview.Render(res.Artifacts.Grid, preview.Markers(res.Level)))
		if res.Report.OK() {
			clean++
			fmt.Print("Result: clean\n\n")
			continue
		}
		fmt.Println("Remaining violations:")
		for _, v := range res.Report.Strings() {
			fmt.Printf("  - %s\n", v)
		}
		fmt.Println()
	}

	if err := f.Manifest(); err != nil {
		log.Fatalf("Failed to write manifest: %v", err)
	}
	fmt.Printf("%d of %d levels built without violations\n", clean, rounds)
}

func getTheme(ctx context.Context, model *genai.GenerativeModel) string {
	prompt := "You are designing a stealth maze game where the player sneaks past patrolling spies. Provide a short, creative setting for one level (e.g., 'embassy wine cellar', 'night shift at a toy factory'). Return ONLY the setting string."
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "random"
	}
	return strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
}
