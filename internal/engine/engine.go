package engine

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
	"gopkg.in/yaml.v3"

	"github.com/tatianab/levelforge/internal/models"
)

//go:embed prompts/draft_level.txt
var draftLevelPrompt string

//go:embed prompts/repair_level.txt
var repairLevelPrompt string

var (
	draftTmpl  = template.Must(template.New("draft_level").Parse(draftLevelPrompt))
	repairTmpl = template.Must(template.New("repair_level").Parse(repairLevelPrompt))
)

type Engine struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewEngine(ctx context.Context, apiKey, model string) (*Engine, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &Engine{
		client: client,
		model:  client.GenerativeModel(model),
	}, nil
}

func (e *Engine) Close() {
	e.client.Close()
}

// Draft is a generated level with its lore.
type Draft struct {
	Level models.Level `yaml:"level"`
	Lore  models.Lore  `yaml:"lore"`
}

// DraftLevel asks the model for a new level themed on hint.
func (e *Engine) DraftLevel(ctx context.Context, hint string) (*Draft, error) {
	var buf bytes.Buffer
	if err := draftTmpl.Execute(&buf, struct{ Hint string }{Hint: hint}); err != nil {
		return nil, err
	}

	text, err := e.generate(ctx, buf.String())
	if err != nil {
		return nil, err
	}
	return ParseDraft(text)
}

// RepairLevel asks the model to fix the violations reported for level.
// The lore is left untouched.
func (e *Engine) RepairLevel(ctx context.Context, level *models.Level, violations []string) (*models.Level, error) {
	current, err := yaml.Marshal(level)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	data := struct {
		Level      string
		Violations []string
	}{
		Level:      string(current),
		Violations: violations,
	}
	if err := repairTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}

	text, err := e.generate(ctx, buf.String())
	if err != nil {
		return nil, err
	}
	fixed, err := models.DecodeLevel([]byte(CleanYAML(text)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse repaired level: %w\nOutput was: %s", err, text)
	}
	return fixed, nil
}

func (e *Engine) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := e.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from Gemini")
	}

	part := resp.Candidates[0].Content.Parts[0]
	text, ok := part.(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}
	return string(text), nil
}

// CleanYAML strips the markdown fence models like to wrap YAML in.
func CleanYAML(text string) string {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```yaml")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

// ParseDraft decodes a model response holding level and lore keys.
func ParseDraft(text string) (*Draft, error) {
	clean := CleanYAML(text)
	dec := yaml.NewDecoder(strings.NewReader(clean))
	dec.KnownFields(true)
	var d Draft
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w\nOutput was: %s", err, clean)
	}
	if len(d.Level.Dimensions) == 0 {
		return nil, fmt.Errorf("draft has no level dimensions\nOutput was: %s", clean)
	}
	return &d, nil
}
