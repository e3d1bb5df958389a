package autoplay

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

	"github.com/tatianab/clean-kitchen/internal/models"
)

//go:embed prompts/choose_action.txt
var chooseActionPrompt string

var chooseActionTmpl = template.Must(template.New("choose_action").Parse(chooseActionPrompt))

// GeminiPlayer asks a Gemini model to answer each battle.
type GeminiPlayer struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiPlayer(ctx context.Context, apiKey, modelName string) (*GeminiPlayer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.2)
	return &GeminiPlayer{
		client: client,
		model:  model,
	}, nil
}

func (g *GeminiPlayer) Close() {
	g.client.Close()
}

func (g *GeminiPlayer) Choose(ctx context.Context, scene *models.Scene) (Action, error) {
	prompt, err := buildPrompt(scene)
	if err != nil {
		return Action{}, err
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return Action{}, err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return Action{}, fmt.Errorf("no content returned from Gemini")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return Action{}, fmt.Errorf("unexpected response type from Gemini")
	}

	return parseAnswer(scene, string(text))
}

func buildPrompt(scene *models.Scene) (string, error) {
	data := struct {
		Title       string
		Subtitle    string
		Question    string
		Code        string
		Terminal    string
		Options     []models.Option
		Instruction string
	}{
		Title:    scene.Title,
		Subtitle: scene.Subtitle,
		Question: scene.Question,
	}

	switch b := scene.Battle.(type) {
	case *models.QuizBattle:
		data.Code = scene.CodeContext
		data.Options = b.Options
		data.Instruction = "Answer with the id of the best option, as `option: <id>`."
	case *models.DebugBattle:
		var numbered []string
		for i, line := range scene.CodeLines() {
			numbered = append(numbered, fmt.Sprintf("%2d | %s", i, line))
		}
		data.Code = strings.Join(numbered, "\n")
		data.Instruction = "Answer with the zero-based number of the line that contains the bug, as `line: <n>`."
	case *models.TerminalBattle:
		data.Terminal = b.Context
		data.Instruction = "Answer with the single shell command to run, as `command: <text>`."
	default:
		return "", fmt.Errorf("scene %q is not a battle", scene.ID)
	}

	var buf bytes.Buffer
	if err := chooseActionTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// parseAnswer reads the model's YAML reply, tolerating code fences.
func parseAnswer(scene *models.Scene, text string) (Action, error) {
	cleanYAML := strings.TrimSpace(text)
	cleanYAML = strings.TrimPrefix(cleanYAML, "```yaml")
	cleanYAML = strings.TrimPrefix(cleanYAML, "```")
	cleanYAML = strings.TrimSuffix(cleanYAML, "```")

	var answer struct {
		Option  string `yaml:"option"`
		Line    *int   `yaml:"line"`
		Command string `yaml:"command"`
	}
	if err := yaml.Unmarshal([]byte(cleanYAML), &answer); err != nil {
		return Action{}, fmt.Errorf("failed to parse answer YAML: %v\nOutput was: %s", err, cleanYAML)
	}

	switch b := scene.Battle.(type) {
	case *models.QuizBattle:
		if _, ok := b.Option(answer.Option); !ok {
			return Action{}, fmt.Errorf("model picked unknown option %q", answer.Option)
		}
		return Action{OptionID: answer.Option}, nil
	case *models.DebugBattle:
		if answer.Line == nil {
			return Action{}, fmt.Errorf("model answer has no line: %s", cleanYAML)
		}
		return Action{Line: *answer.Line}, nil
	case *models.TerminalBattle:
		if strings.TrimSpace(answer.Command) == "" {
			return Action{}, fmt.Errorf("model answer has no command: %s", cleanYAML)
		}
		return Action{Command: answer.Command}, nil
	}
	return Action{}, fmt.Errorf("scene %q is not a battle", scene.ID)
}
