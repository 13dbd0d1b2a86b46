package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/biorag"
	"google.golang.org/genai"
)

// Ensure Completer implements biorag.Completer at compile time.
var _ biorag.Completer = (*Completer)(nil)

// Completer implements biorag.Completer using Gemini chat models.
type Completer struct {
	client *genai.Client

	// Model is the generation model name.
	Model string
}

// NewCompleter creates a new Completer. An empty model selects
// DefaultCompletionModel.
func NewCompleter(client *genai.Client, model string) *Completer {
	if model == "" {
		model = DefaultCompletionModel
	}
	return &Completer{client: client, Model: model}
}

// Complete sends a single-turn prompt and returns the generated text.
func (c *Completer) Complete(ctx context.Context, req biorag.CompletionRequest) (string, error) {
	if req.Prompt == "" {
		return "", biorag.Errorf(biorag.EINVALID, "prompt required")
	}

	result, err := c.client.Models.GenerateContent(ctx, c.Model,
		[]*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)},
		BuildConfig(req),
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if result == nil {
		return "", biorag.Errorf(biorag.EINTERNAL, "gemini returned nil result")
	}

	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for a completion request.
func BuildConfig(req biorag.CompletionRequest) *genai.GenerateContentConfig {
	temp := req.Temperature
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	return config
}
