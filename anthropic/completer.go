// Package anthropic implements biorag.Completer on the Anthropic Messages API.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/fwojciec/biorag"
)

// Default settings.
const (
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 1024
)

// Ensure Completer implements biorag.Completer at compile time.
var _ biorag.Completer = (*Completer)(nil)

// Completer implements biorag.Completer using Claude models.
type Completer struct {
	client anthropic.Client

	// Model is the Claude model name.
	Model string

	// MaxTokens bounds the length of a completion.
	MaxTokens int64
}

// NewCompleter creates a Completer. An empty model selects DefaultModel.
// Extra options are passed to the Anthropic client.
func NewCompleter(apiKey, model string, opts ...option.RequestOption) (*Completer, error) {
	if apiKey == "" {
		return nil, biorag.Errorf(biorag.EUNAUTHORIZED, "ANTHROPIC_API_KEY is not set")
	}
	if model == "" {
		model = DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Completer{
		client:    anthropic.NewClient(opts...),
		Model:     model,
		MaxTokens: DefaultMaxTokens,
	}, nil
}

// Complete sends a single user message and returns the concatenated text blocks
// of the reply.
func (c *Completer) Complete(ctx context.Context, req biorag.CompletionRequest) (string, error) {
	if req.Prompt == "" {
		return "", biorag.Errorf(biorag.EINVALID, "prompt required")
	}

	resp, err := c.client.Messages.New(ctx, BuildParams(c.Model, c.MaxTokens, req))
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", biorag.Errorf(biorag.EINTERNAL, "anthropic returned no text")
	}
	return text.String(), nil
}

// BuildParams returns the request parameters for a completion request.
func BuildParams(model string, maxTokens int64, req biorag.CompletionRequest) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   maxTokens,
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt))},
		Temperature: anthropic.Float(float64(req.Temperature)),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	return params
}
