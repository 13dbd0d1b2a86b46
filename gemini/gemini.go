// Package gemini implements embeddings, completion and token counting on the
// Google Gemini API.
package gemini

import (
	"context"

	"github.com/fwojciec/biorag"
	"google.golang.org/genai"
)

// Default model settings.
const (
	DefaultCompletionModel   = "gemini-2.5-flash"
	DefaultEmbeddingModel    = "gemini-embedding-001"
	DefaultEmbeddingDims     = 768
	DefaultTokenizerModel    = "gemini-2.0-flash"
	maxEmbedContentsPerBatch = 100
)

// NewClient creates a Gemini API client. baseURL overrides the API endpoint
// and is empty in production.
func NewClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, biorag.Errorf(biorag.EUNAUTHORIZED, "GEMINI_API_KEY is not set")
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	return genai.NewClient(ctx, cfg)
}
