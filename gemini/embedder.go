package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/biorag"
	"google.golang.org/genai"
)

// Ensure Embedder implements biorag.Embedder at compile time.
var _ biorag.Embedder = (*Embedder)(nil)

// Embedder implements biorag.Embedder using Gemini embedding models.
type Embedder struct {
	client *genai.Client

	// Model is the embedding model name.
	Model string

	// Dimensions is the requested output dimensionality.
	Dimensions int
}

// NewEmbedder creates a new Embedder with the default model and dimensions.
func NewEmbedder(client *genai.Client) *Embedder {
	return &Embedder{
		client:     client,
		Model:      DefaultEmbeddingModel,
		Dimensions: DefaultEmbeddingDims,
	}
}

// Embed returns one vector per text, in input order.
func (e *Embedder) Embed(ctx context.Context, texts []string, task biorag.EmbedTask) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	config := BuildEmbedConfig(task, e.Dimensions)
	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxEmbedContentsPerBatch {
		end := min(start+maxEmbedContentsPerBatch, len(texts))

		contents := make([]*genai.Content, 0, end-start)
		for _, text := range texts[start:end] {
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}

		result, err := e.client.Models.EmbedContent(ctx, e.Model, contents, config)
		if err != nil {
			return nil, fmt.Errorf("gemini embed: %w", err)
		}
		if result == nil || len(result.Embeddings) != len(contents) {
			return nil, biorag.Errorf(biorag.EINTERNAL, "gemini returned %d embeddings for %d texts",
				embeddingCount(result), len(contents))
		}

		for _, emb := range result.Embeddings {
			if emb == nil || len(emb.Values) == 0 {
				return nil, biorag.Errorf(biorag.EINTERNAL, "gemini returned an empty embedding")
			}
			if e.Dimensions > 0 && len(emb.Values) != e.Dimensions {
				return nil, biorag.Errorf(biorag.EINTERNAL, "embedding dimension mismatch: expected %d, got %d",
					e.Dimensions, len(emb.Values))
			}
			vectors = append(vectors, emb.Values)
		}
	}
	return vectors, nil
}

// BuildEmbedConfig returns the EmbedContentConfig for a task type.
func BuildEmbedConfig(task biorag.EmbedTask, dims int) *genai.EmbedContentConfig {
	config := &genai.EmbedContentConfig{TaskType: string(task)}
	if dims > 0 {
		d := int32(dims)
		config.OutputDimensionality = &d
	}
	return config
}

func embeddingCount(result *genai.EmbedContentResponse) int {
	if result == nil {
		return 0
	}
	return len(result.Embeddings)
}
