package biorag

import "context"

// EmbedTask tells the embedding model how the vectors will be used.
type EmbedTask string

// Embedding tasks.
const (
	EmbedTaskDocument EmbedTask = "RETRIEVAL_DOCUMENT"
	EmbedTaskQuery    EmbedTask = "RETRIEVAL_QUERY"
)

// Embedder turns text into embedding vectors.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string, task EmbedTask) ([][]float32, error)
}
