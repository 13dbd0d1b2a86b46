package mock

import (
	"context"

	"github.com/fwojciec/biorag"
)

// Compile-time interface verification.
var (
	_ biorag.Embedder  = (*Embedder)(nil)
	_ biorag.Completer = (*Completer)(nil)
)

// Embedder is a mock implementation of biorag.Embedder.
type Embedder struct {
	EmbedFn func(ctx context.Context, texts []string, task biorag.EmbedTask) ([][]float32, error)
}

func (e *Embedder) Embed(ctx context.Context, texts []string, task biorag.EmbedTask) ([][]float32, error) {
	return e.EmbedFn(ctx, texts, task)
}

// Completer is a mock implementation of biorag.Completer.
type Completer struct {
	CompleteFn func(ctx context.Context, req biorag.CompletionRequest) (string, error)
}

func (c *Completer) Complete(ctx context.Context, req biorag.CompletionRequest) (string, error) {
	return c.CompleteFn(ctx, req)
}
