package mock

import (
	"context"

	"github.com/fwojciec/biorag"
)

var _ biorag.TokenCounter = (*TokenCounter)(nil)

// TokenCounter is a mock implementation of biorag.TokenCounter.
type TokenCounter struct {
	CountTokensFn func(ctx context.Context, text string) (int, error)
}

func (m *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	return m.CountTokensFn(ctx, text)
}
