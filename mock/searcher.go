package mock

import (
	"context"

	"github.com/fwojciec/biorag"
)

var _ biorag.WebSearcher = (*WebSearcher)(nil)

// WebSearcher is a mock implementation of biorag.WebSearcher.
type WebSearcher struct {
	SearchFn func(ctx context.Context, query string) ([]string, error)
}

func (s *WebSearcher) Search(ctx context.Context, query string) ([]string, error) {
	return s.SearchFn(ctx, query)
}
