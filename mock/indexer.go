package mock

import (
	"context"

	"github.com/fwojciec/biorag"
)

var _ biorag.Indexer = (*Indexer)(nil)

// Indexer is a mock implementation of biorag.Indexer.
type Indexer struct {
	IndexPersonFn func(ctx context.Context, person string, opts biorag.IndexOptions) (*biorag.IndexResult, error)
}

func (i *Indexer) IndexPerson(ctx context.Context, person string, opts biorag.IndexOptions) (*biorag.IndexResult, error) {
	return i.IndexPersonFn(ctx, person, opts)
}
