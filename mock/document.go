package mock

import (
	"context"

	"github.com/fwojciec/biorag"
)

// Compile-time interface verification.
var (
	_ biorag.DocumentService = (*DocumentService)(nil)
	_ biorag.DocumentStore   = (*DocumentStore)(nil)
)

// DocumentService is a mock implementation of biorag.DocumentService.
type DocumentService struct {
	FindDocumentsFn func(ctx context.Context, filter biorag.DocumentFilter) ([]*biorag.Document, error)
}

func (s *DocumentService) FindDocuments(ctx context.Context, filter biorag.DocumentFilter) ([]*biorag.Document, error) {
	return s.FindDocumentsFn(ctx, filter)
}

// DocumentStore is a mock implementation of biorag.DocumentStore.
type DocumentStore struct {
	SaveFn   func(ctx context.Context, doc *biorag.Document) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *DocumentStore) Save(ctx context.Context, doc *biorag.Document) error {
	return s.SaveFn(ctx, doc)
}

func (s *DocumentStore) Commit() error {
	return s.CommitFn()
}

func (s *DocumentStore) Abort() error {
	return s.AbortFn()
}
