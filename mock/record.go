package mock

import (
	"context"

	"github.com/fwojciec/biorag"
)

var _ biorag.VectorStore = (*VectorStore)(nil)

// VectorStore is a mock implementation of biorag.VectorStore.
type VectorStore struct {
	FindExistingIDsFn    func(ctx context.Context, ids []string) (map[string]bool, error)
	UpsertRecordsFn      func(ctx context.Context, records []*biorag.Record) (int, error)
	FindRecordsFn        func(ctx context.Context, filter biorag.RecordFilter) ([]*biorag.Record, error)
	SearchFn             func(ctx context.Context, embedding []float32, opts biorag.SearchOptions) ([]biorag.SearchResult, error)
	DeleteStaleRecordsFn func(ctx context.Context, person string, keep []string) (int, error)
	CountRecordsFn       func(ctx context.Context, person string) (int, error)
}

func (s *VectorStore) FindExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	return s.FindExistingIDsFn(ctx, ids)
}

func (s *VectorStore) UpsertRecords(ctx context.Context, records []*biorag.Record) (int, error) {
	return s.UpsertRecordsFn(ctx, records)
}

func (s *VectorStore) FindRecords(ctx context.Context, filter biorag.RecordFilter) ([]*biorag.Record, error) {
	return s.FindRecordsFn(ctx, filter)
}

func (s *VectorStore) Search(ctx context.Context, embedding []float32, opts biorag.SearchOptions) ([]biorag.SearchResult, error) {
	return s.SearchFn(ctx, embedding, opts)
}

func (s *VectorStore) DeleteStaleRecords(ctx context.Context, person string, keep []string) (int, error) {
	return s.DeleteStaleRecordsFn(ctx, person, keep)
}

func (s *VectorStore) CountRecords(ctx context.Context, person string) (int, error) {
	return s.CountRecordsFn(ctx, person)
}
