package biorag

import (
	"context"
	"time"
)

// Record is an embedded chunk as persisted in the vector store.
// Person holds the PersonKey of the name. ID is a content hash of
// (person key, source URL, chunk text), so storing the same chunk twice is
// a no-op.
type Record struct {
	ID         string     `json:"id"`
	Person     string     `json:"person"`
	DocumentID string     `json:"documentId"`
	SourceURL  string     `json:"sourceUrl"`
	SourceType SourceType `json:"sourceType"`
	Title      string     `json:"title"`
	ChunkIndex int        `json:"chunkIndex"`
	Offset     int        `json:"offset"`
	Content    string     `json:"content"`
	Embedding  []float32  `json:"embedding,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Validate returns an error if the record contains invalid fields.
func (r *Record) Validate() error {
	if r.ID == "" {
		return Errorf(EINVALID, "record ID required")
	}
	if r.Person == "" {
		return Errorf(EINVALID, "record person required")
	}
	if r.SourceURL == "" {
		return Errorf(EINVALID, "record source URL required")
	}
	if r.Content == "" {
		return Errorf(EINVALID, "record content required")
	}
	if len(r.Embedding) == 0 {
		return Errorf(EINVALID, "record embedding required")
	}
	return nil
}

// VectorStore persists embedding records and searches them by similarity.
type VectorStore interface {
	// FindExistingIDs reports which of the given record IDs are already stored.
	FindExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)

	// UpsertRecords stores records whose ID is not present yet and returns
	// the number of records inserted. Existing records are left untouched.
	UpsertRecords(ctx context.Context, records []*Record) (int, error)

	// FindRecords retrieves records matching the filter.
	FindRecords(ctx context.Context, filter RecordFilter) ([]*Record, error)

	// Search returns the person's records nearest to the query embedding,
	// ordered by decreasing similarity.
	Search(ctx context.Context, embedding []float32, opts SearchOptions) ([]SearchResult, error)

	// DeleteStaleRecords removes the person's records whose ID is not in keep
	// and returns the number of records removed.
	DeleteStaleRecords(ctx context.Context, person string, keep []string) (int, error)

	// CountRecords returns the number of records stored for the person.
	CountRecords(ctx context.Context, person string) (int, error)
}

// RecordFilter represents a filter for FindRecords.
type RecordFilter struct {
	Person    *string `json:"person"`
	SourceURL *string `json:"sourceUrl"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// SearchOptions configures search behavior.
type SearchOptions struct {
	// Person restricts results to the records stored under this PersonKey.
	Person string `json:"person"`

	// Maximum number of results to return
	Limit int `json:"limit,omitempty"`

	// Minimum similarity score (-1 to 1)
	MinScore float32 `json:"minScore,omitempty"`
}

// SearchResult represents a search match.
type SearchResult struct {
	Record *Record `json:"record"`
	Score  float32 `json:"score"`
}
