package biorag

import "context"

// DefaultEmbedBatchSize is the number of chunks embedded per request.
const DefaultEmbedBatchSize = 100

// IndexOptions configures an indexing run.
type IndexOptions struct {
	ChunkSize int
	BatchSize int

	// Prune removes the person's records that the current documents no
	// longer produce. Set it after a full re-scrape.
	Prune bool
}

// IndexResult summarizes an indexing run.
type IndexResult struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
	Embedded  int `json:"embedded"`
	Skipped   int `json:"skipped"`
	Pruned    int `json:"pruned"`
}

// Indexer embeds a person's collected documents into the vector store.
type Indexer interface {
	// IndexPerson chunks and embeds every document collected for person.
	// Chunks already stored are not embedded again.
	// Returns ENOTFOUND if nothing was collected for the person.
	IndexPerson(ctx context.Context, person string, opts IndexOptions) (*IndexResult, error)
}
