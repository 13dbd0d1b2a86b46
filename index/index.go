// Package index turns collected documents into embedded vector store
// records.
package index

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/biorag"
)

var _ biorag.Indexer = (*Indexer)(nil)

// Indexer chunks documents, embeds the chunks the store does not hold yet
// and upserts them.
type Indexer struct {
	Documents biorag.DocumentService
	Store     biorag.VectorStore
	Embedder  biorag.Embedder

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewIndexer creates a new Indexer.
func NewIndexer(docs biorag.DocumentService, store biorag.VectorStore, embedder biorag.Embedder) *Indexer {
	return &Indexer{
		Documents: docs,
		Store:     store,
		Embedder:  embedder,
		Now:       time.Now,
	}
}

// RecordID returns the key of a chunk: the xxhash of the person key, source
// URL and chunk text joined by NUL bytes, in hex. Spellings of a name that
// share a biorag.PersonKey share record IDs.
func RecordID(person, sourceURL, content string) string {
	h := xxhash.New()
	_, _ = h.WriteString(biorag.PersonKey(person))
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(sourceURL)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(content)
	return fmt.Sprintf("%016x", h.Sum64())
}

// IndexPerson implements biorag.Indexer.
func (ix *Indexer) IndexPerson(ctx context.Context, person string, opts biorag.IndexOptions) (*biorag.IndexResult, error) {
	person = strings.TrimSpace(person)
	key := biorag.PersonKey(person)
	if key == "" {
		return nil, biorag.Errorf(biorag.EINVALID, "person name required")
	}

	docs, err := ix.Documents.FindDocuments(ctx, biorag.DocumentFilter{Person: person})
	if err != nil && biorag.ErrorCode(err) != biorag.ENOTFOUND {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, biorag.Errorf(biorag.ENOTFOUND, "no documents for %s: run with --scrape first", person)
	}

	records := ix.buildRecords(key, docs, opts.ChunkSize)
	result := &biorag.IndexResult{
		Documents: len(docs),
		Chunks:    len(records),
	}

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	existing, err := ix.Store.FindExistingIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find existing records: %w", err)
	}

	var missing []*biorag.Record
	for _, r := range records {
		if !existing[r.ID] {
			missing = append(missing, r)
		}
	}
	result.Skipped = len(records) - len(missing)

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = biorag.DefaultEmbedBatchSize
	}
	for start := 0; start < len(missing); start += batchSize {
		batch := missing[start:min(start+batchSize, len(missing))]
		n, err := ix.embedBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		result.Embedded += n
	}

	if opts.Prune {
		n, err := ix.Store.DeleteStaleRecords(ctx, key, ids)
		if err != nil {
			return nil, fmt.Errorf("prune records: %w", err)
		}
		result.Pruned = n
	}

	return result, nil
}

// buildRecords splits every document into chunk records without
// embeddings, stored under the person key. Chunks with the same ID are
// kept once.
func (ix *Indexer) buildRecords(key string, docs []*biorag.Document, chunkSize int) []*biorag.Record {
	now := time.Now
	if ix.Now != nil {
		now = ix.Now
	}
	createdAt := now().UTC()

	seen := make(map[string]bool)
	var records []*biorag.Record
	for _, doc := range docs {
		for _, chunk := range biorag.SplitText(doc.Content, chunkSize) {
			id := RecordID(key, doc.SourceURL, chunk.Content)
			if seen[id] {
				continue
			}
			seen[id] = true
			records = append(records, &biorag.Record{
				ID:         id,
				Person:     key,
				DocumentID: doc.ID,
				SourceURL:  doc.SourceURL,
				SourceType: doc.SourceType,
				Title:      doc.Title,
				ChunkIndex: chunk.Index,
				Offset:     chunk.Offset,
				Content:    chunk.Content,
				CreatedAt:  createdAt,
			})
		}
	}
	return records
}

func (ix *Indexer) embedBatch(ctx context.Context, batch []*biorag.Record) (int, error) {
	texts := make([]string, len(batch))
	for i, r := range batch {
		texts[i] = r.Content
	}

	vectors, err := ix.Embedder.Embed(ctx, texts, biorag.EmbedTaskDocument)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(batch) {
		return 0, biorag.Errorf(biorag.EINTERNAL, "embedder returned %d vectors for %d chunks", len(vectors), len(batch))
	}
	for i, r := range batch {
		r.Embedding = vectors[i]
	}

	n, err := ix.Store.UpsertRecords(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("store records: %w", err)
	}
	return n, nil
}
