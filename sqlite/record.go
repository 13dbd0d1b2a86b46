package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fwojciec/biorag"
)

// Compile-time interface verification.
var _ biorag.VectorStore = (*RecordService)(nil)

// RecordService implements biorag.VectorStore using SQLite.
// Similarity search is a linear cosine scan over one person's records.
type RecordService struct {
	db *DB
}

// NewRecordService creates a new RecordService.
func NewRecordService(db *DB) *RecordService {
	return &RecordService{db: db}
}

// FindExistingIDs reports which of ids are already stored.
func (s *RecordService) FindExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	// Stay well below SQLite's bound parameter limit.
	const batch = 500
	for start := 0; start < len(ids); start += batch {
		end := min(start+batch, len(ids))
		part := ids[start:end]

		args := make([]any, len(part))
		for i, id := range part {
			args[i] = id
		}
		query := "SELECT id FROM records WHERE id IN (?" + strings.Repeat(", ?", len(part)-1) + ")"

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, err
			}
			existing[id] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return existing, nil
}

// UpsertRecords inserts records in one transaction. Records whose ID already
// exists are skipped; the number of inserted records is returned.
func (s *RecordService) UpsertRecords(ctx context.Context, records []*biorag.Record) (int, error) {
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return 0, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (id, person, document_id, source_url, source_type, title,
			chunk_index, chunk_offset, content, dimension, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	inserted := 0
	for _, r := range records {
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		res, err := stmt.ExecContext(ctx, r.ID, r.Person, r.DocumentID, r.SourceURL, string(r.SourceType),
			r.Title, r.ChunkIndex, r.Offset, r.Content, len(r.Embedding), encodeEmbedding(r.Embedding),
			r.CreatedAt.Format(time.RFC3339))
		if err != nil {
			return 0, fmt.Errorf("insert record %s: %w", r.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

const recordColumns = `id, person, document_id, source_url, source_type, title,
	chunk_index, chunk_offset, content, dimension, embedding, created_at`

// FindRecords retrieves records matching the filter, ordered by source and chunk.
func (s *RecordService) FindRecords(ctx context.Context, filter biorag.RecordFilter) ([]*biorag.Record, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + recordColumns + " FROM records WHERE 1=1")

	if filter.Person != nil {
		query.WriteString(" AND person = ?")
		args = append(args, *filter.Person)
	}
	if filter.SourceURL != nil {
		query.WriteString(" AND source_url = ?")
		args = append(args, *filter.SourceURL)
	}

	query.WriteString(" ORDER BY source_url ASC, chunk_index ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	return s.queryRecords(ctx, query.String(), args...)
}

// Search scores every record of opts.Person against embedding and returns
// the best matches by decreasing cosine similarity.
func (s *RecordService) Search(ctx context.Context, embedding []float32, opts biorag.SearchOptions) ([]biorag.SearchResult, error) {
	if len(embedding) == 0 {
		return nil, biorag.Errorf(biorag.EINVALID, "query embedding required")
	}
	if opts.Person == "" {
		return nil, biorag.Errorf(biorag.EINVALID, "person required")
	}

	records, err := s.queryRecords(ctx, "SELECT "+recordColumns+" FROM records WHERE person = ?", opts.Person)
	if err != nil {
		return nil, err
	}

	results := make([]biorag.SearchResult, 0, len(records))
	for _, r := range records {
		if len(r.Embedding) != len(embedding) {
			return nil, biorag.Errorf(biorag.EINVALID,
				"embedding dimension mismatch: query has %d, stored record has %d", len(embedding), len(r.Embedding))
		}
		score := cosine(embedding, r.Embedding)
		if opts.MinScore != 0 && score < opts.MinScore {
			continue
		}
		results = append(results, biorag.SearchResult{Record: r, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// DeleteStaleRecords removes the person's records whose ID is not in keep.
func (s *RecordService) DeleteStaleRecords(ctx context.Context, person string, keep []string) (int, error) {
	if person == "" {
		return 0, biorag.Errorf(biorag.EINVALID, "person required")
	}

	keepSet := make(map[string]bool, len(keep))
	for _, id := range keep {
		keepSet[id] = true
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id FROM records WHERE person = ?", person)
	if err != nil {
		return 0, err
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		if !keepSet[id] {
			stale = append(stale, id)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	if len(stale) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, id := range stale {
		if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(stale), nil
}

// CountRecords returns the number of records stored for person.
func (s *RecordService) CountRecords(ctx context.Context, person string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE person = ?", person).Scan(&n)
	return n, err
}

func (s *RecordService) queryRecords(ctx context.Context, query string, args ...any) ([]*biorag.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*biorag.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func scanRecord(rows *sql.Rows) (*biorag.Record, error) {
	var r biorag.Record
	var sourceType, createdAt string
	var dim int
	var blob []byte

	if err := rows.Scan(&r.ID, &r.Person, &r.DocumentID, &r.SourceURL, &sourceType, &r.Title,
		&r.ChunkIndex, &r.Offset, &r.Content, &dim, &blob, &createdAt); err != nil {
		return nil, err
	}
	r.SourceType = biorag.SourceType(sourceType)

	var err error
	if r.Embedding, err = decodeEmbedding(blob, dim); err != nil {
		return nil, fmt.Errorf("record %s: %w", r.ID, err)
	}
	if r.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &r, nil
}
