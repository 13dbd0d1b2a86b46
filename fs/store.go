package fs

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/biorag"
	"github.com/google/uuid"
)

// Ensure FileStore implements biorag.DocumentStore at compile time.
var _ biorag.DocumentStore = (*FileStore)(nil)

// FileStore implements biorag.DocumentStore with atomic update semantics.
// Documents are saved to a temporary directory, then moved into place on Commit.
type FileStore struct {
	baseDir string
	name    string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	mu       sync.Mutex
	position int
	names    map[string]bool
}

// NewFileStore creates a new FileStore for one person's scrape.
// Files are saved to baseDir/<slug>.tmp and moved to baseDir/<slug> on Commit.
func NewFileStore(baseDir, person string) *FileStore {
	return &FileStore{
		baseDir: baseDir,
		name:    biorag.PersonKey(person),
		Now:     time.Now,
		names:   make(map[string]bool),
	}
}

func (s *FileStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *FileStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save assigns the document its ID, content hash, position and fetch time,
// then writes it to the temporary directory.
func (s *FileStore) Save(ctx context.Context, doc *biorag.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	name, err := DocumentFileName(doc.SourceURL)
	if err != nil {
		return biorag.Errorf(biorag.EINVALID, "invalid source URL %q", doc.SourceURL)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.names[name] {
		return biorag.Errorf(biorag.ECONFLICT, "document already saved for %s", doc.SourceURL)
	}

	if doc.ID == "" {
		doc.ID = DocumentID(doc.SourceURL)
	}
	doc.ContentHash = hashContent(doc.Content)
	doc.Position = s.position
	if doc.FetchedAt.IsZero() {
		doc.FetchedAt = s.Now().UTC()
	}

	data, err := FormatDocument(doc)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.tempDir(), name), data, 0644); err != nil {
		return err
	}

	s.names[name] = true
	s.position++
	return nil
}

// Commit replaces the previous scrape with the saved documents.
func (s *FileStore) Commit() error {
	// Remove existing final directory if present
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}

	// Atomically rename temp to final
	if err := os.Rename(s.tempDir(), s.finalDir()); err != nil {
		return err
	}

	return nil
}

// Abort discards the saved documents and keeps the previous scrape.
func (s *FileStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}

// DocumentID returns the stable ID of the document scraped from sourceURL:
// a name-based UUID in the URL namespace. Re-scraping a page keeps its ID,
// so index records of unchanged chunks still point at their document.
func DocumentID(sourceURL string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(sourceURL)).String()
}

// hashContent returns the xxhash of content as a hex string.
func hashContent(content string) string {
	return strconv.FormatUint(xxhash.Sum64String(content), 16)
}
