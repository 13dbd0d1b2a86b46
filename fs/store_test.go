package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/biorag"
	"github.com/fwojciec/biorag/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Story: Atomic Document Storage
// A scrape is written to a temp directory and replaces the previous one on commit

func newDoc(url, title, content string) *biorag.Document {
	return &biorag.Document{
		Person:     "Marcus Aurelius",
		SourceURL:  url,
		SourceType: biorag.SourceWriting,
		Title:      title,
		Content:    content,
	}
}

func TestFileStore_SaveWritesToTempDirectory(t *testing.T) {
	t.Parallel()

	// Given a store for a person
	base := t.TempDir()
	store := fs.NewFileStore(base, "Marcus Aurelius")

	// When I save a document
	err := store.Save(context.Background(), newDoc("https://example.com/meditations", "Meditations", "Begin the morning."))

	// Then no error occurs
	require.NoError(t, err)

	// And a file exists in the temp directory
	entries, err := os.ReadDir(filepath.Join(base, "marcus_aurelius.tmp"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// And the final directory does not exist yet
	_, err = os.Stat(filepath.Join(base, "marcus_aurelius"))
	assert.True(t, os.IsNotExist(err), "final directory should not exist until commit")
}

func TestFileStore_SaveAssignsMetadata(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	store := fs.NewFileStore(base, "Marcus Aurelius")
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	store.Now = func() time.Time { return fixed }

	first := newDoc("https://example.com/a", "A", "alpha")
	second := newDoc("https://example.com/b", "B", "beta")
	require.NoError(t, store.Save(context.Background(), first))
	require.NoError(t, store.Save(context.Background(), second))

	assert.Equal(t, fs.DocumentID("https://example.com/a"), first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEmpty(t, first.ContentHash)
	assert.NotEqual(t, first.ContentHash, second.ContentHash)
	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)
	assert.Equal(t, fixed, first.FetchedAt)
}

func TestFileStore_DocumentIDSurvivesRescrape(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := t.TempDir()

	first := newDoc("https://example.com/meditations", "Meditations", "Begin the morning.")
	store := fs.NewFileStore(base, "Marcus Aurelius")
	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Commit())

	second := newDoc("https://example.com/meditations", "Meditations", "Begin the morning by saying to thyself.")
	rescrape := fs.NewFileStore(base, "Marcus Aurelius")
	require.NoError(t, rescrape.Save(ctx, second))
	require.NoError(t, rescrape.Commit())

	assert.Equal(t, first.ID, second.ID)

	docs, err := fs.NewDocumentService(base).FindDocuments(ctx, biorag.DocumentFilter{Person: "marcus aurelius"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, first.ID, docs[0].ID)
}

func TestDocumentID(t *testing.T) {
	t.Parallel()

	id := fs.DocumentID("https://example.com/a")

	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-5[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`, id)
	assert.Equal(t, id, fs.DocumentID("https://example.com/a"))
	assert.NotEqual(t, id, fs.DocumentID("https://example.com/b"))
}

func TestFileStore_SaveRejectsInvalidDocuments(t *testing.T) {
	t.Parallel()

	store := fs.NewFileStore(t.TempDir(), "Marcus Aurelius")

	err := store.Save(context.Background(), &biorag.Document{Person: "Marcus Aurelius"})

	assert.Equal(t, biorag.EINVALID, biorag.ErrorCode(err))
}

func TestFileStore_SaveRejectsDuplicateURL(t *testing.T) {
	t.Parallel()

	store := fs.NewFileStore(t.TempDir(), "Marcus Aurelius")
	require.NoError(t, store.Save(context.Background(), newDoc("https://example.com/a", "A", "alpha")))

	err := store.Save(context.Background(), newDoc("https://example.com/a", "A", "alpha again"))

	assert.Equal(t, biorag.ECONFLICT, biorag.ErrorCode(err))
}

func TestFileStore_CommitReplacesPreviousScrape(t *testing.T) {
	t.Parallel()

	// Given a committed scrape
	base := t.TempDir()
	old := fs.NewFileStore(base, "Marcus Aurelius")
	require.NoError(t, old.Save(context.Background(), newDoc("https://example.com/old", "Old", "old text")))
	require.NoError(t, old.Commit())

	// When a new scrape is committed
	store := fs.NewFileStore(base, "Marcus Aurelius")
	require.NoError(t, store.Save(context.Background(), newDoc("https://example.com/new", "New", "new text")))
	err := store.Commit()

	// Then only the new documents remain
	require.NoError(t, err)
	docs, err := fs.NewDocumentService(base).FindDocuments(context.Background(), biorag.DocumentFilter{Person: "Marcus Aurelius"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "https://example.com/new", docs[0].SourceURL)

	// And the temp directory is gone
	_, err = os.Stat(filepath.Join(base, "marcus_aurelius.tmp"))
	assert.True(t, os.IsNotExist(err), "temp directory should be removed after commit")
}

func TestFileStore_AbortKeepsPreviousScrape(t *testing.T) {
	t.Parallel()

	// Given a committed scrape
	base := t.TempDir()
	old := fs.NewFileStore(base, "Marcus Aurelius")
	require.NoError(t, old.Save(context.Background(), newDoc("https://example.com/old", "Old", "old text")))
	require.NoError(t, old.Commit())

	// When a new scrape is aborted
	store := fs.NewFileStore(base, "Marcus Aurelius")
	require.NoError(t, store.Save(context.Background(), newDoc("https://example.com/new", "New", "new text")))
	err := store.Abort()

	// Then the previous documents are untouched
	require.NoError(t, err)
	docs, err := fs.NewDocumentService(base).FindDocuments(context.Background(), biorag.DocumentFilter{Person: "Marcus Aurelius"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "https://example.com/old", docs[0].SourceURL)

	_, err = os.Stat(filepath.Join(base, "marcus_aurelius.tmp"))
	assert.True(t, os.IsNotExist(err), "temp directory should be removed after abort")
}
