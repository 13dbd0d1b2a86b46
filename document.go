package biorag

import (
	"context"
	"strings"
	"time"
	"unicode"
)

// SourceType classifies what kind of material a document is.
type SourceType string

// Source types assigned during collection.
const (
	SourceSpeech         SourceType = "speech"
	SourceWriting        SourceType = "writing"
	SourceCorrespondence SourceType = "correspondence"
	SourceInterview      SourceType = "interview"
	SourcePrimary        SourceType = "primary_source"
	SourceOther          SourceType = "other"
)

// Document represents the text scraped from one source page.
// Documents are written once per scrape and never updated in place.
type Document struct {
	ID          string     `json:"id" yaml:"id"`
	Person      string     `json:"person" yaml:"person"`
	SourceURL   string     `json:"sourceUrl" yaml:"source"`
	SourceType  SourceType `json:"sourceType" yaml:"source_type"`
	Title       string     `json:"title" yaml:"title"`
	Content     string     `json:"content" yaml:"-"`
	ContentHash string     `json:"contentHash" yaml:"content_hash"`
	Position    int        `json:"position" yaml:"position"`
	FetchedAt   time.Time  `json:"fetchedAt" yaml:"fetched"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if PersonKey(d.Person) == "" {
		return Errorf(EINVALID, "document person required")
	}
	if d.SourceURL == "" {
		return Errorf(EINVALID, "document source URL required")
	}
	return nil
}

// DocumentStore persists the documents of one scrape with atomic semantics.
// Save writes to a temporary location; Commit replaces the previous scrape
// with the saved documents; Abort discards them.
type DocumentStore interface {
	Save(ctx context.Context, doc *Document) error
	Commit() error
	Abort() error
}

// DocumentService represents a service for reading collected documents.
type DocumentService interface {
	// FindDocuments retrieves documents matching the filter, in collection order.
	// Returns ENOTFOUND if nothing was ever collected for the person.
	FindDocuments(ctx context.Context, filter DocumentFilter) ([]*Document, error)
}

// DocumentFilter represents a filter for FindDocuments.
type DocumentFilter struct {
	Person    string  `json:"person"`
	SourceURL *string `json:"sourceUrl"`

	Limit int `json:"limit"`
}

// PersonKey returns the canonical key for a person's name. Names that
// differ only in case, spacing or punctuation share a key, and with it
// their scraped documents and index records.
// Example: "Marcus  aurelius" → marcus_aurelius
func PersonKey(name string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-') {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			sep = false
			continue
		}
		sep = true
	}
	return b.String()
}
