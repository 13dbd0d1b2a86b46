package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fwojciec/biorag"
	"gopkg.in/yaml.v3"
)

const frontMatterDelim = "---\n"

// FormatDocument renders a document as YAML front matter followed by its text.
func FormatDocument(doc *biorag.Document) ([]byte, error) {
	header, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal front matter: %w", err)
	}

	var b bytes.Buffer
	b.WriteString(frontMatterDelim)
	b.Write(header)
	b.WriteString(frontMatterDelim)
	b.WriteString("\n")
	b.WriteString(doc.Content)
	return b.Bytes(), nil
}

// ParseDocument parses a file written by FormatDocument.
func ParseDocument(data []byte) (*biorag.Document, error) {
	s := string(data)
	if !strings.HasPrefix(s, frontMatterDelim) {
		return nil, biorag.Errorf(biorag.EINVALID, "missing front matter")
	}
	rest := s[len(frontMatterDelim):]

	end := strings.Index(rest, "\n"+frontMatterDelim)
	if end < 0 {
		return nil, biorag.Errorf(biorag.EINVALID, "unterminated front matter")
	}

	var doc biorag.Document
	if err := yaml.Unmarshal([]byte(rest[:end+1]), &doc); err != nil {
		return nil, biorag.Errorf(biorag.EINVALID, "invalid front matter: %v", err)
	}

	body := rest[end+1+len(frontMatterDelim):]
	doc.Content = strings.TrimPrefix(body, "\n")
	return &doc, nil
}

// Ensure DocumentService implements biorag.DocumentService at compile time.
var _ biorag.DocumentService = (*DocumentService)(nil)

// DocumentService reads committed documents from the output directory.
type DocumentService struct {
	baseDir string
}

// NewDocumentService creates a DocumentService rooted at baseDir.
func NewDocumentService(baseDir string) *DocumentService {
	return &DocumentService{baseDir: baseDir}
}

// FindDocuments returns the person's documents in collection order.
func (s *DocumentService) FindDocuments(ctx context.Context, filter biorag.DocumentFilter) ([]*biorag.Document, error) {
	key := biorag.PersonKey(filter.Person)
	if key == "" {
		return nil, biorag.Errorf(biorag.EINVALID, "person required")
	}

	dir := filepath.Join(s.baseDir, key)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, biorag.Errorf(biorag.ENOTFOUND, "no documents collected for %s", filter.Person)
	} else if err != nil {
		return nil, err
	}

	docs := make([]*biorag.Document, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || filepath.Ext(e.Name()) != ".txt" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		doc, err := ParseDocument(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		if filter.SourceURL != nil && doc.SourceURL != *filter.SourceURL {
			continue
		}
		docs = append(docs, doc)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Position < docs[j].Position
	})

	if filter.Limit > 0 && len(docs) > filter.Limit {
		docs = docs[:filter.Limit]
	}
	return docs, nil
}
