// Package readability provides a last-resort content extractor built on
// go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/biorag"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements biorag.Extractor at compile time.
var _ biorag.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*biorag.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, biorag.Errorf(biorag.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, biorag.Errorf(biorag.ENOTFOUND, "readability: %v", err)
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return nil, biorag.Errorf(biorag.ENOTFOUND, "no content found")
	}

	return &biorag.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
