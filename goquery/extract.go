// Package goquery implements HTML parsing on top of goquery: content
// extraction by CSS selector, plain-text conversion and web search result
// parsing.
package goquery

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/biorag"
)

var _ biorag.Extractor = (*SelectorExtractor)(nil)

// noiseSelector matches page furniture that never holds biographical text.
const noiseSelector = "script, style, nav, header, footer, iframe, aside"

// SelectorExtractor extracts the first element matching one of its selectors
// whose text is longer than MinLength characters.
type SelectorExtractor struct {
	// Selectors are tried in order.
	Selectors []string

	// Strip is removed from the whole page before matching.
	Strip string

	// Remove is removed from the matched element.
	Remove string

	// MinLength is the number of characters the matched text must exceed.
	MinLength int

	// BodyFallback uses <body> when no selector yields enough text.
	BodyFallback bool
}

// Extract implements biorag.Extractor.
func (e *SelectorExtractor) Extract(html string) (*biorag.ExtractResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, biorag.Errorf(biorag.EINVALID, "failed to parse HTML: %v", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	if e.Strip != "" {
		doc.Find(e.Strip).Remove()
	}

	for _, selector := range e.Selectors {
		if content, ok := e.match(doc.Find(selector).First()); ok {
			return &biorag.ExtractResult{Title: title, ContentHTML: content}, nil
		}
	}

	if e.BodyFallback {
		if content, ok := e.match(doc.Find("body").First()); ok {
			return &biorag.ExtractResult{Title: title, ContentHTML: content}, nil
		}
	}

	return nil, biorag.Errorf(biorag.ENOTFOUND, "no content found")
}

func (e *SelectorExtractor) match(sel *goquery.Selection) (string, bool) {
	if sel.Length() == 0 {
		return "", false
	}
	if e.Remove != "" {
		sel.Find(e.Remove).Remove()
	}
	if utf8.RuneCountInString(strings.TrimSpace(sel.Text())) <= e.MinLength {
		return "", false
	}
	content, err := goquery.OuterHtml(sel)
	if err != nil {
		return "", false
	}
	return content, true
}

// NewWikisourceExtractor returns the extractor for Wikisource pages.
func NewWikisourceExtractor() *SelectorExtractor {
	return &SelectorExtractor{
		Selectors: []string{".mw-parser-output"},
		Remove:    ".reference, .mw-editsection",
	}
}

// NewGutenbergExtractor returns the extractor for Project Gutenberg pages.
func NewGutenbergExtractor() *SelectorExtractor {
	return &SelectorExtractor{
		Selectors: []string{".text"},
	}
}

// NewGenericExtractor returns the extractor for arbitrary article pages.
// Matches must carry more than 500 characters of text.
func NewGenericExtractor() *SelectorExtractor {
	return &SelectorExtractor{
		Selectors: []string{
			"article",
			"main",
			".post-content",
			".entry-content",
			".article-content",
			".content",
			"#content",
			".post",
			`div[role="main"]`,
			".main-content",
		},
		Strip:        noiseSelector,
		MinLength:    500,
		BodyFallback: true,
	}
}
