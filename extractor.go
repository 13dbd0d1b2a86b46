package biorag

import "strings"

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
type Extractor interface {
	// Extract processes raw HTML and returns the main content.
	// Returns ENOTFOUND if the page has no usable content.
	Extract(html string) (*ExtractResult, error)
}

// ExtractorRegistry holds site-specific extractors for known primary-source
// sites.
type ExtractorRegistry interface {
	// ForURL returns the site extractor for the page at rawURL.
	// ok is false when the URL does not belong to a known site.
	ForURL(rawURL string) (ex Extractor, ok bool)
}

// ExtractorChain tries extractors in order and returns the first result
// with non-empty content.
type ExtractorChain []Extractor

// Extract implements Extractor.
func (c ExtractorChain) Extract(html string) (*ExtractResult, error) {
	var lastErr error
	var title string
	for _, ex := range c {
		result, err := ex.Extract(html)
		if err != nil {
			lastErr = err
			continue
		}
		if title == "" {
			title = result.Title
		}
		if strings.TrimSpace(result.ContentHTML) != "" {
			if result.Title == "" {
				result.Title = title
			}
			return result, nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, Errorf(ENOTFOUND, "no content found")
}
