package http

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/biorag"
)

// DefaultWikisourceURL is the English Wikisource API endpoint.
const DefaultWikisourceURL = "https://en.wikisource.org/w/api.php"

// Ensure WikisourceSearcher implements biorag.WebSearcher.
var _ biorag.WebSearcher = (*WikisourceSearcher)(nil)

// WikisourceSearcher finds Wikisource pages through the MediaWiki
// OpenSearch API in its XML format.
type WikisourceSearcher struct {
	fetcher biorag.Fetcher

	// BaseURL is the api.php endpoint. Defaults to DefaultWikisourceURL.
	BaseURL string

	// Limit is the maximum number of pages requested.
	Limit int
}

// NewWikisourceSearcher creates a WikisourceSearcher that requests the API
// through fetcher, so rate limiting and logging decorators apply.
func NewWikisourceSearcher(fetcher biorag.Fetcher) *WikisourceSearcher {
	return &WikisourceSearcher{
		fetcher: fetcher,
		BaseURL: DefaultWikisourceURL,
		Limit:   10,
	}
}

// Search implements biorag.WebSearcher.
func (s *WikisourceSearcher) Search(ctx context.Context, query string) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, biorag.Errorf(biorag.EINVALID, "search query required")
	}

	params := url.Values{}
	params.Set("action", "opensearch")
	params.Set("format", "xml")
	params.Set("namespace", "0")
	params.Set("limit", fmt.Sprint(s.Limit))
	params.Set("search", query)

	body, err := s.fetcher.Fetch(ctx, s.BaseURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("wikisource search %q: %w", query, err)
	}

	return parseOpenSearch([]byte(body))
}

// parseOpenSearch extracts result URLs from an OpenSearch XML response:
// SearchSuggestion > Section > Item > Url.
func parseOpenSearch(data []byte) ([]string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, biorag.Errorf(biorag.EINVALID, "invalid search response: %v", err)
	}

	root := doc.Root()
	if root == nil || root.Tag != "SearchSuggestion" {
		return nil, biorag.Errorf(biorag.EINVALID, "unexpected search response root")
	}

	var urls []string
	for _, section := range root.SelectElements("Section") {
		for _, item := range section.SelectElements("Item") {
			u := item.SelectElement("Url")
			if u == nil {
				continue
			}
			if text := strings.TrimSpace(u.Text()); text != "" {
				urls = append(urls, text)
			}
		}
	}
	return urls, nil
}
