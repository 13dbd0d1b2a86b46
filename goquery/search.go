package goquery

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/biorag"
)

var _ biorag.WebSearcher = (*Searcher)(nil)

// DefaultSearchURL is the DuckDuckGo HTML endpoint.
const DefaultSearchURL = "https://html.duckduckgo.com/html/"

// DefaultExcludedDomains lists sites whose results are never useful sources.
var DefaultExcludedDomains = []string{"google.com", "youtube.com", "facebook.com", "twitter.com"}

// Searcher implements biorag.WebSearcher by scraping DuckDuckGo's HTML results.
type Searcher struct {
	fetcher biorag.Fetcher

	// BaseURL is the search endpoint. Defaults to DefaultSearchURL.
	BaseURL string

	// Exclude drops results whose host contains any of these domains.
	Exclude []string
}

// NewSearcher creates a Searcher that fetches result pages with fetcher.
func NewSearcher(fetcher biorag.Fetcher) *Searcher {
	return &Searcher{
		fetcher: fetcher,
		BaseURL: DefaultSearchURL,
		Exclude: DefaultExcludedDomains,
	}
}

// Search implements biorag.WebSearcher. Result URLs are returned once each,
// in page order.
func (s *Searcher) Search(ctx context.Context, query string) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		return nil, biorag.Errorf(biorag.EINVALID, "search query required")
	}

	page, err := s.fetcher.Fetch(ctx, s.BaseURL+"?q="+url.QueryEscape(query))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, biorag.Errorf(biorag.EINVALID, "failed to parse search results: %v", err)
	}

	seen := make(map[string]bool)
	var results []string
	add := func(raw string) {
		u := CleanURL(raw)
		if u == "" || seen[u] || s.excluded(u) {
			return
		}
		seen[u] = true
		results = append(results, u)
	}

	doc.Find(".result__a").Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok {
			add(href)
		}
	})
	doc.Find(".result__url").Each(func(_ int, sel *goquery.Selection) {
		add(sel.Text())
	})

	return results, nil
}

func (s *Searcher) excluded(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	host := strings.ToLower(u.Host)
	for _, d := range s.Exclude {
		if strings.Contains(host, d) {
			return true
		}
	}
	return false
}

// CleanURL normalizes a URL found in search results.
// DuckDuckGo redirect links are resolved to their target, a missing scheme
// defaults to https, and anything without a host yields "".
func CleanURL(raw string) string {
	raw = strings.TrimSpace(strings.ReplaceAll(raw, "&amp;", "&"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	} else if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}

	if strings.HasSuffix(u.Hostname(), "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		target := u.Query().Get("uddg")
		if target == "" {
			return ""
		}
		return CleanURL(target)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Fragment = ""
	return u.String()
}
