// Package collect gathers source documents about a historical figure.
// It coordinates web and Wikisource searches, fetching, extraction,
// conversion, and storage of the pages it finds.
package collect

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/biorag"
	"github.com/fwojciec/biorag/bloom"
	"golang.org/x/sync/errgroup"
)

// Defaults for Collector fields left at their zero value.
const (
	DefaultMaxDocuments      = 10
	DefaultSearchConcurrency = 1
)

// Searcher names used by Query.
const (
	SearcherWeb        = "web"
	SearcherWikisource = "wikisource"
)

// Query is one search issued for a person.
type Query struct {
	Text       string
	Searcher   string
	SourceType biorag.SourceType
	MaxResults int
}

// DefaultQueries returns the queries issued for person, in walk order.
func DefaultQueries(person string) []Query {
	return []Query{
		{Text: person + " speech transcript", Searcher: SearcherWeb, SourceType: biorag.SourceSpeech, MaxResults: 4},
		{Text: person + " writings", Searcher: SearcherWeb, SourceType: biorag.SourceWriting, MaxResults: 4},
		{Text: person + " letters correspondence", Searcher: SearcherWeb, SourceType: biorag.SourceCorrespondence, MaxResults: 4},
		{Text: person + " interview transcript", Searcher: SearcherWeb, SourceType: biorag.SourceInterview, MaxResults: 4},
		{Text: person + " essays", Searcher: SearcherWeb, SourceType: biorag.SourceWriting, MaxResults: 4},
		{Text: person, Searcher: SearcherWikisource, SourceType: biorag.SourcePrimary, MaxResults: 10},
		{Text: "site:gutenberg.org " + person, Searcher: SearcherWeb, SourceType: biorag.SourcePrimary, MaxResults: 10},
	}
}

// Collector orchestrates searching for and saving a person's source documents.
type Collector struct {
	Searchers    map[string]biorag.WebSearcher
	Fetcher      biorag.Fetcher
	Sites        biorag.ExtractorRegistry
	Extractor    biorag.Extractor
	Converter    biorag.Converter
	Store        biorag.DocumentStore
	TokenCounter biorag.TokenCounter

	MaxDocuments      int
	SearchConcurrency int

	// Queries builds the query list for a person. Defaults to DefaultQueries.
	Queries func(person string) []Query
}

// Result holds the outcome of a collection.
type Result struct {
	Saved   int
	Failed  int
	Bytes   int
	Tokens  int
	Sources []string
}

// ProgressEvent reports progress during a collection.
type ProgressEvent struct {
	Type  ProgressType
	Query string
	URL   string
	Title string
	Count int
	Saved int
	Error error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressSearched ProgressType = iota
	ProgressSearchFailed
	ProgressSaved
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting collection progress.
type ProgressFunc func(event ProgressEvent)

type searchResult struct {
	urls []string
	err  error
}

// Collect searches for sources about person and saves up to MaxDocuments
// of them. The store is committed when at least one document was saved and
// aborted otherwise, so a fruitless run keeps the previous scrape.
func (c *Collector) Collect(ctx context.Context, person string, progress ProgressFunc) (*Result, error) {
	person = strings.TrimSpace(person)
	if biorag.PersonKey(person) == "" {
		return nil, biorag.Errorf(biorag.EINVALID, "person name required")
	}
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	queries := DefaultQueries(person)
	if c.Queries != nil {
		queries = c.Queries(person)
	}

	searches, err := c.search(ctx, queries)
	if err != nil {
		_ = c.Store.Abort()
		return nil, err
	}

	maxDocs := c.MaxDocuments
	if maxDocs <= 0 {
		maxDocs = DefaultMaxDocuments
	}

	seen := bloom.NewFilter(1000, 0.001)
	result := &Result{}

walk:
	for i, q := range queries {
		sr := searches[i]
		if sr.err != nil {
			progress(ProgressEvent{Type: ProgressSearchFailed, Query: q.Text, Error: sr.err})
			continue
		}
		urls := sr.urls
		if q.MaxResults > 0 && len(urls) > q.MaxResults {
			urls = urls[:q.MaxResults]
		}
		progress(ProgressEvent{Type: ProgressSearched, Query: q.Text, Count: len(urls)})

		for _, u := range urls {
			if result.Saved >= maxDocs {
				break walk
			}
			if seen.TestAndAdd(u) {
				continue
			}

			doc, err := c.collectURL(ctx, person, u, q.SourceType)
			if err == nil {
				err = c.Store.Save(ctx, doc)
			}
			if err != nil {
				if ctx.Err() != nil {
					_ = c.Store.Abort()
					return nil, ctx.Err()
				}
				result.Failed++
				progress(ProgressEvent{Type: ProgressFailed, Query: q.Text, URL: u, Error: err})
				continue
			}

			result.Saved++
			result.Bytes += len(doc.Content)
			result.Tokens += c.countTokens(ctx, doc.Content)
			result.Sources = append(result.Sources, u)
			progress(ProgressEvent{Type: ProgressSaved, Query: q.Text, URL: u, Title: doc.Title, Saved: result.Saved})
		}
	}

	if result.Saved == 0 {
		if err := c.Store.Abort(); err != nil {
			return nil, fmt.Errorf("abort scrape: %w", err)
		}
	} else if err := c.Store.Commit(); err != nil {
		return nil, fmt.Errorf("commit scrape: %w", err)
	}

	progress(ProgressEvent{Type: ProgressFinished, Saved: result.Saved})
	return result, nil
}

// search runs every query's search, bounded by SearchConcurrency.
// Failures are kept per query; only cancellation fails the whole step.
func (c *Collector) search(ctx context.Context, queries []Query) ([]searchResult, error) {
	concurrency := c.SearchConcurrency
	if concurrency <= 0 {
		concurrency = DefaultSearchConcurrency
	}

	results := make([]searchResult, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, q := range queries {
		g.Go(func() error {
			searcher, ok := c.Searchers[q.Searcher]
			if !ok {
				results[i].err = biorag.Errorf(biorag.EINVALID, "unknown searcher %q", q.Searcher)
				return nil
			}
			urls, err := searcher.Search(gctx, q.Text)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				results[i].err = err
				return nil
			}
			results[i].urls = urls
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// collectURL fetches one page and turns it into a document. A known site's
// own extractor marks the page as a primary source; otherwise the generic
// extractor runs and the query's source type is kept.
func (c *Collector) collectURL(ctx context.Context, person, rawURL string, sourceType biorag.SourceType) (*biorag.Document, error) {
	html, err := c.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	var extracted *biorag.ExtractResult
	if c.Sites != nil {
		if ex, ok := c.Sites.ForURL(rawURL); ok {
			if r, err := ex.Extract(html); err == nil && strings.TrimSpace(r.ContentHTML) != "" {
				extracted = r
				sourceType = biorag.SourcePrimary
			}
		}
	}
	if extracted == nil {
		extracted, err = c.Extractor.Extract(html)
		if err != nil {
			return nil, fmt.Errorf("extract: %w", err)
		}
	}

	text, err := c.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, biorag.Errorf(biorag.ENOTFOUND, "no text content")
	}

	title := strings.TrimSpace(extracted.Title)
	if title == "" {
		title = rawURL
	}

	return &biorag.Document{
		Person:     person,
		SourceURL:  rawURL,
		SourceType: sourceType,
		Title:      title,
		Content:    text,
	}, nil
}

func (c *Collector) countTokens(ctx context.Context, text string) int {
	if c.TokenCounter == nil {
		return 0
	}
	n, err := c.TokenCounter.CountTokens(ctx, text)
	if err != nil {
		return 0
	}
	return n
}
