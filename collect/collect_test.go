package collect_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/biorag"
	"github.com/fwojciec/biorag/collect"
	"github.com/fwojciec/biorag/goquery"
	bhttp "github.com/fwojciec/biorag/http"
	"github.com/fwojciec/biorag/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore captures saved documents and how the scrape ended.
type recordingStore struct {
	mu        sync.Mutex
	docs      []*biorag.Document
	committed bool
	aborted   bool
	saveErr   func(doc *biorag.Document) error
}

func (s *recordingStore) mock() *mock.DocumentStore {
	return &mock.DocumentStore{
		SaveFn: func(_ context.Context, doc *biorag.Document) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.saveErr != nil {
				if err := s.saveErr(doc); err != nil {
					return err
				}
			}
			s.docs = append(s.docs, doc)
			return nil
		},
		CommitFn: func() error {
			s.committed = true
			return nil
		},
		AbortFn: func() error {
			s.aborted = true
			return nil
		},
	}
}

// newCollector returns a Collector whose fetcher echoes the URL as HTML,
// whose extractor passes the HTML through and whose converter strips tags.
func newCollector(store *recordingStore, searchers map[string]biorag.WebSearcher, queries ...collect.Query) *collect.Collector {
	c := &collect.Collector{
		Searchers: searchers,
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				return "<p>text of " + url + "</p>", nil
			},
		},
		Extractor: &mock.Extractor{
			ExtractFn: func(html string) (*biorag.ExtractResult, error) {
				return &biorag.ExtractResult{Title: "Generic", ContentHTML: html}, nil
			},
		},
		Converter: &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				return strings.TrimSuffix(strings.TrimPrefix(html, "<p>"), "</p>"), nil
			},
		},
		Store: store.mock(),
	}
	if len(queries) > 0 {
		c.Queries = func(string) []collect.Query { return queries }
	}
	return c
}

func staticSearcher(results map[string][]string) *mock.WebSearcher {
	return &mock.WebSearcher{
		SearchFn: func(_ context.Context, query string) ([]string, error) {
			return results[query], nil
		},
	}
}

func savedURLs(docs []*biorag.Document) []string {
	urls := make([]string, len(docs))
	for i, d := range docs {
		urls[i] = d.SourceURL
	}
	return urls
}

func TestCollector_Collect_ExtractsPlainTextFromHTTPResponse(t *testing.T) {
	t.Parallel()

	paragraph := "It is a maxim, that the people will be for ever attached to a government which secures their rights."
	var body strings.Builder
	body.WriteString("<html><head><title>Farewell Address</title><script>track()</script></head><body>")
	body.WriteString("<nav>Home | About</nav><article><h1>Farewell Address</h1>")
	for range 6 {
		body.WriteString("<p>" + paragraph + "</p>")
	}
	body.WriteString("</article><footer>Copyright</footer></body></html>")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body.String()))
	}))
	t.Cleanup(srv.Close)

	store := &recordingStore{}
	c := &collect.Collector{
		Searchers: map[string]biorag.WebSearcher{
			collect.SearcherWeb: staticSearcher(map[string][]string{
				"George Washington speech transcript": {srv.URL + "/farewell"},
			}),
		},
		Fetcher:   bhttp.NewFetcher(),
		Sites:     goquery.NewDefaultRegistry(),
		Extractor: goquery.NewGenericExtractor(),
		Converter: goquery.NewTextConverter(),
		Store:     store.mock(),
		Queries: func(person string) []collect.Query {
			return collect.DefaultQueries(person)[:1]
		},
	}

	result, err := c.Collect(context.Background(), "George Washington", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Saved)
	assert.True(t, store.committed)

	require.Len(t, store.docs, 1)
	doc := store.docs[0]
	want := "Farewell Address\n" + strings.TrimSuffix(strings.Repeat(paragraph+"\n", 6), "\n")
	assert.Equal(t, want, doc.Content)
	assert.Equal(t, "Farewell Address", doc.Title)
	assert.Equal(t, "George Washington", doc.Person)
	assert.Equal(t, biorag.SourceSpeech, doc.SourceType)
	assert.Equal(t, srv.URL+"/farewell", doc.SourceURL)
	assert.NotContains(t, doc.Content, "Home")
	assert.NotContains(t, doc.Content, "Copyright")
	assert.NotContains(t, doc.Content, "track()")
	assert.Equal(t, len(want), result.Bytes)
}

func TestCollector_Collect(t *testing.T) {
	t.Parallel()

	t.Run("rejects blank person", func(t *testing.T) {
		t.Parallel()

		c := newCollector(&recordingStore{}, nil)

		_, err := c.Collect(context.Background(), "  ", nil)

		assert.Equal(t, biorag.EINVALID, biorag.ErrorCode(err))
	})

	t.Run("walks queries in order and caps results per query", func(t *testing.T) {
		t.Parallel()

		store := &recordingStore{}
		c := newCollector(store,
			map[string]biorag.WebSearcher{
				collect.SearcherWeb: staticSearcher(map[string][]string{
					"first":  {"https://a.com/1", "https://a.com/2", "https://a.com/3"},
					"second": {"https://b.com/1", "https://b.com/2"},
				}),
			},
			collect.Query{Text: "first", Searcher: collect.SearcherWeb, SourceType: biorag.SourceSpeech, MaxResults: 2},
			collect.Query{Text: "second", Searcher: collect.SearcherWeb, SourceType: biorag.SourceWriting, MaxResults: 10},
		)

		result, err := c.Collect(context.Background(), "Abraham Lincoln", nil)

		require.NoError(t, err)
		assert.Equal(t, 4, result.Saved)
		assert.Equal(t, []string{"https://a.com/1", "https://a.com/2", "https://b.com/1", "https://b.com/2"}, savedURLs(store.docs))
		assert.Equal(t, result.Sources, savedURLs(store.docs))
		assert.Equal(t, biorag.SourceSpeech, store.docs[0].SourceType)
		assert.Equal(t, biorag.SourceWriting, store.docs[2].SourceType)
		assert.Equal(t, "text of https://a.com/1", store.docs[0].Content)
	})

	t.Run("skips URLs already seen in an earlier query", func(t *testing.T) {
		t.Parallel()

		var fetched []string
		store := &recordingStore{}
		c := newCollector(store,
			map[string]biorag.WebSearcher{
				collect.SearcherWeb: staticSearcher(map[string][]string{
					"first":  {"https://a.com/page", "https://a.com/other"},
					"second": {"https://a.com/page/", "https://a.com/page#intro", "https://b.com/new"},
				}),
			},
			collect.Query{Text: "first", Searcher: collect.SearcherWeb, MaxResults: 10},
			collect.Query{Text: "second", Searcher: collect.SearcherWeb, MaxResults: 10},
		)
		c.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				fetched = append(fetched, url)
				return "<p>" + url + "</p>", nil
			},
		}

		result, err := c.Collect(context.Background(), "Abraham Lincoln", nil)

		require.NoError(t, err)
		assert.Equal(t, 3, result.Saved)
		assert.Equal(t, []string{"https://a.com/page", "https://a.com/other", "https://b.com/new"}, fetched)
	})

	t.Run("stops after max documents", func(t *testing.T) {
		t.Parallel()

		var fetches atomic.Int32
		store := &recordingStore{}
		c := newCollector(store,
			map[string]biorag.WebSearcher{
				collect.SearcherWeb: staticSearcher(map[string][]string{
					"q": {"https://a.com/1", "https://a.com/2", "https://a.com/3", "https://a.com/4"},
				}),
			},
			collect.Query{Text: "q", Searcher: collect.SearcherWeb, MaxResults: 10},
		)
		c.MaxDocuments = 2
		c.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				fetches.Add(1)
				return "<p>" + url + "</p>", nil
			},
		}

		result, err := c.Collect(context.Background(), "Abraham Lincoln", nil)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Saved)
		assert.Equal(t, int32(2), fetches.Load())
	})

	t.Run("counts failed fetches and continues", func(t *testing.T) {
		t.Parallel()

		store := &recordingStore{}
		c := newCollector(store,
			map[string]biorag.WebSearcher{
				collect.SearcherWeb: staticSearcher(map[string][]string{
					"q": {"https://down.com/1", "https://up.com/1"},
				}),
			},
			collect.Query{Text: "q", Searcher: collect.SearcherWeb, MaxResults: 10},
		)
		c.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				if strings.Contains(url, "down.com") {
					return "", errors.New("connection refused")
				}
				return "<p>up</p>", nil
			},
		}

		var failed []collect.ProgressEvent
		result, err := c.Collect(context.Background(), "Abraham Lincoln", func(e collect.ProgressEvent) {
			if e.Type == collect.ProgressFailed {
				failed = append(failed, e)
			}
		})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, failed, 1)
		assert.Equal(t, "https://down.com/1", failed[0].URL)
		assert.ErrorContains(t, failed[0].Error, "connection refused")
	})

	t.Run("skips pages without text", func(t *testing.T) {
		t.Parallel()

		store := &recordingStore{}
		c := newCollector(store,
			map[string]biorag.WebSearcher{
				collect.SearcherWeb: staticSearcher(map[string][]string{"q": {"https://a.com/empty"}}),
			},
			collect.Query{Text: "q", Searcher: collect.SearcherWeb, MaxResults: 10},
		)
		c.Converter = &mock.Converter{
			ConvertFn: func(string) (string, error) { return "  \n ", nil },
		}

		result, err := c.Collect(context.Background(), "Abraham Lincoln", nil)

		require.NoError(t, err)
		assert.Equal(t, 0, result.Saved)
		assert.Equal(t, 1, result.Failed)
	})

	t.Run("reports failed searches and uses the rest", func(t *testing.T) {
		t.Parallel()

		store := &recordingStore{}
		c := newCollector(store,
			map[string]biorag.WebSearcher{
				collect.SearcherWeb: staticSearcher(map[string][]string{"works": {"https://a.com/1"}}),
				collect.SearcherWikisource: &mock.WebSearcher{
					SearchFn: func(context.Context, string) ([]string, error) {
						return nil, errors.New("status 503")
					},
				},
			},
			collect.Query{Text: "broken", Searcher: collect.SearcherWikisource, MaxResults: 10},
			collect.Query{Text: "works", Searcher: collect.SearcherWeb, MaxResults: 10},
		)

		var events []collect.ProgressEvent
		result, err := c.Collect(context.Background(), "Abraham Lincoln", func(e collect.ProgressEvent) {
			events = append(events, e)
		})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
		require.NotEmpty(t, events)
		assert.Equal(t, collect.ProgressSearchFailed, events[0].Type)
		assert.Equal(t, "broken", events[0].Query)
		assert.Equal(t, collect.ProgressSearched, events[1].Type)
		assert.Equal(t, 1, events[1].Count)
		assert.Equal(t, collect.ProgressSaved, events[2].Type)
		assert.Equal(t, collect.ProgressFinished, events[len(events)-1].Type)
	})

	t.Run("reports unknown searcher", func(t *testing.T) {
		t.Parallel()

		store := &recordingStore{}
		c := newCollector(store, map[string]biorag.WebSearcher{},
			collect.Query{Text: "q", Searcher: "bing", MaxResults: 10},
		)

		var searchErr error
		_, err := c.Collect(context.Background(), "Abraham Lincoln", func(e collect.ProgressEvent) {
			if e.Type == collect.ProgressSearchFailed {
				searchErr = e.Error
			}
		})

		require.NoError(t, err)
		assert.Equal(t, biorag.EINVALID, biorag.ErrorCode(searchErr))
	})

	t.Run("site extractor marks pages as primary sources", func(t *testing.T) {
		t.Parallel()

		store := &recordingStore{}
		c := newCollector(store,
			map[string]biorag.WebSearcher{
				collect.SearcherWeb: staticSearcher(map[string][]string{
					"q": {"https://en.wikisource.org/wiki/Letter", "https://blog.com/post"},
				}),
			},
			collect.Query{Text: "q", Searcher: collect.SearcherWeb, SourceType: biorag.SourceCorrespondence, MaxResults: 10},
		)
		c.Sites = &mock.ExtractorRegistry{
			ForURLFn: func(rawURL string) (biorag.Extractor, bool) {
				if !strings.Contains(rawURL, "wikisource") {
					return nil, false
				}
				return &mock.Extractor{
					ExtractFn: func(html string) (*biorag.ExtractResult, error) {
						return &biorag.ExtractResult{Title: "Site", ContentHTML: html}, nil
					},
				}, true
			},
		}

		_, err := c.Collect(context.Background(), "Abraham Lincoln", nil)

		require.NoError(t, err)
		require.Len(t, store.docs, 2)
		assert.Equal(t, biorag.SourcePrimary, store.docs[0].SourceType)
		assert.Equal(t, "Site", store.docs[0].Title)
		assert.Equal(t, biorag.SourceCorrespondence, store.docs[1].SourceType)
		assert.Equal(t, "Generic", store.docs[1].Title)
	})

	t.Run("falls back to the generic extractor when the site extractor fails", func(t *testing.T) {
		t.Parallel()

		store := &recordingStore{}
		c := newCollector(store,
			map[string]biorag.WebSearcher{
				collect.SearcherWeb: staticSearcher(map[string][]string{"q": {"https://www.gutenberg.org/ebooks/1"}}),
			},
			collect.Query{Text: "q", Searcher: collect.SearcherWeb, SourceType: biorag.SourceWriting, MaxResults: 10},
		)
		c.Sites = &mock.ExtractorRegistry{
			ForURLFn: func(string) (biorag.Extractor, bool) {
				return &mock.Extractor{
					ExtractFn: func(string) (*biorag.ExtractResult, error) {
						return nil, biorag.Errorf(biorag.ENOTFOUND, "no content found")
					},
				}, true
			},
		}

		_, err := c.Collect(context.Background(), "Abraham Lincoln", nil)

		require.NoError(t, err)
		require.Len(t, store.docs, 1)
		assert.Equal(t, biorag.SourceWriting, store.docs[0].SourceType)
		assert.Equal(t, "Generic", store.docs[0].Title)
	})

	t.Run("uses URL as title when the page has none", func(t *testing.T) {
		t.Parallel()

		store := &recordingStore{}
		c := newCollector(store,
			map[string]biorag.WebSearcher{
				collect.SearcherWeb: staticSearcher(map[string][]string{"q": {"https://a.com/untitled"}}),
			},
			collect.Query{Text: "q", Searcher: collect.SearcherWeb, MaxResults: 10},
		)
		c.Extractor = &mock.Extractor{
			ExtractFn: func(html string) (*biorag.ExtractResult, error) {
				return &biorag.ExtractResult{ContentHTML: html}, nil
			},
		}

		_, err := c.Collect(context.Background(), "Abraham Lincoln", nil)

		require.NoError(t, err)
		require.Len(t, store.docs, 1)
		assert.Equal(t, "https://a.com/untitled", store.docs[0].Title)
	})

	t.Run("aborts the store when nothing was saved", func(t *testing.T) {
		t.Parallel()

		store := &recordingStore{}
		c := newCollector(store,
			map[string]biorag.WebSearcher{collect.SearcherWeb: staticSearcher(nil)},
			collect.Query{Text: "q", Searcher: collect.SearcherWeb, MaxResults: 10},
		)

		result, err := c.Collect(context.Background(), "Abraham Lincoln", nil)

		require.NoError(t, err)
		assert.Equal(t, 0, result.Saved)
		assert.True(t, store.aborted)
		assert.False(t, store.committed)
	})

	t.Run("counts a failed save", func(t *testing.T) {
		t.Parallel()

		store := &recordingStore{
			saveErr: func(doc *biorag.Document) error {
				if strings.HasSuffix(doc.SourceURL, "/dup") {
					return biorag.Errorf(biorag.ECONFLICT, "duplicate document")
				}
				return nil
			},
		}
		c := newCollector(store,
			map[string]biorag.WebSearcher{
				collect.SearcherWeb: staticSearcher(map[string][]string{"q": {"https://a.com/dup", "https://a.com/ok"}}),
			},
			collect.Query{Text: "q", Searcher: collect.SearcherWeb, MaxResults: 10},
		)

		result, err := c.Collect(context.Background(), "Abraham Lincoln", nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
		assert.Equal(t, 1, result.Failed)
		assert.True(t, store.committed)
	})

	t.Run("accumulates bytes and tokens", func(t *testing.T) {
		t.Parallel()

		store := &recordingStore{}
		c := newCollector(store,
			map[string]biorag.WebSearcher{
				collect.SearcherWeb: staticSearcher(map[string][]string{"q": {"https://a.com/1", "https://a.com/2"}}),
			},
			collect.Query{Text: "q", Searcher: collect.SearcherWeb, MaxResults: 10},
		)
		c.TokenCounter = &mock.TokenCounter{
			CountTokensFn: func(_ context.Context, text string) (int, error) {
				return 7, nil
			},
		}

		result, err := c.Collect(context.Background(), "Abraham Lincoln", nil)

		require.NoError(t, err)
		assert.Equal(t, len("text of https://a.com/1")+len("text of https://a.com/2"), result.Bytes)
		assert.Equal(t, 14, result.Tokens)
	})

	t.Run("ignores token counting errors", func(t *testing.T) {
		t.Parallel()

		store := &recordingStore{}
		c := newCollector(store,
			map[string]biorag.WebSearcher{
				collect.SearcherWeb: staticSearcher(map[string][]string{"q": {"https://a.com/1"}}),
			},
			collect.Query{Text: "q", Searcher: collect.SearcherWeb, MaxResults: 10},
		)
		c.TokenCounter = &mock.TokenCounter{
			CountTokensFn: func(context.Context, string) (int, error) {
				return 0, errors.New("tokenizer unavailable")
			},
		}

		result, err := c.Collect(context.Background(), "Abraham Lincoln", nil)

		require.NoError(t, err)
		assert.Equal(t, 1, result.Saved)
		assert.Equal(t, 0, result.Tokens)
	})

	t.Run("aborts the store when the context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		store := &recordingStore{}
		c := newCollector(store,
			map[string]biorag.WebSearcher{
				collect.SearcherWeb: staticSearcher(map[string][]string{"q": {"https://a.com/1", "https://a.com/2"}}),
			},
			collect.Query{Text: "q", Searcher: collect.SearcherWeb, MaxResults: 10},
		)
		c.Fetcher = &mock.Fetcher{
			FetchFn: func(ctx context.Context, _ string) (string, error) {
				cancel()
				return "", ctx.Err()
			},
		}

		_, err := c.Collect(ctx, "Abraham Lincoln", nil)

		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, store.aborted)
		assert.False(t, store.committed)
	})

	t.Run("runs searches concurrently when allowed", func(t *testing.T) {
		t.Parallel()

		var inFlight, peak atomic.Int32
		release := make(chan struct{})
		searcher := &mock.WebSearcher{
			SearchFn: func(ctx context.Context, query string) ([]string, error) {
				n := inFlight.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				if n == 2 {
					close(release)
				}
				select {
				case <-release:
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				inFlight.Add(-1)
				return []string{"https://a.com/" + query}, nil
			},
		}

		store := &recordingStore{}
		c := newCollector(store,
			map[string]biorag.WebSearcher{collect.SearcherWeb: searcher},
			collect.Query{Text: "one", Searcher: collect.SearcherWeb, MaxResults: 10},
			collect.Query{Text: "two", Searcher: collect.SearcherWeb, MaxResults: 10},
		)
		c.SearchConcurrency = 2

		result, err := c.Collect(context.Background(), "Abraham Lincoln", nil)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Saved)
		assert.Equal(t, int32(2), peak.Load())
		assert.Equal(t, []string{"https://a.com/one", "https://a.com/two"}, savedURLs(store.docs))
	})
}

func TestDefaultQueries(t *testing.T) {
	t.Parallel()

	queries := collect.DefaultQueries("Frederick Douglass")

	require.Len(t, queries, 7)
	assert.Equal(t, collect.Query{
		Text: "Frederick Douglass speech transcript", Searcher: collect.SearcherWeb,
		SourceType: biorag.SourceSpeech, MaxResults: 4,
	}, queries[0])
	assert.Equal(t, collect.Query{
		Text: "Frederick Douglass", Searcher: collect.SearcherWikisource,
		SourceType: biorag.SourcePrimary, MaxResults: 10,
	}, queries[5])
	assert.Equal(t, collect.Query{
		Text: "site:gutenberg.org Frederick Douglass", Searcher: collect.SearcherWeb,
		SourceType: biorag.SourcePrimary, MaxResults: 10,
	}, queries[6])
}
