package goquery

import (
	"net/url"
	"strings"

	"github.com/fwojciec/biorag"
)

var _ biorag.ExtractorRegistry = (*Registry)(nil)

// Registry maps primary-source domains to their site extractors.
// A domain matches its own host and every subdomain.
type Registry struct {
	domains    []string
	extractors map[string]biorag.Extractor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[string]biorag.Extractor)}
}

// NewDefaultRegistry returns a Registry with the Wikisource and Project
// Gutenberg extractors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("wikisource.org", NewWikisourceExtractor())
	r.Register("gutenberg.org", NewGutenbergExtractor())
	return r
}

// Register adds an extractor for domain, replacing any previous one.
func (r *Registry) Register(domain string, ex biorag.Extractor) {
	domain = strings.ToLower(domain)
	if _, ok := r.extractors[domain]; !ok {
		r.domains = append(r.domains, domain)
	}
	r.extractors[domain] = ex
}

// ForURL implements biorag.ExtractorRegistry.
func (r *Registry) ForURL(rawURL string) (biorag.Extractor, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range r.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return r.extractors[d], true
		}
	}
	return nil, false
}
