package mock

import "github.com/fwojciec/biorag"

// Compile-time interface verification.
var (
	_ biorag.Extractor         = (*Extractor)(nil)
	_ biorag.ExtractorRegistry = (*ExtractorRegistry)(nil)
)

// Extractor is a mock implementation of biorag.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*biorag.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*biorag.ExtractResult, error) {
	return e.ExtractFn(html)
}

// ExtractorRegistry is a mock implementation of biorag.ExtractorRegistry.
type ExtractorRegistry struct {
	ForURLFn func(rawURL string) (biorag.Extractor, bool)
}

func (r *ExtractorRegistry) ForURL(rawURL string) (biorag.Extractor, bool) {
	return r.ForURLFn(rawURL)
}
