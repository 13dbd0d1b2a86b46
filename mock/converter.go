package mock

import "github.com/fwojciec/biorag"

var _ biorag.Converter = (*Converter)(nil)

// Converter is a mock implementation of biorag.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
