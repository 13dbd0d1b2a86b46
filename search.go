package biorag

import "context"

// WebSearcher finds candidate source URLs for a query.
type WebSearcher interface {
	// Search returns result URLs in ranking order.
	Search(ctx context.Context, query string) ([]string, error)
}
