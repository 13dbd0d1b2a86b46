package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/biorag"
)

// Ensure LoggingSearcher implements biorag.WebSearcher.
var _ biorag.WebSearcher = (*LoggingSearcher)(nil)

// LoggingSearcher wraps a WebSearcher with logging.
type LoggingSearcher struct {
	next   biorag.WebSearcher
	name   string
	logger *slog.Logger
}

// NewLoggingSearcher creates a new LoggingSearcher. name identifies the
// search backend in log lines.
func NewLoggingSearcher(next biorag.WebSearcher, name string, logger *slog.Logger) *LoggingSearcher {
	return &LoggingSearcher{next: next, name: name, logger: logger}
}

// Search delegates to the wrapped searcher and logs the operation.
func (s *LoggingSearcher) Search(ctx context.Context, query string) (urls []string, err error) {
	defer func(begin time.Time) {
		s.logger.Info("search",
			"searcher", s.name,
			"query", query,
			"count", len(urls),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, query)
}
