package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/biorag"
)

// Compile-time interface verification.
var (
	_ biorag.Embedder  = (*LoggingEmbedder)(nil)
	_ biorag.Completer = (*LoggingCompleter)(nil)
)

// LoggingEmbedder wraps an Embedder with logging of every embedding request.
type LoggingEmbedder struct {
	next   biorag.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next biorag.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

// Embed delegates to the wrapped embedder and logs the operation.
func (e *LoggingEmbedder) Embed(ctx context.Context, texts []string, task biorag.EmbedTask) (vectors [][]float32, err error) {
	defer func(begin time.Time) {
		e.logger.Info("embed",
			"task", string(task),
			"count", len(texts),
			"vectors", len(vectors),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Embed(ctx, texts, task)
}

// LoggingCompleter wraps a Completer with logging of every completion call.
type LoggingCompleter struct {
	next   biorag.Completer
	logger *slog.Logger
}

// NewLoggingCompleter creates a new LoggingCompleter.
func NewLoggingCompleter(next biorag.Completer, logger *slog.Logger) *LoggingCompleter {
	return &LoggingCompleter{next: next, logger: logger}
}

// Complete delegates to the wrapped completer and logs the operation.
func (c *LoggingCompleter) Complete(ctx context.Context, req biorag.CompletionRequest) (text string, err error) {
	defer func(begin time.Time) {
		c.logger.Info("complete",
			"prompt_bytes", len(req.Prompt),
			"answer_bytes", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Complete(ctx, req)
}
