// Package qa answers questions about a person from their indexed sources.
package qa

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/biorag"
)

// DefaultLimit is the number of passages retrieved per question.
const DefaultLimit = 3

// SystemInstruction frames every completion.
const SystemInstruction = "You are a helpful AI assistant that answers questions about historical figures " +
	"based on provided source material. Always be truthful and admit when you don't have enough " +
	"information to answer a question."

var _ biorag.Answerer = (*Answerer)(nil)

// Answerer retrieves the passages closest to a question and has a language
// model answer from them.
type Answerer struct {
	Embedder  biorag.Embedder
	Store     biorag.VectorStore
	Completer biorag.Completer

	// Limit is the number of passages retrieved. Defaults to DefaultLimit.
	Limit int

	// MinScore drops passages less similar than this.
	MinScore float32
}

// NewAnswerer creates a new Answerer.
func NewAnswerer(embedder biorag.Embedder, store biorag.VectorStore, completer biorag.Completer) *Answerer {
	return &Answerer{
		Embedder:  embedder,
		Store:     store,
		Completer: completer,
		Limit:     DefaultLimit,
	}
}

// Answer implements biorag.Answerer.
func (a *Answerer) Answer(ctx context.Context, person, question string) (*biorag.Answer, error) {
	person = strings.TrimSpace(person)
	question = strings.TrimSpace(question)
	if biorag.PersonKey(person) == "" {
		return nil, biorag.Errorf(biorag.EINVALID, "person name required")
	}
	if question == "" {
		return nil, biorag.Errorf(biorag.EINVALID, "question required")
	}

	vectors, err := a.Embedder.Embed(ctx, []string{question}, biorag.EmbedTaskQuery)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) != 1 {
		return nil, biorag.Errorf(biorag.EINTERNAL, "embedder returned %d vectors for 1 question", len(vectors))
	}

	limit := a.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	results, err := a.Store.Search(ctx, vectors[0], biorag.SearchOptions{
		Person:   biorag.PersonKey(person),
		Limit:    limit,
		MinScore: a.MinScore,
	})
	if err != nil {
		return nil, fmt.Errorf("search passages: %w", err)
	}

	if len(results) == 0 {
		return &biorag.Answer{
			Text:    fmt.Sprintf("I don't have enough information about %s to answer this question.", person),
			Sources: []biorag.Citation{},
		}, nil
	}

	text, err := a.Completer.Complete(ctx, biorag.CompletionRequest{
		System:      SystemInstruction,
		Prompt:      biorag.BuildPrompt(person, question, results),
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("complete answer: %w", err)
	}

	return &biorag.Answer{
		Text:    strings.TrimSpace(text),
		Sources: biorag.Citations(results),
	}, nil
}
