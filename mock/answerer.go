package mock

import (
	"context"

	"github.com/fwojciec/biorag"
)

var _ biorag.Answerer = (*Answerer)(nil)

// Answerer is a mock implementation of biorag.Answerer.
type Answerer struct {
	AnswerFn func(ctx context.Context, person, question string) (*biorag.Answer, error)
}

func (a *Answerer) Answer(ctx context.Context, person, question string) (*biorag.Answer, error) {
	return a.AnswerFn(ctx, person, question)
}
