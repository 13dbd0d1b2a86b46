package biorag

import "context"

// CompletionRequest is a single-turn request to a chat model.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
}

// Completer generates text with a hosted language model.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
