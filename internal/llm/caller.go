package llm

import "context"

// Caller sends a question to a language model and returns its answer
type Caller interface {
	// Call asks model the question. A successful call returns a non-empty answer.
	Call(ctx context.Context, model, question string) (string, error)
}

// CallerFunc adapts an ordinary function to the Caller interface
type CallerFunc func(ctx context.Context, model, question string) (string, error)

// Call implements Caller
func (f CallerFunc) Call(ctx context.Context, model, question string) (string, error) {
	return f(ctx, model, question)
}
