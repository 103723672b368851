package llm

import (
	"context"
	"fmt"
)

// SimulatedCaller answers without contacting any provider. The answer names
// the model and echoes the question so routing is visible in the output.
type SimulatedCaller struct{}

// NewSimulatedCaller creates a new simulated caller
func NewSimulatedCaller() *SimulatedCaller {
	return &SimulatedCaller{}
}

// Call returns a canned answer, or the context error if ctx is done
func (s *SimulatedCaller) Call(ctx context.Context, model, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("[simulated response from model %s to question: '%s']", model, question), nil
}
