package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCallerInterface ensures implementations satisfy the Caller interface
func TestCallerInterface(t *testing.T) {
	var _ Caller = (*SimulatedCaller)(nil)
	var _ Caller = (*MockCaller)(nil)
	var _ Caller = CallerFunc(nil)
}

// MockCaller for testing code that depends on the Caller interface
type MockCaller struct {
	CallFn func(context.Context, string, string) (string, error)
	Calls  int
}

func (m *MockCaller) Call(ctx context.Context, model, question string) (string, error) {
	m.Calls++
	if m.CallFn != nil {
		return m.CallFn(ctx, model, question)
	}
	return "mock answer", nil
}

func TestSimulatedCaller(t *testing.T) {
	c := NewSimulatedCaller()
	answer, err := c.Call(context.Background(), "openai/gpt-4", "What is the product delivery time?")
	require.NoError(t, err)
	require.Equal(t, "[simulated response from model openai/gpt-4 to question: 'What is the product delivery time?']", answer)
}

func TestSimulatedCaller_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSimulatedCaller().Call(ctx, "m", "q")
	require.ErrorIs(t, err, context.Canceled)
}

func TestCallerFunc(t *testing.T) {
	boom := errors.New("provider down")
	var gotModel, gotQuestion string
	f := CallerFunc(func(ctx context.Context, model, question string) (string, error) {
		gotModel, gotQuestion = model, question
		return "", boom
	})

	_, err := f.Call(context.Background(), "m", "q")
	require.ErrorIs(t, err, boom)
	require.Equal(t, "m", gotModel)
	require.Equal(t, "q", gotQuestion)
}

func TestMockCaller_Default(t *testing.T) {
	m := &MockCaller{}
	answer, err := m.Call(context.Background(), "m", "q")
	require.NoError(t, err)
	require.Equal(t, "mock answer", answer)
	require.Equal(t, 1, m.Calls)
}
