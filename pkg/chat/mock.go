package chat

import (
	"context"
	"sync"
)

// Mock implements Responder for testing.
type Mock struct {
	// RespondFunc is called when Respond is invoked.
	// If nil, Respond echoes Reply.
	RespondFunc func(ctx context.Context, message string) (string, error)

	// Reply is returned when RespondFunc is nil.
	Reply string

	mu       sync.Mutex
	messages []string
}

// NewMock creates a mock that always answers reply.
func NewMock(reply string) *Mock {
	return &Mock{Reply: reply}
}

// WithError creates a mock that always fails with err.
func WithError(err error) *Mock {
	return &Mock{
		RespondFunc: func(ctx context.Context, message string) (string, error) {
			return "", err
		},
	}
}

// Respond records the call and returns RespondFunc's result.
func (m *Mock) Respond(ctx context.Context, message string) (string, error) {
	m.mu.Lock()
	m.messages = append(m.messages, message)
	fn := m.RespondFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, message)
	}
	return m.Reply, nil
}

// Calls returns how many times Respond was called.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// Messages returns every message passed to Respond.
func (m *Mock) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

// Verify Mock implements Responder at compile time.
var _ Responder = (*Mock)(nil)
