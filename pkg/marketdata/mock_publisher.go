package marketdata

import (
	"context"
	"sync"
)

// MockPublisher is an in-memory Publisher for testing. It records every
// published message.
type MockPublisher struct {
	mu       sync.Mutex
	messages []*DepthMessage
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// PublishDepth records the message.
func (m *MockPublisher) PublishDepth(_ context.Context, depth *DepthMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, depth)
	return nil
}

// Messages returns the recorded messages.
func (m *MockPublisher) Messages() []*DepthMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*DepthMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// Close does nothing.
func (m *MockPublisher) Close() error {
	return nil
}

// Ensure MockPublisher implements Publisher
var _ Publisher = (*MockPublisher)(nil)
