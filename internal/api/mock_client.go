package api

import (
	"context"
	"sync"
)

// MockClient is a mock implementation of ChatClientInterface for testing
type MockClient struct {
	mu sync.Mutex

	// Mock return values
	ChatResponse string
	ChatErr      error
	ClearErr     error
	HealthStatus string
	HealthErr    error

	// ChatFunc, when set, replaces ChatResponse/ChatErr
	ChatFunc func(ctx context.Context, message string) (string, error)

	// Call counters/recorders
	ChatCalls   int
	ClearCalls  int
	HealthCalls int
	Messages    []string
}

// Ensure MockClient implements ChatClientInterface
var _ ChatClientInterface = (*MockClient)(nil)

func (m *MockClient) Chat(ctx context.Context, message string) (string, error) {
	m.mu.Lock()
	m.ChatCalls++
	m.Messages = append(m.Messages, message)
	fn := m.ChatFunc
	resp, err := m.ChatResponse, m.ChatErr
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, message)
	}
	return resp, err
}

func (m *MockClient) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	return m.ClearErr
}

func (m *MockClient) Health(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HealthCalls++
	return m.HealthStatus, m.HealthErr
}

// Calls returns the number of Chat and Clear calls made so far
func (m *MockClient) Calls() (chat, clear int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ChatCalls, m.ClearCalls
}
