package service

import (
	"context"
	"errors"
	"sync"

	"highlight-saver/internal/domain"
	"highlight-saver/internal/repository"
)

type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{
		messages: []string{},
	}
}

func (m *MockLogger) record(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, line)
}

func (m *MockLogger) Info(msg string, args ...interface{}) {
	m.record("INFO: " + msg)
}

func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	m.record("ERROR: " + msg + " - " + err.Error())
}

func (m *MockLogger) Debug(msg string, args ...interface{}) {
	m.record("DEBUG: " + msg)
}

func (m *MockLogger) Warn(msg string, args ...interface{}) {
	m.record("WARN: " + msg)
}

// MockKVStore wraps the memory store and can be told to fail.
type MockKVStore struct {
	*repository.MemoryKVStore
	mu       sync.Mutex
	failGet  bool
	failSet  bool
	setCalls int
}

func NewMockKVStore() *MockKVStore {
	return &MockKVStore{MemoryKVStore: repository.NewMemoryKVStore()}
}

func (m *MockKVStore) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	m.mu.Lock()
	fail := m.failGet
	m.mu.Unlock()
	if fail {
		return nil, errors.New("quota exceeded")
	}
	return m.MemoryKVStore.Get(ctx, keys...)
}

func (m *MockKVStore) Set(ctx context.Context, values map[string][]byte) error {
	m.mu.Lock()
	m.setCalls++
	fail := m.failSet
	m.mu.Unlock()
	if fail {
		return errors.New("quota exceeded")
	}
	return m.MemoryKVStore.Set(ctx, values)
}

func (m *MockKVStore) SetCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setCalls
}

// MockGenerator records generation calls.
type MockGenerator struct {
	mu       sync.Mutex
	calls    []domain.GenerationRequest
	apiKeys  []string
	response string
	err      error
}

func (m *MockGenerator) Generate(ctx context.Context, apiKey string, req domain.GenerationRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	m.apiKeys = append(m.apiKeys, apiKey)
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *MockGenerator) Calls() []domain.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.GenerationRequest(nil), m.calls...)
}

func newTestBroker() (*StorageBroker, *MockKVStore) {
	store := NewMockKVStore()
	return NewStorageBroker(store, NewMockLogger()), store
}

func testHighlight(id, text string) domain.Highlight {
	return domain.Highlight{
		ID:        id,
		Text:      text,
		URL:       "https://example.com/" + id,
		Title:     "Page " + id,
		Timestamp: "2024-03-01T10:00:00Z",
	}
}
