package history

import (
	"context"
	"sync"
)

// Memory is an in-process Substrate. GetErr and PutErr, when set, are
// returned instead of touching the map.
type Memory struct {
	mu     sync.Mutex
	data   map[string][]byte
	GetErr error
	PutErr error
	puts   int
}

// NewMemory creates an empty in-memory substrate
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get implements Substrate
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put implements Substrate
func (m *Memory) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	m.puts++
	return nil
}

// SetErrors sets the injected errors under the lock
func (m *Memory) SetErrors(getErr, putErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetErr, m.PutErr = getErr, putErr
}

// Puts returns the number of successful writes
func (m *Memory) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

// Close implements Substrate
func (m *Memory) Close() error {
	return nil
}
