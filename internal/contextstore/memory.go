package contextstore

import (
	"context"
	"sync"
)

// MemoryBackend keeps transcripts in a map. Contents are lost on restart.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]string)}
}

func (m *MemoryBackend) Load(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *MemoryBackend) Update(_ context.Context, key string, fn func(string) string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fn(m.data[key])
	return nil
}
