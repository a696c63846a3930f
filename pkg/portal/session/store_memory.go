package session

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore implements Store using an in-memory map.
// This is suitable for tests and short-lived processes; tokens are lost
// when the application exits.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates a new memory-based token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]string),
	}
}

// Get retrieves the value for a key.
func (m *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("token key cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	value, exists := m.data[key]
	if !exists {
		return "", ErrTokenNotFound
	}
	return value, nil
}

// Set saves a value under the given key.
func (m *MemoryStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("token key cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	return nil
}

// Delete removes a single key.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("token key cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// Clear removes all stored values.
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string]string)
	return nil
}

// Close cleans up storage resources (no-op for memory storage).
func (m *MemoryStore) Close() error {
	return m.Clear(context.Background())
}

// Len returns the number of stored values (for testing/debugging).
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
