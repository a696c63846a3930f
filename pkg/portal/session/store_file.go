package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore implements Store using a single JSON file on the local
// filesystem. This is suitable for CLI applications and development;
// tokens persist across application restarts, the same way the browser
// console keeps them in local storage.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a new file-based token store at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get retrieves the value for a key.
func (f *FileStore) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("token key cannot be empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return "", err
	}

	value, exists := data[key]
	if !exists {
		return "", ErrTokenNotFound
	}
	return value, nil
}

// Set saves a value under the given key.
func (f *FileStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return fmt.Errorf("token key cannot be empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return err
	}
	data[key] = value
	return f.write(data)
}

// Delete removes a single key.
func (f *FileStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("token key cannot be empty")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.read()
	if err != nil {
		return err
	}
	delete(data, key)
	return f.write(data)
}

// Clear removes the backing file entirely.
func (f *FileStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// Close cleans up storage resources (no-op for file storage).
func (f *FileStore) Close() error {
	return nil
}

// read loads the token map from disk; a missing file yields an empty map.
func (f *FileStore) read() (map[string]string, error) {
	jsonData, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	data := make(map[string]string)
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return data, nil
}

// write persists the token map with owner-only permissions.
func (f *FileStore) write(data map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize tokens: %w", err)
	}

	if err := os.WriteFile(f.path, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}
