package memory

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store defines the interface for memory persistence backends.
type Store interface {
	// Save persists the given data.
	Save(data []byte) error

	// Load retrieves the stored data. A store with nothing saved yet
	// returns nil data and no error.
	Load() ([]byte, error)

	// Close releases any resources held by the store.
	Close() error
}

// JSONStore implements Store for file-based JSON persistence.
type JSONStore struct {
	FilePath string
}

// NewJSONStore creates a new JSON file store.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{FilePath: path}
}

// Save writes data to a temporary file and renames it over the target, so a
// crash mid-write never leaves a truncated file behind.
func (s *JSONStore) Save(data []byte) error {
	if s.FilePath == "" {
		return nil
	}

	dir := filepath.Dir(s.FilePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("memory: create directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.FilePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("memory: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("memory: write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("memory: write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.FilePath); err != nil {
		return fmt.Errorf("memory: replace file: %w", err)
	}
	return nil
}

// Load reads data from the JSON file.
func (s *JSONStore) Load() ([]byte, error) {
	if s.FilePath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(s.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("memory: read file: %w", err)
	}
	return data, nil
}

// Close is a no-op for JSON files.
func (s *JSONStore) Close() error {
	return nil
}

// MemStore keeps data in memory. Useful in tests.
type MemStore struct {
	data  []byte
	saves int
}

// Save stores a copy of data.
func (s *MemStore) Save(data []byte) error {
	s.data = append([]byte(nil), data...)
	s.saves++
	return nil
}

// Load returns the last saved data.
func (s *MemStore) Load() ([]byte, error) {
	return s.data, nil
}

// Close is a no-op.
func (s *MemStore) Close() error {
	return nil
}

// Saves returns how many times Save was called.
func (s *MemStore) Saves() int {
	return s.saves
}

var (
	_ Store = (*JSONStore)(nil)
	_ Store = (*MemStore)(nil)
)
