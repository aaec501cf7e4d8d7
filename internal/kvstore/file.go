package kvstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists each key as a standalone file in a directory,
// written atomically (temp file + rename) so a crash mid-save never
// leaves a truncated snapshot behind.
type FileStore struct {
	dir string
}

// NewFileStore creates the data directory if needed and returns the store.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("NewFileStore: create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Load implements the Store interface.
func (s *FileStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("FileStore.Load %q: %w", key, err)
	}
	return data, true, nil
}

// Save implements the Store interface.
func (s *FileStore) Save(_ context.Context, key string, value []byte) error {
	path := s.path(key)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("FileStore.Save %q: write temp file: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("FileStore.Save %q: rename: %w", key, err)
	}
	return nil
}

// Close implements the Store interface.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
