package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore is a Store backed by a single JSON file on disk. The whole file
// is rewritten on every mutation; entries are few and small (a token, a
// serialized user, a theme name), so simplicity wins over anything fancier.
// Writes go through a temp file and rename so a crash mid-write never leaves
// a torn session file behind.
type FileStore struct {
	path string

	mu      sync.Mutex
	entries map[string]string
	loaded  bool
}

// NewFileStore creates a FileStore persisting to the given path. The file
// and its parent directory are created lazily on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// load reads the backing file into memory. A missing file is treated as an
// empty store. Callers must hold s.mu.
func (s *FileStore) load() error {
	if s.loaded {
		return nil
	}
	s.entries = make(map[string]string)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.loaded = true
			return nil
		}
		return fmt.Errorf("failed to read storage file %s: %w", s.path, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.entries); err != nil {
			// A corrupt session file is not worth failing over: start fresh,
			// the user just has to log in again.
			s.entries = make(map[string]string)
		}
	}
	s.loaded = true
	return nil
}

// flush writes the in-memory entries back to disk atomically. Callers must
// hold s.mu.
func (s *FileStore) flush() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode storage entries: %w", err)
	}
	tmp := s.path + ".tmp"
	// 0600: the file holds a bearer token.
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace storage file: %w", err)
	}
	return nil
}

// Get returns the value for key and whether it was present.
func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return "", false, err
	}
	value, ok := s.entries[key]
	return value, ok, nil
}

// Set writes the value for key.
func (s *FileStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	s.entries[key] = value
	return s.flush()
}

// Delete removes the entry for key.
func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	if _, ok := s.entries[key]; !ok {
		return nil
	}
	delete(s.entries, key)
	return s.flush()
}
