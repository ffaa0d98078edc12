package client

import (
	"os"
	"path/filepath"
	"strings"
)

// SessionStore holds the single durable client key: the most recently used
// generation session id. A missing or stale value degrades to "no new
// candidates", never to an error.
type SessionStore interface {
	Load() (string, error)
	Save(sessionID string) error
	Clear() error
}

// FileSessionStore keeps the session id in a small file under the user
// config directory.
type FileSessionStore struct {
	path string
}

func NewFileSessionStore() (*FileSessionStore, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return &FileSessionStore{path: filepath.Join(dir, "flashgen", "last_session")}, nil
}

// NewFileSessionStoreAt pins the store to an explicit path.
func NewFileSessionStoreAt(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

func (s *FileSessionStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileSessionStore) Save(sessionID string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, []byte(sessionID), 0o600)
}

func (s *FileSessionStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MemorySessionStore is an in-memory SessionStore for tests.
type MemorySessionStore struct {
	value string
}

func (s *MemorySessionStore) Load() (string, error)       { return s.value, nil }
func (s *MemorySessionStore) Save(sessionID string) error { s.value = sessionID; return nil }
func (s *MemorySessionStore) Clear() error                { s.value = ""; return nil }
