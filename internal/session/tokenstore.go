package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// TokenStore is the single well-known slot the session credential persists
// in across process restarts.
type TokenStore interface {
	Read() (string, error)
	Write(token string) error
	Clear() error
}

// FileTokenStore keeps the credential in one file, mode 0600.
type FileTokenStore struct {
	Path string
}

func (s *FileTokenStore) Read() (string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileTokenStore) Write(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.Path, []byte(token), 0600)
}

func (s *FileTokenStore) Clear() error {
	err := os.Remove(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// MemoryTokenStore is an in-process slot for tests and ephemeral sessions.
type MemoryTokenStore struct {
	token string
}

func (s *MemoryTokenStore) Read() (string, error)    { return s.token, nil }
func (s *MemoryTokenStore) Write(token string) error { s.token = token; return nil }
func (s *MemoryTokenStore) Clear() error             { s.token = ""; return nil }
