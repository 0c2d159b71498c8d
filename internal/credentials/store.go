// Package credentials persists the bearer token and the last known user
// snapshot between runs, the way the browser build kept them in
// localStorage: written synchronously on every token change, read once at
// startup.
package credentials

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/advocaid/auth-client/internal/model"
)

// persisted is the full on-disk shape: exactly two keys.
type persisted struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type Store struct {
	mu    sync.Mutex
	path  string
	token string
	user  *model.User
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted pair from disk into memory. A missing file is
// not an error; it just means no stored session.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		// A corrupt file is treated as no session rather than a fatal error.
		s.token, s.user = "", nil
		return nil
	}

	s.token = p.Token
	s.user = p.User
	return nil
}

// Token is read per-request by the HTTP adapter; the adapter never holds
// its own copy.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Store) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Save replaces the persisted pair and writes it through to disk before
// returning.
func (s *Store) Save(token string, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
	return s.write()
}

// Clear drops the pair in memory and on disk.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.user = "", nil

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) write() error {
	data, err := json.Marshal(persisted{Token: s.token, User: s.user})
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
