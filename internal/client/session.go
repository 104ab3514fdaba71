// Package client is a Go client for the blog API and the local session it
// authenticates with.
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Listener is told about every token change; "" means signed out.
type Listener func(token string)

// Session caches the current token in a file and broadcasts changes to its
// subscribers. The zero path keeps the session in memory only.
type Session struct {
	path string

	mu        sync.Mutex
	token     string
	listeners map[int]Listener
	nextID    int
}

type sessionFile struct {
	Token string `json:"token"`
}

// OpenSession loads the session stored at path. A missing file is an empty
// session.
func OpenSession(path string) (*Session, error) {
	s := &Session{path: path, listeners: map[int]Listener{}}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	s.token = f.Token
	return s, nil
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Set stores a new token and notifies subscribers.
func (s *Session) Set(token string) error {
	return s.update(token)
}

// Clear signs the session out.
func (s *Session) Clear() error {
	return s.update("")
}

// Subscribe registers fn for token changes and returns a func that removes it.
func (s *Session) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Session) update(token string) error {
	s.mu.Lock()
	if token == s.token {
		s.mu.Unlock()
		return nil
	}
	s.token = token
	if err := s.persist(); err != nil {
		s.mu.Unlock()
		return err
	}
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	// Listeners run outside the lock so they may read the session.
	for _, fn := range listeners {
		fn(token)
	}
	return nil
}

func (s *Session) persist() error {
	if s.path == "" {
		return nil
	}
	if s.token == "" {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove session: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.Marshal(sessionFile{Token: s.token})
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, s.path)
}
