// Package auth guards the hapticd HTTP API with static API keys. Keys are
// read from keys.json in the config directory, a JSON object mapping a
// client name to its key, and picked up again whenever the file changes.
// Without the file the API is open.
package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

const keysFileName = "keys.json"

// Service is the current set of accepted API keys.
type Service struct {
	path string

	mu   sync.RWMutex
	keys [][]byte

	watcher *fsnotify.Watcher
}

// NewService loads keys.json from configDir and starts following it. A
// malformed file is an error; a missing one leaves the API open. Failing to
// set up the watch only costs hot reload.
func NewService(configDir string) (*Service, error) {
	s := &Service{path: filepath.Join(configDir, keysFileName)}
	if err := s.Reload(); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("auth: key reload disabled", "err", err)
		return s, nil
	}
	// The directory is watched, not the file, so the file can be created
	// or replaced by rename later.
	if err := w.Add(filepath.Dir(s.path)); err != nil {
		slog.Warn("auth: key reload disabled", "dir", filepath.Dir(s.path), "err", err)
		w.Close()
		return s, nil
	}
	s.watcher = w
	go s.follow()
	return s, nil
}

// readKeys parses a keys file. os.ErrNotExist is passed through.
func readKeys(path string) ([][]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var byClient map[string]string
	if err := json.Unmarshal(data, &byClient); err != nil {
		return nil, fmt.Errorf("auth: parse %s: %w", path, err)
	}
	keys := make([][]byte, 0, len(byClient))
	for client, key := range byClient {
		if key == "" {
			slog.Warn("auth: ignoring empty key", "client", client)
			continue
		}
		keys = append(keys, []byte(key))
	}
	return keys, nil
}

// Reload replaces the accepted keys with the contents of keys.json.
func (s *Service) Reload() error {
	keys, err := readKeys(s.path)
	if errors.Is(err, os.ErrNotExist) {
		keys, err = nil, nil
	}
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.keys = keys
	s.mu.Unlock()
	slog.Debug("auth: keys loaded", "path", s.path, "count", len(keys))
	return nil
}

// IsOpenMode reports whether requests are accepted without a key.
func (s *Service) IsOpenMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys) == 0
}

// VerifyKey reports whether key is one of the accepted keys. Every
// candidate is compared in constant time.
func (s *Service) VerifyKey(key string) bool {
	if key == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	match := 0
	for _, k := range s.keys {
		match |= subtle.ConstantTimeCompare([]byte(key), k)
	}
	return match == 1
}

// Close stops following keys.json.
func (s *Service) Close() {
	if s.watcher != nil {
		s.watcher.Close()
	}
}

func (s *Service) follow() {
	const changed = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Name != s.path || !ev.Op.Has(changed) {
				continue
			}
			if err := s.Reload(); err != nil {
				// Keep the previous keys; a half-written file is followed
				// by another write event.
				slog.Warn("auth: keys.json rejected, keeping previous keys", "err", err)
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("auth: keys.json watch error", "err", err)
		}
	}
}
