package config

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/micro-nova/hapticd/internal/models"
)

const (
	settingsFileName = "settings.json"
	debounceDelay    = 500 * time.Millisecond
)

// JSONStore is an atomic JSON file store with debounced writes. Amplitude
// sliders call SetAmplitude many times a second; only the last value hits
// the disk.
type JSONStore struct {
	mu      sync.Mutex
	wmu     sync.Mutex
	path    string
	timer   *time.Timer
	pending *models.Settings
}

// NewJSONStore creates a new JSON store in the given config directory.
func NewJSONStore(configDir string) *JSONStore {
	return &JSONStore{
		path: filepath.Join(configDir, settingsFileName),
	}
}

// Path returns the file path used by this store.
func (s *JSONStore) Path() string { return s.path }

// Load reads the settings from disk. Returns DefaultSettings on ENOENT or
// parse errors.
func (s *JSONStore) Load() (*models.Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			def := models.DefaultSettings()
			return &def, nil
		}
		return nil, err
	}

	var settings models.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		slog.Warn("config: corrupt settings file, using defaults", "path", s.path, "err", err)
		def := models.DefaultSettings()
		return &def, nil
	}
	return &settings, nil
}

// Save schedules a debounced write of the settings to disk. Each call
// pushes the write back by debounceDelay.
func (s *JSONStore) Save(settings *models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *settings
	s.pending = &cp

	if s.timer == nil {
		s.timer = time.AfterFunc(debounceDelay, func() {
			if err := s.writePending(); err != nil {
				slog.Error("config: failed to write settings", "path", s.path, "err", err)
			}
		})
		return nil
	}
	s.timer.Reset(debounceDelay)
	return nil
}

// Flush forces an immediate write of any pending settings.
func (s *JSONStore) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	return s.writePending()
}

// writePending writes the latest pending settings, if any. wmu keeps a
// timer write and a Flush from landing out of order.
func (s *JSONStore) writePending() error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	s.mu.Lock()
	st := s.pending
	s.pending = nil
	s.mu.Unlock()
	if st == nil {
		return nil
	}

	if err := writeAtomic(s.path, st); err != nil {
		s.mu.Lock()
		if s.pending == nil {
			s.pending = st
		}
		s.mu.Unlock()
		return err
	}
	slog.Debug("config: settings written", "path", s.path, "amplitude", st.Amplitude)
	return nil
}

// writeAtomic writes settings to a temp file in the same directory, syncs
// it and renames it over path.
func writeAtomic(path string, settings *models.Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, settingsFileName+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
