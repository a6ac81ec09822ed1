// Package store persists the scheme list as a JSON file.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/petems/snapclick/internal/scheme"
)

var (
	ErrDuplicateName   = errors.New("store: a scheme with that name already exists")
	ErrIndexOutOfRange = errors.New("store: scheme index out of range")
)

// Store holds the scheme list in memory and writes it through to disk on
// every change.
type Store struct {
	path string
	log  zerolog.Logger

	mu      sync.Mutex
	schemes []scheme.Scheme
	// last bytes written or read, so the watcher can tell our own writes
	// from external edits.
	last []byte
}

// Open loads the scheme file at path. A missing or unreadable file is
// replaced with the default presets.
func Open(path string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scheme directory: %w", err)
	}

	s := &Store{path: path, log: log}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Info().Str("path", path).Msg("No scheme file, loading default presets")
		return s, s.seedDefaults()
	case err != nil:
		log.Error().Err(err).Str("path", path).Msg("Failed to read scheme file, loading default presets")
		return s, s.seedDefaults()
	}

	schemes, err := decode(data)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to parse scheme file, loading default presets")
		return s, s.seedDefaults()
	}

	s.schemes = schemes
	s.last = data
	log.Info().Int("count", len(schemes)).Msg("Loaded schemes")
	return s, nil
}

func (s *Store) seedDefaults() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.schemes = scheme.Defaults()
	return s.saveLocked()
}

// Path returns the scheme file location.
func (s *Store) Path() string {
	return s.path
}

// LoadAll returns a copy of the current list.
func (s *Store) LoadAll() []scheme.Scheme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]scheme.Scheme(nil), s.schemes...)
}

// Add appends sc. Names must be unique.
func (s *Store) Add(sc scheme.Scheme) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.schemes {
		if existing.Name == sc.Name {
			return ErrDuplicateName
		}
	}

	prev := s.schemes
	s.schemes = append(append([]scheme.Scheme(nil), prev...), sc)
	if err := s.saveLocked(); err != nil {
		s.schemes = prev
		return err
	}
	return nil
}

// UpdateAt replaces the scheme at index.
func (s *Store) UpdateAt(index int, sc scheme.Scheme) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.schemes) {
		return ErrIndexOutOfRange
	}

	prev := s.schemes
	s.schemes = append([]scheme.Scheme(nil), prev...)
	s.schemes[index] = sc
	if err := s.saveLocked(); err != nil {
		s.schemes = prev
		return err
	}
	return nil
}

// DeleteAt removes the scheme at index. It reports false when index is out
// of range or the change could not be saved.
func (s *Store) DeleteAt(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.schemes) {
		return false
	}

	prev := s.schemes
	next := make([]scheme.Scheme, 0, len(prev)-1)
	next = append(next, prev[:index]...)
	next = append(next, prev[index+1:]...)
	s.schemes = next
	if err := s.saveLocked(); err != nil {
		s.log.Error().Err(err).Msg("Failed to save schemes after delete")
		s.schemes = prev
		return false
	}
	return true
}

// Reload re-reads the file. It reports whether the content differs from
// what the store last wrote or read. A file that fails to parse leaves the
// in-memory list untouched.
func (s *Store) Reload() (bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false, fmt.Errorf("failed to read scheme file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if bytes.Equal(data, s.last) {
		return false, nil
	}

	schemes, err := decode(data)
	if err != nil {
		return false, err
	}

	s.schemes = schemes
	s.last = data
	s.log.Info().Int("count", len(schemes)).Msg("Reloaded schemes")
	return true, nil
}

// Changed reports whether the file differs from what the store last
// wrote or read, without loading it.
func (s *Store) Changed() bool {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return !bytes.Equal(data, s.last)
}

func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.schemes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode schemes: %w", err)
	}
	data = append(data, '\n')

	if err := writeAtomic(s.path, data); err != nil {
		return err
	}
	s.last = data
	s.log.Debug().Int("count", len(s.schemes)).Msg("Saved schemes")
	return nil
}

// writeAtomic writes data next to path and renames it into place so a
// crash never leaves a truncated file.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write schemes: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write schemes: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace scheme file: %w", err)
	}
	return nil
}
