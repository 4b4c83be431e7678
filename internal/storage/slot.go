// Package storage holds the persistent key-value slot the task store mirrors its
// collection into. A slot stores opaque bytes under a string key; the store
// decides the encoding.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

var ErrInvalidKey = errors.New("invalid storage key")

type Slot interface {
	// Get returns the stored value and whether the key was present.
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Close() error
}

const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Open builds the slot named by driver rooted at dataDir.
func Open(driver, dataDir string) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverMemory:
		return NewMemorySlot(), nil
	case "", DriverFile:
		return NewFileSlot(dataDir)
	case DriverSQLite:
		return NewSQLiteSlot(filepath.Join(dataDir, "todo.db"))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

func validKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

type MemorySlot struct {
	mu sync.RWMutex
	m  map[string][]byte

	// SetErr, when non-nil, is returned by every Set. Tests use it to simulate
	// quota or disk failures.
	SetErr error
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{m: map[string][]byte{}}
}

func (s *MemorySlot) Get(key string) ([]byte, bool, error) {
	if err := validKey(key); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.m[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemorySlot) Set(key string, value []byte) error {
	if err := validKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SetErr != nil {
		return s.SetErr
	}
	s.m[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemorySlot) Close() error { return nil }
