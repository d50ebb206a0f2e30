// Package statefile persists the hub's mode and ball counters across
// restarts.
package statefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Record is the persisted state.
type Record struct {
	Mode          string `json:"mode"`
	ActiveCount   uint64 `json:"active"`
	AutoCount     uint64 `json:"auto"`
	InactiveCount uint64 `json:"inactive"`
}

// Store loads and saves hub state.
type Store interface {
	// Load returns the persisted record. found is false when no state has
	// been saved yet; a corrupt file returns an error.
	Load() (rec Record, found bool, err error)

	// Save persists the record, replacing any previous one.
	Save(rec Record) error
}

// FileStore keeps the record as a JSON file, written atomically.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given path. The parent
// directory is created on the first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the record from disk.
func (s *FileStore) Load() (Record, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("statefile: read %s: %w", s.path, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("statefile: parse %s: %w", s.path, err)
	}
	return rec, true, nil
}

// Save writes the record to a temp file and renames it into place.
func (s *FileStore) Save(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("statefile: encode: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("statefile: create %s: %w", dir, err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("statefile: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("statefile: rename %s: %w", tmp, err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu sync.Mutex

	// Rec and Exists script what Load returns.
	Rec    Record
	Exists bool

	// LoadError and SaveError, if set, are returned by the corresponding
	// methods.
	LoadError error
	SaveError error

	saves int
}

// Load returns the scripted record.
func (m *MemStore) Load() (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadError != nil {
		return Record{}, false, m.LoadError
	}
	return m.Rec, m.Exists, nil
}

// Save stores the record in memory.
func (m *MemStore) Save(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveError != nil {
		return m.SaveError
	}
	m.Rec = rec
	m.Exists = true
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *MemStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Last returns the most recently saved record.
func (m *MemStore) Last() Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Rec
}

var _ Store = (*MemStore)(nil)
