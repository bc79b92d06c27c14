package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ErrEmptyKey is returned when an address or task id is empty.
var ErrEmptyKey = errors.New("empty address or task id")

// Store is the completion store: a single JSON document mapping wallet
// address to the tasks that wallet has finished.
//
// Every write is a read-modify-write of the whole document under one mutex,
// so wallets running concurrently cannot lose each other's entries, and the
// document is replaced by rename so a crash never leaves it truncated.
type Store struct {
	path string

	mu      sync.Mutex
	records map[string]*Record
}

// NewStore creates a Store backed by path. Nothing is read until Load.
func NewStore(path string) *Store {
	return &Store{
		path:    path,
		records: make(map[string]*Record),
	}
}

// Open creates a Store and loads path if it exists.
func Open(path string) (*Store, error) {
	s := NewStore(path)
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Load replaces the in-memory records with the file contents.
// A missing file leaves the store empty.
func (s *Store) Load() error {
	records, err := s.readFile()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	return nil
}

func (s *Store) readFile() (map[string]*Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]*Record), nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	records := make(map[string]*Record)
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	for addr, rec := range records {
		if rec == nil {
			records[addr] = &Record{}
		}
	}
	return records, nil
}

// Completed returns a copy of the task ids recorded for address.
func (s *Store) Completed(address string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[address]
	if !ok {
		return []string{}
	}
	return append([]string{}, rec.Tasks...)
}

// IsCompleted reports whether taskID is recorded for address.
func (s *Store) IsCompleted(address, taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[address]
	return ok && rec.has(taskID)
}

// MarkCompleted appends taskID to address's record and persists the document.
// Recording an id twice is a no-op. Entries written to the file by another
// process since the last Load are merged in before writing.
func (s *Store) MarkCompleted(address, taskID string) error {
	if address == "" || taskID == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	onDisk, err := s.readFile()
	if err != nil {
		return err
	}
	merge(s.records, onDisk)

	rec, ok := s.records[address]
	if !ok {
		rec = &Record{}
		s.records[address] = rec
	}
	if rec.has(taskID) {
		return nil
	}
	rec.Tasks = append(rec.Tasks, taskID)

	return s.writeLocked()
}

// merge adds ids from src that dst does not have yet. Nothing is removed.
func merge(dst, src map[string]*Record) {
	for addr, rec := range src {
		existing, ok := dst[addr]
		if !ok {
			dst[addr] = &Record{Tasks: append([]string{}, rec.Tasks...)}
			continue
		}
		for _, id := range rec.Tasks {
			if !existing.has(id) {
				existing.Tasks = append(existing.Tasks, id)
			}
		}
	}
}

// Snapshot returns a deep copy of every record.
func (s *Store) Snapshot() map[string]Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]Record, len(s.records))
	for addr, rec := range s.records {
		out[addr] = Record{Tasks: append([]string{}, rec.Tasks...)}
	}
	return out
}

// Addresses returns the recorded addresses in sorted order.
func (s *Store) Addresses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	addrs := make([]string, 0, len(s.records))
	for addr := range s.records {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}

func (s *Store) writeLocked() error {
	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
