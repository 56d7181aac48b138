// Package history persists the append-only record of completed jobs as
// a JSON file of {time, url, file} entries, newest first. The store is
// loaded once at startup and appended from arbitrary worker goroutines.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultFileName is the history file kept in the user's home directory.
const DefaultFileName = ".mediaqueue_history.json"

// Entry is one completed-job record. Time is epoch seconds.
type Entry struct {
	Time int64  `json:"time"`
	URL  string `json:"url"`
	File string `json:"file"`
}

// Store is a thread-safe append-only history backed by a JSON file.
type Store struct {
	mu      sync.Mutex
	path    string
	entries []Entry
}

// DefaultPath returns the history file location in the user's home
// directory, or a path under the temp directory when home is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), DefaultFileName)
	}
	return filepath.Join(home, DefaultFileName)
}

// Open loads the history at path. A missing file yields an empty store;
// a corrupt file is an error so the caller can surface it instead of
// silently truncating history.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}
	return s, nil
}

// AppendCompleted records a completed job. The entry is persisted
// durably before returning; newest entries come first.
func (s *Store) AppendCompleted(url, filePath string) error {
	return s.Append(Entry{Time: time.Now().Unix(), URL: url, File: filePath})
}

// Append prepends an entry and rewrites the file atomically.
func (s *Store) Append(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append([]Entry{entry}, s.entries...)
	if err := s.save(); err != nil {
		// Roll back the in-memory prepend so memory matches disk.
		s.entries = s.entries[1:]
		return err
	}
	return nil
}

// Entries returns a copy of all records, newest first.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Recent returns up to n newest records; display layers cap the list
// while the store itself grows unbounded.
func (s *Store) Recent(n int) []Entry {
	entries := s.Entries()
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// save writes the full list through a temp file and rename so a crash
// never leaves a truncated history.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace history: %w", err)
	}
	return nil
}
