// Package history persists completed scan records as a JSON file.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/websectester/websectester/internal/scanner"
)

// Store keeps the full history in memory and rewrites the backing file on
// every append. The file holds one JSON array so it stays readable by hand
// and by external tooling.
type Store struct {
	mu      sync.Mutex
	path    string
	records []scanner.Record
}

// Open loads existing history from path, tolerating a missing file. A
// corrupt file is an error: silently starting empty would clobber it on
// the next append.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.records); err != nil {
		return nil, fmt.Errorf("parse history file %s: %w", path, err)
	}
	return s, nil
}

// Append adds a record and rewrites the file.
func (s *Store) Append(rec scanner.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	return s.flush()
}

// All returns every record in append order.
func (s *Store) All() []scanner.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]scanner.Record(nil), s.records...)
}

// Find returns the record with the given scan id.
func (s *Store) Find(scanID string) (scanner.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.ScanID == scanID {
			return rec, true
		}
	}
	return scanner.Record{}, false
}

// Len reports the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *Store) flush() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	data, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	// Write-then-rename keeps the file whole if the process dies mid-write.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace history file: %w", err)
	}
	return nil
}
