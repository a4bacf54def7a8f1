// Package audit provides an append-only record of connector reads.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Operations recorded in the log.
const (
	OpSearch  = "search"
	OpResps   = "resps"
	OpAuditor = "auditor"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp  time.Time `json:"ts"`
	Operation  string    `json:"op"`
	Kind       string    `json:"kind,omitempty"`
	Filter     string    `json:"filter,omitempty"`
	Target     string    `json:"target,omitempty"` // user or responsibility for direct lookups
	SearchID   string    `json:"search_id,omitempty"`
	Count      int       `json:"count"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// Logger appends entries to a JSONL file. A Logger with an empty path is a
// no-op.
type Logger struct {
	path string
	mu   sync.Mutex
}

// New creates an audit logger writing to path. An empty path disables it.
func New(path string) *Logger {
	return &Logger{path: path}
}

// Enabled returns true if the audit logger writes entries.
func (l *Logger) Enabled() bool {
	return l != nil && l.path != ""
}

// Log writes an entry to the audit log.
func (l *Logger) Log(entry Entry) error {
	if !l.Enabled() {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// Read reads all entries from the audit log. Malformed lines are skipped.
func (l *Logger) Read() ([]Entry, error) {
	if !l.Enabled() {
		return nil, nil
	}

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(sc.Bytes(), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	return entries, nil
}

// ReadSince reads entries logged at or after since.
func (l *Logger) ReadSince(since time.Time) ([]Entry, error) {
	all, err := l.Read()
	if err != nil {
		return nil, err
	}

	var filtered []Entry
	for _, entry := range all {
		if !entry.Timestamp.Before(since) {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}
