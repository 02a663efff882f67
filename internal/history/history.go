// Package history implements the bounded, navigable command history of
// spec §4.4, plus plain-text persistence. It is grounded on the teacher's
// cli.go EncryptedHistoryHandler (load/trim/append/write shape over a
// slice of strings) with the encryption stripped, because spec.md
// requires plain text, and on shell_history_tracker.go's atomic-write
// discipline.
package history

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxItems is the default bound on the number of retained entries.
const DefaultMaxItems = 100

// Store is an ordered, bounded list of previously entered lines with a
// navigation cursor and a pending cache for the line being edited when
// browsing begins (spec §3).
type Store struct {
	items   []string
	index   int
	cache   *string
	maxSize int
}

// New returns an empty Store bounded at maxSize entries. maxSize <= 0
// means DefaultMaxItems.
func New(maxSize int) *Store {
	if maxSize <= 0 {
		maxSize = DefaultMaxItems
	}
	return &Store{maxSize: maxSize}
}

// Len returns the number of stored entries.
func (s *Store) Len() int { return len(s.items) }

// Items returns a copy of the stored entries, oldest first.
func (s *Store) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Browsing reports whether the store is currently mid-navigation.
func (s *Store) Browsing() bool {
	return s.index != len(s.items)
}

// Add appends s, truncates from the front to maxSize, and resets the
// navigation cursor to "not browsing" (spec §4.4).
func (s *Store) Add(line string) {
	s.items = append(s.items, line)
	if over := len(s.items) - s.maxSize; over > 0 {
		s.items = s.items[over:]
	}
	s.index = len(s.items)
	s.cache = nil
}

// EditBuffer is the minimal surface the history store needs from the line
// editor's buffer: read the current content, and overwrite it.
type EditBuffer interface {
	String() string
	ReplaceAll(string)
}

// Prev moves one entry back in history, snapshotting buf into the pending
// cache the first time browsing begins, and overwrites buf with the
// selected entry. Returns false (no-op) if already at the oldest entry.
func (s *Store) Prev(buf EditBuffer) bool {
	if len(s.items) == 0 {
		return false
	}
	if !s.Browsing() {
		cached := buf.String()
		s.cache = &cached
		s.index = len(s.items) - 1
	} else if s.index > 0 {
		s.index--
	} else {
		return false
	}
	buf.ReplaceAll(s.items[s.index])
	return true
}

// Next moves one entry forward in history, restoring the pending cache and
// clearing browsing state once the newest entry is passed. Returns false
// (no-op) if not currently browsing.
func (s *Store) Next(buf EditBuffer) bool {
	if !s.Browsing() {
		return false
	}
	if s.index == len(s.items)-1 {
		if s.cache != nil {
			buf.ReplaceAll(*s.cache)
		}
		s.cache = nil
		s.index = len(s.items)
		return true
	}
	s.index++
	buf.ReplaceAll(s.items[s.index])
	return true
}

// ResetToCache restores the pending cache (if any) and stops browsing,
// used when ESC is pressed mid-navigation (spec §4.3).
func (s *Store) ResetToCache(buf EditBuffer) bool {
	if s.cache == nil {
		return false
	}
	buf.ReplaceAll(*s.cache)
	s.cache = nil
	s.index = len(s.items)
	return true
}

// Load reads a plain-text, UTF-8, one-entry-per-line history file, trims
// it to maxSize and sets the cursor to "not browsing". A missing file is
// not an error.
func Load(path string, maxSize int) (*Store, error) {
	s := New(maxSize)
	if path == "" {
		return s, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("history: open %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimRight(line, "\r") == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return s, fmt.Errorf("history: read %s: %w", path, err)
	}

	if over := len(lines) - s.maxSize; over > 0 {
		lines = lines[over:]
	}
	s.items = lines
	s.index = len(s.items)
	return s, nil
}

// Save writes the history atomically: to a temp file in the same
// directory, then renamed over the destination, so a crash mid-write never
// corrupts the existing file.
func (s *Store) Save(path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("history: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".ivish_history_*")
	if err != nil {
		return fmt.Errorf("history: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	w := bufio.NewWriter(tmp)
	for _, line := range s.items {
		if _, err := w.WriteString(line); err != nil {
			tmp.Close()
			return fmt.Errorf("history: write: %w", err)
		}
		if _, err := w.WriteString("\n"); err != nil {
			tmp.Close()
			return fmt.Errorf("history: write: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("history: flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("history: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("history: rename into place: %w", err)
	}
	return nil
}
