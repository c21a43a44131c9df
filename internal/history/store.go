// Package history keeps the bounded, deduplicated list of prompts that
// generated successfully, most recent first.
package history

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/studiowebux/text2image/internal/notice"
	"github.com/studiowebux/text2image/internal/types"
)

// DefaultLimit is the maximum number of prompts kept
const DefaultLimit = 10

// Store is the session's prompt history.
// Entries are distinct, case-sensitive, most recent first and never exceed the limit.
type Store struct {
	mu       sync.RWMutex
	entries  []string
	limit    int
	notifier notice.Notifier
	logger   *log.Logger
}

// NewStore creates an empty store. A limit outside 1..DefaultLimit falls back to DefaultLimit.
func NewStore(limit int, notifier notice.Notifier, logger *log.Logger) *Store {
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}
	if notifier == nil {
		notifier = notice.Discard
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{
		limit:    limit,
		notifier: notifier,
		logger:   logger,
	}
}

// RecordSuccess moves prompt to the front, dropping any older copy and
// anything past the limit.
func (s *Store) RecordSuccess(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, s.limit)
	next = append(next, prompt)
	for _, entry := range s.entries {
		if len(next) == s.limit {
			break
		}
		if entry != prompt {
			next = append(next, entry)
		}
	}
	s.entries = next
}

// Hydrate replaces the entries with the server's history.
// Records are taken in order; the first occurrence of a prompt wins and
// empty prompts are skipped. It returns the resulting length.
func (s *Store) Hydrate(records []types.HistoryRecord) int {
	seen := make(map[string]struct{}, len(records))
	next := make([]string, 0, s.limit)
	for _, record := range records {
		if len(next) == s.limit {
			break
		}
		if record.Prompt == "" {
			continue
		}
		if _, dup := seen[record.Prompt]; dup {
			continue
		}
		seen[record.Prompt] = struct{}{}
		next = append(next, record.Prompt)
	}

	s.mu.Lock()
	s.entries = next
	s.mu.Unlock()

	s.logger.Debug("history hydrated", "records", len(records), "entries", len(next))
	return len(next)
}

// Entries returns a copy of the current list
func (s *Store) Entries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.entries...)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Front returns the most recent prompt
func (s *Store) Front() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return "", false
	}
	return s.entries[0], true
}

func (s *Store) Limit() int {
	return s.limit
}

func (s *Store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}
