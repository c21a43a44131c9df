package tui

import (
	"github.com/sahilm/fuzzy"
)

// HistoryState is the history list as shown: the store entries, an optional
// fuzzy filter and the selection.
type HistoryState struct {
	all     []string
	visible []historyRow
	index   int
	query   string
}

// historyRow is one visible entry. matched holds the byte offsets hit by the filter.
type historyRow struct {
	prompt  string
	matched []int
}

// NewHistoryState creates an empty history state
func NewHistoryState() *HistoryState {
	return &HistoryState{}
}

// SetEntries replaces the entries and re-applies the current filter. The
// selection resets to the top.
func (s *HistoryState) SetEntries(entries []string) {
	s.all = append([]string(nil), entries...)
	s.index = 0
	s.apply()
}

// SetQuery filters entries with a fuzzy match, best match first
func (s *HistoryState) SetQuery(query string) {
	s.query = query
	s.index = 0
	s.apply()
}

func (s *HistoryState) Query() string {
	return s.query
}

func (s *HistoryState) apply() {
	s.visible = s.visible[:0]
	if s.query == "" {
		for _, e := range s.all {
			s.visible = append(s.visible, historyRow{prompt: e})
		}
		return
	}
	for _, match := range fuzzy.Find(s.query, s.all) {
		s.visible = append(s.visible, historyRow{prompt: match.Str, matched: match.MatchedIndexes})
	}
}

// Len is the number of visible rows
func (s *HistoryState) Len() int {
	return len(s.visible)
}

// Total is the number of entries before filtering
func (s *HistoryState) Total() int {
	return len(s.all)
}

func (s *HistoryState) Index() int {
	return s.index
}

// Navigate moves the selection by delta, wrapping around
func (s *HistoryState) Navigate(delta int) {
	if len(s.visible) == 0 {
		return
	}
	s.index += delta
	if s.index < 0 {
		s.index = len(s.visible) - 1
	} else if s.index >= len(s.visible) {
		s.index = 0
	}
}

// Top selects the first row
func (s *HistoryState) Top() {
	s.index = 0
}

// Bottom selects the last row
func (s *HistoryState) Bottom() {
	if len(s.visible) > 0 {
		s.index = len(s.visible) - 1
	}
}

// Selected returns the selected prompt
func (s *HistoryState) Selected() (string, bool) {
	if s.index < 0 || s.index >= len(s.visible) {
		return "", false
	}
	return s.visible[s.index].prompt, true
}

// Rows returns the visible rows
func (s *HistoryState) Rows() []historyRow {
	return s.visible
}
