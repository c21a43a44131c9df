package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/studiowebux/text2image/internal/types"
)

func TestRecordSuccessOrdering(t *testing.T) {
	tests := []struct {
		name      string
		successes []string
		want      []string
	}{
		{"empty", nil, []string{}},
		{"single", []string{"a"}, []string{"a"}},
		{"dedupe moves to front", []string{"a", "b", "a", "c"}, []string{"c", "a", "b"}},
		{"repeat keeps one", []string{"A cat", "A cat"}, []string{"A cat"}},
		{"case sensitive", []string{"a", "A"}, []string{"A", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(DefaultLimit, nil, nil)
			for _, p := range tt.successes {
				s.RecordSuccess(p)
			}
			assert.Equal(t, tt.want, s.Entries())
		})
	}
}

func TestRecordSuccessTruncatesToLimit(t *testing.T) {
	s := NewStore(DefaultLimit, nil, nil)
	for i := 0; i < 15; i++ {
		s.RecordSuccess(fmt.Sprintf("p%d", i))
	}

	entries := s.Entries()
	assert.Len(t, entries, DefaultLimit)
	assert.Equal(t, "p14", entries[0])
	assert.Equal(t, "p5", entries[DefaultLimit-1])
}

func TestRecordSuccessFullListReinsertsExisting(t *testing.T) {
	s := NewStore(DefaultLimit, nil, nil)
	for i := 0; i < DefaultLimit; i++ {
		s.RecordSuccess(fmt.Sprintf("p%d", i))
	}
	s.RecordSuccess("p0")

	entries := s.Entries()
	assert.Len(t, entries, DefaultLimit)
	assert.Equal(t, "p0", entries[0])
	assert.Equal(t, "p1", entries[DefaultLimit-1])
}

func TestRecordSuccessIsIdempotent(t *testing.T) {
	s := NewStore(DefaultLimit, nil, nil)
	s.RecordSuccess("x")
	s.RecordSuccess("y")

	s.RecordSuccess("y")
	before := s.Len()
	s.RecordSuccess("y")

	front, ok := s.Front()
	assert.True(t, ok)
	assert.Equal(t, "y", front)
	assert.Equal(t, before, s.Len())
}

func TestNewStoreClampsLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NewStore(0, nil, nil).Limit())
	assert.Equal(t, DefaultLimit, NewStore(50, nil, nil).Limit())
	assert.Equal(t, 3, NewStore(3, nil, nil).Limit())
}

func TestSmallLimit(t *testing.T) {
	s := NewStore(2, nil, nil)
	s.RecordSuccess("a")
	s.RecordSuccess("b")
	s.RecordSuccess("c")
	assert.Equal(t, []string{"c", "b"}, s.Entries())
}

func TestHydrate(t *testing.T) {
	records := []types.HistoryRecord{
		{Prompt: "c"}, {Prompt: "a"}, {Prompt: "c"}, {Prompt: ""}, {Prompt: "b"},
	}
	s := NewStore(DefaultLimit, nil, nil)
	n := s.Hydrate(records)

	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"c", "a", "b"}, s.Entries())
}

func TestHydrateCapsAndReplaces(t *testing.T) {
	s := NewStore(DefaultLimit, nil, nil)
	s.RecordSuccess("local")

	var records []types.HistoryRecord
	for i := 0; i < 12; i++ {
		records = append(records, types.HistoryRecord{Prompt: fmt.Sprintf("r%d", i)})
	}
	s.Hydrate(records)

	entries := s.Entries()
	assert.Len(t, entries, DefaultLimit)
	assert.Equal(t, "r0", entries[0])
	assert.NotContains(t, entries, "local")
}

func TestEntriesReturnsCopy(t *testing.T) {
	s := NewStore(DefaultLimit, nil, nil)
	s.RecordSuccess("a")

	entries := s.Entries()
	entries[0] = "mutated"
	assert.Equal(t, []string{"a"}, s.Entries())

	_, ok := NewStore(DefaultLimit, nil, nil).Front()
	assert.False(t, ok)
}
