package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartscribe/internal/store"
)

func TestSortNotesByTimestampDesc(t *testing.T) {
	notes := []store.Note{
		{ID: "a", Timestamp: 5},
		{ID: "b", Timestamp: 3},
		{ID: "c", Timestamp: 9},
		{ID: "d", Timestamp: 1},
	}

	SortNotesByTimestampDesc(notes)

	got := make([]int64, len(notes))
	for i, n := range notes {
		got[i] = n.Timestamp
	}
	assert.Equal(t, []int64{9, 5, 3, 1}, got)
}

func TestFilterNotes(t *testing.T) {
	notes := []store.Note{
		{ID: "roadmap", Title: "Q3 roadmap", Summary: "planning session", OriginalText: "the quarter ahead"},
		{ID: "insights", Title: "AI insights", Summary: "model news", OriginalText: "LLM roundup"},
		{ID: "lunch", Title: "Lunch receipt", Summary: "28 euros", OriginalText: "paid at the bistro"},
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "case-insensitive title match", query: "ai", want: []string{"insights", "lunch"}}, // "paid" contains "ai"
		{name: "summary match", query: "euros", want: []string{"lunch"}},
		{name: "original text match", query: "QUARTER", want: []string{"roadmap"}},
		{name: "empty query matches all", query: "", want: []string{"roadmap", "insights", "lunch"}},
		{name: "whitespace query matches all", query: "   ", want: []string{"roadmap", "insights", "lunch"}},
		{name: "no match", query: "zebra", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterNotes(notes, tt.query)
			ids := make([]string, 0, len(got))
			for _, n := range got {
				ids = append(ids, n.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestFilterNotesDoesNotMutateInput(t *testing.T) {
	notes := []store.Note{
		{ID: "a", Title: "alpha"},
		{ID: "b", Title: "beta"},
	}
	got := FilterNotes(notes, "beta")
	require.Len(t, got, 1)
	assert.Equal(t, "a", notes[0].ID)
	assert.Equal(t, "b", notes[1].ID)
}
