package core

import (
	"sort"
	"strings"

	"smartscribe/internal/store"
)

// FilterNotes returns the notes whose title, summary or original text contain
// the query as a case-insensitive substring. An empty query matches all.
// Purely a read-side transform; the input slice is not modified.
func FilterNotes(notes []store.Note, query string) []store.Note {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return notes
	}
	out := make([]store.Note, 0, len(notes))
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), q) ||
			strings.Contains(strings.ToLower(n.Summary), q) ||
			strings.Contains(strings.ToLower(n.OriginalText), q) {
			out = append(out, n)
		}
	}
	return out
}

// SortNotesByTimestampDesc orders notes newest first, in place. This is the
// one ordering guarantee of the list view; the store query does not provide
// it.
func SortNotesByTimestampDesc(notes []store.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Timestamp > notes[j].Timestamp
	})
}
