// Package index keeps the ranked set of repeated words and diffs it between passes.
package index

import (
	"slices"

	"github.com/bastiangx/echoes/pkg/tokenize"
)

// MinRepeats is the occurrence count a word needs to be tracked.
const MinRepeats = 2

// Entry is one tracked word with its occurrences and rank.
type Entry struct {
	Word  string
	Spans []tokenize.Span
	Rank  int
}

// Count returns the number of occurrences.
func (e Entry) Count() int {
	return len(e.Spans)
}

// Rank keeps the words seen at least MinRepeats times and orders them by occurrence
// count, highest first. Ties keep the order in which the words were first seen, so the
// result is stable for an unchanged text. Ranks are dense, starting at 0.
func Rank(occ *tokenize.Occurrences) []Entry {
	if occ == nil {
		return nil
	}

	entries := make([]Entry, 0, occ.Len())
	for _, word := range occ.Words() {
		if spans := occ.Spans(word); len(spans) >= MinRepeats {
			entries = append(entries, Entry{Word: word, Spans: spans})
		}
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.Count() - a.Count()
	})

	for i := range entries {
		entries[i].Rank = i
	}
	return entries
}
