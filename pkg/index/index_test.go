package index

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/bastiangx/echoes/pkg/tokenize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(d *Delta, word string) (Classified, bool) {
	for _, c := range d.Entries {
		if c.Word == word {
			return c, true
		}
	}
	return Classified{}, false
}

func rank(text string, minLen int) []Entry {
	return Rank(tokenize.Unicode().Scan(text, minLen))
}

func words(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Word)
	}
	return out
}

func TestRankScenario(t *testing.T) {
	entries := rank("the cat and the dog and the cat", 1)

	// cat is seen before and, so it wins the tie
	require.Equal(t, []string{"the", "cat", "and"}, words(entries))
	assert.Equal(t, 3, entries[0].Count())
	assert.Equal(t, 2, entries[1].Count())
	assert.Equal(t, 2, entries[2].Count())
	for i, e := range entries {
		assert.Equal(t, i, e.Rank)
	}
}

func TestRankTiesAreScanOrderNotAlphabetical(t *testing.T) {
	entries := rank("zeta alpha zeta alpha mid mid", 1)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, words(entries))
}

func TestRankDropsSingles(t *testing.T) {
	assert.Empty(t, rank("every word here is unique", 1))
	assert.Empty(t, rank("", 1))
	assert.Nil(t, Rank(nil))
}

// randomText builds a text from a small vocabulary so repeats are common.
func randomText(r *rand.Rand, n int) string {
	vocab := []string{"a", "bb", "the", "Cat", "cat", "dog", "ünï", "x_y", "42"}
	parts := make([]string, n)
	for i := range parts {
		parts[i] = vocab[r.Intn(len(vocab))]
	}
	return strings.Join(parts, " ,")
}

func TestRankProperties(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	tok := tokenize.Unicode()

	for i := 0; i < 200; i++ {
		text := randomText(r, r.Intn(40))
		minLen := 1 + r.Intn(3)
		occ := tok.Scan(text, minLen)
		entries := Rank(occ)

		kept := make(map[string]bool)
		for pos, e := range entries {
			kept[e.Word] = true
			assert.Equal(t, pos, e.Rank, "dense ranks for %q", text)
			assert.GreaterOrEqual(t, e.Count(), MinRepeats)
			if pos > 0 {
				assert.GreaterOrEqual(t, entries[pos-1].Count(), e.Count())
			}
			for j := 1; j < len(e.Spans); j++ {
				assert.Less(t, e.Spans[j-1].Start, e.Spans[j].Start)
			}
		}

		for _, word := range occ.Words() {
			assert.Equal(t, len(occ.Spans(word)) >= MinRepeats, kept[word], "word %q in %q", word, text)
		}
	}
}

func TestDiffFirstPassAllAdded(t *testing.T) {
	delta := Diff(nil, rank("the cat and the dog and the cat", 1))

	assert.Equal(t, map[Action]int{Added: 3, Kept: 0, Removed: 0}, delta.Counts())
	assert.Equal(t, 3, delta.Next.Len())
	assert.Empty(t, delta.Removed())
}

func TestDiffIdempotent(t *testing.T) {
	text := "the cat and the dog and the cat"
	first := Diff(nil, rank(text, 1))
	second := Diff(first.Next, rank(text, 1))

	assert.Equal(t, map[Action]int{Added: 0, Kept: 3, Removed: 0}, second.Counts())
	assert.Equal(t, first.Next.Words(), second.Next.Words())
}

func TestDiffRemovedKeepsLastKnownValues(t *testing.T) {
	first := Diff(nil, rank("the cat and the dog and the cat", 1))
	second := Diff(first.Next, rank("the cat and the dog and the", 1))

	removed, ok := lookup(second, "cat")
	require.True(t, ok)
	assert.Equal(t, Removed, removed.Action)
	assert.Equal(t, 1, removed.Rank)
	assert.Equal(t, 2, removed.Count())

	the, ok := lookup(second, "the")
	require.True(t, ok)
	assert.Equal(t, Kept, the.Action)
	assert.Equal(t, 0, the.Rank)

	and, ok := lookup(second, "and")
	require.True(t, ok)
	assert.Equal(t, Kept, and.Action)
	assert.Equal(t, 1, and.Rank)

	assert.Equal(t, []string{"cat"}, second.Removed())
	assert.False(t, second.Next.Has("cat"))
	assert.Equal(t, []string{"the", "and"}, second.Next.Words())
}

func TestDiffOrdering(t *testing.T) {
	first := Diff(nil, rank("aa aa bb bb cc cc", 1))
	second := Diff(first.Next, rank("dd dd dd bb bb", 1))

	var got []string
	for _, c := range second.Entries {
		got = append(got, fmt.Sprintf("%s:%s", c.Word, c.Action))
	}
	assert.Equal(t, []string{"dd:ADDED", "bb:KEPT", "aa:REMOVED", "cc:REMOVED"}, got)
}

func TestDiffKeptTakesNewValues(t *testing.T) {
	first := Diff(nil, rank("go go stop stop stop", 1))
	second := Diff(first.Next, rank("go go go go stop stop stop", 1))

	g, _ := lookup(second, "go")
	assert.Equal(t, Kept, g.Action)
	assert.Equal(t, 0, g.Rank)
	assert.Equal(t, 4, g.Count())
}

func TestTrackedWithPrefix(t *testing.T) {
	tracked := Diff(nil, rank("then then the the they they cat cat cat", 1)).Next

	assert.Equal(t, []string{"cat", "then", "the", "they"}, tracked.Words())
	assert.Equal(t, []string{"then", "the", "they"}, words(tracked.WithPrefix("th")))
	assert.Equal(t, []string{"then"}, words(tracked.WithPrefix("then")))
	assert.Empty(t, tracked.WithPrefix("x"))
	assert.Len(t, tracked.WithPrefix(""), 4)

	var empty *Tracked
	assert.Empty(t, empty.WithPrefix("th"))
	assert.Equal(t, 0, empty.Len())
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "ADDED", Added.String())
	assert.Equal(t, "KEPT", Kept.String())
	assert.Equal(t, "REMOVED", Removed.String())
	assert.Equal(t, "UNKNOWN", Action(9).String())
}
