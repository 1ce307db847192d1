package index

import (
	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Tracked is the set of repeated words retained by a pass.
// It is never modified after construction; each pass builds a new one.
type Tracked struct {
	byWord  map[string]Entry
	ordered []Entry
	trie    *patricia.Trie
}

// NewTracked builds a tracked set from entries ordered by rank.
func NewTracked(entries []Entry) *Tracked {
	t := &Tracked{
		byWord:  make(map[string]Entry, len(entries)),
		ordered: make([]Entry, 0, len(entries)),
		trie:    patricia.NewTrie(),
	}
	for i, e := range entries {
		t.byWord[e.Word] = e
		t.ordered = append(t.ordered, e)
		t.trie.Insert(patricia.Prefix(e.Word), i)
	}
	return t
}

// Len returns the number of tracked words. A nil set is empty.
func (t *Tracked) Len() int {
	if t == nil {
		return 0
	}
	return len(t.ordered)
}

// Get looks up a word.
func (t *Tracked) Get(word string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	e, ok := t.byWord[word]
	return e, ok
}

// Has reports whether word is tracked.
func (t *Tracked) Has(word string) bool {
	_, ok := t.Get(word)
	return ok
}

// Entries returns the tracked entries in rank order.
func (t *Tracked) Entries() []Entry {
	if t == nil {
		return nil
	}
	return t.ordered
}

// Words returns the tracked words in rank order.
func (t *Tracked) Words() []string {
	words := make([]string, 0, t.Len())
	for _, e := range t.Entries() {
		words = append(words, e.Word)
	}
	return words
}

// WithPrefix returns the tracked entries starting with prefix, in rank order.
// An empty prefix returns every entry.
func (t *Tracked) WithPrefix(prefix string) []Entry {
	if t.Len() == 0 {
		return nil
	}
	if prefix == "" {
		return t.Entries()
	}

	matched := make([]bool, t.Len())
	err := t.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		pos, ok := item.(int)
		if !ok {
			log.Errorf("Unknown item type: %T for word %s", item, p)
			return nil
		}
		matched[pos] = true
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting tracked subtree: %v", err)
		return nil
	}

	var entries []Entry
	for pos, ok := range matched {
		if ok {
			entries = append(entries, t.ordered[pos])
		}
	}
	return entries
}
