package engine

import (
	"slices"
	"strings"
	"sync"
)

// HiddenSet holds the words excluded from highlight colouring. Words stay counted and
// listed; only their colour is suppressed. Safe for concurrent use.
type HiddenSet struct {
	mu    sync.RWMutex
	words map[string]struct{}
}

// NewHiddenSet creates an empty set.
func NewHiddenSet() *HiddenSet {
	return &HiddenSet{words: make(map[string]struct{})}
}

// Toggle adds word when hidden is true and removes it otherwise. It reports whether
// the set changed.
func (h *HiddenSet) Toggle(word string, hidden bool) bool {
	word = strings.ToLower(word)
	h.mu.Lock()
	defer h.mu.Unlock()

	_, exists := h.words[word]
	switch {
	case hidden && !exists:
		h.words[word] = struct{}{}
		return true
	case !hidden && exists:
		delete(h.words, word)
		return true
	}
	return false
}

// Contains reports whether word is hidden. A nil set hides nothing.
func (h *HiddenSet) Contains(word string) bool {
	if h == nil {
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.words[word]
	return ok
}

// Words returns the hidden words sorted.
func (h *HiddenSet) Words() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	words := make([]string, 0, len(h.words))
	for w := range h.words {
		words = append(words, w)
	}
	slices.Sort(words)
	return words
}
