package engine

import (
	"strings"
	"sync"

	"github.com/bastiangx/echoes/pkg/tokenize"
)

// Source provides the text to analyse and the minimum word length.
type Source interface {
	Text() string
	MinWordLength() int
}

// DefaultMinWordLength is used when nothing else is configured.
const DefaultMinWordLength = 3

// Buffer is an in-memory Source. Safe for concurrent use.
type Buffer struct {
	mu     sync.RWMutex
	text   string
	minLen int
}

// NewBuffer creates a buffer holding text.
func NewBuffer(text string, minLen int) *Buffer {
	return &Buffer{text: text, minLen: tokenize.ClampLength(minLen)}
}

func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text
}

func (b *Buffer) MinWordLength() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.minLen
}

// SetText replaces the whole text.
func (b *Buffer) SetText(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text = text
}

// Append adds text at the end, separated by a newline when the buffer is not empty.
func (b *Buffer) Append(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.text != "" && !strings.HasSuffix(b.text, "\n") {
		b.text += "\n"
	}
	b.text += text
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.SetText("")
}

// SetMinWordLength changes the minimum word length, clamped to a usable value.
func (b *Buffer) SetMinWordLength(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.minLen = tokenize.ClampLength(n)
}
