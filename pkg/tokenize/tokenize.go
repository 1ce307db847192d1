// Package tokenize scans raw text into lowercased words and the spans where they occur.
package tokenize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

// Tokenizer modes accepted by New.
const (
	ModeAuto    = "auto"
	ModeUnicode = "unicode"
	ModeASCII   = "ascii"
)

// MinLength is the smallest word length a scan accepts.
// Lower values are clamped to it.
const MinLength = 1

var (
	// letters, marks, letter numbers, decimal digits, connector punctuation and ZWNJ/ZWJ
	unicodeWord = regexp.MustCompile(`[\p{L}\p{Nl}\p{M}\p{Nd}\p{Pc}\x{200C}\x{200D}]+`)
	asciiWord   = regexp.MustCompile(`\w+`)
)

// Span is a half-open [Start, End) byte range into the scanned text.
type Span struct {
	Start int
	End   int
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Tokenizer scans text into word occurrences.
type Tokenizer interface {
	// Scan returns every word of at least minLen runes, lowercased, in first-seen order.
	Scan(text string, minLen int) *Occurrences

	// Mode reports which word pattern the tokenizer uses.
	Mode() string
}

// Occurrences maps words to their spans, remembering the order words were first seen.
type Occurrences struct {
	order []string
	spans map[string][]Span
}

// NewOccurrences creates an empty mapping.
func NewOccurrences() *Occurrences {
	return &Occurrences{
		spans: make(map[string][]Span),
	}
}

// Add records one more occurrence of word.
func (o *Occurrences) Add(word string, span Span) {
	if _, exists := o.spans[word]; !exists {
		o.order = append(o.order, word)
	}
	o.spans[word] = append(o.spans[word], span)
}

// Words returns the words in first-seen order.
func (o *Occurrences) Words() []string {
	return o.order
}

// Spans returns the spans of word in text order.
func (o *Occurrences) Spans(word string) []Span {
	return o.spans[word]
}

// Len returns the number of distinct words.
func (o *Occurrences) Len() int {
	return len(o.order)
}

type regexpTokenizer struct {
	mode    string
	pattern *regexp.Regexp
}

// Unicode returns a tokenizer that treats letters, marks, digits and connector
// punctuation of any script as word characters.
func Unicode() Tokenizer {
	return &regexpTokenizer{mode: ModeUnicode, pattern: unicodeWord}
}

// ASCII returns a tokenizer limited to [0-9A-Za-z_]. Non-Latin scripts split into
// fragments or disappear entirely in this mode.
func ASCII() Tokenizer {
	return &regexpTokenizer{mode: ModeASCII, pattern: asciiWord}
}

// New picks a tokenizer for mode. Unknown modes fall back to Unicode.
func New(mode string) Tokenizer {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeASCII:
		return ASCII()
	case ModeUnicode, ModeAuto, "":
		return Unicode()
	default:
		log.Warnf("Unknown tokenizer mode %q, using %s", mode, ModeUnicode)
		return Unicode()
	}
}

// ClampLength returns n, or MinLength when n is below it.
func ClampLength(n int) int {
	if n < MinLength {
		return MinLength
	}
	return n
}

func (t *regexpTokenizer) Mode() string {
	return t.mode
}

// Scan matches maximal runs of word characters. The pattern never matches the empty
// string, so every match advances the scan.
func (t *regexpTokenizer) Scan(text string, minLen int) *Occurrences {
	minLen = ClampLength(minLen)
	occ := NewOccurrences()
	if text == "" {
		return occ
	}

	for _, loc := range t.pattern.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		if utf8.RuneCountInString(raw) < minLen {
			continue
		}
		occ.Add(strings.ToLower(raw), Span{Start: loc[0], End: loc[1]})
	}
	return occ
}
