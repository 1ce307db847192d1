package utils

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NormalizeWord trims and lowercases a word typed by the user.
func NormalizeWord(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsWordChar reports whether r can be part of a word: letters, marks, digits and
// connector punctuation.
func IsWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsDigit(r) ||
		unicode.Is(unicode.Pc, r) || unicode.Is(unicode.Nl, r) || r == '\u200c' || r == '\u200d'
}

// IsWord reports whether s is a single non-empty word.
func IsWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !IsWordChar(r) {
			return false
		}
	}
	return true
}

// FormatWithCommas formats an integer with comma separators
func FormatWithCommas(n int) string {
	if n < 0 {
		return "-" + FormatWithCommas(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(char)
	}
	return b.String()
}

// Truncate shortens s to at most max runes, ending with an ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
