package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowLengths(t *testing.T) {
	tests := []struct {
		line  string
		width int
		want  []int
	}{
		{"", 10, []int{0}},
		{"alpha", 10, []int{5}},
		{"alpha beta gamma", 10, []int{6, 5, 5}},
		{"abcdefghijkl", 5, []int{5, 5, 2}},
		{"0123456789", 10, []int{10, 0}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rowLengths([]rune(tt.line), tt.width), "%q at %d", tt.line, tt.width)
	}
}

func TestEditorRows(t *testing.T) {
	text := "ab cd\nef"
	rows := editorRows(text, 3)
	assert.Equal(t, []rowSpan{{0, 3}, {3, 5}, {6, 8}}, rows)

	var got []string
	for _, r := range rows {
		got = append(got, text[r.start:r.end])
	}
	assert.Equal(t, []string{"ab ", "cd", "ef"}, got)
	assert.Equal(t, 2, rowCount("ab cd", 3))
}
