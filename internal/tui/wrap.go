package tui

import (
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// rowSpan is one visual row of the editor as a byte range of the text, newline
// excluded.
type rowSpan struct {
	start, end int
}

// editorRows splits text into the rows the editor draws at width, so the overlay can
// break its lines at the same places.
func editorRows(text string, width int) []rowSpan {
	var rows []rowSpan
	base := 0
	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		pos, r := base, 0
		for _, n := range rowLengths(runes, width) {
			row := runes[r : r+n]
			end := pos + len(string(row))
			// the editor hides a trailing space that would overflow the row
			if uniseg.StringWidth(string(row)) > width && n > 0 && row[n-1] == ' ' {
				rows = append(rows, rowSpan{pos, end - 1})
			} else {
				rows = append(rows, rowSpan{pos, end})
			}
			pos, r = end, r+n
		}
		base += len(line) + 1
	}
	return rows
}

// rowCount returns how many editor rows line takes at width.
func rowCount(line string, width int) int {
	return len(rowLengths([]rune(line), width))
}

// rowLengths soft wraps line the way bubbles/textarea does and returns the rune count
// of each row. Words move to the next row whole, whitespace stays on the row it
// follows and a word wider than the row is broken.
func rowLengths(line []rune, width int) []int {
	width = max(width, 1)
	var (
		rows   = []int{0}
		widths = []int{0}
		word   []rune
		spaces int
	)
	// push moves the pending word and spaces onto row i
	push := func(i int) {
		rows[i] += len(word) + spaces
		widths[i] += uniseg.StringWidth(string(word)) + spaces
		word, spaces = nil, 0
	}

	for _, r := range line {
		if unicode.IsSpace(r) {
			spaces++
		} else {
			word = append(word, r)
		}

		last := len(rows) - 1
		if spaces > 0 {
			if widths[last]+uniseg.StringWidth(string(word))+spaces > width {
				rows, widths = append(rows, 0), append(widths, 0)
				last++
			}
			push(last)
			continue
		}
		if uniseg.StringWidth(string(word))+runewidth.RuneWidth(word[len(word)-1]) > width {
			if rows[last] > 0 {
				rows, widths = append(rows, 0), append(widths, 0)
				last++
			}
			rows[last] += len(word)
			widths[last] += uniseg.StringWidth(string(word))
			word = nil
		}
	}

	// the editor pads the final row with one extra space, which is not part of the text
	last := len(rows) - 1
	if widths[last]+uniseg.StringWidth(string(word))+spaces >= width {
		rows = append(rows, 0)
		last++
	}
	rows[last] += len(word) + spaces
	return rows
}
