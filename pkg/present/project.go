package present

import (
	"slices"
	"strings"

	"github.com/bastiangx/echoes/pkg/index"
	"github.com/bastiangx/echoes/pkg/palette"
)

// HiddenWords reports which words are excluded from highlight colouring.
type HiddenWords interface {
	Contains(word string) bool
}

type noneHidden struct{}

func (noneHidden) Contains(string) bool { return false }

// Projector turns a delta into surface calls.
type Projector struct {
	layout Layout
}

// NewProjector creates a projector using layout for row positions.
func NewProjector(layout Layout) *Projector {
	return &Projector{layout: layout}
}

// Items builds the list rows for the tracked words of delta, in rank order.
// Colours are computed against the size of the new tracked set.
func (p *Projector) Items(delta *index.Delta, hidden HiddenWords) []Item {
	if hidden == nil {
		hidden = noneHidden{}
	}
	n := delta.Next.Len()
	items := make([]Item, 0, n)
	for _, c := range delta.Entries {
		if c.Action == index.Removed {
			continue
		}
		color := palette.For(c.Rank, n)
		items = append(items, Item{
			Word:   c.Word,
			Rank:   c.Rank,
			Count:  c.Count(),
			Color:  color.CSS(),
			Hex:    color.Hex(),
			Top:    p.layout.Top(c.Rank),
			ZIndex: c.Count(),
			Hidden: hidden.Contains(c.Word),
			Added:  c.Action == index.Added,
		})
	}
	return items
}

// Project renders delta onto surface: new and kept words are upserted, removed words
// are marked obsolete, the list is resized for the tracked words and the overlay is
// rebuilt from scratch. It returns what it sent.
func (p *Projector) Project(surface Surface, text string, delta *index.Delta, hidden HiddenWords) ([]Item, []Segment) {
	items := p.Items(delta, hidden)
	for _, item := range items {
		surface.UpsertItem(item)
	}
	for _, word := range delta.Removed() {
		surface.MarkObsolete(word)
	}
	surface.SetListHeight(p.layout.Height(delta.Next.Len()))

	segments := Overlay(text, delta.Next, hidden)
	surface.SetOverlay(segments)
	return items, segments
}

// Overlay partitions text by the span boundaries of every tracked word. Runs at odd
// partitions are marks, the others plain text. Empty plain runs are left out, so the
// segment texts always concatenate back to text.
func Overlay(text string, tracked *index.Tracked, hidden HiddenWords) []Segment {
	if hidden == nil {
		hidden = noneHidden{}
	}

	bounds := []int{0}
	for _, e := range tracked.Entries() {
		for _, span := range e.Spans {
			bounds = append(bounds, span.Start, span.End)
		}
	}
	slices.Sort(bounds)

	n := tracked.Len()
	segments := make([]Segment, 0, len(bounds))
	for i, start := range bounds {
		end := len(text)
		if i < len(bounds)-1 {
			end = bounds[i+1]
		}
		if start > len(text) {
			start = len(text)
		}
		if end > len(text) {
			end = len(text)
		}
		chunk := text[start:end]

		if i%2 == 0 || i == len(bounds)-1 {
			if chunk != "" {
				segments = append(segments, Segment{Text: chunk})
			}
			continue
		}

		word := strings.ToLower(chunk)
		seg := Segment{Mark: true, Text: chunk, Word: word}
		if hidden.Contains(word) {
			seg.Hidden = true
		} else if e, ok := tracked.Get(word); ok {
			color := palette.For(e.Rank, n)
			seg.Color = color.CSS()
			seg.Hex = color.Hex()
		}
		segments = append(segments, seg)
	}
	return segments
}

// Text concatenates the segment texts.
func Text(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		b.WriteString(seg.Text)
	}
	return b.String()
}
