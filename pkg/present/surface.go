// Package present projects a classified word index onto a presentation surface:
// a frequency list with one row per tracked word, and a highlighted copy of the text.
package present

// Item is one row of the frequency list.
type Item struct {
	Word   string
	Rank   int
	Count  int
	Color  string
	Hex    string
	Top    float64
	ZIndex int
	Hidden bool
	// Added is set when the row is new in this pass.
	Added bool
}

// Segment is one run of the highlighted text. Marks cover a repeated word; Color and
// Hex are empty for plain runs and for hidden words.
type Segment struct {
	Mark   bool
	Text   string
	Word   string
	Color  string
	Hex    string
	Hidden bool
}

// Surface renders items and the overlay. Implementations decide what "obsolete" looks
// like; PurgeObsolete must be a no-op when nothing is obsolete.
type Surface interface {
	UpsertItem(item Item)
	MarkObsolete(word string)
	PurgeObsolete()
	SetOverlay(segments []Segment)
	SyncScroll(offset int)
	// SetListHeight sizes the frequency list for the rows of the current pass.
	SetListHeight(height float64)
}

// Layout positions list rows.
type Layout struct {
	RowHeight float64
	Offset    float64
}

// DefaultLayout matches a 3 unit row with a 0.6 unit top margin.
func DefaultLayout() Layout {
	return Layout{RowHeight: 3, Offset: 0.6}
}

// Top returns the vertical offset of the row at rank.
func (l Layout) Top(rank int) float64 {
	return l.Offset + float64(rank)*l.RowHeight
}

// Height returns the list height needed for n rows.
func (l Layout) Height(n int) float64 {
	return 2*l.Offset + float64(n)*l.RowHeight
}
