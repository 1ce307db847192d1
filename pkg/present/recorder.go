package present

import (
	"fmt"
	"slices"
	"sync"
)

// Row is an item as currently shown by a Recorder.
type Row struct {
	Item
	Obsolete bool
}

// Recorder is an in-memory Surface. It keeps the current rows and overlay, and a log
// of every call it received. Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	rows    map[string]*Row
	overlay []Segment
	scroll  int
	height  float64
	calls   []string
	purges  int
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{rows: make(map[string]*Row)}
}

func (r *Recorder) UpsertItem(item Item) {
	r.mu.Lock()
	defer r.mu.Unlock()

	verb := "update"
	if _, exists := r.rows[item.Word]; !exists {
		verb = "add"
	}
	r.rows[item.Word] = &Row{Item: item}
	r.calls = append(r.calls, fmt.Sprintf("%s %s", verb, item.Word))
}

func (r *Recorder) MarkObsolete(word string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if row, ok := r.rows[word]; ok {
		row.Obsolete = true
	}
	r.calls = append(r.calls, "obsolete "+word)
}

func (r *Recorder) PurgeObsolete() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for word, row := range r.rows {
		if row.Obsolete {
			delete(r.rows, word)
		}
	}
	r.purges++
	r.calls = append(r.calls, "purge")
}

func (r *Recorder) SetOverlay(segments []Segment) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.overlay = segments
	r.calls = append(r.calls, "overlay")
}

func (r *Recorder) SyncScroll(offset int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.scroll = offset
	r.calls = append(r.calls, fmt.Sprintf("scroll %d", offset))
}

func (r *Recorder) SetListHeight(height float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.height = height
	r.calls = append(r.calls, fmt.Sprintf("height %.1f", height))
}

// Row returns the row shown for word.
func (r *Recorder) Row(word string) (Row, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[word]
	if !ok {
		return Row{}, false
	}
	return *row, true
}

// Rows returns every row ordered by rank, obsolete rows last.
func (r *Recorder) Rows() []Row {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]Row, 0, len(r.rows))
	for _, row := range r.rows {
		rows = append(rows, *row)
	}
	slices.SortFunc(rows, func(a, b Row) int {
		if a.Obsolete != b.Obsolete {
			if a.Obsolete {
				return 1
			}
			return -1
		}
		if a.Rank != b.Rank {
			return a.Rank - b.Rank
		}
		if a.Word < b.Word {
			return -1
		}
		if a.Word > b.Word {
			return 1
		}
		return 0
	})
	return rows
}

// Overlay returns the last overlay set.
func (r *Recorder) Overlay() []Segment {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlay
}

// Scroll returns the last scroll offset.
func (r *Recorder) Scroll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scroll
}

// ListHeight returns the last list height set.
func (r *Recorder) ListHeight() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.height
}

// Purges returns how many times PurgeObsolete ran.
func (r *Recorder) Purges() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.purges
}

// Calls returns the call log and clears it.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	calls := r.calls
	r.calls = nil
	return calls
}
