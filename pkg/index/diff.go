package index

// Action classifies a word relative to the previous pass.
type Action int

const (
	// Added words were not tracked by the previous pass.
	Added Action = iota
	// Kept words were tracked before and still are.
	Kept
	// Removed words were tracked before and no longer repeat.
	Removed
)

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case Added:
		return "ADDED"
	case Kept:
		return "KEPT"
	case Removed:
		return "REMOVED"
	default:
		return "UNKNOWN"
	}
}

// Classified is an entry tagged with its action for the current pass.
// Removed entries carry the spans and rank they had in the previous pass.
type Classified struct {
	Entry
	Action Action
}

// Delta is the outcome of merging a ranked sequence into the previous tracked set.
type Delta struct {
	// Entries holds the ranked words first, in rank order, then the removed words in
	// their previous rank order.
	Entries []Classified

	// Next is the tracked set for the following pass: added and kept words only.
	Next *Tracked
}

// Diff merges ranked into prev. prev may be nil for the first pass.
func Diff(prev *Tracked, ranked []Entry) *Delta {
	delta := &Delta{
		Entries: make([]Classified, 0, len(ranked)+prev.Len()),
	}

	current := make(map[string]struct{}, len(ranked))
	for _, e := range ranked {
		action := Added
		if prev.Has(e.Word) {
			action = Kept
		}
		current[e.Word] = struct{}{}
		delta.Entries = append(delta.Entries, Classified{Entry: e, Action: action})
	}

	for _, e := range prev.Entries() {
		if _, still := current[e.Word]; still {
			continue
		}
		delta.Entries = append(delta.Entries, Classified{Entry: e, Action: Removed})
	}

	delta.Next = NewTracked(ranked)
	return delta
}

// Removed returns the words dropped by this pass.
func (d *Delta) Removed() []string {
	var words []string
	for _, c := range d.Entries {
		if c.Action == Removed {
			words = append(words, c.Word)
		}
	}
	return words
}

// Counts returns how many entries carry each action.
func (d *Delta) Counts() map[Action]int {
	counts := map[Action]int{Added: 0, Kept: 0, Removed: 0}
	for _, c := range d.Entries {
		counts[c.Action]++
	}
	return counts
}
