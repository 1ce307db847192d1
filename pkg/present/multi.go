package present

// Multi forwards every call to each surface in order.
func Multi(surfaces ...Surface) Surface {
	all := make(multi, 0, len(surfaces))
	for _, s := range surfaces {
		if s != nil {
			all = append(all, s)
		}
	}
	return all
}

type multi []Surface

func (m multi) UpsertItem(item Item) {
	for _, s := range m {
		s.UpsertItem(item)
	}
}

func (m multi) MarkObsolete(word string) {
	for _, s := range m {
		s.MarkObsolete(word)
	}
}

func (m multi) PurgeObsolete() {
	for _, s := range m {
		s.PurgeObsolete()
	}
}

func (m multi) SetOverlay(segments []Segment) {
	for _, s := range m {
		s.SetOverlay(segments)
	}
}

func (m multi) SetListHeight(height float64) {
	for _, s := range m {
		s.SetListHeight(height)
	}
}

func (m multi) SyncScroll(offset int) {
	for _, s := range m {
		s.SyncScroll(offset)
	}
}
