package server

import (
	"io"
	"sync"

	"github.com/bastiangx/echoes/pkg/present"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// syncEncoder serializes writes from request handling and scheduled purges.
type syncEncoder struct {
	mu  sync.Mutex
	enc *msgpack.Encoder
}

func newSyncEncoder(w io.Writer) *syncEncoder {
	return &syncEncoder{enc: msgpack.NewEncoder(w)}
}

func (e *syncEncoder) send(v any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.enc.Encode(v); err != nil {
		log.Errorf("Failed to encode message: %v", err)
		return err
	}
	return nil
}

// streamSurface turns surface calls into events on the wire.
type streamSurface struct {
	out *syncEncoder
}

func (s *streamSurface) UpsertItem(item present.Item) {
	s.out.send(Event{
		Type:   EventUpsert,
		Word:   item.Word,
		Rank:   item.Rank,
		Count:  item.Count,
		Color:  item.Color,
		Top:    item.Top,
		ZIndex: item.ZIndex,
		Hidden: item.Hidden,
	})
}

func (s *streamSurface) MarkObsolete(word string) {
	s.out.send(Event{Type: EventObsolete, Word: word})
}

func (s *streamSurface) PurgeObsolete() {
	s.out.send(Event{Type: EventPurge})
}

func (s *streamSurface) SetOverlay(segments []present.Segment) {
	s.out.send(Event{Type: EventOverlay, Segments: segmentData(segments)})
}

func (s *streamSurface) SyncScroll(offset int) {
	s.out.send(Event{Type: EventScroll, Offset: offset})
}

func (s *streamSurface) SetListHeight(height float64) {
	s.out.send(Event{Type: EventHeight, ListHeight: height})
}

func segmentData(segments []present.Segment) []SegmentData {
	data := make([]SegmentData, len(segments))
	for i, seg := range segments {
		data[i] = SegmentData{
			Mark:   seg.Mark,
			Text:   seg.Text,
			Color:  seg.Color,
			Hidden: seg.Hidden,
		}
	}
	return data
}

func itemData(rows []present.Row) []ItemData {
	data := make([]ItemData, len(rows))
	for i, row := range rows {
		data[i] = ItemData{
			Word:     row.Word,
			Rank:     row.Rank,
			Count:    row.Count,
			Color:    row.Color,
			Top:      row.Top,
			ZIndex:   row.ZIndex,
			Hidden:   row.Hidden,
			Obsolete: row.Obsolete,
		}
	}
	return data
}
