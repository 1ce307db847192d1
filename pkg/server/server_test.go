package server

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/bastiangx/echoes/pkg/config"
	"github.com/bastiangx/echoes/pkg/engine"
	"github.com/bastiangx/echoes/pkg/palette"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const scenario = "the cat and the dog and the cat"

// wireMessage decodes any message the server writes.
type wireMessage struct {
	ID          string        `msgpack:"id"`
	Status      string        `msgpack:"status"`
	Error       string        `msgpack:"error"`
	Session     string        `msgpack:"session"`
	Event       string        `msgpack:"ev"`
	Word        string        `msgpack:"w"`
	Rank        int           `msgpack:"r"`
	Count       int           `msgpack:"c"`
	Color       string        `msgpack:"col"`
	Hidden      bool          `msgpack:"h"`
	Offset      int           `msgpack:"o"`
	MinLen      int           `msgpack:"n"`
	Added       int           `msgpack:"add"`
	Removed     int           `msgpack:"rm"`
	Passes      int           `msgpack:"np"`
	ListHeight  float64       `msgpack:"lh"`
	Segments    []SegmentData `msgpack:"seg"`
	Words       []WordEntry   `msgpack:"s"`
	Items       []ItemData    `msgpack:"items"`
	HiddenWords []string      `msgpack:"hidden"`
}

type queuedScheduler struct {
	tasks []func()
}

type noopTask struct{}

func (noopTask) Cancel() {}

func (s *queuedScheduler) After(_ time.Duration, fn func()) engine.Task {
	s.tasks = append(s.tasks, fn)
	return noopTask{}
}

func (s *queuedScheduler) Fire() {
	tasks := s.tasks
	s.tasks = nil
	for _, fn := range tasks {
		fn()
	}
}

func encode(t *testing.T, requests ...Request) *bytes.Buffer {
	t.Helper()
	in := &bytes.Buffer{}
	enc := msgpack.NewEncoder(in)
	for _, r := range requests {
		require.NoError(t, enc.Encode(r))
	}
	return in
}

func decodeAll(t *testing.T, out *bytes.Buffer) []wireMessage {
	t.Helper()
	var msgs []wireMessage
	dec := msgpack.NewDecoder(out)
	for {
		var m wireMessage
		err := dec.Decode(&m)
		if errors.Is(err, io.EOF) {
			return msgs
		}
		require.NoError(t, err)
		msgs = append(msgs, m)
	}
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Engine.MinWordLength = 1
	return cfg
}

func response(t *testing.T, msgs []wireMessage, id string) wireMessage {
	t.Helper()
	for _, m := range msgs {
		if m.ID == id {
			return m
		}
	}
	require.Failf(t, "missing response", "no response with id %q", id)
	return wireMessage{}
}

// eventsBefore returns the events written between the previous response and the one with id.
func eventsBefore(msgs []wireMessage, id string) []wireMessage {
	var events []wireMessage
	for _, m := range msgs {
		if m.ID == id {
			return events
		}
		if m.Event == "" {
			events = nil
			continue
		}
		events = append(events, m)
	}
	return nil
}

func overlayText(segments []SegmentData) string {
	var sb strings.Builder
	for _, seg := range segments {
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

func TestServerSession(t *testing.T) {
	out := &bytes.Buffer{}
	srv := NewServer(testConfig(), WithIO(encode(t), out))
	require.NoError(t, srv.Start())

	msgs := decodeAll(t, out)
	require.Len(t, msgs, 1)
	assert.Equal(t, "ready", msgs[0].Status)
	assert.Equal(t, srv.Session(), msgs[0].Session)
	assert.Len(t, srv.Session(), 36)
	assert.Equal(t, 1, msgs[0].MinLen)
}

func TestServerScenario(t *testing.T) {
	sched := &queuedScheduler{}
	out := &bytes.Buffer{}
	in := encode(t,
		Request{ID: "r1", Action: ActionText, Text: scenario},
		Request{ID: "r2", Action: ActionWords},
		Request{ID: "r3", Action: ActionToggle, Word: "THE", Hidden: true},
		Request{ID: "r4", Action: ActionSnapshot},
		Request{ID: "r5", Action: ActionText, Text: "the cat and the dog and the"},
	)
	srv := NewServer(testConfig(), WithIO(in, out), WithScheduler(sched), WithSession("test-session"))
	require.NoError(t, srv.Start())
	msgs := decodeAll(t, out)

	assert.Equal(t, "test-session", msgs[0].Session)

	r1 := response(t, msgs, "r1")
	assert.Equal(t, statusOK, r1.Status)
	assert.Equal(t, 3, r1.Count)
	assert.Equal(t, 3, r1.Added)

	events := eventsBefore(msgs, "r1")
	require.Len(t, events, 5)
	for i, word := range []string{"the", "cat", "and"} {
		assert.Equal(t, EventUpsert, events[i].Event)
		assert.Equal(t, word, events[i].Word)
		assert.Equal(t, i, events[i].Rank)
		assert.Equal(t, palette.For(i, 3).CSS(), events[i].Color)
	}
	assert.Equal(t, EventHeight, events[3].Event)
	assert.InDelta(t, 10.2, events[3].ListHeight, 1e-9)
	assert.Equal(t, EventOverlay, events[4].Event)
	assert.Equal(t, scenario, overlayText(events[4].Segments))

	r2 := response(t, msgs, "r2")
	require.Len(t, r2.Words, 3)
	assert.Equal(t, "the", r2.Words[0].Word)
	assert.Equal(t, 3, r2.Words[0].Count)
	assert.Equal(t, palette.For(2, 3).CSS(), r2.Words[2].Color)

	for _, e := range eventsBefore(msgs, "r3") {
		if e.Event != EventOverlay {
			continue
		}
		for _, seg := range e.Segments {
			if seg.Mark && seg.Text == "the" {
				assert.True(t, seg.Hidden)
				assert.Empty(t, seg.Color)
			}
		}
	}

	r4 := response(t, msgs, "r4")
	require.Len(t, r4.Items, 3)
	assert.True(t, r4.Items[0].Hidden)
	assert.Equal(t, []string{"the"}, r4.HiddenWords)
	assert.Equal(t, scenario, overlayText(r4.Segments))
	assert.InDelta(t, 10.2, r4.ListHeight, 1e-9)

	r5 := response(t, msgs, "r5")
	assert.Equal(t, 2, r5.Count)
	assert.Equal(t, 1, r5.Removed)
	var obsolete []string
	for _, e := range eventsBefore(msgs, "r5") {
		if e.Event == EventObsolete {
			obsolete = append(obsolete, e.Word)
		}
	}
	assert.Equal(t, []string{"cat"}, obsolete)

	// the purge arrives later, on its own
	require.Len(t, sched.tasks, 1)
	sched.Fire()
	purge := decodeAll(t, out)
	require.Len(t, purge, 1)
	assert.Equal(t, EventPurge, purge[0].Event)
}

func TestServerErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxTextBytes = 16

	out := &bytes.Buffer{}
	in := encode(t,
		Request{ID: "big", Action: ActionText, Text: strings.Repeat("word ", 10)},
		Request{ID: "min", Action: ActionMinLen},
		Request{ID: "hide", Action: ActionToggle, Word: "two words"},
		Request{ID: "what", Action: "complete"},
		Request{ID: "small", Action: ActionText, Text: "aa aa bb"},
		Request{ID: "grow", Action: ActionAppend, Text: "cc cc cc cc"},
		Request{ID: "ping", Action: ActionHealth},
	)
	srv := NewServer(cfg, WithIO(in, out), WithScheduler(&queuedScheduler{}))
	require.NoError(t, srv.Start())
	msgs := decodeAll(t, out)

	for _, id := range []string{"big", "min", "hide", "what", "grow"} {
		m := response(t, msgs, id)
		assert.Equal(t, statusError, m.Status, id)
		assert.NotEmpty(t, m.Error, id)
	}
	assert.Contains(t, response(t, msgs, "what").Error, "Unknown action: complete")

	ping := response(t, msgs, "ping")
	assert.Equal(t, statusOK, ping.Status)
	assert.Equal(t, 1, ping.Count)
	assert.Equal(t, 1, ping.Passes, "rejected requests run no pass")
}

func TestServerMinLenAndClear(t *testing.T) {
	four := 4
	out := &bytes.Buffer{}
	in := encode(t,
		Request{ID: "t", Action: ActionText, Text: scenario + " goes goes"},
		Request{ID: "n", Action: ActionMinLen, MinLen: &four},
		Request{ID: "p", Action: ActionWords, Prefix: "G"},
		Request{ID: "o", Action: ActionScroll, Offset: 7},
		Request{ID: "c", Action: ActionClear},
		Request{ID: "s", Action: ActionSnapshot},
	)
	srv := NewServer(testConfig(), WithIO(in, out), WithScheduler(&queuedScheduler{}))
	require.NoError(t, srv.Start())
	msgs := decodeAll(t, out)

	assert.Equal(t, 4, response(t, msgs, "t").Count)

	n := response(t, msgs, "n")
	assert.Equal(t, 1, n.Count)
	assert.Equal(t, 3, n.Removed)

	p := response(t, msgs, "p")
	require.Len(t, p.Words, 1)
	assert.Equal(t, "goes", p.Words[0].Word)

	scroll := eventsBefore(msgs, "o")
	require.Len(t, scroll, 1)
	assert.Equal(t, EventScroll, scroll[0].Event)
	assert.Equal(t, 7, scroll[0].Offset)

	assert.Equal(t, 0, response(t, msgs, "c").Count)

	s := response(t, msgs, "s")
	assert.Equal(t, 4, s.MinLen)
	assert.Equal(t, 7, s.Offset)
	assert.Empty(t, overlayText(s.Segments))
	assert.InDelta(t, 1.2, s.ListHeight, 1e-9)
}

func TestServerDecodeFailure(t *testing.T) {
	out := &bytes.Buffer{}
	srv := NewServer(testConfig(), WithIO(bytes.NewReader([]byte{0xc1}), out))
	assert.Error(t, srv.Start())

	msgs := decodeAll(t, out)
	require.Len(t, msgs, 2)
	assert.Equal(t, statusError, msgs[1].Status)
}
