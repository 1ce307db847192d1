/*
Package server implements msgpack IPC for the repetition highlighter.

A client (usually an editor plugin) owns the text. It pushes the document or
appends to it over stdin, and the server streams the highlighting back over
stdout as a sequence of msgpack maps.

# IPC

Every request carries an ID and an action. Replies echo the ID:

	{"id": "r1", "a": "text", "text": "the cat and the dog and the cat"}
	{"id": "r1", "status": "ok", "c": 3, "t": 87}

While a request is handled the server also emits surface events. Events have no
ID; they carry an "ev" field instead:

	{"ev": "upsert", "w": "the", "r": 0, "c": 3, "col": "hsl(20, 100%, 50%)", "top": 0.6, "z": 3}
	{"ev": "height", "lh": 10.2}
	{"ev": "overlay", "seg": [{"m": true, "x": "the", "col": "hsl(20, 100%, 50%)"}, {"x": " "}]}

Words that stop repeating are announced with "obsolete" and later removed with a
single "purge" event, which arrives on its own once the purge delay has passed.

Supported actions:

	text      replace the document              {"text": "..."}
	append    append a line to the document     {"text": "..."}
	min_len   set the minimum word length       {"n": 4}
	toggle    hide or show a word's colour      {"w": "the", "h": true}
	scroll    mirror the editor scroll offset   {"o": 12}
	clear     empty the document
	words     list tracked words                {"p": "ca"}
	snapshot  dump the current surface state
	health    liveness check, with the number of passes run

Responses include the time spent on the request in microseconds. Writes are
serialized, so events and responses never interleave mid-message.
*/
package server

// Action names understood by the server.
const (
	ActionText     = "text"
	ActionAppend   = "append"
	ActionMinLen   = "min_len"
	ActionToggle   = "toggle"
	ActionScroll   = "scroll"
	ActionClear    = "clear"
	ActionWords    = "words"
	ActionSnapshot = "snapshot"
	ActionHealth   = "health"
)

// Event types streamed from the surface.
const (
	EventUpsert   = "upsert"
	EventObsolete = "obsolete"
	EventPurge    = "purge"
	EventOverlay  = "overlay"
	EventScroll   = "scroll"
	EventHeight   = "height"
)

// Request - single client message
type Request struct {
	ID     string `msgpack:"id"`
	Action string `msgpack:"a"`
	Text   string `msgpack:"text,omitempty"`
	MinLen *int   `msgpack:"n,omitempty"` // for "min_len"
	Word   string `msgpack:"w,omitempty"` // for "toggle"
	Hidden bool   `msgpack:"h,omitempty"` // for "toggle"
	Offset int    `msgpack:"o,omitempty"` // for "scroll"
	Prefix string `msgpack:"p,omitempty"` // for "words"
}

// Response - reply to every request except words and snapshot
type Response struct {
	ID        string `msgpack:"id"`
	Status    string `msgpack:"status"`
	Error     string `msgpack:"error,omitempty"`
	Count     int    `msgpack:"c"`
	Added     int    `msgpack:"add,omitempty"`
	Removed   int    `msgpack:"rm,omitempty"`
	Passes    int    `msgpack:"np,omitempty"` // for "health"
	TimeTaken int64  `msgpack:"t"`
}

// ReadyMessage is sent once before the first request is read
type ReadyMessage struct {
	Status    string `msgpack:"status"`
	Session   string `msgpack:"session"`
	Tokenizer string `msgpack:"tokenizer"`
	MinLen    int    `msgpack:"n"`
}

// WordEntry - one tracked word
type WordEntry struct {
	Word   string `msgpack:"w"`
	Rank   int    `msgpack:"r"`
	Count  int    `msgpack:"c"`
	Color  string `msgpack:"col"`
	Hidden bool   `msgpack:"h,omitempty"`
}

// WordsResponse - reply to "words"
type WordsResponse struct {
	ID        string      `msgpack:"id"`
	Status    string      `msgpack:"status"`
	Words     []WordEntry `msgpack:"s"`
	Count     int         `msgpack:"c"`
	TimeTaken int64       `msgpack:"t"`
}

// SegmentData - overlay run on the wire
type SegmentData struct {
	Mark   bool   `msgpack:"m,omitempty"`
	Text   string `msgpack:"x"`
	Color  string `msgpack:"col,omitempty"`
	Hidden bool   `msgpack:"h,omitempty"`
}

// ItemData - frequency list row on the wire
type ItemData struct {
	Word     string  `msgpack:"w"`
	Rank     int     `msgpack:"r"`
	Count    int     `msgpack:"c"`
	Color    string  `msgpack:"col"`
	Top      float64 `msgpack:"top"`
	ZIndex   int     `msgpack:"z"`
	Hidden   bool    `msgpack:"h,omitempty"`
	Obsolete bool    `msgpack:"obs,omitempty"`
}

// SnapshotResponse - reply to "snapshot"
type SnapshotResponse struct {
	ID         string        `msgpack:"id"`
	Status     string        `msgpack:"status"`
	Items      []ItemData    `msgpack:"items"`
	Overlay    []SegmentData `msgpack:"seg"`
	Hidden     []string      `msgpack:"hidden"`
	MinLen     int           `msgpack:"n"`
	Scroll     int           `msgpack:"o"`
	ListHeight float64       `msgpack:"lh"`
	TimeTaken  int64         `msgpack:"t"`
}

// Event - surface update pushed to the client
type Event struct {
	Type       string        `msgpack:"ev"`
	Word       string        `msgpack:"w,omitempty"`
	Rank       int           `msgpack:"r,omitempty"`
	Count      int           `msgpack:"c,omitempty"`
	Color      string        `msgpack:"col,omitempty"`
	Top        float64       `msgpack:"top,omitempty"`
	ZIndex     int           `msgpack:"z,omitempty"`
	Hidden     bool          `msgpack:"h,omitempty"`
	Segments   []SegmentData `msgpack:"seg,omitempty"`
	Offset     int           `msgpack:"o,omitempty"`
	ListHeight float64       `msgpack:"lh,omitempty"`
}
