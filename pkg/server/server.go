package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bastiangx/echoes/internal/utils"
	"github.com/bastiangx/echoes/pkg/config"
	"github.com/bastiangx/echoes/pkg/engine"
	"github.com/bastiangx/echoes/pkg/index"
	"github.com/bastiangx/echoes/pkg/palette"
	"github.com/bastiangx/echoes/pkg/present"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

// Option changes how a Server is built.
type Option func(*options)

type options struct {
	in        io.Reader
	out       io.Writer
	scheduler engine.Scheduler
	session   string
}

// WithIO replaces stdin/stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(o *options) {
		o.in = in
		o.out = out
	}
}

// WithScheduler replaces the timer based purge scheduler.
func WithScheduler(s engine.Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

// WithSession fixes the session id announced in the ready message.
func WithSession(id string) Option {
	return func(o *options) { o.session = id }
}

// Server handles the IPC for one document
type Server struct {
	config   *config.Config
	buffer   *engine.Buffer
	ctrl     *engine.Controller
	recorder *present.Recorder
	decoder  *msgpack.Decoder
	out      *syncEncoder
	session  string
}

// NewServer creates a server using stdin/stdout for IPC
func NewServer(cfg *config.Config, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	o := options{in: os.Stdin, out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.session == "" {
		o.session = uuid.NewString()
	}

	out := newSyncEncoder(o.out)
	recorder := present.NewRecorder()
	buffer := engine.NewBuffer("", cfg.Engine.MinWordLength)
	engineOpts := engine.OptionsFrom(cfg)
	engineOpts.Scheduler = o.scheduler
	ctrl := engine.New(buffer, present.Multi(recorder, &streamSurface{out: out}), engineOpts)

	return &Server{
		config:   cfg,
		buffer:   buffer,
		ctrl:     ctrl,
		recorder: recorder,
		decoder:  msgpack.NewDecoder(o.in),
		out:      out,
		session:  o.session,
	}
}

// Session returns the id announced in the ready message.
func (s *Server) Session() string {
	return s.session
}

// Start announces readiness, then handles requests until the input ends.
func (s *Server) Start() error {
	log.Debug("Starting Server.", "session", s.session)
	defer s.ctrl.Close()

	if err := s.out.send(ReadyMessage{
		Status:    "ready",
		Session:   s.session,
		Tokenizer: s.ctrl.Tokenizer().Mode(),
		MinLen:    s.buffer.MinWordLength(),
	}); err != nil {
		return fmt.Errorf("failed to announce readiness: %w", err)
	}

	for {
		var request Request
		if err := s.decoder.Decode(&request); err != nil {
			if errors.Is(err, io.EOF) {
				log.Debug("Client closed input")
				return nil
			}
			log.Errorf("Failed to decode request: %v", err)
			s.sendError("", "Invalid msgpack request")
			return fmt.Errorf("failed to decode request: %w", err)
		}
		s.handleRequest(request)
	}
}

// handleRequest dispatches one request by action
func (s *Server) handleRequest(request Request) {
	start := time.Now()

	switch request.Action {
	case ActionText:
		if len(request.Text) > s.config.Server.MaxTextBytes {
			s.sendError(request.ID, fmt.Sprintf("Text exceeds maximum size of %d bytes", s.config.Server.MaxTextBytes))
			return
		}
		s.buffer.SetText(request.Text)
		s.respondPass(request.ID, s.ctrl.OnTextChanged(), start)

	case ActionAppend:
		if len(s.buffer.Text())+1+len(request.Text) > s.config.Server.MaxTextBytes {
			s.sendError(request.ID, fmt.Sprintf("Text would exceed maximum size of %d bytes", s.config.Server.MaxTextBytes))
			return
		}
		s.buffer.Append(request.Text)
		s.respondPass(request.ID, s.ctrl.OnTextChanged(), start)

	case ActionMinLen:
		if request.MinLen == nil {
			s.sendError(request.ID, "Missing 'n' parameter")
			return
		}
		s.respondPass(request.ID, s.ctrl.OnMinLengthChanged(*request.MinLen), start)

	case ActionToggle:
		word := utils.NormalizeWord(request.Word)
		if !utils.IsWord(word) {
			s.sendError(request.ID, "Missing or invalid 'w' parameter")
			return
		}
		s.respondPass(request.ID, s.ctrl.ToggleHidden(word, request.Hidden), start)

	case ActionScroll:
		s.ctrl.SyncScroll(request.Offset)
		s.respond(request.ID, start)

	case ActionClear:
		s.buffer.Clear()
		s.respondPass(request.ID, s.ctrl.OnTextChanged(), start)

	case ActionWords:
		s.handleWords(request, start)

	case ActionSnapshot:
		s.handleSnapshot(request, start)

	case ActionHealth:
		s.out.send(Response{
			ID:        request.ID,
			Status:    statusOK,
			Count:     s.ctrl.Tracked().Len(),
			Passes:    s.ctrl.Passes(),
			TimeTaken: time.Since(start).Microseconds(),
		})

	default:
		s.sendError(request.ID, fmt.Sprintf("Unknown action: %s", request.Action))
	}
}

func (s *Server) respond(id string, start time.Time) {
	s.out.send(Response{
		ID:        id,
		Status:    statusOK,
		Count:     s.ctrl.Tracked().Len(),
		TimeTaken: time.Since(start).Microseconds(),
	})
}

func (s *Server) respondPass(id string, pass *engine.Pass, start time.Time) {
	counts := pass.Delta.Counts()
	s.out.send(Response{
		ID:        id,
		Status:    statusOK,
		Count:     pass.Delta.Next.Len(),
		Added:     counts[index.Added],
		Removed:   counts[index.Removed],
		TimeTaken: time.Since(start).Microseconds(),
	})
}

// sendError sends an error response
func (s *Server) sendError(id, message string) {
	log.Debugf("Request %q failed: %s", id, message)
	s.out.send(Response{
		ID:     id,
		Status: statusError,
		Error:  message,
		Count:  s.ctrl.Tracked().Len(),
	})
}

// handleWords lists tracked words in rank order, optionally filtered by prefix
func (s *Server) handleWords(request Request, start time.Time) {
	tracked := s.ctrl.Tracked()
	entries := tracked.WithPrefix(utils.NormalizeWord(request.Prefix))

	words := make([]WordEntry, 0, len(entries))
	for _, e := range entries {
		words = append(words, WordEntry{
			Word:   e.Word,
			Rank:   e.Rank,
			Count:  e.Count(),
			Color:  palette.For(e.Rank, tracked.Len()).CSS(),
			Hidden: s.ctrl.IsHidden(e.Word),
		})
	}

	s.out.send(WordsResponse{
		ID:        request.ID,
		Status:    statusOK,
		Words:     words,
		Count:     len(words),
		TimeTaken: time.Since(start).Microseconds(),
	})
}

// handleSnapshot dumps what the surface currently shows
func (s *Server) handleSnapshot(request Request, start time.Time) {
	hidden := s.ctrl.HiddenWords()
	if hidden == nil {
		hidden = []string{}
	}
	s.out.send(SnapshotResponse{
		ID:         request.ID,
		Status:     statusOK,
		Items:      itemData(s.recorder.Rows()),
		Overlay:    segmentData(s.recorder.Overlay()),
		Hidden:     hidden,
		MinLen:     s.buffer.MinWordLength(),
		Scroll:     s.recorder.Scroll(),
		ListHeight: s.recorder.ListHeight(),
		TimeTaken:  time.Since(start).Microseconds(),
	})
}
