// Package cli is a line oriented debugging front end: every line typed is appended to
// the document and the repeated words are printed after each pass.
package cli

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/bastiangx/echoes/internal/utils"
	"github.com/bastiangx/echoes/pkg/config"
	"github.com/bastiangx/echoes/pkg/engine"
	"github.com/charmbracelet/log"
)

const helpText = `Lines are appended to the document. Commands:
  :min N          set the minimum word length
  :hide WORD      hide a word's colour
  :show WORD      show a word's colour again
  :words [PREFIX] list tracked words
  :clear          empty the document
  :text           print the document
  :help           show this help
  :quit           exit`

var errQuit = errors.New("quit")

// InputHandler reads lines, feeds them to the controller and prints the result
// through a Terminal.
type InputHandler struct {
	ctrl   *engine.Controller
	buffer *engine.Buffer
	term   *Terminal
	in     io.Reader
}

// NewInputHandler builds the document, terminal surface and controller for a session.
// A nil sched purges on timers.
func NewInputHandler(cfg *config.Config, in io.Reader, out io.Writer, color bool, sched engine.Scheduler) *InputHandler {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	buffer := engine.NewBuffer("", cfg.Engine.MinWordLength)
	term := NewTerminal(out, cfg.CLI, color)
	opts := engine.OptionsFrom(cfg)
	opts.Scheduler = sched
	return &InputHandler{
		ctrl:   engine.New(buffer, term, opts),
		buffer: buffer,
		term:   term,
		in:     in,
	}
}

// Controller returns the controller driving the terminal.
func (h *InputHandler) Controller() *engine.Controller {
	return h.ctrl
}

// Start begins the input loop. It returns nil at end of input or on :quit.
func (h *InputHandler) Start() error {
	defer h.ctrl.Close()
	log.Debug("Echoes CLI", "tokenizer", h.ctrl.Tokenizer().Mode(), "min", h.buffer.MinWordLength())
	h.term.Printf("Type text and press Enter, :help for commands (Ctrl+C to exit)")

	reader := bufio.NewReader(h.in)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			if herr := h.handleInput(strings.TrimRight(line, "\r\n")); errors.Is(herr, errQuit) {
				return nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// handleInput appends a line of text or runs a command.
func (h *InputHandler) handleInput(line string) error {
	if strings.HasPrefix(line, ":") {
		return h.handleCommand(line[1:])
	}
	if strings.TrimSpace(line) == "" {
		return nil
	}
	h.buffer.Append(line)
	pass := h.ctrl.OnTextChanged()
	log.Debugf("Took %v for %d bytes", pass.Elapsed, len(h.buffer.Text()))
	h.term.Print()
	return nil
}

func (h *InputHandler) handleCommand(command string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil
	}
	arg := strings.Join(fields[1:], " ")

	switch fields[0] {
	case "min":
		n, err := strconv.Atoi(arg)
		if err != nil {
			log.Errorf("Invalid minimum length: '%s'", arg)
			return nil
		}
		h.ctrl.OnMinLengthChanged(n)
		h.term.Print()
	case "hide", "show":
		word := utils.NormalizeWord(arg)
		if !utils.IsWord(word) {
			log.Errorf("Not a word: '%s'", arg)
			return nil
		}
		h.ctrl.ToggleHidden(word, fields[0] == "hide")
		h.term.Print()
	case "words":
		tracked := h.ctrl.Tracked()
		entries := tracked.WithPrefix(utils.NormalizeWord(arg))
		h.term.Printf("%s", h.term.RenderWords(entries, tracked.Len(), h.ctrl.IsHidden))
	case "clear":
		h.buffer.Clear()
		h.ctrl.OnTextChanged()
		h.term.Print()
	case "text":
		h.term.Printf("%s", h.buffer.Text())
	case "help":
		h.term.Printf("%s", helpText)
	case "quit", "q":
		return errQuit
	default:
		log.Warnf("Unknown command: ':%s' (try :help)", fields[0])
	}
	return nil
}
