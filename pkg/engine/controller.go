/*
Package engine runs the repetition pipeline: it scans the text of a Source, ranks the
repeated words, diffs them against the previous pass and projects the result onto a
presentation Surface.

A Controller owns the two pieces of state that survive between passes: the tracked set
of the previous pass and the set of hidden words. Hosts call OnTextChanged,
OnMinLengthChanged or ToggleHidden and each call runs one full pass:

	buf := engine.NewBuffer(text, 3)
	ctrl := engine.New(buf, surface, engine.Options{})
	defer ctrl.Close()

	buf.SetText(edited)
	pass := ctrl.OnTextChanged()

Passes never overlap. Words that stop repeating are marked obsolete on the surface and
purged after Options.PurgeDelay, on the Scheduler's goroutine.
*/
package engine

import (
	"strings"
	"sync"
	"time"

	"github.com/bastiangx/echoes/pkg/config"
	"github.com/bastiangx/echoes/pkg/index"
	"github.com/bastiangx/echoes/pkg/present"
	"github.com/bastiangx/echoes/pkg/tokenize"
	"github.com/charmbracelet/log"
)

// Options configures a Controller. Zero values pick defaults.
type Options struct {
	Tokenizer  tokenize.Tokenizer
	Scheduler  Scheduler
	PurgeDelay time.Duration
	Layout     present.Layout
}

// OptionsFrom builds Options from the loaded config. The scheduler is left to the host.
func OptionsFrom(cfg *config.Config) Options {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return Options{
		Tokenizer:  tokenize.New(cfg.Engine.Tokenizer),
		PurgeDelay: cfg.PurgeDelay(),
		Layout:     present.Layout{RowHeight: cfg.Layout.RowHeight, Offset: cfg.Layout.RowOffset},
	}
}

// Pass summarises one run of the pipeline.
type Pass struct {
	Delta     *index.Delta
	Items     []present.Item
	Overlay   []present.Segment
	MinLength int
	Elapsed   time.Duration
}

// Controller drives passes and owns the tracked and hidden sets.
type Controller struct {
	mu         sync.Mutex
	source     Source
	surface    present.Surface
	tokenizer  tokenize.Tokenizer
	scheduler  Scheduler
	ownedTimer *TimerScheduler
	projector  *present.Projector
	purgeDelay time.Duration
	tracked    *index.Tracked
	hidden     *HiddenSet
	passes     int
}

// New creates a controller reading from source and rendering onto surface.
// No pass runs until one of the On* methods is called.
func New(source Source, surface present.Surface, opts Options) *Controller {
	c := &Controller{
		source:     source,
		surface:    surface,
		tokenizer:  opts.Tokenizer,
		scheduler:  opts.Scheduler,
		purgeDelay: opts.PurgeDelay,
		hidden:     NewHiddenSet(),
	}
	if c.surface == nil {
		c.surface = discard{}
	}
	if c.tokenizer == nil {
		c.tokenizer = tokenize.Unicode()
	}
	if c.scheduler == nil {
		c.ownedTimer = NewTimerScheduler()
		c.scheduler = c.ownedTimer
	}
	if c.purgeDelay <= 0 {
		c.purgeDelay = DefaultPurgeDelay
	}
	layout := opts.Layout
	if layout.RowHeight <= 0 {
		layout = present.DefaultLayout()
	}
	c.projector = present.NewProjector(layout)
	return c
}

// Analyze runs scanning, ranking and diffing without touching any surface.
func Analyze(tok tokenize.Tokenizer, text string, minLen int, prev *index.Tracked) *index.Delta {
	return index.Diff(prev, index.Rank(tok.Scan(text, minLen)))
}

// OnTextChanged runs a pass over the current text.
func (c *Controller) OnTextChanged() *Pass {
	return c.run("text")
}

// OnMinLengthChanged stores n on the source when it accepts one, then runs a pass.
func (c *Controller) OnMinLengthChanged(n int) *Pass {
	if src, ok := c.source.(interface{ SetMinWordLength(int) }); ok {
		src.SetMinWordLength(n)
	} else {
		log.Debugf("Source %T keeps its own minimum length, ignoring %d", c.source, n)
	}
	return c.run("min_len")
}

// ToggleHidden hides or shows the colour of word, then runs a pass.
func (c *Controller) ToggleHidden(word string, hidden bool) *Pass {
	if !c.hidden.Toggle(word, hidden) {
		log.Debugf("Hidden state of '%s' already %v", word, hidden)
	}
	return c.run("toggle")
}

// SyncScroll mirrors the editing surface's scroll offset onto the overlay.
func (c *Controller) SyncScroll(offset int) {
	if offset < 0 {
		offset = 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surface.SyncScroll(offset)
}

// Tracked returns the tracked set of the last pass. It may be nil before the first pass.
func (c *Controller) Tracked() *index.Tracked {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracked
}

// HiddenWords returns a sorted copy of the hidden words. Only ToggleHidden changes
// the set.
func (c *Controller) HiddenWords() []string {
	return c.hidden.Words()
}

// IsHidden reports whether word is hidden.
func (c *Controller) IsHidden(word string) bool {
	return c.hidden.Contains(strings.ToLower(word))
}

// Passes returns how many passes have run.
func (c *Controller) Passes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.passes
}

// Tokenizer returns the tokenizer strategy chosen at construction.
func (c *Controller) Tokenizer() tokenize.Tokenizer {
	return c.tokenizer
}

// Close cancels pending purges when the controller created its own scheduler.
func (c *Controller) Close() {
	if c.ownedTimer != nil {
		if n := c.ownedTimer.Pending(); n > 0 {
			log.Debugf("Dropping %d pending purges", n)
		}
		c.ownedTimer.Close()
	}
}

func (c *Controller) run(trigger string) *Pass {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	text := c.source.Text()
	minLen := tokenize.ClampLength(c.source.MinWordLength())

	delta := Analyze(c.tokenizer, text, minLen, c.tracked)
	c.tracked = delta.Next
	c.passes++

	items, overlay := c.projector.Project(c.surface, text, delta, c.hidden)

	removed := len(delta.Removed())
	if removed > 0 {
		c.scheduler.After(c.purgeDelay, c.purge)
	}

	pass := &Pass{
		Delta:     delta,
		Items:     items,
		Overlay:   overlay,
		MinLength: minLen,
		Elapsed:   time.Since(start),
	}
	log.Debug("Pass done",
		"trigger", trigger,
		"tracked", delta.Next.Len(),
		"removed", removed,
		"took", pass.Elapsed)
	return pass
}

func (c *Controller) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.surface.PurgeObsolete()
}

type discard struct{}

func (discard) UpsertItem(present.Item)      {}
func (discard) MarkObsolete(string)          {}
func (discard) PurgeObsolete()               {}
func (discard) SetOverlay([]present.Segment) {}
func (discard) SyncScroll(int)               {}
func (discard) SetListHeight(float64)        {}
