// Package watch keeps the repetition view of a file current while it is edited
// elsewhere.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/bastiangx/echoes/internal/utils"
	"github.com/bastiangx/echoes/pkg/engine"
	"github.com/bastiangx/echoes/pkg/tokenize"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
)

// DefaultDebounce groups the bursts of events editors emit for a single save.
const DefaultDebounce = 100 * time.Millisecond

// FileSource is a Source backed by a file. The text only changes on Reload.
type FileSource struct {
	path     string
	maxBytes int

	mu     sync.RWMutex
	text   string
	minLen int
}

// NewFileSource creates a source for path. Nothing is read until Reload.
func NewFileSource(path string, maxBytes, minLen int) (*FileSource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return &FileSource{path: abs, maxBytes: maxBytes, minLen: tokenize.ClampLength(minLen)}, nil
}

// Path returns the absolute path being read.
func (f *FileSource) Path() string {
	return f.path
}

// Reload reads the file again. On error the previous text is kept.
func (f *FileSource) Reload() error {
	text, err := utils.ReadText(f.path, f.maxBytes)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text = text
	return nil
}

func (f *FileSource) Text() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.text
}

func (f *FileSource) MinWordLength() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.minLen
}

func (f *FileSource) SetMinWordLength(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.minLen = tokenize.ClampLength(n)
}

// Watcher reloads a FileSource when the file changes and runs a pass.
type Watcher struct {
	source   *FileSource
	ctrl     *engine.Controller
	debounce time.Duration
	onPass   func(*engine.Pass)
}

// NewWatcher creates a watcher. onPass, when set, is called after every pass from
// the watcher's goroutine.
func NewWatcher(source *FileSource, ctrl *engine.Controller, debounce time.Duration, onPass func(*engine.Pass)) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{source: source, ctrl: ctrl, debounce: debounce, onPass: onPass}
}

// Run loads the file, runs the first pass, then follows changes until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.source.Reload(); err != nil {
		return err
	}
	w.pass()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	// editors often save by renaming a temp file over the original, which drops a
	// watch on the file itself
	if err := fsw.Add(filepath.Dir(w.source.Path())); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.source.Path(), err)
	}
	log.Debugf("Watching %s", w.source.Path())

	changes := make(chan struct{}, 1)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.forward(ctx, fsw, changes)
	})
	g.Go(func() error {
		return w.debounceLoop(ctx, changes)
	})
	return g.Wait()
}

// forward turns relevant fsnotify events into change signals.
func (w *Watcher) forward(ctx context.Context, fsw *fsnotify.Watcher, changes chan<- struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.source.Path() {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			select {
			case changes <- struct{}{}:
			default:
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				log.Warnf("Missed file events, reloading: %v", err)
				select {
				case changes <- struct{}{}:
				default:
				}
				continue
			}
			log.Warnf("File watcher error: %v", err)
		}
	}
}

func (w *Watcher) debounceLoop(ctx context.Context, changes <-chan struct{}) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			timer.Reset(w.debounce)
		case <-timer.C:
			if err := w.source.Reload(); err != nil {
				log.Warnf("Failed to reload %s: %v", w.source.Path(), err)
				continue
			}
			w.pass()
		}
	}
}

func (w *Watcher) pass() {
	pass := w.ctrl.OnTextChanged()
	if w.onPass != nil {
		w.onPass(pass)
	}
}
