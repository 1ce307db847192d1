package tui

import (
	"sync"
	"time"

	"github.com/bastiangx/echoes/pkg/engine"
	tea "github.com/charmbracelet/bubbletea"
)

// runMsg carries a scheduled task into Update.
type runMsg struct {
	fn func()
}

// loopScheduler waits on a timer, then hands the task to the event loop, so purges
// touch the surface on the same goroutine as every other update.
type loopScheduler struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// Bind sets where due tasks are sent. Tasks due before Bind are dropped.
func (s *loopScheduler) Bind(send func(tea.Msg)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.send = send
}

func (s *loopScheduler) After(d time.Duration, fn func()) engine.Task {
	return &loopTask{timer: time.AfterFunc(d, func() {
		s.mu.Lock()
		send := s.send
		s.mu.Unlock()
		if send != nil {
			send(runMsg{fn: fn})
		}
	})}
}

type loopTask struct {
	timer *time.Timer
}

func (t *loopTask) Cancel() {
	t.timer.Stop()
}
