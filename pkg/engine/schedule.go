package engine

import (
	"sync"
	"time"
)

// DefaultPurgeDelay leaves removed rows on screen long enough for a fade-out.
const DefaultPurgeDelay = 400 * time.Millisecond

// Task is a scheduled callback.
type Task interface {
	// Cancel stops the task if it has not run yet. Calling it more than once is fine.
	Cancel()
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	After(d time.Duration, fn func()) Task
}

// TimerScheduler runs callbacks on their own goroutine using time.AfterFunc.
type TimerScheduler struct {
	mu      sync.Mutex
	pending map[*timerTask]struct{}
	closed  bool
}

type timerTask struct {
	timer *time.Timer
	owner *TimerScheduler
}

// NewTimerScheduler creates a scheduler backed by runtime timers.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{pending: make(map[*timerTask]struct{})}
}

// After schedules fn. After Close it returns a task that never runs.
func (s *TimerScheduler) After(d time.Duration, fn func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := &timerTask{owner: s}
	if s.closed {
		return task
	}
	task.timer = time.AfterFunc(d, func() {
		if s.release(task) {
			fn()
		}
	})
	s.pending[task] = struct{}{}
	return task
}

// Pending returns how many tasks have not run or been cancelled.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close cancels every pending task and refuses new ones.
func (s *TimerScheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for task := range s.pending {
		task.timer.Stop()
	}
	clear(s.pending)
}

// release drops task from the pending set, reporting whether it was still pending.
func (s *TimerScheduler) release(task *timerTask) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[task]; !ok {
		return false
	}
	delete(s.pending, task)
	return true
}

func (t *timerTask) Cancel() {
	if t.timer == nil {
		return
	}
	if t.owner.release(t) {
		t.timer.Stop()
	}
}
