package initqueue

import (
	"sync"
	"time"
)

// Scheduler runs fn at the next scheduling opportunity. The returned cancel
// function prevents a pending run; calling it after fn ran is harmless.
type Scheduler interface {
	Schedule(fn func()) (cancel func())
}

// TimerScheduler runs callbacks on a timer goroutine after Delay. A zero
// delay fires as soon as the runtime gets to it, after the current call
// stack has returned.
type TimerScheduler struct {
	Delay time.Duration
}

// Schedule starts a timer for fn.
func (s TimerScheduler) Schedule(fn func()) func() {
	timer := time.AfterFunc(s.Delay, fn)
	return func() { timer.Stop() }
}

type task struct {
	fn        func()
	cancelled bool
}

// ManualScheduler queues callbacks until the host calls RunPending. Hosts
// with their own event loop call it once per tick; tests call it to make a
// tick boundary explicit.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []*task
}

// NewManualScheduler creates an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule queues fn.
func (s *ManualScheduler) Schedule(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &task{fn: fn}
	s.pending = append(s.pending, t)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		t.cancelled = true
	}
}

// Pending returns the number of queued callbacks that were not cancelled.
func (s *ManualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.pending {
		if !t.cancelled {
			n++
		}
	}
	return n
}

// RunPending runs every callback queued so far, in order, and reports how
// many ran. Callbacks scheduled while running wait for the next call.
func (s *ManualScheduler) RunPending() int {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	ran := 0
	for _, t := range batch {
		s.mu.Lock()
		cancelled := t.cancelled
		s.mu.Unlock()
		if cancelled {
			continue
		}
		t.fn()
		ran++
	}
	return ran
}

// TrackedScheduler wraps a Scheduler and counts callbacks that are scheduled
// but neither run nor cancelled, so a host can wait for a form to settle.
type TrackedScheduler struct {
	inner Scheduler
	wg    sync.WaitGroup
}

// Track wraps s. A nil s means a zero-delay TimerScheduler.
func Track(s Scheduler) *TrackedScheduler {
	if s == nil {
		s = TimerScheduler{}
	}
	return &TrackedScheduler{inner: s}
}

// Schedule schedules fn on the wrapped scheduler. A cancel that races with
// the run settles the task exactly once: whichever comes first wins.
func (s *TrackedScheduler) Schedule(fn func()) func() {
	var settled sync.Once
	s.wg.Add(1)

	cancel := s.inner.Schedule(func() {
		settled.Do(func() {
			defer s.wg.Done()
			fn()
		})
	})
	return func() {
		cancel()
		settled.Do(s.wg.Done)
	}
}

// Wait blocks until every scheduled callback has run or been cancelled,
// including callbacks scheduled while waiting.
func (s *TrackedScheduler) Wait() {
	s.wg.Wait()
}
