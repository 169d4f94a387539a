// Package initqueue defers the default values fields contribute when their
// value is undefined, so that every field binding in one tick lands in a
// single commit.
package initqueue

import (
	"sync"

	"github.com/conneroisu/formstate/internal/pathops"
)

// Initializer is a deferred default-value write.
type Initializer struct {
	Scope pathops.Scope
	Value any
}

// Queue accumulates initializers and schedules one flush for every burst of
// enqueues. Each enqueue cancels the pending flush and schedules a new one,
// so a burst within one tick coalesces.
type Queue struct {
	items     []Initializer
	scheduler Scheduler
	cancel    func()
	onTick    func()
	mutex     sync.Mutex
}

// New creates a queue that calls onTick when a scheduled flush fires. A nil
// scheduler means a zero-delay TimerScheduler.
func New(scheduler Scheduler, onTick func()) *Queue {
	if scheduler == nil {
		scheduler = TimerScheduler{}
	}
	return &Queue{
		items:     make([]Initializer, 0),
		scheduler: scheduler,
		onTick:    onTick,
	}
}

// Enqueue adds an initializer and reschedules the flush.
func (q *Queue) Enqueue(scope pathops.Scope, value any) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.items = append(q.items, Initializer{Scope: scope, Value: value})

	if q.cancel != nil {
		q.cancel()
	}
	q.cancel = q.scheduler.Schedule(q.fire)
}

func (q *Queue) fire() {
	q.mutex.Lock()
	q.cancel = nil
	q.mutex.Unlock()

	if q.onTick != nil {
		q.onTick()
	}
}

// Len returns the number of queued initializers.
func (q *Queue) Len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return len(q.items)
}

// Drain removes and returns every queued initializer in arrival order.
func (q *Queue) Drain() []Initializer {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	items := q.items
	q.items = make([]Initializer, 0)
	return items
}

// Flush drains the queue and applies it to current. It reports false when
// nothing was written, in which case there is nothing to commit.
func (q *Queue) Flush(current pathops.Tree) (pathops.Tree, bool) {
	return Apply(current, q.Drain())
}

// Apply writes each initializer onto one draft in order. Later entries see
// the writes of earlier ones; an entry whose scope is already defined in the
// draft is skipped.
func Apply(current pathops.Tree, items []Initializer) (pathops.Tree, bool) {
	draft := current
	changed := false
	for _, it := range items {
		if Defined(draft, it.Scope) {
			continue
		}
		draft = pathops.Set(draft, it.Scope, it.Value)
		changed = true
	}
	return draft, changed
}

// Defined reports whether scope holds a non-nil value in tree.
func Defined(tree pathops.Tree, scope pathops.Scope) bool {
	v, ok := pathops.Get(tree, scope)
	return ok && v != nil
}
