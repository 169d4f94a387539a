package initqueue

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/formstate/internal/pathops"
)

func TestQueue_BurstCoalescesIntoOneTick(t *testing.T) {
	sched := NewManualScheduler()
	ticks := 0
	q := New(sched, func() { ticks++ })

	q.Enqueue(pathops.NewScope("f1"), "")
	q.Enqueue(pathops.NewScope("f2"), "")
	q.Enqueue(pathops.NewScope("f3"), "")

	assert.Equal(t, 3, q.Len())
	assert.Equal(t, 1, sched.Pending(), "each enqueue cancels the previous flush")

	assert.Equal(t, 1, sched.RunPending())
	assert.Equal(t, 1, ticks)
}

func TestQueue_FlushAppliesInArrivalOrder(t *testing.T) {
	q := New(NewManualScheduler(), nil)
	q.Enqueue(pathops.NewScope("a"), 1)
	q.Enqueue(pathops.NewScope("g", "b"), "x")

	current := map[string]any{"keep": true}
	next, changed := q.Flush(current)

	require.True(t, changed)
	assert.Equal(t, map[string]any{"keep": true, "a": 1, "g": map[string]any{"b": "x"}}, next)
	assert.Equal(t, map[string]any{"keep": true}, current)
	assert.Equal(t, 0, q.Len(), "flush consumes the queue")

	_, changed = q.Flush(next)
	assert.False(t, changed)
}

func TestApply_SkipsDefinedScopes(t *testing.T) {
	current := map[string]any{"a": "typed"}
	next, changed := Apply(current, []Initializer{
		{Scope: pathops.NewScope("a"), Value: "default"},
		{Scope: pathops.NewScope("b"), Value: "first"},
		{Scope: pathops.NewScope("b"), Value: "second"},
	})

	require.True(t, changed)
	assert.Equal(t, map[string]any{"a": "typed", "b": "first"}, next)
}

func TestApply_NilCountsAsUndefined(t *testing.T) {
	next, changed := Apply(map[string]any{"a": nil}, []Initializer{
		{Scope: pathops.NewScope("a"), Value: ""},
	})
	require.True(t, changed)
	assert.Equal(t, map[string]any{"a": ""}, next)
}

func TestApply_NothingToDo(t *testing.T) {
	current := map[string]any{"a": 1}
	next, changed := Apply(current, nil)
	assert.False(t, changed)
	assert.True(t, pathops.Same(current, next))
}

func TestManualScheduler_CancelAndReentry(t *testing.T) {
	sched := NewManualScheduler()
	var order []string

	cancel := sched.Schedule(func() { order = append(order, "cancelled") })
	sched.Schedule(func() {
		order = append(order, "first")
		sched.Schedule(func() { order = append(order, "later") })
	})
	cancel()

	assert.Equal(t, 1, sched.RunPending())
	assert.Equal(t, []string{"first"}, order)

	assert.Equal(t, 1, sched.RunPending())
	assert.Equal(t, []string{"first", "later"}, order)
	assert.Equal(t, 0, sched.RunPending())
}

func TestTimerScheduler_Fires(t *testing.T) {
	var fired atomic.Int32
	TimerScheduler{Delay: time.Millisecond}.Schedule(func() { fired.Add(1) })

	assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestTimerScheduler_Cancel(t *testing.T) {
	var fired atomic.Int32
	cancel := TimerScheduler{Delay: 50 * time.Millisecond}.Schedule(func() { fired.Add(1) })
	cancel()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestQueue_TimerSchedulerDebounces(t *testing.T) {
	var ticks atomic.Int32
	q := New(TimerScheduler{Delay: 20 * time.Millisecond}, func() { ticks.Add(1) })

	for i := 0; i < 5; i++ {
		q.Enqueue(pathops.NewScope(i), i)
	}

	assert.Eventually(t, func() bool { return ticks.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), ticks.Load())
	assert.Equal(t, 5, q.Len())
}

func TestTrackedScheduler_WaitsForTimer(t *testing.T) {
	sched := Track(TimerScheduler{Delay: 20 * time.Millisecond})
	var ticks atomic.Int32
	q := New(sched, func() { ticks.Add(1) })

	for i := 0; i < 3; i++ {
		q.Enqueue(pathops.NewScope(i), i)
	}
	sched.Wait()

	assert.Equal(t, int32(1), ticks.Load(), "cancelled runs settle without firing")
}

func TestTrackedScheduler_Manual(t *testing.T) {
	manual := NewManualScheduler()
	sched := Track(manual)
	var ran []string

	cancel := sched.Schedule(func() { ran = append(ran, "cancelled") })
	sched.Schedule(func() { ran = append(ran, "kept") })
	cancel()
	cancel()

	assert.Equal(t, 1, manual.RunPending())
	sched.Wait()
	assert.Equal(t, []string{"kept"}, ran)
}

func TestTrackedScheduler_NothingScheduled(t *testing.T) {
	done := make(chan struct{})
	go func() {
		Track(nil).Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked with nothing scheduled")
	}
}
