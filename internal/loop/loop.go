// Package loop provides a cooperative task queue for work that must run on
// the UI goroutine but not inside the gesture that scheduled it.
package loop

import (
	"sync"
)

// Deferrer schedules fn to run on a later turn.
type Deferrer interface {
	Defer(fn func())
}

// Loop is a FIFO of deferred tasks. Each Step runs exactly one task, so a
// host can interleave tasks with its own events. Defer is safe to call from
// any goroutine; Step and Drain must be called from one goroutine.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	notify chan struct{}
}

// New returns an empty loop.
func New() *Loop {
	return &Loop{notify: make(chan struct{}, 1)}
}

// Defer appends fn to the queue.
func (l *Loop) Defer(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.notify <- struct{}{}:
	default:
	}
}

// Ready is signalled after Defer; hosts may select on it to learn that
// work is waiting.
func (l *Loop) Ready() <-chan struct{} {
	return l.notify
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Step runs the oldest task and reports whether one ran.
func (l *Loop) Step() bool {
	l.mu.Lock()
	if len(l.queue) == 0 {
		l.mu.Unlock()
		return false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	l.mu.Unlock()

	fn()
	return true
}

// Drain runs tasks until the queue is empty or maxTurns tasks ran
// (maxTurns <= 0 means no cap). It returns the number of tasks run.
func (l *Loop) Drain(maxTurns int) int {
	turns := 0
	for maxTurns <= 0 || turns < maxTurns {
		if !l.Step() {
			break
		}
		turns++
	}
	return turns
}
