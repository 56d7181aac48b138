// Package queue implements the thread-safe FIFO of pending job specs.
// Workers poll it with a bounded wait so they can observe the pool's
// shutdown flag between attempts.
package queue

import (
	"errors"
	"sync"
	"time"

	"github.com/ytget/mediaqueue/internal/model"
)

// ErrClosed is returned by Push after the queue has been shut down.
var ErrClosed = errors.New("task queue closed")

// TaskQueue holds pending job specs in strict submission order. Only
// specs live here; run state is created by the worker that dequeues.
type TaskQueue struct {
	mu     sync.Mutex
	specs  []model.JobSpec
	closed bool

	// signal wakes one waiting Pop when work arrives; capacity one so
	// Push never blocks.
	signal chan struct{}
}

// New creates an empty queue.
func New() *TaskQueue {
	return &TaskQueue{
		signal: make(chan struct{}, 1),
	}
}

// Push appends a spec to the tail. It never blocks and fails only after
// Close.
func (q *TaskQueue) Push(spec model.JobSpec) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.specs = append(q.specs, spec)
	q.mu.Unlock()

	q.notify()
	return nil
}

// Pop removes and returns the head spec, waiting up to timeout for one
// to arrive. The second return value is false when the wait expired or
// the queue is closed and drained; no error is raised so callers can
// poll cooperatively.
func (q *TaskQueue) Pop(timeout time.Duration) (model.JobSpec, bool) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		q.mu.Lock()
		if len(q.specs) > 0 {
			spec := q.specs[0]
			q.specs = q.specs[1:]
			remaining := len(q.specs)
			q.mu.Unlock()
			if remaining > 0 {
				// Wake the next waiter for the work left behind.
				q.notify()
			}
			return spec, true
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return model.JobSpec{}, false
		}

		select {
		case <-q.signal:
		case <-deadline.C:
			return model.JobSpec{}, false
		}
	}
}

// Clear atomically removes all pending specs and returns how many were
// dropped. Specs already dequeued by a worker are unaffected.
func (q *TaskQueue) Clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	removed := len(q.specs)
	q.specs = nil
	return removed
}

// Len returns the number of pending specs.
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.specs)
}

// Close marks the queue as shut down. Pending specs remain poppable so a
// draining consumer can finish; new pushes are rejected.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	// Wake any waiter so it can observe the closed state.
	q.notify()
}

func (q *TaskQueue) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}
