// Package task provides the concurrency primitives the pipeline and state
// machine are built on: a bounded blocking queue, a worker-goroutine
// wrapper, and a request/response synchronizer. These replace the original
// engine's OSAL BlockingQueue/Task/Thread/Synchronizer C++ templates with
// goroutines, channels and golang.org/x/sync (spec.md's concurrency model,
// §5, restated in Go terms).
package task

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Queue is a bounded, closable FIFO queue. Push blocks (or times out) while
// the queue is full; Pop blocks (or times out) while it is empty. Closing
// the queue unblocks every pending Push/Pop, matching the original
// BlockingQueue's SetActive(false) semantics: queued items are dropped and
// no further Push succeeds.
type Queue[T any] struct {
	name string
	sem  *semaphore.Weighted // limits items in flight; released by Pop

	mu     sync.Mutex
	items  []T
	closed bool
	notEmpty *sync.Cond
}

// NewQueue returns a Queue named name with the given capacity (spec.md's
// DEFAULT_QUEUE_SIZE equivalent is left to the caller).
func NewQueue[T any](name string, capacity int) *Queue[T] {
	q := &Queue[T]{
		name: name,
		sem:  semaphore.NewWeighted(int64(capacity)),
	}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Push enqueues value, blocking while the queue is at capacity. It reports
// false if the queue was (or became) closed before the value could be
// enqueued, or if ctx is done first.
func (q *Queue[T]) Push(ctx context.Context, value T) bool {
	if err := q.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.sem.Release(1)
		return false
	}
	q.items = append(q.items, value)
	q.mu.Unlock()
	q.notEmpty.Broadcast()
	return true
}

// PushTimeout is Push bounded by a relative timeout, mirroring the
// original's Push(value, timeoutMs).
func (q *Queue[T]) PushTimeout(value T, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return q.Push(ctx, value)
}

// Pop dequeues the oldest value, blocking while the queue is empty. ok is
// false if the queue is closed and drained, or ctx ends first.
func (q *Queue[T]) Pop(ctx context.Context) (value T, ok bool) {
	done := make(chan struct{})
	if ctx != nil {
		go func() {
			select {
			case <-ctx.Done():
				q.mu.Lock()
				q.notEmpty.Broadcast()
				q.mu.Unlock()
			case <-done:
			}
		}()
		defer close(done)
	}

	q.mu.Lock()
	for len(q.items) == 0 && !q.closed {
		if ctx != nil && ctx.Err() != nil {
			q.mu.Unlock()
			var zero T
			return zero, false
		}
		q.notEmpty.Wait()
	}
	if len(q.items) == 0 {
		q.mu.Unlock()
		var zero T
		return zero, false
	}
	value = q.items[0]
	q.items = q.items[1:]
	q.mu.Unlock()
	q.sem.Release(1)
	return value, true
}

// PopTimeout is Pop bounded by a relative timeout.
func (q *Queue[T]) PopTimeout(timeout time.Duration) (value T, ok bool) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return q.Pop(ctx)
}

// Size returns the current number of queued items.
func (q *Queue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Empty reports whether the queue currently holds no items.
func (q *Queue[T]) Empty() bool { return q.Size() == 0 }

// Clear discards all queued items without closing the queue.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	n := len(q.items)
	q.items = nil
	q.mu.Unlock()
	if n > 0 {
		q.sem.Release(int64(n))
	}
}

// Close deactivates the queue: pending and future Push/Pop calls return
// immediately, and queued items are dropped.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	n := len(q.items)
	q.items = nil
	q.mu.Unlock()
	if n > 0 {
		q.sem.Release(int64(n))
	}
	q.notEmpty.Broadcast()
}

// Name returns the queue's diagnostic name.
func (q *Queue[T]) Name() string { return q.name }
