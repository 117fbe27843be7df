package task

import (
	"sync"
	"time"
)

// Synchronizer lets one goroutine wait for another to deliver a keyed
// result (spec.md §5's synchronous state-machine dispatch), grounded on
// the original engine's OSAL::Synchronizer<SyncIdType, ResultType>. Wait
// registers interest in a key before blocking; Notify only wakes a waiter
// that registered first, so a Notify with no matching Wait is silently
// dropped rather than buffered.
type Synchronizer[K comparable, R any] struct {
	mu      sync.Mutex
	waiters map[K]chan R
}

// NewSynchronizer returns an empty Synchronizer.
func NewSynchronizer[K comparable, R any]() *Synchronizer[K, R] {
	return &Synchronizer[K, R]{waiters: make(map[K]chan R)}
}

func (s *Synchronizer[K, R]) register(key K) chan R {
	ch := make(chan R, 1)
	s.mu.Lock()
	s.waiters[key] = ch
	s.mu.Unlock()
	return ch
}

func (s *Synchronizer[K, R]) unregister(key K) {
	s.mu.Lock()
	delete(s.waiters, key)
	s.mu.Unlock()
}

// Wait blocks until Notify(key, ...) is called, returning the delivered
// result.
func (s *Synchronizer[K, R]) Wait(key K) R {
	ch := s.register(key)
	r := <-ch
	return r
}

// WaitFor blocks until Notify(key, ...) or timeout elapses, reporting
// whether a result was actually delivered (the original's bool WaitFor
// return value).
func (s *Synchronizer[K, R]) WaitFor(key K, timeout time.Duration) (R, bool) {
	ch := s.register(key)
	select {
	case r := <-ch:
		return r, true
	case <-time.After(timeout):
		s.unregister(key)
		var zero R
		return zero, false
	}
}

// Notify delivers result to a waiter blocked on key. If no goroutine is
// currently waiting on key, the notification is dropped.
func (s *Synchronizer[K, R]) Notify(key K, result R) {
	s.mu.Lock()
	ch, ok := s.waiters[key]
	if ok {
		delete(s.waiters, key)
	}
	s.mu.Unlock()
	if ok {
		ch <- result
	}
}
