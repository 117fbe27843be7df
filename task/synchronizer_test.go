package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSynchronizerWaitNotify(t *testing.T) {
	s := NewSynchronizer[int, string]()
	go func() {
		time.Sleep(10 * time.Millisecond)
		s.Notify(1, "done")
	}()
	assert.Equal(t, "done", s.Wait(1))
}

func TestSynchronizerWaitForTimesOut(t *testing.T) {
	s := NewSynchronizer[int, string]()
	_, ok := s.WaitFor(1, 20*time.Millisecond)
	assert.False(t, ok)
}

func TestSynchronizerWaitForSucceedsBeforeTimeout(t *testing.T) {
	s := NewSynchronizer[int, string]()
	go func() { s.Notify(1, "ok") }()
	r, ok := s.WaitFor(1, time.Second)
	assert.True(t, ok)
	assert.Equal(t, "ok", r)
}

func TestSynchronizerNotifyWithoutWaiterIsDropped(t *testing.T) {
	s := NewSynchronizer[int, string]()
	s.Notify(1, "nobody home") // must not panic or block
	_, ok := s.WaitFor(1, 20*time.Millisecond)
	assert.False(t, ok, "a notify before Wait registered must not be buffered")
}
