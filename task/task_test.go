package task

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskRunsHandlerRepeatedlyUntilStopped(t *testing.T) {
	var calls int64
	tk := NewTask("t", func() {
		atomic.AddInt64(&calls, 1)
		time.Sleep(time.Millisecond)
	})
	tk.Start()
	time.Sleep(30 * time.Millisecond)
	tk.Stop()
	assert.Greater(t, atomic.LoadInt64(&calls), int64(1))
}

func TestTaskPauseStopsCallingHandler(t *testing.T) {
	var calls int64
	tk := NewTask("t", func() {
		atomic.AddInt64(&calls, 1)
		time.Sleep(time.Millisecond)
	})
	tk.Start()
	time.Sleep(20 * time.Millisecond)
	tk.Pause()
	n := atomic.LoadInt64(&calls)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, n, atomic.LoadInt64(&calls), "handler must not run while paused")
	tk.Stop()
}

func TestTaskResumeAfterPauseContinuesRunning(t *testing.T) {
	var calls int64
	tk := NewTask("t", func() {
		atomic.AddInt64(&calls, 1)
		time.Sleep(time.Millisecond)
	})
	tk.Start()
	time.Sleep(10 * time.Millisecond)
	tk.Pause()
	n := atomic.LoadInt64(&calls)
	tk.Start() // resume
	time.Sleep(20 * time.Millisecond)
	tk.Stop()
	assert.Greater(t, atomic.LoadInt64(&calls), n)
}

func TestTaskStopIsIdempotentAndBlocksUntilExit(t *testing.T) {
	tk := NewTask("t", func() { time.Sleep(time.Millisecond) })
	tk.Start()
	tk.Stop()
	tk.Stop() // must not hang or panic
}
