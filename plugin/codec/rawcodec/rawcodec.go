// Package rawcodec implements the passthrough Codec plugin (spec.md §4.3):
// it performs no transcoding, only shuttling each queued input buffer's
// bytes into the next queued output buffer and notifying both callbacks,
// exercising the asynchronous queue contract every real codec plugin obeys.
// Grounded on task.Queue/task.Task, the same worker-goroutine idiom
// state.Machine uses for its own asynchronous dispatch.
package rawcodec

import (
	"time"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/meta"
	"github.com/chicogong/histreamer/plugin"
	"github.com/chicogong/histreamer/plugin/registry"
	"github.com/chicogong/histreamer/task"
)

// Name is this plugin's registered name.
const Name = "raw_codec"

// popTimeout bounds the worker's blocking wait on either queue per
// iteration, so Stop (via the BaseState OnStop hook) observes the stopped
// Task state promptly instead of waiting indefinitely on an empty queue.
const popTimeout = 200 * time.Millisecond

// Codec relays queued input buffers to queued output buffers unchanged.
type Codec struct {
	*plugin.BaseState

	cb       plugin.DataCallback
	inQueue  *task.Queue[*foundation.Buffer]
	outQueue *task.Queue[*foundation.Buffer]
	worker   *task.Task
}

// New returns a Codec whose input/output queues each hold up to capacity
// buffers in flight.
func New(capacity int) *Codec {
	c := &Codec{
		inQueue:  task.NewQueue[*foundation.Buffer]("raw-codec-in", capacity),
		outQueue: task.NewQueue[*foundation.Buffer]("raw-codec-out", capacity),
	}
	c.worker = task.NewTask("raw-codec-worker", c.runOne)
	c.BaseState = plugin.NewBaseState(plugin.Hooks{
		OnStart: c.onStart,
		OnStop:  c.onStop,
	})
	return c
}

func (c *Codec) onStart() foundation.ErrorCode {
	c.worker.Start()
	return foundation.Success
}

func (c *Codec) onStop() foundation.ErrorCode {
	c.worker.Stop()
	c.inQueue.Clear()
	c.outQueue.Clear()
	return foundation.Success
}

// SetDataCallback registers the completion callbacks the worker notifies.
func (c *Codec) SetDataCallback(cb plugin.DataCallback) { c.cb = cb }

// QueueInputBuffer enqueues buf to be relayed to the next available output
// buffer.
func (c *Codec) QueueInputBuffer(buf *foundation.Buffer, timeout time.Duration) foundation.ErrorCode {
	if !c.inQueue.PushTimeout(buf, timeout) {
		return foundation.ErrorTimedOut
	}
	return foundation.Success
}

// QueueOutputBuffer enqueues an empty buffer for the worker to fill.
func (c *Codec) QueueOutputBuffer(buf *foundation.Buffer, timeout time.Duration) foundation.ErrorCode {
	if !c.outQueue.PushTimeout(buf, timeout) {
		return foundation.ErrorTimedOut
	}
	return foundation.Success
}

// Flush discards any buffers queued but not yet relayed.
func (c *Codec) Flush() foundation.ErrorCode {
	c.inQueue.Clear()
	c.outQueue.Clear()
	return foundation.Success
}

// runOne is the worker's per-iteration handler: wait for one input buffer,
// wait for one output buffer, copy, notify.
func (c *Codec) runOne() {
	in, ok := c.inQueue.PopTimeout(popTimeout)
	if !ok {
		return
	}
	out, ok := c.outQueue.PopTimeout(popTimeout)
	if !ok {
		// No output buffer available within the wait window; the input
		// buffer is lost rather than requeued, matching a real codec's
		// drop-under-backpressure behavior when starved of output buffers.
		if c.cb.OnInputDone != nil {
			c.cb.OnInputDone(in, foundation.ErrorAgain)
		}
		return
	}

	out.Reset()
	out.Write(in.Bytes(), -1)
	out.Pts = in.Pts
	out.Dts = in.Dts
	out.Duration = in.Duration
	out.Flags = in.Flags

	if c.cb.OnInputDone != nil {
		c.cb.OnInputDone(in, foundation.Success)
	}
	if c.cb.OnOutputDone != nil {
		c.cb.OnOutputDone(out, foundation.Success)
	}
}

func init() {
	registry.Register(plugin.RegInfo{
		Name:       Name,
		Type:       plugin.TypeCodec,
		Rank:       10, // lowest rank: only selected when no real codec matches
		APIVersion: registry.HostAPIVersion,
		InCaps:     meta.CapabilitySet{meta.NewCapability("*")},
		OutCaps:    meta.CapabilitySet{meta.NewCapability("*")},
		Creator:    func() (plugin.Base, error) { return New(16), nil },
		License:    "Apache-2.0",
	})
}
