package filters

import (
	"time"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/meta"
	"github.com/chicogong/histreamer/metrics"
	"github.com/chicogong/histreamer/pipeline"
	"github.com/chicogong/histreamer/plugin"
)

// outputQueueDepth is how many empty output buffers DecoderFilter keeps
// queued with the codec at once, so the codec's async callback has
// somewhere to land decoded data without stalling on every frame.
const outputQueueDepth = 4

// queueTimeout bounds how long QueueInputBuffer/QueueOutputBuffer may block;
// on expiry the codec returns its own error code (rawcodec reports
// ErrorTimedOut, not ErrorAgain).
const queueTimeout = 500 * time.Millisecond

// inputRetryLimit and inputRetryDelay match the original decoder's
// queue-input retry policy: a codec starved for an input slot is given a
// few short chances to drain before the buffer is dropped.
const inputRetryLimit = 3
const inputRetryDelay = 10 * time.Millisecond

// DecoderFilter wraps a plugin.Codec's asynchronous queue contract
// (spec.md §4.3) as a Push-mode pipeline stage: PushData queues the
// buffer as codec input, and the codec's DataCallback forwards completed
// output buffers to the filter's own out-port, immediately requeuing a
// fresh empty buffer to keep the codec fed.
type DecoderFilter struct {
	*pipeline.BaseFilter

	codec    plugin.Codec
	bufSize  int
	metaType foundation.BufferMetaType
}

// NewDecoderFilter wraps codec; bufSize/metaType describe the output
// buffers DecoderFilter pre-allocates for the codec to fill (e.g. PCM
// capacity for an audio decoder, raw frame capacity for a video decoder).
func NewDecoderFilter(name string, codec plugin.Codec, bufSize int, metaType foundation.BufferMetaType) *DecoderFilter {
	f := &DecoderFilter{codec: codec, bufSize: bufSize, metaType: metaType}
	f.BaseFilter = pipeline.NewBaseFilter(name, f, pipeline.Hooks{
		OnInit:       func(pipeline.Receiver, pipeline.Callback) foundation.ErrorCode { return f.codec.Init() },
		OnPrepare:    func() foundation.ErrorCode { return f.codec.Prepare() },
		OnStart:      f.onStart,
		OnPause:      func() foundation.ErrorCode { return f.codec.Pause() },
		OnResume:     func() foundation.ErrorCode { return f.codec.Resume() },
		OnStop:       func() foundation.ErrorCode { return f.codec.Stop() },
		OnFlushStart: func() foundation.ErrorCode { return f.codec.Flush() },
	})
	f.AddInPort(f, "in")
	f.AddOutPort(f, "out")
	f.codec.SetDataCallback(plugin.DataCallback{OnOutputDone: f.onOutputDone})
	return f
}

func (f *DecoderFilter) onStart() foundation.ErrorCode {
	if code := f.codec.Start(); !code.OK() {
		return code
	}
	for i := 0; i < outputQueueDepth; i++ {
		if code := f.queueFreshOutput(); !code.OK() {
			return code
		}
	}
	return foundation.Success
}

func (f *DecoderFilter) queueFreshOutput() foundation.ErrorCode {
	buf := foundation.AllocBuffer(f.bufSize, 0, nil, f.metaType)
	return f.codec.QueueOutputBuffer(buf, queueTimeout)
}

// onOutputDone is the codec's DataCallback.OnOutputDone: it forwards a
// completed buffer downstream and, unless it was the end-of-stream marker,
// immediately requeues a fresh empty buffer so the codec keeps producing.
func (f *DecoderFilter) onOutputDone(buf *foundation.Buffer, code foundation.ErrorCode) {
	if !code.OK() {
		f.Emit(pipeline.Event{Type: pipeline.EventError, Code: code})
		return
	}
	if out := f.DefaultOutPort(); out != nil {
		out.PushData(buf)
		metrics.RecordBuffer(f.Name(), "push")
	}
	if buf.IsEOS() {
		f.Emit(pipeline.Event{Type: pipeline.EventComplete})
		return
	}
	if code := f.queueFreshOutput(); !code.OK() {
		f.Emit(pipeline.Event{Type: pipeline.EventError, Code: code})
	}
}

// SupportedWorkModes reports Push: DecoderFilter only ever receives
// buffers pushed to it, queuing them as codec input.
func (f *DecoderFilter) SupportedWorkModes() []pipeline.WorkMode {
	return []pipeline.WorkMode{pipeline.ModePush}
}

// Negotiate/Configure delegate to the downstream link, since DecoderFilter
// itself imposes no capability constraints beyond what its codec produces.
func (f *DecoderFilter) Negotiate(upstreamMeta *meta.Meta) (meta.CapabilitySet, foundation.ErrorCode) {
	if out := f.DefaultOutPort(); out != nil {
		caps, code := out.Negotiate(upstreamMeta)
		if !code.OK() {
			metrics.RecordNegotiationFailure(f.Name())
		}
		return caps, code
	}
	return meta.CapabilitySet{meta.NewCapability("*")}, foundation.Success
}

func (f *DecoderFilter) Configure(upstreamMeta *meta.Meta) foundation.ErrorCode {
	if out := f.DefaultOutPort(); out != nil {
		return out.Configure(upstreamMeta)
	}
	return foundation.Success
}

// PushData queues buf as codec input, retrying up to inputRetryLimit times
// with a short sleep when the codec reports ErrorAgain (queue momentarily
// full) before giving up on this buffer.
func (f *DecoderFilter) PushData(portName string, buf *foundation.Buffer) foundation.ErrorCode {
	var code foundation.ErrorCode
	for attempt := 0; ; attempt++ {
		code = f.codec.QueueInputBuffer(buf, queueTimeout)
		if code != foundation.ErrorAgain || attempt >= inputRetryLimit {
			return code
		}
		time.Sleep(inputRetryDelay)
	}
}

func (f *DecoderFilter) PullData(int64, int, *foundation.Buffer) foundation.ErrorCode {
	return foundation.ErrorInvalidOperation
}
