package filters

import (
	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/internal/clock"
	"github.com/chicogong/histreamer/meta"
	"github.com/chicogong/histreamer/metrics"
	"github.com/chicogong/histreamer/pipeline"
	"github.com/chicogong/histreamer/plugin"
)

// playerVolumeMax is the upper bound of the player-facing volume range
// (spec.md §12's SetVolume(l, r) takes [0,300], matching the original's
// percentage-with-boost convention); AudioSinkFilter normalizes down to
// the plugin-level [0,1] range plugin.AudioSink.SetVolume expects.
const playerVolumeMax = 300.0

// bytesPerSample assumes 16-bit PCM, the only sample format the reference
// codec/sink pair in this module produces.
const bytesPerSample = 2

// AudioSinkFilter wraps a plugin.AudioSink: it writes every buffer it
// receives, tracks playback position from each buffer's Pts, and
// normalizes the player-facing [0,300] volume range into the plugin's
// [0,1] range before forwarding it.
type AudioSinkFilter struct {
	*pipeline.BaseFilter

	sink plugin.AudioSink
	pos  *clock.Position
}

// NewAudioSinkFilter wraps sink as a filter named name.
func NewAudioSinkFilter(name string, sink plugin.AudioSink) *AudioSinkFilter {
	f := &AudioSinkFilter{sink: sink, pos: clock.NewPosition()}
	f.BaseFilter = pipeline.NewBaseFilter(name, f, pipeline.Hooks{
		OnInit:    func(pipeline.Receiver, pipeline.Callback) foundation.ErrorCode { return f.sink.Init() },
		OnPrepare: func() foundation.ErrorCode { return f.sink.Prepare() },
		OnStart: func() foundation.ErrorCode {
			f.pos.Start()
			return f.sink.Start()
		},
		OnPause: func() foundation.ErrorCode {
			f.pos.Pause()
			return f.sink.Pause()
		},
		OnResume: func() foundation.ErrorCode {
			f.pos.Start()
			return f.sink.Resume()
		},
		OnStop:       func() foundation.ErrorCode { return f.sink.Stop() },
		OnFlushStart: func() foundation.ErrorCode { return f.sink.Flush() },
	})
	f.AddInPort(f, "in")
	return f
}

// SetVolume accepts the player-facing [0,300] volume (spec.md §12) and
// forwards it to the plugin at [0,1]. Values outside [0,300] are rejected
// without reaching the plugin.
func (f *AudioSinkFilter) SetVolume(playerVolume float64) foundation.ErrorCode {
	if playerVolume < 0 || playerVolume > playerVolumeMax {
		return foundation.ErrorInvalidParameterValue
	}
	return f.sink.SetVolume(playerVolume / playerVolumeMax)
}

// GetLatencyMs passes through to the wrapped sink.
func (f *AudioSinkFilter) GetLatencyMs() (int64, foundation.ErrorCode) { return f.sink.GetLatencyMs() }

// PositionMs returns the estimated playback position, derived from the
// last buffer's Pts this filter rendered (see DESIGN.md's
// pipeline/filters section).
func (f *AudioSinkFilter) PositionMs() int64 { return f.pos.CurrentMs() }

// SeekTo resets tracked position to timeMs, called by the engine after a
// seek completes downstream of this sink.
func (f *AudioSinkFilter) SeekTo(timeMs int64) { f.pos.SeekTo(timeMs) }

func (f *AudioSinkFilter) SupportedWorkModes() []pipeline.WorkMode {
	return []pipeline.WorkMode{pipeline.ModePush}
}

// Negotiate accepts any raw-PCM-shaped mime; AudioSinkFilter is always a
// pipeline leaf so it never needs to recurse further downstream.
func (f *AudioSinkFilter) Negotiate(*meta.Meta) (meta.CapabilitySet, foundation.ErrorCode) {
	return meta.CapabilitySet{meta.NewCapability(meta.MimeAudioRaw)}, foundation.Success
}

// Configure derives the sink's byte rate from the negotiated stream Meta
// and pushes it down as the bytes_per_ms parameter ringaudiosink (and any
// other AudioSink) uses for GetLatencyMs.
func (f *AudioSinkFilter) Configure(upstreamMeta *meta.Meta) foundation.ErrorCode {
	channels, hasChannels := meta.Get[uint32](upstreamMeta, meta.TagAudioChannels)
	rate, hasRate := meta.Get[uint32](upstreamMeta, meta.TagAudioSampleRate)
	if !hasChannels || !hasRate {
		return foundation.Success
	}
	bytesPerMs := float64(channels) * float64(rate) * bytesPerSample / 1000.0
	return f.sink.SetParameter("bytes_per_ms", foundation.NewValue(bytesPerMs))
}

// PushData renders buf and advances the tracked position from its Pts.
func (f *AudioSinkFilter) PushData(portName string, buf *foundation.Buffer) foundation.ErrorCode {
	if buf.Pts != foundation.PtsUnknown {
		f.pos.SeekTo(buf.Pts / 1000)
		f.pos.Start()
	}
	code := f.sink.Write(buf)
	if code.OK() {
		metrics.RecordBuffer(f.Name(), "push")
	}
	if buf.IsEOS() {
		f.Emit(pipeline.Event{Type: pipeline.EventComplete})
	}
	return code
}

func (f *AudioSinkFilter) PullData(int64, int, *foundation.Buffer) foundation.ErrorCode {
	return foundation.ErrorInvalidOperation
}
