package filters

import (
	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/meta"
	"github.com/chicogong/histreamer/metrics"
	"github.com/chicogong/histreamer/pipeline"
	"github.com/chicogong/histreamer/plugin"
)

// VideoSinkFilter wraps a plugin.VideoSink, a pipeline leaf that renders
// or (for nullvideosink) discards every decoded frame it receives.
type VideoSinkFilter struct {
	*pipeline.BaseFilter

	sink plugin.VideoSink
}

// NewVideoSinkFilter wraps sink as a filter named name.
func NewVideoSinkFilter(name string, sink plugin.VideoSink) *VideoSinkFilter {
	f := &VideoSinkFilter{sink: sink}
	f.BaseFilter = pipeline.NewBaseFilter(name, f, pipeline.Hooks{
		OnInit:       func(pipeline.Receiver, pipeline.Callback) foundation.ErrorCode { return f.sink.Init() },
		OnPrepare:    func() foundation.ErrorCode { return f.sink.Prepare() },
		OnStart:      func() foundation.ErrorCode { return f.sink.Start() },
		OnPause:      func() foundation.ErrorCode { return f.sink.Pause() },
		OnResume:     func() foundation.ErrorCode { return f.sink.Resume() },
		OnStop:       func() foundation.ErrorCode { return f.sink.Stop() },
		OnFlushStart: func() foundation.ErrorCode { return f.sink.Flush() },
	})
	f.AddInPort(f, "in")
	return f
}

func (f *VideoSinkFilter) SupportedWorkModes() []pipeline.WorkMode {
	return []pipeline.WorkMode{pipeline.ModePush}
}

func (f *VideoSinkFilter) Negotiate(*meta.Meta) (meta.CapabilitySet, foundation.ErrorCode) {
	return meta.CapabilitySet{meta.NewCapability(meta.MimeVideoRaw)}, foundation.Success
}

func (f *VideoSinkFilter) Configure(*meta.Meta) foundation.ErrorCode { return foundation.Success }

func (f *VideoSinkFilter) PushData(portName string, buf *foundation.Buffer) foundation.ErrorCode {
	code := f.sink.Write(buf)
	if code.OK() {
		metrics.RecordBuffer(f.Name(), "push")
	}
	if buf.IsEOS() {
		f.Emit(pipeline.Event{Type: pipeline.EventComplete})
	}
	return code
}

func (f *VideoSinkFilter) PullData(int64, int, *foundation.Buffer) foundation.ErrorCode {
	return foundation.ErrorInvalidOperation
}
