package filters

import (
	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/meta"
	"github.com/chicogong/histreamer/metrics"
	"github.com/chicogong/histreamer/pipeline"
	"github.com/chicogong/histreamer/plugin"
)

// SourceFilter is always the pipeline's root stage: it owns a plugin.Source
// and exposes its bytes to whatever is linked downstream in Pull mode
// (spec.md §4.4). It has no in-port; nothing is ever upstream of it.
type SourceFilter struct {
	*pipeline.BaseFilter

	source plugin.Source
	uri    string
	pos    int64
}

// NewSourceFilter wraps source, bound to uri, as a filter named name.
func NewSourceFilter(name string, source plugin.Source, uri string) *SourceFilter {
	f := &SourceFilter{source: source, uri: uri}
	f.BaseFilter = pipeline.NewBaseFilter(name, f, pipeline.Hooks{
		OnInit:    f.onInit,
		OnPrepare: f.onPrepare,
		OnStart:   func() foundation.ErrorCode { return f.source.Start() },
		OnPause:   func() foundation.ErrorCode { return f.source.Pause() },
		OnResume:  func() foundation.ErrorCode { return f.source.Resume() },
		OnStop:    func() foundation.ErrorCode { return f.source.Stop() },
	})
	f.AddOutPort(f, "out")
	return f
}

// Source returns the wrapped plugin, for DemuxerFilter's direct
// data-source-helper binding (spec.md §4.3), which needs Source's full
// Seek/GetSize surface rather than the generic Pull port contract.
func (f *SourceFilter) Source() plugin.Source { return f.source }

func (f *SourceFilter) onInit(pipeline.Receiver, pipeline.Callback) foundation.ErrorCode {
	return f.source.Init()
}

func (f *SourceFilter) onPrepare() foundation.ErrorCode {
	if code := f.source.SetSource(f.uri); !code.OK() {
		return code
	}
	return f.source.Prepare()
}

// SupportedWorkModes reports Pull: a Source plugin is a random-access byte
// origin, not a push producer.
func (f *SourceFilter) SupportedWorkModes() []pipeline.WorkMode {
	return []pipeline.WorkMode{pipeline.ModePull}
}

// Negotiate/Configure are never called on SourceFilter in practice: it is
// always the pipeline root, so nothing upstream of it ever negotiates
// against it. They return ErrorInvalidOperation to satisfy Filter.
func (f *SourceFilter) Negotiate(*meta.Meta) (meta.CapabilitySet, foundation.ErrorCode) {
	return nil, foundation.ErrorInvalidOperation
}

func (f *SourceFilter) Configure(*meta.Meta) foundation.ErrorCode {
	return foundation.ErrorInvalidOperation
}

// PushData is unsupported: SourceFilter only ever produces, it never
// receives.
func (f *SourceFilter) PushData(string, *foundation.Buffer) foundation.ErrorCode {
	return foundation.ErrorInvalidOperation
}

// PullData seeks to offset first if it differs from the current read
// position, then fills buf with up to size bytes.
func (f *SourceFilter) PullData(offset int64, size int, buf *foundation.Buffer) foundation.ErrorCode {
	if offset != f.pos && f.source.IsSeekable() {
		if code := f.source.SeekTo(offset); !code.OK() {
			return code
		}
		f.pos = offset
	}
	code := f.source.Read(buf, size)
	if code.OK() {
		f.pos += int64(buf.Size())
		metrics.RecordBuffer(f.Name(), "pull")
	}
	return code
}
