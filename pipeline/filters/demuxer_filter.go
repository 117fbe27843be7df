package filters

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/meta"
	"github.com/chicogong/histreamer/metrics"
	"github.com/chicogong/histreamer/pipeline"
	"github.com/chicogong/histreamer/plugin"
	"github.com/chicogong/histreamer/plugin/demux/hlsdemux"
	"github.com/chicogong/histreamer/task"
)

// frameBufSize is the capacity allocated for each pumped frame buffer.
const frameBufSize = 64 * 1024

// rawSourceBinder is implemented by Demuxer plugins that take their
// upstream Source directly, such as plugin/demux/rawdemux (spec.md §4.3's
// "data-source-helper": the shared Demuxer interface carries no fetch
// handle at all, so each concrete demuxer exposes its own non-interface
// hookup method and DemuxerFilter binds whichever shape it finds).
type rawSourceBinder interface {
	SetDataSource(src plugin.Source, mime string)
}

// readAllSource drains src to completion into one byte slice, used to hand
// a small manifest (e.g. an HLS playlist) to a Demuxer that wants an
// io.Reader rather than a Source.
func readAllSource(src plugin.Source) ([]byte, foundation.ErrorCode) {
	var out []byte
	for {
		buf := foundation.AllocBuffer(frameBufSize, 0, nil, foundation.BufferMetaAudio)
		code := src.Read(buf, frameBufSize)
		out = append(out, buf.Bytes()...)
		if code == foundation.EndOfStream {
			return out, foundation.Success
		}
		if !code.OK() {
			return nil, code
		}
		if buf.Size() == 0 {
			return out, foundation.Success
		}
	}
}

// DemuxerFilter wraps a plugin.Demuxer. It binds directly to the upstream
// Source at Prepare (rather than through the generic Pull port, since the
// binding needs Source's full Seek/GetSize surface), discovers streams via
// GetMediaInfo, creates one dynamic out-port per discovered stream and
// emits EventPortsAdded, then pumps frames to those ports on its own Task.
type DemuxerFilter struct {
	*pipeline.BaseFilter

	demuxer plugin.Demuxer
	source  plugin.Source
	mime    string
	uri     string

	mu       sync.Mutex
	outPorts map[int]*pipeline.OutPort
	kinds    map[int]foundation.BufferMetaType
	worker   *task.Task
	general  *meta.Meta
}

// NewDemuxerFilter wraps demuxer, bound to source (typically the owning
// SourceFilter's Source()). mime is the elementary stream's content type
// for a passthrough demuxer (rawdemux's SetDataSource); uri is the
// source's own URI, used as the playlist base URL a manifest demuxer
// (hlsdemux) needs to resolve relative segment references. A demuxer that
// only needs one of the two ignores the other.
func NewDemuxerFilter(name string, demuxer plugin.Demuxer, source plugin.Source, mime, uri string) *DemuxerFilter {
	f := &DemuxerFilter{
		demuxer:  demuxer,
		source:   source,
		mime:     mime,
		uri:      uri,
		outPorts: make(map[int]*pipeline.OutPort),
		kinds:    make(map[int]foundation.BufferMetaType),
	}
	f.BaseFilter = pipeline.NewBaseFilter(name, f, pipeline.Hooks{
		OnInit:    func(pipeline.Receiver, pipeline.Callback) foundation.ErrorCode { return f.demuxer.Init() },
		OnPrepare: f.onPrepare,
		OnStart:   f.onStart,
		OnPause:   func() foundation.ErrorCode { return f.demuxer.Pause() },
		OnResume:  func() foundation.ErrorCode { return f.demuxer.Resume() },
		OnStop:    f.onStop,
	})
	f.AddInPort(f, "in") // bookkeeping only: see bindSource, data never flows over this port
	return f
}

func (f *DemuxerFilter) onPrepare() foundation.ErrorCode {
	if code := f.bindSource(); !code.OK() {
		return code
	}
	if code := f.demuxer.Prepare(); !code.OK() {
		return code
	}
	info, code := f.demuxer.GetMediaInfo()
	if !code.OK() {
		return code
	}

	f.mu.Lock()
	f.general = info.General
	f.mu.Unlock()

	var ports []pipeline.PortInfo
	for i, sm := range info.Streams {
		idx := i
		if v, ok := meta.Get[uint32](sm, meta.TagStreamIndex); ok {
			idx = int(v)
		}
		portName := fmt.Sprintf("stream_%d", idx)
		p := f.AddOutPort(f, portName)

		kind := foundation.BufferMetaAudio
		isPCM := false
		if mime, ok := sm.Mime(); ok {
			if strings.HasPrefix(mime, "video/") {
				kind = foundation.BufferMetaVideo
			}
			isPCM = mime == meta.MimeAudioRaw || mime == meta.MimeVideoRaw
		}

		f.mu.Lock()
		f.outPorts[idx] = p
		f.kinds[idx] = kind
		f.mu.Unlock()

		ports = append(ports, pipeline.PortInfo{Name: portName, Meta: sm, IsPCM: isPCM})
	}
	f.Emit(pipeline.Event{Type: pipeline.EventPortsAdded, Ports: ports})
	return foundation.Success
}

// bindSource hooks the demuxer up to its upstream bytes, dispatching on
// which non-interface binding method the concrete demuxer implements
// (Open Question resolution: see DESIGN.md).
func (f *DemuxerFilter) bindSource() foundation.ErrorCode {
	switch d := f.demuxer.(type) {
	case rawSourceBinder:
		d.SetDataSource(f.source, f.mime)
		return foundation.Success
	case *hlsdemux.Demuxer:
		data, code := readAllSource(f.source)
		if !code.OK() {
			return code
		}
		return d.LoadPlaylist(bytes.NewReader(data), f.uri)
	default:
		return foundation.ErrorUnsupportedFormat
	}
}

func (f *DemuxerFilter) onStart() foundation.ErrorCode {
	if code := f.demuxer.Start(); !code.OK() {
		return code
	}
	f.mu.Lock()
	if f.worker == nil {
		f.worker = task.NewTask(f.Name()+"-demux", f.pumpOnce)
	}
	worker := f.worker
	f.mu.Unlock()
	worker.Start()
	return foundation.Success
}

func (f *DemuxerFilter) onStop() foundation.ErrorCode {
	f.mu.Lock()
	worker := f.worker
	f.mu.Unlock()
	if worker != nil {
		worker.Stop()
	}
	return f.demuxer.Stop()
}

// pumpOnce reads one frame from each known stream index in order and
// pushes it to that stream's out-port, stopping the worker once every
// stream has reported EndOfStream or an error occurs.
func (f *DemuxerFilter) pumpOnce() {
	f.mu.Lock()
	indices := make([]int, 0, len(f.outPorts))
	for idx := range f.outPorts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	f.mu.Unlock()

	done := 0
	for _, idx := range indices {
		f.mu.Lock()
		kind := f.kinds[idx]
		port := f.outPorts[idx]
		f.mu.Unlock()

		buf := foundation.AllocBuffer(frameBufSize, 0, nil, kind)
		code := f.demuxer.ReadFrame(buf, idx)
		switch {
		case code == foundation.EndOfStream:
			buf.Flags |= foundation.BufferFlagEOS
			port.PushData(buf)
			done++
		case code.OK():
			port.PushData(buf)
			metrics.RecordBuffer(f.Name(), "push")
		default:
			f.Emit(pipeline.Event{Type: pipeline.EventError, Code: code})
			f.stopWorkerAsync()
			return
		}
	}
	if done == len(indices) && len(indices) > 0 {
		f.Emit(pipeline.Event{Type: pipeline.EventComplete})
		f.stopWorkerAsync()
	}
}

func (f *DemuxerFilter) stopWorkerAsync() {
	f.mu.Lock()
	worker := f.worker
	f.mu.Unlock()
	if worker != nil {
		worker.StopAsync()
	}
}

// SupportedWorkModes reports Push: frames are pumped to downstream filters
// as they are decoded from the container.
func (f *DemuxerFilter) SupportedWorkModes() []pipeline.WorkMode {
	return []pipeline.WorkMode{pipeline.ModePush}
}

// Negotiate/Configure are not meaningful on DemuxerFilter's single bound-at-
// construction in-port (see bindSource); nothing pushes capability
// requests upstream through it.
func (f *DemuxerFilter) Negotiate(*meta.Meta) (meta.CapabilitySet, foundation.ErrorCode) {
	return meta.CapabilitySet{meta.NewCapability("*")}, foundation.Success
}

func (f *DemuxerFilter) Configure(*meta.Meta) foundation.ErrorCode { return foundation.Success }

func (f *DemuxerFilter) PushData(string, *foundation.Buffer) foundation.ErrorCode {
	return foundation.ErrorInvalidOperation
}

func (f *DemuxerFilter) PullData(int64, int, *foundation.Buffer) foundation.ErrorCode {
	return foundation.ErrorInvalidOperation
}

// GeneralMeta returns the container-level tags (duration, file size, ...)
// discovered at Prepare, or nil if Prepare has not completed.
func (f *DemuxerFilter) GeneralMeta() *meta.Meta {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.general
}

// SeekTo seeks every discovered stream to timeUs, used by the player's
// rewind intent (spec.md §6's rewind(ms, mode)). It stops at the first
// stream that rejects the seek.
func (f *DemuxerFilter) SeekTo(timeUs int64, mode plugin.SeekMode) foundation.ErrorCode {
	f.mu.Lock()
	indices := make([]int, 0, len(f.outPorts))
	for idx := range f.outPorts {
		indices = append(indices, idx)
	}
	f.mu.Unlock()
	sort.Ints(indices)
	for _, idx := range indices {
		if code := f.demuxer.SeekTo(idx, timeUs, mode); !code.OK() {
			return code
		}
	}
	return foundation.Success
}
