package player

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/meta"
	"github.com/chicogong/histreamer/pipeline"
	"github.com/chicogong/histreamer/pipeline/filters"
	"github.com/chicogong/histreamer/plugin"
	"github.com/chicogong/histreamer/plugin/registry"
	"github.com/chicogong/histreamer/plugin/sink/nullvideosink"
	"github.com/chicogong/histreamer/plugin/sink/ringaudiosink"
	"github.com/chicogong/histreamer/state"
)

// audioDecodeBufSize and videoDecodeBufSize size the output buffers a
// DecoderFilter pre-allocates for its codec to fill.
const (
	audioDecodeBufSize = 64 * 1024
	videoDecodeBufSize = 256 * 1024
)

// readyPollInterval and readyTimeout bound Prepare's wait for the
// Preparing->Ready transition (spec.md §4.6's own 5s synchronous-dispatch
// timeout, reused here since pipeline Readiness is signalled
// asynchronously off the state machine's own worker, see doPrepareFilters).
const readyPollInterval = 2 * time.Millisecond
const readyTimeout = 5 * time.Second

// Player is the embeddable engine surface (spec.md §6). One Player drives
// one playback session: set_source, prepare, play/pause/resume/stop,
// rewind, volume/loop, and position/duration queries, all funneled through
// a state.Machine so callers never observe the pipeline mid-transition.
type Player struct {
	reg *registry.Registry

	pipeline *pipeline.Pipeline
	exec     *state.Executor
	machine  *state.Machine

	mu           sync.Mutex
	uri          string
	sourceFilter *filters.SourceFilter
	demuxFilter  *filters.DemuxerFilter
	decoders     map[string]*filters.DecoderFilter
	audioSink    *filters.AudioSinkFilter
	videoSink    *filters.VideoSinkFilter
	durationUs   int64
	seekMode     plugin.SeekMode
	cb           Callback
}

// New returns a Player using the process-wide plugin registry.
func New(cb Callback) *Player { return NewWithRegistry(registry.Global(), cb) }

// NewWithRegistry returns a Player resolving plugins from reg (tests use
// this with an isolated registry).
func NewWithRegistry(reg *registry.Registry, cb Callback) *Player {
	p := &Player{reg: reg, decoders: make(map[string]*filters.DecoderFilter), cb: cb}
	p.pipeline = pipeline.New(p.onPipelineReady, p.onPipelineEvent)

	p.exec = state.NewExecutor(state.ExecutorHooks{
		SetSource:      p.doSetSource,
		PrepareFilters: p.doPrepareFilters,
		Play:           p.doPlay,
		Pause:          p.doPause,
		Resume:         p.doResume,
		Stop:           p.doStop,
		Seek:           p.doSeek,
		SetAttribute:   p.doSetAttribute,
		OnReady:        p.doOnReady,
		OnComplete:     p.doOnComplete,
		OnError:        p.doOnError,
	})
	p.machine = state.NewMachine(p.exec)
	p.machine.OnStateChanged(p.onStateChanged)
	return p
}

// SetPlayerCallback replaces the registered PlayerCallback.
func (p *Player) SetPlayerCallback(cb Callback) {
	p.mu.Lock()
	p.cb = cb
	p.mu.Unlock()
}

// SetSource records uri for the next Prepare call (spec.md §6:
// set_source(Source) is a distinct step from prepare()).
func (p *Player) SetSource(uri string) foundation.ErrorCode {
	p.mu.Lock()
	p.uri = uri
	p.mu.Unlock()
	return foundation.Success
}

// Prepare drives the state machine's Init->Preparing->Ready sequence: it
// dispatches IntentSetSource (which internally constructs and binds every
// plugin/filter, per doSetSource/doPrepareFilters below) then waits for
// the async Ready notification the pipeline's aggregate EventReady
// triggers (see onPipelineReady).
func (p *Player) Prepare() foundation.ErrorCode {
	p.mu.Lock()
	uri := p.uri
	p.mu.Unlock()
	if uri == "" {
		return foundation.ErrorInvalidParameterValue
	}
	if code := p.machine.SendEvent(state.Intent{Kind: state.IntentSetSource, Param: foundation.NewValue(uri)}); !code.OK() {
		return code
	}
	return p.waitForReady()
}

func (p *Player) waitForReady() foundation.ErrorCode {
	deadline := time.Now().Add(readyTimeout)
	for time.Now().Before(deadline) {
		switch p.machine.State() {
		case state.Ready, state.Playing, state.Pause:
			return foundation.Success
		case state.Init:
			return foundation.ErrorInvalidState
		}
		time.Sleep(readyPollInterval)
	}
	return foundation.ErrorTimedOut
}

// Play starts or resumes playback.
func (p *Player) Play() foundation.ErrorCode {
	if p.machine.State() == state.Pause {
		return p.machine.SendEvent(state.Intent{Kind: state.IntentResume})
	}
	return p.machine.SendEvent(state.Intent{Kind: state.IntentPlay})
}

// Pause suspends playback without discarding position.
func (p *Player) Pause() foundation.ErrorCode {
	return p.machine.SendEvent(state.Intent{Kind: state.IntentPause})
}

// Stop tears playback down to Init; a subsequent Play requires SetSource
// and Prepare again.
func (p *Player) Stop() foundation.ErrorCode {
	return p.machine.SendEvent(state.Intent{Kind: state.IntentStop})
}

// Rewind seeks every stream to timeMs (spec.md §6's rewind(ms, mode)).
// mode is passed through to the Demuxer plugin's SeekTo; the reference
// demuxers in this build (raw_demux, hls_demux) accept only SeekByte and
// return ErrorUnimplemented for any other mode.
func (p *Player) Rewind(timeMs int64, mode plugin.SeekMode) foundation.ErrorCode {
	p.mu.Lock()
	p.seekMode = mode
	p.mu.Unlock()
	return p.machine.SendEvent(state.Intent{Kind: state.IntentSeek, Param: foundation.NewValue(timeMs * 1000)})
}

// SetVolume accepts the [0,300] player-facing volume range (spec.md §6);
// l and r are averaged since the reference AudioSink renders a single
// interleaved stream rather than discrete channel gains (see DESIGN.md).
func (p *Player) SetVolume(l, r float64) foundation.ErrorCode {
	return p.machine.SendEvent(state.Intent{Kind: state.IntentSetAttribute, Param: foundation.NewValue(state.AttributeKV{
		Key:   "volume",
		Value: foundation.NewValue((l + r) / 2),
	})})
}

// SetLoop toggles single-loop playback (spec.md §12 supplement).
func (p *Player) SetLoop(on bool) foundation.ErrorCode {
	return p.machine.SendEvent(state.Intent{Kind: state.IntentSetAttribute, Param: foundation.NewValue(state.AttributeKV{
		Key:   "loop",
		Value: foundation.NewValue(on),
	})})
}

// GetCurrentPosition returns the estimated playback position in
// microseconds, derived from the audio sink's tracked Pts.
func (p *Player) GetCurrentPosition() (int64, foundation.ErrorCode) {
	p.mu.Lock()
	sink := p.audioSink
	p.mu.Unlock()
	if sink == nil {
		return 0, foundation.ErrorInvalidState
	}
	return sink.PositionMs() * 1000, foundation.Success
}

// GetDuration returns the media's total duration in microseconds, cached
// from the demuxer's container-level meta once Ready.
func (p *Player) GetDuration() (int64, foundation.ErrorCode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.durationUs == 0 {
		return 0, foundation.ErrorNotExisted
	}
	return p.durationUs, foundation.Success
}

// GetState reports the player's current state name, for
// PlayerCallback.OnStateChanged parity (spec.md §6's get_state).
func (p *Player) GetState() string { return p.machine.State().String() }

func (p *Player) onStateChanged(from, to state.Id) {
	p.mu.Lock()
	cb := p.cb
	p.mu.Unlock()
	if cb.OnStateChanged != nil {
		cb.OnStateChanged(to.String())
	}
}

func (p *Player) doOnError(code foundation.ErrorCode) {
	p.mu.Lock()
	cb := p.cb
	p.mu.Unlock()
	if cb.OnError != nil {
		cb.OnError(code)
	}
}

func (p *Player) doOnComplete(singleLoop bool) bool {
	p.mu.Lock()
	cb := p.cb
	p.mu.Unlock()
	if cb.OnCompleted != nil {
		cb.OnCompleted()
	}
	return singleLoop
}

func (p *Player) doOnReady() {
	p.mu.Lock()
	demux := p.demuxFilter
	p.mu.Unlock()
	if demux == nil {
		return
	}
	general := demux.GeneralMeta()
	if general == nil {
		return
	}
	if d, ok := meta.Get[int64](general, meta.TagMediaDuration); ok {
		p.mu.Lock()
		p.durationUs = d
		p.mu.Unlock()
	}
}

// onPipelineReady is the aggregate Ready callback from pipeline.Pipeline:
// every filter currently in the graph (source, demuxer, and whatever
// decoders/sinks onPipelineEvent wired in while the demuxer was preparing)
// has individually reported Ready.
func (p *Player) onPipelineReady() {
	p.machine.SendEventAsync(state.Intent{Kind: state.IntentNotifyReady})
}

func (p *Player) onPipelineEvent(f pipeline.Filter, ev pipeline.Event) {
	switch ev.Type {
	case pipeline.EventPortsAdded:
		if code := p.handlePortsAdded(ev.Ports); !code.OK() {
			p.machine.SendEventAsync(state.Intent{Kind: state.IntentNotifyError, Param: foundation.NewValue(code)})
		}
	case pipeline.EventError:
		p.machine.SendEventAsync(state.Intent{Kind: state.IntentNotifyError, Param: foundation.NewValue(ev.Code)})
	case pipeline.EventComplete:
		if p.isPrimarySink(f) {
			p.machine.SendEventAsync(state.Intent{Kind: state.IntentNotifyComplete})
		}
	}
}

// isPrimarySink reports whether f is the sink whose completion ends
// playback: the audio sink when a track was discovered, else the video
// sink (an audio-only EOS on a video-only stream would otherwise never
// signal completion).
func (p *Player) isPrimarySink(f pipeline.Filter) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audioSink != nil {
		return f == pipeline.Filter(p.audioSink)
	}
	return p.videoSink != nil && f == pipeline.Filter(p.videoSink)
}

// doSetSource resolves and constructs the Source and Demuxer plugins and
// filters for uri, and adds them to the pipeline. It does not yet discover
// streams: that happens inside doPrepareFilters's demuxer Prepare call.
func (p *Player) doSetSource(uri string) foundation.ErrorCode {
	srcName, err := sourcePluginName(uri)
	if err != nil {
		return foundation.ErrorInvalidSource
	}
	srcBase, err := p.reg.Create(plugin.TypeSource, srcName)
	if err != nil {
		return foundation.ErrorNotExisted
	}
	src, ok := srcBase.(plugin.Source)
	if !ok {
		return foundation.ErrorInvalidParameterType
	}

	demuxBase, err := p.reg.Create(plugin.TypeDemuxer, demuxerPluginName(uri))
	if err != nil {
		return foundation.ErrorNotExisted
	}
	demuxer, ok := demuxBase.(plugin.Demuxer)
	if !ok {
		return foundation.ErrorInvalidParameterType
	}

	sourceFilter := filters.NewSourceFilter("source", src, uri)
	demuxFilter := filters.NewDemuxerFilter("demux", demuxer, src, extensionMime(uri), uri)

	if err := p.pipeline.AddFilters(sourceFilter, demuxFilter); err != nil {
		return foundation.ErrorInvalidOperation
	}

	p.mu.Lock()
	p.sourceFilter = sourceFilter
	p.demuxFilter = demuxFilter
	p.mu.Unlock()
	return foundation.Success
}

// doPrepareFilters prepares the source then the demuxer; the demuxer's own
// Prepare call discovers streams and (via onPipelineEvent's
// EventPortsAdded handling) constructs and prepares whatever
// decoders/sinks those streams need, all before this call returns.
func (p *Player) doPrepareFilters() foundation.ErrorCode {
	p.mu.Lock()
	src, demux := p.sourceFilter, p.demuxFilter
	p.mu.Unlock()
	if src == nil || demux == nil {
		return foundation.ErrorInvalidState
	}
	if code := src.Prepare(); !code.OK() {
		return code
	}
	return demux.Prepare()
}

// handlePortsAdded wires one DecoderFilter (unless the stream is already
// PCM) and the shared audio/video sink for each newly-discovered stream,
// negotiating and configuring the link before returning.
func (p *Player) handlePortsAdded(ports []pipeline.PortInfo) foundation.ErrorCode {
	p.mu.Lock()
	demux := p.demuxFilter
	p.mu.Unlock()

	for _, port := range ports {
		demuxOut := findOutPort(demux, port.Name)
		if demuxOut == nil {
			return foundation.ErrorInvalidState
		}

		mime, _ := port.Meta.Mime()
		isVideo := strings.HasPrefix(mime, "video/")

		sinkIn, code := p.ensureSink(isVideo)
		if !code.OK() {
			return code
		}

		producer := demuxOut
		if !port.IsPCM {
			decoderFilter, code := p.addDecoder(port.Name, port.Meta, isVideo)
			if !code.OK() {
				return code
			}
			if err := p.pipeline.LinkPorts(demuxOut, decoderFilter.DefaultInPort()); err != nil {
				return foundation.ErrorInvalidOperation
			}
			if code := decoderFilter.Prepare(); !code.OK() {
				return code
			}
			producer = decoderFilter.DefaultOutPort()
		}

		if err := p.pipeline.LinkPorts(producer, sinkIn); err != nil {
			return foundation.ErrorInvalidOperation
		}
		if caps, code := producer.Negotiate(port.Meta); !code.OK() || len(caps) == 0 {
			return foundation.ErrorNegotiationFailed
		}
		if code := producer.Configure(port.Meta); !code.OK() {
			return code
		}
	}
	return foundation.Success
}

func findOutPort(f pipeline.Filter, name string) *pipeline.OutPort {
	for _, op := range f.OutPorts() {
		if op.Name == name {
			return op
		}
	}
	return nil
}

// ensureSink lazily creates and prepares the single audio or video sink
// this player uses, adding it to the pipeline on first use.
func (p *Player) ensureSink(isVideo bool) (*pipeline.InPort, foundation.ErrorCode) {
	p.mu.Lock()
	audio, video := p.audioSink, p.videoSink
	p.mu.Unlock()

	if isVideo {
		if video != nil {
			return video.DefaultInPort(), foundation.Success
		}
		base, err := p.reg.Create(plugin.TypeVideoSink, nullvideosink.Name)
		if err != nil {
			return nil, foundation.ErrorNotExisted
		}
		sink, ok := base.(plugin.VideoSink)
		if !ok {
			return nil, foundation.ErrorInvalidParameterType
		}
		video = filters.NewVideoSinkFilter("video_sink", sink)
		if err := p.pipeline.AddFilters(video); err != nil {
			return nil, foundation.ErrorInvalidOperation
		}
		if code := video.Prepare(); !code.OK() {
			return nil, code
		}
		p.mu.Lock()
		p.videoSink = video
		p.mu.Unlock()
		return video.DefaultInPort(), foundation.Success
	}

	if audio != nil {
		return audio.DefaultInPort(), foundation.Success
	}
	base, err := p.reg.Create(plugin.TypeAudioSink, ringaudiosink.Name)
	if err != nil {
		return nil, foundation.ErrorNotExisted
	}
	sink, ok := base.(plugin.AudioSink)
	if !ok {
		return nil, foundation.ErrorInvalidParameterType
	}
	audio = filters.NewAudioSinkFilter("audio_sink", sink)
	if err := p.pipeline.AddFilters(audio); err != nil {
		return nil, foundation.ErrorInvalidOperation
	}
	if code := audio.Prepare(); !code.OK() {
		return nil, code
	}
	p.mu.Lock()
	p.audioSink = audio
	p.mu.Unlock()
	return audio.DefaultInPort(), foundation.Success
}

func (p *Player) addDecoder(portName string, streamMeta *meta.Meta, isVideo bool) (*filters.DecoderFilter, foundation.ErrorCode) {
	info, err := p.reg.Select(plugin.TypeCodec, streamMeta)
	if err != nil {
		return nil, foundation.ErrorNegotiationFailed
	}
	base, err := p.reg.Create(plugin.TypeCodec, info.Name)
	if err != nil {
		return nil, foundation.ErrorNotExisted
	}
	codec, ok := base.(plugin.Codec)
	if !ok {
		return nil, foundation.ErrorInvalidParameterType
	}

	bufSize, metaType := audioDecodeBufSize, foundation.BufferMetaAudio
	if isVideo {
		bufSize, metaType = videoDecodeBufSize, foundation.BufferMetaVideo
	}
	decoderFilter := filters.NewDecoderFilter(fmt.Sprintf("decoder_%s", portName), codec, bufSize, metaType)
	if err := p.pipeline.AddFilters(decoderFilter); err != nil {
		return nil, foundation.ErrorInvalidOperation
	}
	p.mu.Lock()
	p.decoders[portName] = decoderFilter
	p.mu.Unlock()
	return decoderFilter, foundation.Success
}

func (p *Player) doPlay() foundation.ErrorCode  { return p.pipeline.Start() }
func (p *Player) doPause() foundation.ErrorCode { return p.pipeline.Pause() }

func (p *Player) doResume() foundation.ErrorCode { return p.pipeline.Resume() }

func (p *Player) doStop() foundation.ErrorCode { return p.pipeline.Stop() }

// doSeek flushes the pipeline, seeks every discovered stream and resets
// the tracked position, then reactivates the pipeline (spec.md §4.6's
// flush_start/flush_end pair around a demuxer seek_to).
func (p *Player) doSeek(timeUs int64) foundation.ErrorCode {
	p.mu.Lock()
	demux, audio, mode := p.demuxFilter, p.audioSink, p.seekMode
	p.mu.Unlock()
	if demux == nil {
		return foundation.ErrorInvalidState
	}
	if code := p.pipeline.FlushStart(); !code.OK() {
		return code
	}
	code := demux.SeekTo(timeUs, mode)
	if audio != nil {
		audio.SeekTo(timeUs / 1000)
	}
	if flushCode := p.pipeline.FlushEnd(); !flushCode.OK() && code.OK() {
		code = flushCode
	}
	return code
}

func (p *Player) doSetAttribute(key string, value foundation.Value) foundation.ErrorCode {
	switch key {
	case "volume":
		vol, ok := foundation.ValueAs[float64](value)
		if !ok {
			return foundation.ErrorInvalidParameterType
		}
		p.mu.Lock()
		sink := p.audioSink
		p.mu.Unlock()
		if sink == nil {
			return foundation.ErrorInvalidState
		}
		return sink.SetVolume(vol)
	case "loop":
		on, ok := foundation.ValueAs[bool](value)
		if !ok {
			return foundation.ErrorInvalidParameterType
		}
		p.exec.SetSingleLoop(on)
		return foundation.Success
	default:
		return foundation.ErrorInvalidParameterValue
	}
}
