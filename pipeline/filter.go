package pipeline

import (
	"sync"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/meta"
)

// Filter is one stage in a pipeline graph (spec.md §4.4). Concrete filters
// (SourceFilter, DemuxerFilter, DecoderFilter, AudioSinkFilter,
// VideoSinkFilter, all in pipeline/filters) embed BaseFilter for the
// common lifecycle/port bookkeeping and implement the data-path hooks
// (Negotiate, Configure, PushData, PullData, SupportedWorkModes)
// themselves.
type Filter interface {
	Name() string
	State() FilterState

	Init(recv Receiver, cb Callback) foundation.ErrorCode
	Prepare() foundation.ErrorCode
	Start() foundation.ErrorCode
	Pause() foundation.ErrorCode
	Resume() foundation.ErrorCode
	Stop() foundation.ErrorCode
	FlushStart() foundation.ErrorCode
	FlushEnd() foundation.ErrorCode

	DefaultOutPort() *OutPort
	DefaultInPort() *InPort
	OutPorts() []*OutPort
	InPorts() []*InPort
	UnlinkPrevFilters()

	SupportedWorkModes() []WorkMode
	Negotiate(upstreamMeta *meta.Meta) (meta.CapabilitySet, foundation.ErrorCode)
	Configure(upstreamMeta *meta.Meta) foundation.ErrorCode
	PushData(portName string, buf *foundation.Buffer) foundation.ErrorCode
	PullData(offset int64, size int, buf *foundation.Buffer) foundation.ErrorCode
}

// Hooks customizes what each of BaseFilter's lifecycle transitions does;
// nil hooks are no-ops, matching plugin.Hooks's pattern.
type Hooks struct {
	OnInit       func(recv Receiver, cb Callback) foundation.ErrorCode
	OnPrepare    func() foundation.ErrorCode // runs negotiation; returning Success moves Preparing->Ready and emits EventReady
	OnStart      func() foundation.ErrorCode
	OnPause      func() foundation.ErrorCode
	OnResume     func() foundation.ErrorCode
	OnStop       func() foundation.ErrorCode
	OnFlushStart func() foundation.ErrorCode
	OnFlushEnd   func() foundation.ErrorCode
}

// BaseFilter implements Filter's lifecycle state table and port storage;
// concrete filters embed it and supply Hooks plus the data-path methods.
type BaseFilter struct {
	name  string
	hooks Hooks
	self  Filter // the concrete filter embedding this BaseFilter

	mu    sync.Mutex
	state FilterState
	recv  Receiver
	cb    Callback

	outPorts []*OutPort
	inPorts  []*InPort
}

// NewBaseFilter constructs a BaseFilter named name in FilterCreated. self
// must be the concrete Filter embedding this BaseFilter; it is what gets
// reported to the Receiver in OnEvent calls, since the pipeline addresses
// filters by their concrete identity, not by the embedded BaseFilter.
func NewBaseFilter(name string, self Filter, hooks Hooks) *BaseFilter {
	return &BaseFilter{name: name, self: self, hooks: hooks, state: FilterCreated}
}

func (f *BaseFilter) Name() string { return f.name }

func (f *BaseFilter) State() FilterState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *BaseFilter) AddOutPort(owner Filter, name string) *OutPort {
	p := NewOutPort(owner, name)
	f.mu.Lock()
	f.outPorts = append(f.outPorts, p)
	f.mu.Unlock()
	return p
}

func (f *BaseFilter) AddInPort(owner Filter, name string) *InPort {
	p := NewInPort(owner, name)
	f.mu.Lock()
	f.inPorts = append(f.inPorts, p)
	f.mu.Unlock()
	return p
}

func (f *BaseFilter) OutPorts() []*OutPort {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*OutPort(nil), f.outPorts...)
}

func (f *BaseFilter) InPorts() []*InPort {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*InPort(nil), f.inPorts...)
}

func (f *BaseFilter) DefaultOutPort() *OutPort {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.outPorts) == 0 {
		return nil
	}
	return f.outPorts[0]
}

func (f *BaseFilter) DefaultInPort() *InPort {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.inPorts) == 0 {
		return nil
	}
	return f.inPorts[0]
}

// UnlinkPrevFilters severs every in-port's upstream link, used by
// remove_filter_chain's BFS (spec.md §4.5).
func (f *BaseFilter) UnlinkPrevFilters() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, in := range f.inPorts {
		if in.peer != nil {
			in.peer.peer = nil
			in.peer = nil
		}
	}
}

// Emit posts ev to both the registered Callback and the owning Pipeline.
// Data-path hooks (e.g. a demuxer discovering streams) call this directly
// for events BaseFilter itself does not know how to generate, such as
// EventPortsAdded, EventError and EventComplete.
func (f *BaseFilter) Emit(ev Event) {
	f.mu.Lock()
	recv, cb := f.recv, f.cb
	f.mu.Unlock()
	if cb != nil {
		cb(ev)
	}
	if recv != nil {
		recv.OnEvent(f.self, ev)
	}
}

// Init stores the receiver/callback and runs OnInit, transitioning
// Created->Initialized.
func (f *BaseFilter) Init(recv Receiver, cb Callback) foundation.ErrorCode {
	f.mu.Lock()
	if f.state != FilterCreated {
		f.mu.Unlock()
		return foundation.Success
	}
	f.recv, f.cb = recv, cb
	f.mu.Unlock()
	if f.hooks.OnInit != nil {
		if code := f.hooks.OnInit(recv, cb); !code.OK() {
			return code
		}
	}
	f.mu.Lock()
	f.state = FilterInitialized
	f.mu.Unlock()
	return foundation.Success
}

// Prepare transitions Initialized->Preparing->Ready, matching spec.md
// §4.4's "(internal Ready) -> Ready, emits Event::Ready". Concrete filters
// supply negotiation in OnPrepare; BaseFilter only sequences the state and
// event emission.
func (f *BaseFilter) Prepare() foundation.ErrorCode {
	f.mu.Lock()
	switch f.state {
	case FilterReady, FilterRunning, FilterPaused:
		f.mu.Unlock()
		return foundation.Success
	case FilterInitialized:
		f.state = FilterPreparing
	default:
		f.mu.Unlock()
		return foundation.WrongState
	}
	f.mu.Unlock()

	var code foundation.ErrorCode = foundation.Success
	if f.hooks.OnPrepare != nil {
		code = f.hooks.OnPrepare()
	}
	if !code.OK() {
		f.mu.Lock()
		f.state = FilterInitialized
		f.mu.Unlock()
		return code
	}
	f.mu.Lock()
	f.state = FilterReady
	f.mu.Unlock()
	f.Emit(Event{Type: EventReady})
	return foundation.Success
}

func (f *BaseFilter) Start() foundation.ErrorCode {
	f.mu.Lock()
	switch f.state {
	case FilterRunning:
		f.mu.Unlock()
		return foundation.Success
	case FilterReady, FilterPaused:
		f.state = FilterRunning
	default:
		f.mu.Unlock()
		return foundation.WrongState
	}
	f.mu.Unlock()
	if f.hooks.OnStart != nil {
		return f.hooks.OnStart()
	}
	return foundation.Success
}

func (f *BaseFilter) Pause() foundation.ErrorCode {
	f.mu.Lock()
	switch f.state {
	case FilterPaused:
		f.mu.Unlock()
		return foundation.Success
	case FilterRunning:
		f.state = FilterPaused
	default:
		f.mu.Unlock()
		return foundation.WrongState
	}
	f.mu.Unlock()
	if f.hooks.OnPause != nil {
		return f.hooks.OnPause()
	}
	return foundation.Success
}

func (f *BaseFilter) Resume() foundation.ErrorCode {
	f.mu.Lock()
	switch f.state {
	case FilterRunning:
		f.mu.Unlock()
		return foundation.Success
	case FilterPaused:
		f.state = FilterRunning
	default:
		f.mu.Unlock()
		return foundation.WrongState
	}
	f.mu.Unlock()
	if f.hooks.OnResume != nil {
		return f.hooks.OnResume()
	}
	return foundation.Success
}

func (f *BaseFilter) Stop() foundation.ErrorCode {
	f.mu.Lock()
	switch f.state {
	case FilterInitialized, FilterCreated:
		f.mu.Unlock()
		return foundation.Success
	case FilterPreparing, FilterReady, FilterRunning, FilterPaused:
		f.state = FilterInitialized
	default:
		f.mu.Unlock()
		return foundation.WrongState
	}
	f.mu.Unlock()
	if f.hooks.OnStop != nil {
		return f.hooks.OnStop()
	}
	return foundation.Success
}

func (f *BaseFilter) FlushStart() foundation.ErrorCode {
	if f.hooks.OnFlushStart != nil {
		return f.hooks.OnFlushStart()
	}
	return foundation.Success
}

func (f *BaseFilter) FlushEnd() foundation.ErrorCode {
	if f.hooks.OnFlushEnd != nil {
		return f.hooks.OnFlushEnd()
	}
	return foundation.Success
}
