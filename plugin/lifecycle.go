// Package plugin defines the plugin abstraction (spec.md §4.3, §6): the
// base lifecycle every plugin obeys, plus per-type contracts layered on top
// (Source, Demuxer, Codec, AudioSink, VideoSink). Concrete plugin
// implementations live in the sibling plugin/source, plugin/demux,
// plugin/codec and plugin/sink packages; this package only fixes the
// contract.
package plugin

import (
	"sync"

	"github.com/chicogong/histreamer/foundation"
)

// State is the base plugin lifecycle state machine:
//
//	Created → Initialized → Prepared → Running ↔ Paused → Initialized → Destroyed
//
// with Reset returning Running/Paused/Prepared to Initialized and Deinit
// moving any state to Destroyed.
type State int

const (
	StateCreated State = iota
	StateInitialized
	StatePrepared
	StateRunning
	StatePaused
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateInitialized:
		return "Initialized"
	case StatePrepared:
		return "Prepared"
	case StateRunning:
		return "Running"
	case StatePaused:
		return "Paused"
	case StateDestroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

// Type enumerates the plugin kinds the registry manages.
type Type int

const (
	TypeInvalid Type = iota
	TypeSource
	TypeDemuxer
	TypeCodec
	TypeAudioSink
	TypeVideoSink
)

func (t Type) String() string {
	switch t {
	case TypeSource:
		return "Source"
	case TypeDemuxer:
		return "Demuxer"
	case TypeCodec:
		return "Codec"
	case TypeAudioSink:
		return "AudioSink"
	case TypeVideoSink:
		return "VideoSink"
	default:
		return "Invalid"
	}
}

// APIVersion is (major<<16)|minor, per spec.md §6.
type APIVersion struct {
	Major uint16
	Minor uint16
}

// Base is the lifecycle contract every plugin instance obeys. Implementations
// embed BaseState (below) to get idempotent, table-driven transitions for
// free; they only need to supply the behavior hooks (onInit, onStart, ...).
type Base interface {
	Init() foundation.ErrorCode
	Deinit() foundation.ErrorCode
	Prepare() foundation.ErrorCode
	Reset() foundation.ErrorCode
	Start() foundation.ErrorCode
	Stop() foundation.ErrorCode
	Pause() foundation.ErrorCode
	Resume() foundation.ErrorCode
	GetState() State
	SetParameter(key string, value foundation.Value) foundation.ErrorCode
	GetParameter(key string) (foundation.Value, foundation.ErrorCode)
}

// Hooks lets a concrete plugin customize what each lifecycle transition
// does; nil hooks are no-ops. BaseState sequences these through the state
// table below.
type Hooks struct {
	OnInit    func() foundation.ErrorCode
	OnDeinit  func() foundation.ErrorCode
	OnPrepare func() foundation.ErrorCode
	OnReset   func() foundation.ErrorCode
	OnStart   func() foundation.ErrorCode
	OnStop    func() foundation.ErrorCode
	OnPause   func() foundation.ErrorCode
	OnResume  func() foundation.ErrorCode
}

// BaseState implements Base's transition table so every concrete plugin
// gets identical, idempotent lifecycle handling (spec.md §4.3: "Every
// lifecycle call is idempotent against its own terminal state ... Calling
// Start from an inappropriate state fails with WrongState and leaves the
// plugin's state unchanged").
type BaseState struct {
	mu     sync.Mutex
	state  State
	hooks  Hooks
	params map[string]foundation.Value
}

// NewBaseState constructs a BaseState in StateCreated with the given hooks.
func NewBaseState(hooks Hooks) *BaseState {
	return &BaseState{state: StateCreated, hooks: hooks, params: make(map[string]foundation.Value)}
}

func (b *BaseState) GetState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func run(hook func() foundation.ErrorCode) foundation.ErrorCode {
	if hook == nil {
		return foundation.Success
	}
	return hook()
}

func (b *BaseState) Init() foundation.ErrorCode {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateCreated {
		return foundation.Success // idempotent
	}
	if code := run(b.hooks.OnInit); !code.OK() {
		return code
	}
	b.state = StateInitialized
	return foundation.Success
}

func (b *BaseState) Prepare() foundation.ErrorCode {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case StatePrepared, StateRunning, StatePaused:
		return foundation.Success
	case StateInitialized:
		if code := run(b.hooks.OnPrepare); !code.OK() {
			return code
		}
		b.state = StatePrepared
		return foundation.Success
	default:
		return foundation.WrongState
	}
}

func (b *BaseState) Start() foundation.ErrorCode {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case StateRunning:
		return foundation.Success
	case StatePrepared, StatePaused:
		if code := run(b.hooks.OnStart); !code.OK() {
			return code
		}
		b.state = StateRunning
		return foundation.Success
	default:
		return foundation.WrongState
	}
}

func (b *BaseState) Pause() foundation.ErrorCode {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case StatePaused, StateInitialized:
		return foundation.Success
	case StateRunning:
		if code := run(b.hooks.OnPause); !code.OK() {
			return code
		}
		b.state = StatePaused
		return foundation.Success
	default:
		return foundation.WrongState
	}
}

func (b *BaseState) Resume() foundation.ErrorCode {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case StateRunning:
		return foundation.Success
	case StatePaused:
		if code := run(b.hooks.OnResume); !code.OK() {
			return code
		}
		b.state = StateRunning
		return foundation.Success
	default:
		return foundation.WrongState
	}
}

func (b *BaseState) Stop() foundation.ErrorCode {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case StateInitialized:
		return foundation.Success
	case StatePrepared, StateRunning, StatePaused:
		if code := run(b.hooks.OnStop); !code.OK() {
			return code
		}
		b.state = StateInitialized
		return foundation.Success
	default:
		return foundation.WrongState
	}
}

func (b *BaseState) Reset() foundation.ErrorCode {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case StateInitialized:
		return foundation.Success
	case StatePrepared, StateRunning, StatePaused:
		if code := run(b.hooks.OnReset); !code.OK() {
			return code
		}
		b.state = StateInitialized
		return foundation.Success
	default:
		return foundation.WrongState
	}
}

func (b *BaseState) Deinit() foundation.ErrorCode {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateDestroyed {
		return foundation.Success
	}
	if code := run(b.hooks.OnDeinit); !code.OK() {
		return code
	}
	b.state = StateDestroyed
	return foundation.Success
}

func (b *BaseState) SetParameter(key string, value foundation.Value) foundation.ErrorCode {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.params[key] = value
	return foundation.Success
}

func (b *BaseState) GetParameter(key string) (foundation.Value, foundation.ErrorCode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.params[key]
	if !ok {
		return foundation.Value{}, foundation.ErrorNotExisted
	}
	return v, foundation.Success
}
