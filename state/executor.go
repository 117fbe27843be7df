package state

import "github.com/chicogong/histreamer/foundation"

// ExecutorHooks supplies the collaborator behavior spec.md §4.6 assigns to
// the PlayExecutor. The player package constructs these from a concrete
// pipeline.Pipeline, plugin registry and user PlayerCallback; keeping them
// as plain funcs here lets state.Machine be tested without importing
// pipeline/plugin at all.
type ExecutorHooks struct {
	SetSource      func(uri string) foundation.ErrorCode
	PrepareFilters func() foundation.ErrorCode
	Play           func() foundation.ErrorCode
	Pause          func() foundation.ErrorCode
	Resume         func() foundation.ErrorCode
	Stop           func() foundation.ErrorCode
	Seek           func(timeUs int64) foundation.ErrorCode
	SetAttribute   func(key string, value foundation.Value) foundation.ErrorCode
	OnReady        func() // cache source/stream meta
	OnComplete     func(singleLoop bool) (seekToZero bool) // returns whether to loop
	OnError        func(code foundation.ErrorCode)
}

// Executor is the PlayExecutor: the glue spec.md §4.6 describes between
// the Machine and the pipeline. All actual side effects are delegated to
// Hooks; Executor itself only sequences them and holds single-loop state.
type Executor struct {
	hooks      ExecutorHooks
	singleLoop bool
	machine    *Machine // set by NewMachine via SetMachine, for async Seek(0)/Stop after completion
}

// NewExecutor returns an Executor driven by hooks.
func NewExecutor(hooks ExecutorHooks) *Executor {
	return &Executor{hooks: hooks}
}

// SetMachine wires the Executor back to the Machine that owns it, needed
// for do_on_complete's asynchronous Seek(0)/Stop re-dispatch.
func (e *Executor) SetMachine(m *Machine) { e.machine = m }

// SetSingleLoop toggles single-loop playback (spec.md §12 supplement).
func (e *Executor) SetSingleLoop(on bool) { e.singleLoop = on }

func (e *Executor) doSetSource(uri string) foundation.ErrorCode {
	if e.hooks.SetSource == nil {
		return foundation.Success
	}
	return e.hooks.SetSource(uri)
}

func (e *Executor) prepareFilters() {
	if e.hooks.PrepareFilters == nil {
		return
	}
	if code := e.hooks.PrepareFilters(); !code.OK() {
		e.machine.SendEventAsync(Intent{Kind: IntentNotifyError, Param: foundation.NewValue(code)})
	}
}

func (e *Executor) doPlay() foundation.ErrorCode {
	if e.hooks.Play == nil {
		return foundation.Success
	}
	return e.hooks.Play()
}

func (e *Executor) doResume() foundation.ErrorCode {
	if e.hooks.Resume == nil {
		return foundation.Success
	}
	return e.hooks.Resume()
}

func (e *Executor) doPause() foundation.ErrorCode {
	if e.hooks.Pause == nil {
		return foundation.Success
	}
	return e.hooks.Pause()
}

func (e *Executor) doStop() foundation.ErrorCode {
	if e.hooks.Stop == nil {
		return foundation.Success
	}
	return e.hooks.Stop()
}

// doSeek performs pipeline flush-start, flush-end, then demuxer seek_to,
// per spec.md §4.6. The flush pair is the pipeline's job; hooks.Seek is
// expected to perform all three steps since only the player package has a
// handle on both the pipeline and the demuxer filter.
func (e *Executor) doSeek(timeUs int64) foundation.ErrorCode {
	if e.hooks.Seek == nil {
		return foundation.Success
	}
	return e.hooks.Seek(timeUs)
}

func (e *Executor) doSetAttribute(key string, value foundation.Value) foundation.ErrorCode {
	if e.hooks.SetAttribute == nil {
		return foundation.Success
	}
	return e.hooks.SetAttribute(key, value)
}

func (e *Executor) doOnReady() {
	if e.hooks.OnReady != nil {
		e.hooks.OnReady()
	}
}

// doOnComplete implements spec.md §4.6: if single_loop is set, async-send
// Seek(0); else async-send Stop. When an OnComplete hook is registered it
// runs first, receives the single-loop flag, and its return value decides
// between Seek(0) and Stop.
func (e *Executor) doOnComplete() {
	loop := e.singleLoop
	if e.hooks.OnComplete != nil {
		loop = e.hooks.OnComplete(e.singleLoop)
	}
	if e.machine != nil {
		if loop {
			e.machine.SendEventAsync(Intent{Kind: IntentSeek, Param: foundation.NewValue(int64(0))})
		} else {
			e.machine.SendEventAsync(Intent{Kind: IntentStop})
		}
	}
}

// doOnError forwards to the user callback; the state machine's base
// NotifyError handler already plans the Init transition.
func (e *Executor) doOnError(code foundation.ErrorCode) {
	if e.hooks.OnError != nil {
		e.hooks.OnError(code)
	}
}
