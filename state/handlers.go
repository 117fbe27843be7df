package state

import "github.com/chicogong/histreamer/foundation"

// register installs a handler in handlerTable; called from init() below
// so the full transition table (spec.md §4.6) lives in one readable place.
func register(id Id, kind IntentKind, h Handler) {
	handlerTable[id][kind] = h
}

func init() {
	register(Init, IntentSetSource, func(exec *Executor, intent Intent) (foundation.ErrorCode, Action) {
		src, _ := foundation.ValueAs[string](intent.Param)
		if code := exec.doSetSource(src); !code.OK() {
			return code, ActionButt
		}
		return foundation.Success, TransToPreparing
	})
	register(Init, IntentStop, func(*Executor, Intent) (foundation.ErrorCode, Action) {
		return foundation.Success, TransToInit
	})

	register(Preparing, IntentNotifyReady, func(*Executor, Intent) (foundation.ErrorCode, Action) {
		return foundation.Success, TransToReady
	})
	register(Preparing, IntentPlay, func(*Executor, Intent) (foundation.ErrorCode, Action) {
		return foundation.Success, ActionPending
	})
	register(Preparing, IntentSeek, func(exec *Executor, intent Intent) (foundation.ErrorCode, Action) {
		ts, _ := foundation.ValueAs[int64](intent.Param)
		return exec.doSeek(ts), ActionButt
	})
	register(Preparing, IntentStop, func(*Executor, Intent) (foundation.ErrorCode, Action) {
		return foundation.Success, TransToInit
	})

	register(Ready, IntentPlay, func(*Executor, Intent) (foundation.ErrorCode, Action) {
		return foundation.Success, TransToPlaying
	})
	register(Ready, IntentSeek, func(exec *Executor, intent Intent) (foundation.ErrorCode, Action) {
		ts, _ := foundation.ValueAs[int64](intent.Param)
		return exec.doSeek(ts), ActionButt
	})
	register(Ready, IntentStop, func(*Executor, Intent) (foundation.ErrorCode, Action) {
		return foundation.Success, TransToInit
	})

	register(Playing, IntentPause, func(*Executor, Intent) (foundation.ErrorCode, Action) {
		return foundation.Success, TransToPause
	})
	register(Playing, IntentSeek, func(exec *Executor, intent Intent) (foundation.ErrorCode, Action) {
		ts, _ := foundation.ValueAs[int64](intent.Param)
		return exec.doSeek(ts), ActionButt
	})
	register(Playing, IntentStop, func(*Executor, Intent) (foundation.ErrorCode, Action) {
		return foundation.Success, TransToInit
	})
	register(Playing, IntentNotifyComplete, func(exec *Executor, intent Intent) (foundation.ErrorCode, Action) {
		exec.doOnComplete()
		return foundation.Success, ActionButt
	})

	register(Pause, IntentPlay, func(*Executor, Intent) (foundation.ErrorCode, Action) {
		return foundation.Success, TransToPlaying
	})
	register(Pause, IntentResume, func(*Executor, Intent) (foundation.ErrorCode, Action) {
		return foundation.Success, TransToPlaying
	})
	register(Pause, IntentSeek, func(exec *Executor, intent Intent) (foundation.ErrorCode, Action) {
		ts, _ := foundation.ValueAs[int64](intent.Param)
		return exec.doSeek(ts), ActionButt
	})
	register(Pause, IntentStop, func(*Executor, Intent) (foundation.ErrorCode, Action) {
		return foundation.Success, TransToInit
	})

	// SetAttribute (e.g. volume, loop) applies whenever a pipeline exists to
	// receive it; spec.md §4.6 lists it in every state's intent set but the
	// transition table only matters once filters exist to configure.
	setAttr := func(exec *Executor, intent Intent) (foundation.ErrorCode, Action) {
		kv, ok := foundation.ValueAs[AttributeKV](intent.Param)
		if !ok {
			return foundation.ErrorInvalidParameterType, ActionButt
		}
		return exec.doSetAttribute(kv.Key, kv.Value), ActionButt
	}
	register(Ready, IntentSetAttribute, setAttr)
	register(Playing, IntentSetAttribute, setAttr)
	register(Pause, IntentSetAttribute, setAttr)
}

// AttributeKV is the parameter shape for IntentSetAttribute.
type AttributeKV struct {
	Key   string
	Value foundation.Value
}
