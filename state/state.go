// Package state implements the player state machine and its PlayExecutor
// collaborator (spec.md §4.6), grounded on the teacher's worker-goroutine
// and job-queue idioms (pkg/executor) generalized from a one-shot FFmpeg
// run to a long-lived, intent-driven state machine.
package state

import (
	"time"

	"github.com/chicogong/histreamer/foundation"
)

// Id enumerates the player's five states (spec.md §4.6).
type Id int

const (
	Init Id = iota
	Preparing
	Ready
	Playing
	Pause
)

func (s Id) String() string {
	switch s {
	case Init:
		return "Init"
	case Preparing:
		return "Preparing"
	case Ready:
		return "Ready"
	case Playing:
		return "Playing"
	case Pause:
		return "Pause"
	default:
		return "Unknown"
	}
}

// IntentKind enumerates the intent vocabulary every state's handler table
// dispatches on.
type IntentKind int

const (
	IntentSetSource IntentKind = iota
	IntentSeek
	IntentPlay
	IntentPause
	IntentResume
	IntentStop
	IntentSetAttribute
	IntentNotifyReady
	IntentNotifyComplete
	IntentNotifyError
)

// Intent is one job posted to the state machine's worker: a kind plus an
// arbitrary parameter (a seek timestamp, a source URI, an attribute
// key/value, an error code...).
type Intent struct {
	Kind  IntentKind
	Param foundation.Value
}

// Action is what a state's handler requests happen next.
type Action int

const (
	TransToInit Action = iota
	TransToPreparing
	TransToReady
	TransToPlaying
	TransToPause
	ActionPending
	ActionButt // no transition; side effect (if any) already applied
)

// Handler computes the (error, action) pair for one intent in one state.
// Executor is the PlayExecutor collaborator that performs side effects.
type Handler func(exec *Executor, intent Intent) (foundation.ErrorCode, Action)

// handlerTable is populated by init() in handlers.go; one map per state,
// falling back to defaultHandler for any intent not explicitly listed
// (spec.md §4.6: "The default handler returns InvalidOperation").
var handlerTable = map[Id]map[IntentKind]Handler{
	Init:      {},
	Preparing: {},
	Ready:     {},
	Playing:   {},
	Pause:     {},
}

func defaultHandler(*Executor, Intent) (foundation.ErrorCode, Action) {
	return foundation.ErrorInvalidOperation, ActionButt
}

// notifyErrorHandler is final-overridden in every state (spec.md §4.6):
// regardless of current state, NotifyError invokes the executor's error
// hook and requests a transition to Init.
func notifyErrorHandler(exec *Executor, intent Intent) (foundation.ErrorCode, Action) {
	code, _ := foundation.ValueAs[foundation.ErrorCode](intent.Param)
	exec.doOnError(code)
	return foundation.Success, TransToInit
}

func dispatch(id Id, exec *Executor, intent Intent) (foundation.ErrorCode, Action) {
	if intent.Kind == IntentNotifyError {
		return notifyErrorHandler(exec, intent)
	}
	if h, ok := handlerTable[id][intent.Kind]; ok {
		return h(exec, intent)
	}
	return defaultHandler(exec, intent)
}

// onEnter runs each state's side effect when transitioned into, per
// spec.md §4.6's "On entering" table. from is the state being left, which
// disambiguates Playing's do_play (entered from Ready) vs do_resume
// (entered from Pause).
func onEnter(id Id, exec *Executor, from Id) {
	switch id {
	case Init:
		exec.doStop()
	case Preparing:
		exec.prepareFilters()
	case Ready:
		exec.doOnReady()
	case Playing:
		if from == Pause {
			exec.doResume()
		} else {
			exec.doPlay()
		}
	case Pause:
		exec.doPause()
	}
}

// timeout is the default synchronous dispatch timeout (spec.md §4.6: "a
// 5-second timeout").
const timeout = 5 * time.Second
