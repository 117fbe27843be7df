package state

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/internal/log"
	"github.com/chicogong/histreamer/metrics"
	"github.com/chicogong/histreamer/task"
)

// job is one unit of work on the state machine's worker queue.
type job struct {
	id     int64
	intent Intent
}

// Machine owns a single worker goroutine with a FIFO of jobs (spec.md
// §4.6's "Event dispatch model"), grounded on task.Task/task.Queue and
// task.Synchronizer for the synchronous submit/result path.
type Machine struct {
	exec *Executor

	// sessionID correlates this machine's log lines across a player's
	// lifetime; distinct from job ids, which only disambiguate
	// in-flight SendEvent/SendEventAsync calls against one another.
	sessionID string

	mu      sync.Mutex
	current Id

	jobs    *task.Queue[job]
	pending []job
	sync    *task.Synchronizer[int64, foundation.ErrorCode]
	nextID  int64

	worker *task.Task

	onStateChanged func(from, to Id)
}

// SessionID returns the machine's correlation id, stable for its lifetime.
func (m *Machine) SessionID() string { return m.sessionID }

// OnStateChanged registers a callback invoked after every successful state
// transition, used by the player package to surface PlayerCallback's
// on_state_changed hook.
func (m *Machine) OnStateChanged(fn func(from, to Id)) {
	m.mu.Lock()
	m.onStateChanged = fn
	m.mu.Unlock()
}

// NewMachine constructs a Machine in the Init state, driving exec.
func NewMachine(exec *Executor) *Machine {
	m := &Machine{
		exec:      exec,
		sessionID: uuid.NewString(),
		current:   Init,
		jobs:      task.NewQueue[job]("state-machine-jobs", 64),
		sync:      task.NewSynchronizer[int64, foundation.ErrorCode](),
	}
	m.worker = task.NewTask("state-machine-worker", m.runOne)
	exec.SetMachine(m)
	m.worker.Start()
	return m
}

// State returns the machine's current state.
func (m *Machine) State() Id {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// SendEventAsync enqueues intent without waiting for a result.
func (m *Machine) SendEventAsync(intent Intent) {
	id := atomic.AddInt64(&m.nextID, 1)
	m.jobs.PushTimeout(job{id: id, intent: intent}, timeout)
}

// SendEvent enqueues intent and blocks for its result, up to the 5-second
// timeout specified by spec.md §4.6; expiry reports Timeout. Concurrent
// synchronous callers for the same intent kind are not supported by the
// contract (spec.md §4.6) — each call uses a freshly minted job id so
// distinct calls never collide on the Synchronizer even if issued
// concurrently for the same IntentKind.
func (m *Machine) SendEvent(intent Intent) foundation.ErrorCode {
	id := atomic.AddInt64(&m.nextID, 1)
	if !m.jobs.PushTimeout(job{id: id, intent: intent}, timeout) {
		return foundation.ErrorTimedOut
	}
	result, ok := m.sync.WaitFor(id, timeout)
	if !ok {
		return foundation.ErrorTimedOut
	}
	return result
}

// Stop halts the worker goroutine; pending jobs are discarded. The queue
// is closed before the task is stopped so a worker currently blocked
// inside PopTimeout wakes immediately instead of waiting out its timeout.
func (m *Machine) Stop() {
	m.jobs.Close()
	m.worker.Stop()
}

// runOne is task.Task's handler: pop one job from the job queue and apply
// it; apply answers the job's synchronous waiter, if any.
func (m *Machine) runOne() {
	j, ok := m.jobs.PopTimeout(timeout)
	if !ok {
		return
	}
	m.apply(j)
}

// apply runs intent's handler against the current state, transitions if
// requested, and — when a transition actually occurs — drains one pending
// job (spec.md §4.6's ActionPending semantics: "Whenever the worker later
// completes a transition action, it drains one pending job and runs it").
func (m *Machine) apply(j job) {
	m.mu.Lock()
	from := m.current
	m.mu.Unlock()

	code, action := dispatch(from, m.exec, j.intent)

	if action == ActionPending {
		m.mu.Lock()
		m.pending = append(m.pending, j)
		m.mu.Unlock()
		return // not answered yet
	}

	if to, ok := targetState(action); ok {
		m.mu.Lock()
		m.current = to
		cb := m.onStateChanged
		m.mu.Unlock()
		onEnter(to, m.exec, from)
		if cb != nil && to != from {
			cb(from, to)
		}
		if to != from {
			metrics.RecordStateTransition(from.String(), to.String())
			log.WithComponent("state").Debug().
				Str("session", m.sessionID).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("state transition")
		}
	}

	m.sync.Notify(j.id, code)

	if action != ActionButt {
		m.drainOnePending()
	}
}

func (m *Machine) drainOnePending() {
	m.mu.Lock()
	if len(m.pending) == 0 {
		m.mu.Unlock()
		return
	}
	next := m.pending[0]
	m.pending = m.pending[1:]
	m.mu.Unlock()
	m.apply(next)
}

func targetState(a Action) (Id, bool) {
	switch a {
	case TransToInit:
		return Init, true
	case TransToPreparing:
		return Preparing, true
	case TransToReady:
		return Ready, true
	case TransToPlaying:
		return Playing, true
	case TransToPause:
		return Pause, true
	default:
		return Init, false
	}
}
