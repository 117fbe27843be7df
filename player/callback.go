package player

import "github.com/chicogong/histreamer/foundation"

// Callback is the embedder's PlayerCallback (spec.md §6): hooks fired for
// end-of-stream, error, and state-transition notifications. Any field left
// nil is simply not invoked.
type Callback struct {
	OnCompleted    func()
	OnError        func(code foundation.ErrorCode)
	OnStateChanged func(stateName string)
}
