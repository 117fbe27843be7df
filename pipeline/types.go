// Package pipeline implements the Port/Link/Filter graph and the Pipeline
// container that drives it (spec.md §4.4-§4.5), grounded on the teacher's
// pkg/planner.Graph (node/edge indexing, reverse/topological traversal)
// generalized from a static FFmpeg command DAG to a live, stateful filter
// graph.
package pipeline

import (
	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/meta"
)

// WorkMode is how data crosses a Link (spec.md §4.4).
type WorkMode int

const (
	ModePush WorkMode = iota
	ModePull
)

// FilterState mirrors spec.md §4.4's FilterState table.
type FilterState int

const (
	FilterCreated FilterState = iota
	FilterInitialized
	FilterPreparing
	FilterReady
	FilterRunning
	FilterPaused
)

func (s FilterState) String() string {
	switch s {
	case FilterCreated:
		return "Created"
	case FilterInitialized:
		return "Initialized"
	case FilterPreparing:
		return "Preparing"
	case FilterReady:
		return "Ready"
	case FilterRunning:
		return "Running"
	case FilterPaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// EventType enumerates what a Filter can report upward to its Pipeline.
type EventType int

const (
	EventReady EventType = iota
	EventPortsAdded
	EventError
	EventComplete
)

// PortInfo describes one dynamically-created out-port (spec.md §4.4's
// demuxer dynamic-port case): its name, the Meta of the stream it carries,
// and whether that stream is already raw/PCM (skipping decode).
type PortInfo struct {
	Name   string
	Meta   *meta.Meta
	IsPCM  bool
}

// Event is what a Filter posts to its owning Pipeline.
type Event struct {
	Type  EventType
	Code  foundation.ErrorCode
	Ports []PortInfo
}

// Receiver is implemented by Pipeline; every Filter is handed one at Init
// and uses it to post Events upward.
type Receiver interface {
	OnEvent(f Filter, ev Event)
}

// Callback lets a Filter additionally be notified out-of-band (used by
// dynamic-port filters such as the demuxer to report PortsAdded directly
// to whoever is managing the graph, in addition to the Pipeline).
type Callback func(ev Event)
