// Package nullvideosink implements a VideoSink plugin (spec.md §4.3) that
// drops every buffer, enough to drive audio-only playback to completion
// without a real video output device. Grounded on the teacher's pattern of
// a minimal no-op builtin operator (pkg/operators/builtin) registered
// purely to have something selectable when no richer plugin is needed.
package nullvideosink

import (
	"sync/atomic"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/meta"
	"github.com/chicogong/histreamer/plugin"
	"github.com/chicogong/histreamer/plugin/registry"
)

// Name is this plugin's registered name.
const Name = "null_video_sink"

// Sink discards every frame it receives.
type Sink struct {
	*plugin.BaseState

	dropped atomic.Int64
}

// New returns a Sink.
func New() *Sink {
	s := &Sink{}
	s.BaseState = plugin.NewBaseState(plugin.Hooks{})
	return s
}

// Write drops buf and counts it.
func (s *Sink) Write(buf *foundation.Buffer) foundation.ErrorCode {
	s.dropped.Add(1)
	return foundation.Success
}

// Flush is a no-op: nothing is buffered.
func (s *Sink) Flush() foundation.ErrorCode { return foundation.Success }

// Dropped returns the number of buffers discarded so far, for diagnostics.
func (s *Sink) Dropped() int64 { return s.dropped.Load() }

func init() {
	registry.Register(plugin.RegInfo{
		Name:       Name,
		Type:       plugin.TypeVideoSink,
		Rank:       10, // lowest rank: only selected when no real video sink matches
		APIVersion: registry.HostAPIVersion,
		InCaps:     meta.CapabilitySet{meta.NewCapability(meta.MimeVideoRaw)},
		Creator:    func() (plugin.Base, error) { return New(), nil },
		License:    "Apache-2.0",
	})
}
