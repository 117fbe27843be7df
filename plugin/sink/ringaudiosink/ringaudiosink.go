// Package ringaudiosink implements an AudioSink plugin (spec.md §4.3) that
// renders PCM into a bounded in-memory ring buffer instead of an actual
// output device. Write never blocks: once the ring is full, the oldest
// bytes are evicted to make room (see Sink).
package ringaudiosink

import (
	"sync"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/meta"
	"github.com/chicogong/histreamer/plugin"
	"github.com/chicogong/histreamer/plugin/registry"
)

// Name is this plugin's registered name.
const Name = "ring_audio_sink"

// bytesPerMsParam is the SetParameter key an upstream AudioSinkFilter uses
// to tell the sink its negotiated PCM byte rate, so GetLatencyMs can
// convert queued bytes to milliseconds.
const bytesPerMsParam = "bytes_per_ms"

// Sink renders PCM into a ring buffer of capacityBytes, dropping the
// oldest data once full (spec.md §12's "Write may block briefly while the
// underlying device drains" rendered here as eviction rather than a real
// blocking device call, since there is no hardware to back-pressure
// against).
type Sink struct {
	*plugin.BaseState

	mu          sync.Mutex
	ring        []byte
	capacity    int
	volume      float64
	bytesPerMs  float64
	paused      bool
	lastPts     int64
}

// New returns a Sink with a ring buffer of capacityBytes, full volume.
func New(capacityBytes int) *Sink {
	s := &Sink{capacity: capacityBytes, volume: 1.0, lastPts: foundation.PtsUnknown}
	s.BaseState = plugin.NewBaseState(plugin.Hooks{
		OnPause: s.onPause,
		OnResume: s.onResume,
	})
	return s
}

func (s *Sink) onPause() foundation.ErrorCode {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
	return foundation.Success
}

func (s *Sink) onResume() foundation.ErrorCode {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
	return foundation.Success
}

// Write appends buf's PCM bytes to the ring buffer, evicting the oldest
// bytes first if the buffer is at capacity. An EOS-flagged buffer is never
// handed to Write by the engine (spec.md §4.3), so Write treats every call
// as renderable payload.
func (s *Sink) Write(buf *foundation.Buffer) foundation.ErrorCode {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := buf.Bytes()
	s.ring = append(s.ring, data...)
	if over := len(s.ring) - s.capacity; over > 0 {
		s.ring = s.ring[over:]
	}
	if buf.Pts != foundation.PtsUnknown {
		s.lastPts = buf.Pts
	}
	return foundation.Success
}

// Flush discards all buffered PCM.
func (s *Sink) Flush() foundation.ErrorCode {
	s.mu.Lock()
	s.ring = nil
	s.mu.Unlock()
	return foundation.Success
}

// SetVolume validates volume against spec.md §4.3's [0,1] plugin-level
// range (player-level [0,300] normalization happens one layer up, in
// AudioSinkFilter).
func (s *Sink) SetVolume(volume float64) foundation.ErrorCode {
	if volume < 0 || volume > 1 {
		return foundation.ErrorInvalidParameterValue
	}
	s.mu.Lock()
	s.volume = volume
	s.mu.Unlock()
	return foundation.Success
}

// Volume returns the sink's current volume, for tests and diagnostics.
func (s *Sink) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// GetLatencyMs estimates rendering latency from queued bytes and the
// negotiated byte rate; it reports 0 until bytes_per_ms has been set.
func (s *Sink) GetLatencyMs() (int64, foundation.ErrorCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bytesPerMs <= 0 {
		return 0, foundation.Success
	}
	return int64(float64(len(s.ring)) / s.bytesPerMs), foundation.Success
}

// SetParameter additionally recognizes bytes_per_ms; all other keys fall
// through to BaseState's generic parameter store.
func (s *Sink) SetParameter(key string, value foundation.Value) foundation.ErrorCode {
	if key == bytesPerMsParam {
		if v, ok := foundation.ValueAs[float64](value); ok {
			s.mu.Lock()
			s.bytesPerMs = v
			s.mu.Unlock()
			return foundation.Success
		}
		return foundation.ErrorInvalidParameterType
	}
	return s.BaseState.SetParameter(key, value)
}

func init() {
	registry.Register(plugin.RegInfo{
		Name:       Name,
		Type:       plugin.TypeAudioSink,
		Rank:       50,
		APIVersion: registry.HostAPIVersion,
		InCaps:     meta.CapabilitySet{meta.NewCapability(meta.MimeAudioRaw)},
		Creator:    func() (plugin.Base, error) { return New(1 << 20), nil },
		License:    "Apache-2.0",
	})
}
