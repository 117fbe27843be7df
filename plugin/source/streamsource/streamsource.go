// Package streamsource implements the in-process push Source variant
// (spec.md §4.3/§12): instead of the engine pulling bytes from a static
// origin, the embedding application calls Push as its own bytes become
// available (e.g. a live encoder feeding the player directly). Grounded on
// Go's io.Pipe, which already gives Push the same blocking backpressure a
// hand-rolled bounded ring buffer would, without reimplementing one.
package streamsource

import (
	"io"
	"net/url"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/meta"
	"github.com/chicogong/histreamer/plugin"
	"github.com/chicogong/histreamer/plugin/registry"
)

// Name is this plugin's registered name.
const Name = "stream_source"

// Source is a Source plugin whose bytes arrive via Push rather than being
// pulled from a file/http/s3 origin.
type Source struct {
	*plugin.BaseState

	r *io.PipeReader
	w *io.PipeWriter
}

// New returns an unconfigured push Source.
func New() *Source {
	s := &Source{}
	s.BaseState = plugin.NewBaseState(plugin.Hooks{OnDeinit: s.onDeinit})
	return s
}

func (s *Source) onDeinit() foundation.ErrorCode {
	if s.w != nil {
		s.w.Close()
	}
	return foundation.Success
}

// SetSource validates uri carries the stream:// scheme and opens the
// pipe; the identifier after the scheme is informational only, Push is
// what actually supplies bytes.
func (s *Source) SetSource(uri string) foundation.ErrorCode {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "stream" {
		return foundation.ErrorInvalidSource
	}
	s.r, s.w = io.Pipe()
	return foundation.Success
}

// Push hands data to the next Read call(s); it blocks until a reader has
// drained enough to accept it.
func (s *Source) Push(data []byte) foundation.ErrorCode {
	if s.w == nil {
		return foundation.ErrorInvalidState
	}
	if _, err := s.w.Write(data); err != nil {
		return foundation.ErrorUnknown
	}
	return foundation.Success
}

// PushEndOfStream signals no further bytes will be pushed; subsequent Read
// calls return EndOfStream once buffered data is drained.
func (s *Source) PushEndOfStream() foundation.ErrorCode {
	if s.w == nil {
		return foundation.ErrorInvalidState
	}
	if err := s.w.Close(); err != nil {
		return foundation.ErrorUnknown
	}
	return foundation.Success
}

// Read fills buf with up to wantLen bytes from the pipe, blocking until
// Push supplies them or PushEndOfStream closes the stream.
func (s *Source) Read(buf *foundation.Buffer, wantLen int) foundation.ErrorCode {
	if s.r == nil {
		return foundation.ErrorInvalidState
	}
	tmp := make([]byte, wantLen)
	n, err := s.r.Read(tmp)
	if n > 0 {
		buf.Write(tmp[:n], -1)
	}
	if err == io.EOF {
		buf.Flags |= foundation.BufferFlagEOS
		return foundation.EndOfStream
	}
	if err != nil {
		return foundation.ErrorUnknown
	}
	return foundation.Success
}

// GetSize is unknown for a live push stream.
func (s *Source) GetSize() (int64, foundation.ErrorCode) {
	return 0, foundation.ErrorUnsupportedFormat
}

// IsSeekable is always false: a push stream has no random access.
func (s *Source) IsSeekable() bool { return false }

// SeekTo is unsupported: see IsSeekable.
func (s *Source) SeekTo(int64) foundation.ErrorCode { return foundation.ErrorUnsupportedFormat }

func init() {
	registry.Register(plugin.RegInfo{
		Name:       Name,
		Type:       plugin.TypeSource,
		Rank:       50,
		APIVersion: registry.HostAPIVersion,
		OutCaps:    meta.CapabilitySet{meta.NewCapability("*")},
		Creator:    func() (plugin.Base, error) { return New(), nil },
		License:    "Apache-2.0",
	})
}
