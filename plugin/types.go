package plugin

import (
	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/meta"
)

// RegInfo is what a plugin registers with the registry (spec.md §6): a
// name, a rank used to break ties when several plugins can handle the same
// stream, the API version the plugin was built against, and the input and
// output capabilities it advertises.
type RegInfo struct {
	Name        string
	Description string
	Type        Type
	Rank        int // 0-100; higher wins ties during Select
	APIVersion  APIVersion
	InCaps      meta.CapabilitySet
	OutCaps     meta.CapabilitySet
	Creator     func() (Base, error)
	License     string
}

// Valid reports whether r can be accepted by the registry (spec.md §6:
// "rank outside [0,100] or an API major version mismatch is rejected at
// registration time").
func (r RegInfo) Valid(hostAPI APIVersion) bool {
	if r.Name == "" || r.Type == TypeInvalid || r.Creator == nil {
		return false
	}
	if r.Rank < 0 || r.Rank > 100 {
		return false
	}
	return r.APIVersion.Major == hostAPI.Major
}

// DataCallback is the asynchronous completion contract a Codec plugin calls
// back into (spec.md §4.3): one notification per buffer, once the plugin
// has consumed it (input) or produced it (output).
type DataCallback struct {
	OnInputDone  func(buf *foundation.Buffer, code foundation.ErrorCode)
	OnOutputDone func(buf *foundation.Buffer, code foundation.ErrorCode)
}

// SeekMode mirrors spec.md §4.3's demuxer seek modes.
type SeekMode int

const (
	SeekForward SeekMode = iota
	SeekBackward
	SeekByte
	SeekAny
	SeekFrame
)
