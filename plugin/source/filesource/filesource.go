// Package filesource implements a Source plugin reading file:// URIs,
// grounded on the teacher's pkg/storage/local.go (LocalStorage.Get opening
// os.Open against a parsed path) but exposing a seekable stream instead of
// an io.ReadCloser, per plugin.Source's contract.
package filesource

import (
	"net/url"
	"os"
	"strings"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/meta"
	"github.com/chicogong/histreamer/plugin"
	"github.com/chicogong/histreamer/plugin/registry"
)

// Name is this plugin's registered name.
const Name = "file_source"

// Source reads from a local file opened via a file:// URI.
type Source struct {
	*plugin.BaseState

	file *os.File
}

// New returns an unconfigured file Source.
func New() *Source {
	s := &Source{}
	s.BaseState = plugin.NewBaseState(plugin.Hooks{OnDeinit: s.onDeinit})
	return s
}

func (s *Source) onDeinit() foundation.ErrorCode {
	if s.file != nil {
		s.file.Close()
	}
	return foundation.Success
}

// SetSource opens path for the file:// URI uri.
func (s *Source) SetSource(uri string) foundation.ErrorCode {
	path, ok := parsePath(uri)
	if !ok {
		return foundation.ErrorInvalidSource
	}
	f, err := os.Open(path)
	if err != nil {
		return foundation.ErrorInvalidSource
	}
	s.file = f
	return foundation.Success
}

func parsePath(uri string) (string, bool) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	if u.Path != "" {
		return u.Path, true
	}
	return strings.TrimPrefix(uri, "file://"), true
}

// Read fills buf with up to wantLen bytes read from the current file
// position.
func (s *Source) Read(buf *foundation.Buffer, wantLen int) foundation.ErrorCode {
	if s.file == nil {
		return foundation.ErrorInvalidState
	}
	tmp := make([]byte, wantLen)
	n, err := s.file.Read(tmp)
	if n > 0 {
		buf.Write(tmp[:n], -1)
	}
	if n == 0 && err != nil {
		buf.Flags |= foundation.BufferFlagEOS
		return foundation.EndOfStream
	}
	return foundation.Success
}

// GetSize returns the file's total size.
func (s *Source) GetSize() (int64, foundation.ErrorCode) {
	if s.file == nil {
		return 0, foundation.ErrorInvalidState
	}
	info, err := s.file.Stat()
	if err != nil {
		return 0, foundation.ErrorUnknown
	}
	return info.Size(), foundation.Success
}

// IsSeekable is always true for local files.
func (s *Source) IsSeekable() bool { return true }

// SeekTo repositions the file to offset, absolute from the start.
func (s *Source) SeekTo(offset int64) foundation.ErrorCode {
	if s.file == nil {
		return foundation.ErrorInvalidState
	}
	if _, err := s.file.Seek(offset, 0); err != nil {
		return foundation.ErrorUnknown
	}
	return foundation.Success
}

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
