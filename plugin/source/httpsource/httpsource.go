// Package httpsource implements a Source plugin reading http(s):// URIs,
// grounded on the teacher's pkg/storage/http.go (HTTPStorage issuing a GET
// with a context and checking status 200) but adding Range-header seeking,
// since plugin.Source needs SeekTo/IsSeekable where Storage.Get did not.
package httpsource

import (
	"context"
	"fmt"
	"net/http"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/meta"
	"github.com/chicogong/histreamer/plugin"
	"github.com/chicogong/histreamer/plugin/registry"
)

// Name is this plugin's registered name.
const Name = "http_source"

// Source streams bytes from an HTTP(S) origin, re-opening the connection
// with a Range header on every SeekTo.
type Source struct {
	*plugin.BaseState

	client   *http.Client
	uri      string
	size     int64
	seekable bool
	pos      int64
	body     interface {
		Read([]byte) (int, error)
		Close() error
	}
}

// New returns an unconfigured HTTP Source using http.DefaultClient.
func New() *Source {
	s := &Source{client: http.DefaultClient}
	s.BaseState = plugin.NewBaseState(plugin.Hooks{OnDeinit: s.onDeinit})
	return s
}

func (s *Source) onDeinit() foundation.ErrorCode {
	if s.body != nil {
		s.body.Close()
	}
	return foundation.Success
}

// SetSource issues a HEAD request to learn size and Range support, then
// opens the body stream from offset 0.
func (s *Source) SetSource(uri string) foundation.ErrorCode {
	if scheme := schemeOf(uri); scheme != "http" && scheme != "https" {
		return foundation.ErrorInvalidSource
	}
	s.uri = uri

	if resp, err := s.client.Head(uri); err == nil {
		s.size = resp.ContentLength
		s.seekable = resp.Header.Get("Accept-Ranges") == "bytes"
		resp.Body.Close()
	}

	return s.openFrom(0)
}

func (s *Source) openFrom(offset int64) foundation.ErrorCode {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, s.uri, nil)
	if err != nil {
		return foundation.ErrorInvalidSource
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return foundation.ErrorInvalidSource
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return foundation.ErrorInvalidSource
	}
	if s.body != nil {
		s.body.Close()
	}
	s.body = resp.Body
	s.pos = offset
	return foundation.Success
}

func schemeOf(uri string) string {
	for i := 0; i < len(uri); i++ {
		if uri[i] == ':' {
			return uri[:i]
		}
	}
	return ""
}

// Read fills buf with up to wantLen bytes from the current stream
// position.
func (s *Source) Read(buf *foundation.Buffer, wantLen int) foundation.ErrorCode {
	if s.body == nil {
		return foundation.ErrorInvalidState
	}
	tmp := make([]byte, wantLen)
	n, err := s.body.Read(tmp)
	if n > 0 {
		buf.Write(tmp[:n], -1)
		s.pos += int64(n)
	}
	if n == 0 && err != nil {
		buf.Flags |= foundation.BufferFlagEOS
		return foundation.EndOfStream
	}
	return foundation.Success
}

// GetSize returns the Content-Length learned at SetSource time.
func (s *Source) GetSize() (int64, foundation.ErrorCode) {
	if s.size <= 0 {
		return 0, foundation.ErrorUnimplemented
	}
	return s.size, foundation.Success
}

// IsSeekable reports whether the origin advertised Accept-Ranges: bytes.
func (s *Source) IsSeekable() bool { return s.seekable }

// SeekTo re-opens the stream at offset via a ranged GET.
func (s *Source) SeekTo(offset int64) foundation.ErrorCode {
	if !s.seekable {
		return foundation.ErrorUnsupportedFormat
	}
	return s.openFrom(offset)
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
