package rawdemux

import (
	"testing"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/meta"
	"github.com/chicogong/histreamer/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	*plugin.BaseState
	data     []byte
	pos      int
	size     int64
	seekable bool
}

func newStubSource(data string, size int64, seekable bool) *stubSource {
	return &stubSource{
		BaseState: plugin.NewBaseState(plugin.Hooks{}),
		data:      []byte(data),
		size:      size,
		seekable:  seekable,
	}
}

func (s *stubSource) SetSource(string) foundation.ErrorCode { return foundation.Success }

func (s *stubSource) Read(buf *foundation.Buffer, wantLen int) foundation.ErrorCode {
	if s.pos >= len(s.data) {
		buf.Flags |= foundation.BufferFlagEOS
		return foundation.EndOfStream
	}
	end := s.pos + wantLen
	if end > len(s.data) {
		end = len(s.data)
	}
	buf.Write(s.data[s.pos:end], -1)
	s.pos = end
	return foundation.Success
}

func (s *stubSource) GetSize() (int64, foundation.ErrorCode) { return s.size, foundation.Success }
func (s *stubSource) IsSeekable() bool                       { return s.seekable }
func (s *stubSource) SeekTo(offset int64) foundation.ErrorCode {
	s.pos = int(offset)
	return foundation.Success
}

func TestGetMediaInfoReportsSingleStream(t *testing.T) {
	d := New()
	src := newStubSource("hello", 5, true)
	d.SetDataSource(src, meta.MimeAudioRaw)

	info, code := d.GetMediaInfo()
	require.True(t, code.OK())
	require.Len(t, info.Streams, 1)
	mime, ok := info.Streams[0].Mime()
	require.True(t, ok)
	assert.Equal(t, meta.MimeAudioRaw, mime)

	size, ok := meta.Get[int64](info.General, meta.TagMediaFileSize)
	require.True(t, ok)
	assert.EqualValues(t, 5, size)
}

func TestReadFrameRelaysSourceBytes(t *testing.T) {
	d := New()
	src := newStubSource("hello", 5, true)
	d.SetDataSource(src, meta.MimeAudioRaw)

	buf := foundation.AllocBuffer(16, 0, nil, foundation.BufferMetaAudio)
	code := d.ReadFrame(buf, 0)
	require.True(t, code.OK())
	assert.Equal(t, "hello", string(buf.Bytes()))
}

func TestReadFrameRejectsUnknownStreamIndex(t *testing.T) {
	d := New()
	src := newStubSource("hello", 5, true)
	d.SetDataSource(src, meta.MimeAudioRaw)

	buf := foundation.AllocBuffer(16, 0, nil, foundation.BufferMetaAudio)
	code := d.ReadFrame(buf, 1)
	assert.Equal(t, foundation.ErrorInvalidParameterValue, code)
}

func TestSeekToByteForwardsToSource(t *testing.T) {
	d := New()
	src := newStubSource("0123456789", 10, true)
	d.SetDataSource(src, meta.MimeAudioRaw)

	code := d.SeekTo(0, 5, plugin.SeekByte)
	require.True(t, code.OK())

	buf := foundation.AllocBuffer(16, 0, nil, foundation.BufferMetaAudio)
	require.True(t, d.ReadFrame(buf, 0).OK())
	assert.Equal(t, "56789", string(buf.Bytes()))
}
