package filesource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chicogong/histreamer/foundation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.bin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSetSourceOpensFileURI(t *testing.T) {
	path := writeTempFile(t, "hello world")
	s := New()
	code := s.SetSource("file://" + path)
	require.True(t, code.OK())
}

func TestSetSourceRejectsNonFileScheme(t *testing.T) {
	s := New()
	code := s.SetSource("http://example.com/a.mp3")
	assert.Equal(t, foundation.ErrorInvalidSource, code)
}

func TestReadReturnsBytesThenEOS(t *testing.T) {
	path := writeTempFile(t, "abc")
	s := New()
	require.True(t, s.SetSource("file://"+path).OK())

	buf := foundation.AllocBuffer(16, 0, nil, foundation.BufferMetaAudio)
	code := s.Read(buf, 16)
	require.True(t, code.OK())
	assert.Equal(t, []byte("abc"), buf.Bytes())

	buf.Reset()
	code = s.Read(buf, 16)
	assert.Equal(t, foundation.EndOfStream, code)
	assert.True(t, buf.IsEOS())
}

func TestGetSizeReportsFileSize(t *testing.T) {
	path := writeTempFile(t, "0123456789")
	s := New()
	require.True(t, s.SetSource("file://"+path).OK())

	size, code := s.GetSize()
	require.True(t, code.OK())
	assert.EqualValues(t, 10, size)
}

func TestIsSeekableIsAlwaysTrue(t *testing.T) {
	assert.True(t, New().IsSeekable())
}

func TestSeekToRepositionsReads(t *testing.T) {
	path := writeTempFile(t, "0123456789")
	s := New()
	require.True(t, s.SetSource("file://"+path).OK())
	require.True(t, s.SeekTo(5).OK())

	buf := foundation.AllocBuffer(16, 0, nil, foundation.BufferMetaAudio)
	require.True(t, s.Read(buf, 5).OK())
	assert.Equal(t, []byte("56789"), buf.Bytes())
}
