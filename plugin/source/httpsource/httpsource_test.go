package httpsource

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/chicogong/histreamer/foundation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rangeServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Accept-Ranges", "bytes")
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		if r.Method == http.MethodHead {
			return
		}
		rng := r.Header.Get("Range")
		if rng == "" {
			w.Write([]byte(body))
			return
		}
		rest, ok := strings.CutPrefix(rng, "bytes=")
		from, _, _ := strings.Cut(rest, "-")
		start, err := strconv.Atoi(from)
		if !ok || err != nil || start >= len(body) {
			w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
			return
		}
		w.WriteHeader(http.StatusPartialContent)
		w.Write([]byte(body[start:]))
	}))
}

func TestSetSourceRejectsNonHTTPScheme(t *testing.T) {
	s := New()
	code := s.SetSource("file:///a.mp3")
	assert.Equal(t, foundation.ErrorInvalidSource, code)
}

func TestSetSourceAndReadReturnsBody(t *testing.T) {
	srv := rangeServer(t, "hello world")
	defer srv.Close()

	s := New()
	require.True(t, s.SetSource(srv.URL).OK())

	buf := foundation.AllocBuffer(32, 0, nil, foundation.BufferMetaAudio)
	require.True(t, s.Read(buf, 32).OK())
	assert.Equal(t, "hello world", string(buf.Bytes()))
}

func TestGetSizeReflectsContentLength(t *testing.T) {
	srv := rangeServer(t, "0123456789")
	defer srv.Close()

	s := New()
	require.True(t, s.SetSource(srv.URL).OK())
	size, code := s.GetSize()
	require.True(t, code.OK())
	assert.EqualValues(t, 10, size)
}

func TestSeekToReopensAtOffset(t *testing.T) {
	srv := rangeServer(t, "0123456789")
	defer srv.Close()

	s := New()
	require.True(t, s.SetSource(srv.URL).OK())
	require.True(t, s.IsSeekable())
	require.True(t, s.SeekTo(5).OK())

	buf := foundation.AllocBuffer(32, 0, nil, foundation.BufferMetaAudio)
	require.True(t, s.Read(buf, 32).OK())
	assert.Equal(t, "56789", string(buf.Bytes()))
}
