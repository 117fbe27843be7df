package filters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/plugin/source/filesource"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSourceFilterPullDataReadsFile(t *testing.T) {
	path := writeTempFile(t, "hello world")
	src := filesource.New()
	f := NewSourceFilter("src", src, "file://"+path)

	require.True(t, f.Init(nil, nil).OK())
	require.True(t, f.Prepare().OK())
	require.True(t, f.Start().OK())

	buf := foundation.AllocBuffer(32, 0, nil, foundation.BufferMetaAudio)
	code := f.PullData(0, 32, buf)
	require.True(t, code.OK())
	assert.Equal(t, "hello world", string(buf.Bytes()))
}

func TestSourceFilterPullDataReportsEndOfStream(t *testing.T) {
	path := writeTempFile(t, "ab")
	src := filesource.New()
	f := NewSourceFilter("src", src, "file://"+path)
	require.True(t, f.Init(nil, nil).OK())
	require.True(t, f.Prepare().OK())
	require.True(t, f.Start().OK())

	first := foundation.AllocBuffer(2, 0, nil, foundation.BufferMetaAudio)
	require.True(t, f.PullData(0, 2, first).OK())

	second := foundation.AllocBuffer(2, 0, nil, foundation.BufferMetaAudio)
	code := f.PullData(2, 2, second)
	assert.Equal(t, foundation.EndOfStream, code)
}

func TestSourceFilterPushDataUnsupported(t *testing.T) {
	src := filesource.New()
	f := NewSourceFilter("src", src, "file:///dev/null")
	buf := foundation.AllocBuffer(8, 0, nil, foundation.BufferMetaAudio)
	assert.Equal(t, foundation.ErrorInvalidOperation, f.PushData("in", buf))
}
