package player

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chicogong/histreamer/foundation"

	// Registered only for their init() side effect: each plugin package
	// registers itself into registry.Global() on import, which New(cb)
	// resolves against.
	_ "github.com/chicogong/histreamer/plugin/demux/rawdemux"
	_ "github.com/chicogong/histreamer/plugin/source/filesource"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio.raw")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPlayerPlaysRawFileEndToEnd(t *testing.T) {
	path := writeTempFile(t, "abcdefgh")

	completed := make(chan struct{})
	states := make(chan string, 16)
	p := New(Callback{
		OnCompleted:    func() { close(completed) },
		OnStateChanged: func(s string) { states <- s },
	})

	require.True(t, p.SetSource("file://"+path).OK())
	require.True(t, p.Prepare().OK())

	duration, code := p.GetDuration()
	assert.Equal(t, foundation.ErrorNotExisted, code, "a raw stream carries no container duration")
	assert.Zero(t, duration)

	require.True(t, p.Play().OK())

	select {
	case <-completed:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for playback to complete")
	}

	pos, code := p.GetCurrentPosition()
	require.True(t, code.OK())
	assert.GreaterOrEqual(t, pos, int64(0))

	var sawPlaying bool
	drain := true
	for drain {
		select {
		case s := <-states:
			if s == "Playing" {
				sawPlaying = true
			}
		default:
			drain = false
		}
	}
	assert.True(t, sawPlaying, "expected at least one transition into Playing")
}

func TestPlayerPrepareWithoutSourceFails(t *testing.T) {
	p := New(Callback{})
	code := p.Prepare()
	assert.Equal(t, foundation.ErrorInvalidParameterValue, code)
}

func TestPlayerSetSourceUnknownSchemeFailsAtPrepare(t *testing.T) {
	p := New(Callback{})
	require.True(t, p.SetSource("rtsp://example.invalid/stream").OK())
	code := p.Prepare()
	assert.False(t, code.OK())
}

func TestPlayerSetVolumeBeforeReadyFails(t *testing.T) {
	p := New(Callback{})
	code := p.SetVolume(150, 150)
	assert.False(t, code.OK())
}

func TestPlayerGetStateReflectsInit(t *testing.T) {
	p := New(Callback{})
	assert.Equal(t, "Init", p.GetState())
}
