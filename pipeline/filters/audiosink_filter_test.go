package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/meta"
	"github.com/chicogong/histreamer/plugin/sink/ringaudiosink"
)

func TestAudioSinkFilterSetVolumeNormalizesToPluginRange(t *testing.T) {
	sink := ringaudiosink.New(1 << 10)
	f := NewAudioSinkFilter("audio", sink)

	require.True(t, f.SetVolume(150).OK())
	assert.Equal(t, 0.5, sink.Volume())
}

func TestAudioSinkFilterSetVolumeRejectsOutOfRange(t *testing.T) {
	sink := ringaudiosink.New(1 << 10)
	f := NewAudioSinkFilter("audio", sink)

	assert.Equal(t, foundation.ErrorInvalidParameterValue, f.SetVolume(301))
	assert.Equal(t, foundation.ErrorInvalidParameterValue, f.SetVolume(-1))
}

func TestAudioSinkFilterConfigureSetsByteRate(t *testing.T) {
	sink := ringaudiosink.New(1 << 20)
	f := NewAudioSinkFilter("audio", sink)

	m := meta.New()
	meta.Set(m, meta.TagAudioChannels, uint32(2))
	meta.Set(m, meta.TagAudioSampleRate, uint32(48000))
	require.True(t, f.Configure(m).OK())

	buf := foundation.AllocBuffer(1024, 0, nil, foundation.BufferMetaAudio)
	buf.Write(make([]byte, 1024), -1)
	require.True(t, f.Init(nil, nil).OK())
	require.True(t, f.Prepare().OK())
	require.True(t, f.Start().OK())
	require.True(t, f.PushData("in", buf).OK())

	latency, code := f.GetLatencyMs()
	require.True(t, code.OK())
	// 1024 bytes / (2 channels * 48000 Hz * 2 bytes/sample / 1000) = ~5.3ms
	assert.Greater(t, latency, int64(0))
}

func TestAudioSinkFilterPushDataAdvancesPosition(t *testing.T) {
	sink := ringaudiosink.New(1 << 10)
	f := NewAudioSinkFilter("audio", sink)
	require.True(t, f.Init(nil, nil).OK())
	require.True(t, f.Prepare().OK())
	require.True(t, f.Start().OK())

	buf := foundation.AllocBuffer(16, 0, nil, foundation.BufferMetaAudio)
	buf.Pts = 2_000_000 // 2s, in microseconds
	require.True(t, f.PushData("in", buf).OK())

	assert.Equal(t, int64(2000), f.PositionMs())
}
