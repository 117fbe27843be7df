package ringaudiosink

import (
	"testing"

	"github.com/chicogong/histreamer/foundation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAppendsAndEvictsOldestOnOverflow(t *testing.T) {
	s := New(8)
	b1 := foundation.AllocBuffer(8, 0, nil, foundation.BufferMetaAudio)
	b1.Write([]byte("12345"), -1)
	require.True(t, s.Write(b1).OK())

	b2 := foundation.AllocBuffer(8, 0, nil, foundation.BufferMetaAudio)
	b2.Write([]byte("6789"), -1)
	require.True(t, s.Write(b2).OK())

	assert.Equal(t, []byte("23456789"), s.ring)
}

func TestFlushClearsRing(t *testing.T) {
	s := New(8)
	b := foundation.AllocBuffer(8, 0, nil, foundation.BufferMetaAudio)
	b.Write([]byte("abc"), -1)
	require.True(t, s.Write(b).OK())
	require.True(t, s.Flush().OK())
	assert.Empty(t, s.ring)
}

func TestSetVolumeRejectsOutOfRange(t *testing.T) {
	s := New(8)
	assert.Equal(t, foundation.ErrorInvalidParameterValue, s.SetVolume(1.5))
	assert.Equal(t, foundation.ErrorInvalidParameterValue, s.SetVolume(-0.1))
}

func TestSetVolumeAcceptsInRange(t *testing.T) {
	s := New(8)
	require.True(t, s.SetVolume(0.5).OK())
	assert.Equal(t, 0.5, s.Volume())
}

func TestGetLatencyMsZeroUntilByteRateSet(t *testing.T) {
	s := New(8)
	latency, code := s.GetLatencyMs()
	require.True(t, code.OK())
	assert.Zero(t, latency)
}

func TestGetLatencyMsUsesConfiguredByteRate(t *testing.T) {
	s := New(1024)
	require.True(t, s.SetParameter("bytes_per_ms", foundation.NewValue(float64(4))).OK())

	b := foundation.AllocBuffer(1024, 0, nil, foundation.BufferMetaAudio)
	b.Write(make([]byte, 400), -1)
	require.True(t, s.Write(b).OK())

	latency, code := s.GetLatencyMs()
	require.True(t, code.OK())
	assert.EqualValues(t, 100, latency)
}
