package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/pipeline"
	"github.com/chicogong/histreamer/plugin/sink/nullvideosink"
)

func TestVideoSinkFilterPushDataDropsAndCounts(t *testing.T) {
	sink := nullvideosink.New()
	f := NewVideoSinkFilter("video", sink)
	require.True(t, f.Init(nil, nil).OK())
	require.True(t, f.Prepare().OK())
	require.True(t, f.Start().OK())

	buf := foundation.AllocBuffer(8, 0, nil, foundation.BufferMetaVideo)
	require.True(t, f.PushData("in", buf).OK())
	assert.EqualValues(t, 1, sink.Dropped())
}

func TestVideoSinkFilterEmitsCompleteOnEOS(t *testing.T) {
	sink := nullvideosink.New()
	f := NewVideoSinkFilter("video", sink)

	completed := make(chan struct{})
	require.True(t, f.Init(nil, func(ev pipeline.Event) {
		if ev.Type == pipeline.EventComplete {
			close(completed)
		}
	}).OK())
	require.True(t, f.Prepare().OK())
	require.True(t, f.Start().OK())

	buf := foundation.AllocBuffer(8, 0, nil, foundation.BufferMetaVideo)
	buf.Flags |= foundation.BufferFlagEOS
	require.True(t, f.PushData("in", buf).OK())

	select {
	case <-completed:
	default:
		t.Fatal("expected EventComplete to be emitted synchronously from PushData")
	}
}
