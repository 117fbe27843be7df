package filters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/pipeline"
	"github.com/chicogong/histreamer/plugin/codec/rawcodec"
)

func TestDecoderFilterRelaysInputToOutputPort(t *testing.T) {
	f := NewDecoderFilter("decoder", rawcodec.New(4), 64, foundation.BufferMetaAudio)
	sink := newCapturingFilter("sink")
	require.NoError(t, pipeline.Connect(f.DefaultOutPort(), sink.DefaultInPort(), noPipelineOwner))

	require.True(t, f.Init(nil, nil).OK())
	require.True(t, f.Prepare().OK())
	require.True(t, f.Start().OK())

	in := foundation.AllocBuffer(64, 0, nil, foundation.BufferMetaAudio)
	in.Write([]byte("payload"), -1)
	require.True(t, f.PushData("in", in).OK())

	require.Eventually(t, func() bool {
		return len(sink.Buffers()) > 0
	}, 2*time.Second, 5*time.Millisecond)

	got := sink.Buffers()[0]
	assert.Equal(t, "payload", string(got.Bytes()))
}

func TestDecoderFilterForwardsEOSAndEmitsComplete(t *testing.T) {
	f := NewDecoderFilter("decoder", rawcodec.New(4), 64, foundation.BufferMetaAudio)
	sink := newCapturingFilter("sink")
	require.NoError(t, pipeline.Connect(f.DefaultOutPort(), sink.DefaultInPort(), noPipelineOwner))

	completed := make(chan struct{})
	require.True(t, f.Init(nil, func(ev pipeline.Event) {
		if ev.Type == pipeline.EventComplete {
			close(completed)
		}
	}).OK())
	require.True(t, f.Prepare().OK())
	require.True(t, f.Start().OK())

	eos := foundation.AllocBuffer(64, 0, nil, foundation.BufferMetaAudio)
	eos.Flags |= foundation.BufferFlagEOS
	require.True(t, f.PushData("in", eos).OK())

	select {
	case <-completed:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for EventComplete")
	}
}
