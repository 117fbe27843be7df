package filters

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chicogong/histreamer/meta"
	"github.com/chicogong/histreamer/pipeline"
	"github.com/chicogong/histreamer/plugin"
	"github.com/chicogong/histreamer/plugin/demux/rawdemux"
	"github.com/chicogong/histreamer/plugin/source/filesource"
)

func TestDemuxerFilterDiscoversStreamAndPumpsFrames(t *testing.T) {
	path := writeTempFile(t, "abcdef")
	src := filesource.New()
	require.True(t, src.Init().OK())
	require.True(t, src.SetSource("file://"+path).OK())
	require.True(t, src.Prepare().OK())

	var gotPorts []pipeline.PortInfo
	completed := make(chan struct{})
	f := NewDemuxerFilter("demux", rawdemux.New(), src, meta.MimeAudioRaw, "file://"+path)
	require.True(t, f.Init(nil, func(ev pipeline.Event) {
		switch ev.Type {
		case pipeline.EventPortsAdded:
			gotPorts = ev.Ports
		case pipeline.EventComplete:
			close(completed)
		}
	}).OK())
	require.True(t, f.Prepare().OK())
	require.Len(t, gotPorts, 1)
	assert.Equal(t, "stream_0", gotPorts[0].Name)

	sink := newCapturingFilter("sink")
	require.NoError(t, pipeline.Connect(f.OutPorts()[0], sink.DefaultInPort(), noPipelineOwner))

	require.True(t, f.Start().OK())
	select {
	case <-completed:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for demuxer to report EventComplete")
	}

	bufs := sink.Buffers()
	require.NotEmpty(t, bufs)
	var all []byte
	for _, b := range bufs {
		all = append(all, b.Bytes()...)
	}
	assert.Equal(t, "abcdef", string(all))
	assert.True(t, bufs[len(bufs)-1].IsEOS())
}

func TestDemuxerFilterRejectsUnboundDemuxer(t *testing.T) {
	// A demuxer that implements neither rawSourceBinder nor *hlsdemux.Demuxer
	// cannot be bound; GetMediaInfo is never reached.
	src := filesource.New()
	demux := &unbindableDemuxer{BaseState: plugin.NewBaseState(plugin.Hooks{})}
	f := NewDemuxerFilter("demux", demux, src, meta.MimeAudioRaw, "file:///nonexistent")
	require.True(t, f.Init(nil, nil).OK())
	code := f.Prepare()
	assert.False(t, code.OK())
}
