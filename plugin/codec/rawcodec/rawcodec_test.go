package rawcodec

import (
	"sync"
	"testing"
	"time"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueInputThenOutputRelaysBytes(t *testing.T) {
	c := New(4)
	require.True(t, c.Init().OK())
	require.True(t, c.Prepare().OK())
	require.True(t, c.Start().OK())
	defer c.Stop()

	var mu sync.Mutex
	var gotOutput *foundation.Buffer
	var inputDone bool
	done := make(chan struct{})

	c.SetDataCallback(plugin.DataCallback{
		OnInputDone: func(buf *foundation.Buffer, code foundation.ErrorCode) {
			mu.Lock()
			inputDone = code.OK()
			mu.Unlock()
		},
		OnOutputDone: func(buf *foundation.Buffer, code foundation.ErrorCode) {
			mu.Lock()
			gotOutput = buf
			mu.Unlock()
			close(done)
		},
	})

	in := foundation.AllocBuffer(16, 0, nil, foundation.BufferMetaAudio)
	in.Write([]byte("payload"), -1)
	in.Pts = 42

	out := foundation.AllocBuffer(16, 0, nil, foundation.BufferMetaAudio)

	require.True(t, c.QueueInputBuffer(in, time.Second).OK())
	require.True(t, c.QueueOutputBuffer(out, time.Second).OK())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for OnOutputDone")
	}

	mu.Lock()
	defer mu.Unlock()
	require.True(t, inputDone)
	require.NotNil(t, gotOutput)
	assert.Equal(t, []byte("payload"), gotOutput.Bytes())
	assert.EqualValues(t, 42, gotOutput.Pts)
}

func TestFlushDiscardsQueuedBuffers(t *testing.T) {
	c := New(4)
	require.True(t, c.Init().OK())
	require.True(t, c.Prepare().OK())
	require.True(t, c.Start().OK())
	defer c.Stop()

	buf := foundation.AllocBuffer(16, 0, nil, foundation.BufferMetaAudio)
	require.True(t, c.QueueInputBuffer(buf, time.Second).OK())
	require.True(t, c.Flush().OK())
	assert.Equal(t, 0, c.inQueue.Size())
}
