package filters

import (
	"sync"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/meta"
	"github.com/chicogong/histreamer/pipeline"
	"github.com/chicogong/histreamer/plugin"
)

// unbindableDemuxer implements plugin.Demuxer without exposing either
// binding shape DemuxerFilter.bindSource recognizes, exercising the
// ErrorUnsupportedFormat fallback.
type unbindableDemuxer struct {
	*plugin.BaseState
}

func (d *unbindableDemuxer) GetMediaInfo() (*plugin.MediaInfo, foundation.ErrorCode) {
	return nil, foundation.ErrorUnimplemented
}
func (d *unbindableDemuxer) ReadFrame(*foundation.Buffer, int) foundation.ErrorCode {
	return foundation.ErrorUnimplemented
}
func (d *unbindableDemuxer) SeekTo(int, int64, plugin.SeekMode) foundation.ErrorCode {
	return foundation.ErrorUnimplemented
}

// capturingFilter is a minimal Push-mode leaf filter used across this
// package's tests to observe what a producing filter pushes downstream.
type capturingFilter struct {
	*pipeline.BaseFilter

	mu   sync.Mutex
	bufs []*foundation.Buffer
}

func newCapturingFilter(name string) *capturingFilter {
	c := &capturingFilter{}
	c.BaseFilter = pipeline.NewBaseFilter(name, c, pipeline.Hooks{})
	c.AddInPort(c, "in")
	return c
}

func (c *capturingFilter) SupportedWorkModes() []pipeline.WorkMode {
	return []pipeline.WorkMode{pipeline.ModePush}
}

func (c *capturingFilter) Negotiate(*meta.Meta) (meta.CapabilitySet, foundation.ErrorCode) {
	return meta.CapabilitySet{meta.NewCapability("*")}, foundation.Success
}

func (c *capturingFilter) Configure(*meta.Meta) foundation.ErrorCode { return foundation.Success }

func (c *capturingFilter) PushData(portName string, buf *foundation.Buffer) foundation.ErrorCode {
	c.mu.Lock()
	c.bufs = append(c.bufs, buf)
	c.mu.Unlock()
	return foundation.Success
}

func (c *capturingFilter) PullData(int64, int, *foundation.Buffer) foundation.ErrorCode {
	return foundation.ErrorInvalidOperation
}

func (c *capturingFilter) Buffers() []*foundation.Buffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*foundation.Buffer(nil), c.bufs...)
}

func noPipelineOwner(pipeline.Filter) *pipeline.Pipeline { return nil }
