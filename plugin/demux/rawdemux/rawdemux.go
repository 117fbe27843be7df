// Package rawdemux implements the passthrough Demuxer (spec.md §4.3):
// a container with exactly one elementary stream, where "demuxing" is just
// relaying the upstream Source's bytes unchanged. Grounded on the
// teacher's thin builtin operators (pkg/operators/builtin/scale.go) for the
// "smallest possible RegInfo-registered plugin" shape.
package rawdemux

import (
	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/meta"
	"github.com/chicogong/histreamer/plugin"
	"github.com/chicogong/histreamer/plugin/registry"
)

// Name is this plugin's registered name.
const Name = "raw_demux"

// Demuxer relays its data source's bytes as a single elementary stream,
// tagged with the mime given to SetDataSource.
type Demuxer struct {
	*plugin.BaseState

	src  plugin.Source
	mime string
}

// New returns an unconfigured raw Demuxer.
func New() *Demuxer {
	d := &Demuxer{}
	d.BaseState = plugin.NewBaseState(plugin.Hooks{})
	return d
}

// SetDataSource wires the upstream Source this demuxer reads from, and the
// mime type to report for the single stream it exposes (spec.md §4.3: "a
// data-source-helper that the engine supplies").
func (d *Demuxer) SetDataSource(src plugin.Source, mime string) {
	d.src = src
	d.mime = mime
}

// GetMediaInfo reports a single stream carrying d.mime and, when the
// source reports its size, a media_file_size tag.
func (d *Demuxer) GetMediaInfo() (*plugin.MediaInfo, foundation.ErrorCode) {
	if d.src == nil {
		return nil, foundation.ErrorInvalidState
	}
	stream := meta.New()
	meta.Set(stream, meta.TagMime, d.mime)
	meta.Set(stream, meta.TagStreamIndex, uint32(0))

	general := meta.New()
	if size, code := d.src.GetSize(); code.OK() {
		meta.Set(general, meta.TagMediaFileSize, size)
	}

	return &plugin.MediaInfo{General: general, Streams: []*meta.Meta{stream}}, foundation.Success
}

// ReadFrame relays the next chunk of the source's bytes as stream 0's next
// frame; any other streamIndex is rejected since raw_demux exposes exactly
// one stream.
func (d *Demuxer) ReadFrame(buf *foundation.Buffer, streamIndex int) foundation.ErrorCode {
	if d.src == nil {
		return foundation.ErrorInvalidState
	}
	if streamIndex != 0 {
		return foundation.ErrorInvalidParameterValue
	}
	return d.src.Read(buf, buf.Capacity())
}

// SeekTo forwards to the source when it supports byte seeking; other modes
// are unimplemented since a raw stream carries no timestamp information.
func (d *Demuxer) SeekTo(streamIndex int, timeUs int64, mode plugin.SeekMode) foundation.ErrorCode {
	if d.src == nil {
		return foundation.ErrorInvalidState
	}
	if mode != plugin.SeekByte {
		return foundation.ErrorUnimplemented
	}
	if !d.src.IsSeekable() {
		return foundation.ErrorUnsupportedFormat
	}
	return d.src.SeekTo(timeUs)
}

func init() {
	registry.Register(plugin.RegInfo{
		Name:       Name,
		Type:       plugin.TypeDemuxer,
		Rank:       10, // lowest rank: only selected when nothing more specific matches
		APIVersion: registry.HostAPIVersion,
		InCaps:     meta.CapabilitySet{meta.NewCapability("*")},
		OutCaps:    meta.CapabilitySet{meta.NewCapability("*")},
		Creator:    func() (plugin.Base, error) { return New(), nil },
		License:    "Apache-2.0",
	})
}
