package plugin

import (
	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/meta"
)

// MediaInfo describes the streams a Demuxer finds in a source (spec.md
// §4.3): one Meta per elementary stream plus container-level tags
// (duration, file size, title, ...) on General.
type MediaInfo struct {
	General *meta.Meta
	Streams []*meta.Meta
}

// Demuxer splits a container byte stream into elementary-stream frames
// (spec.md §4.3). GetMediaInfo must be callable after Prepare and before
// the first ReadFrame.
type Demuxer interface {
	Base
	GetMediaInfo() (*MediaInfo, foundation.ErrorCode)
	ReadFrame(buf *foundation.Buffer, streamIndex int) foundation.ErrorCode
	SeekTo(streamIndex int, timeUs int64, mode SeekMode) foundation.ErrorCode
}
