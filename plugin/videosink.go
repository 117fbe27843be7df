package plugin

import "github.com/chicogong/histreamer/foundation"

// VideoSink consumes decoded video frames and renders or discards them
// (spec.md §4.3). A null VideoSink implementation simply drops every
// buffer, which is enough to drive audio-only playback to completion.
type VideoSink interface {
	Base
	Write(buf *foundation.Buffer) foundation.ErrorCode
	Flush() foundation.ErrorCode
}
