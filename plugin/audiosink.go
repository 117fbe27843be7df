package plugin

import "github.com/chicogong/histreamer/foundation"

// AudioSink consumes decoded PCM and renders it (spec.md §4.3). Write may
// block briefly while the underlying device drains; Pause/Resume suspend
// and resume rendering without discarding queued audio, Flush discards it.
type AudioSink interface {
	Base
	Write(buf *foundation.Buffer) foundation.ErrorCode
	Flush() foundation.ErrorCode
	SetVolume(volume float64) foundation.ErrorCode
	GetLatencyMs() (int64, foundation.ErrorCode)
}
