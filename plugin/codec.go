package plugin

import (
	"time"

	"github.com/chicogong/histreamer/foundation"
)

// Codec is an asynchronous encode/decode stage (spec.md §4.3): the caller
// pushes buffers onto the input and output queues and is notified of
// completion through a DataCallback rather than blocking on the call that
// queued the buffer. QueueInputBuffer/QueueOutputBuffer are the producer
// entry points; the plugin processes queued work on its own goroutine and
// reports results through the DataCallback.
type Codec interface {
	Base
	SetDataCallback(cb DataCallback)
	QueueInputBuffer(buf *foundation.Buffer, timeout time.Duration) foundation.ErrorCode
	QueueOutputBuffer(buf *foundation.Buffer, timeout time.Duration) foundation.ErrorCode
	Flush() foundation.ErrorCode
}
