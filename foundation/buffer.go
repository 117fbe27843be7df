package foundation

import "math"

// BufferFlag is a bitmask of per-buffer flags.
type BufferFlag uint32

const (
	// BufferFlagEOS marks a buffer as the final, end-of-stream marker for
	// its stream_id. An EOS buffer may legally have size == 0.
	BufferFlagEOS BufferFlag = 1 << 0
)

// PtsUnknown is the sentinel spec.md §4.1 calls "⊥": pts/dts is expressible
// but unknown.
const PtsUnknown int64 = math.MinInt64

// BufferMetaType discriminates the single typed meta a Buffer carries.
type BufferMetaType int

const (
	BufferMetaAudio BufferMetaType = iota
	BufferMetaVideo
)

// BufferMeta is the per-buffer typed description (distinct from the
// stream-level meta package — this is deliberately small and scoped to what
// a sink needs per-frame: layout that can legitimately vary buffer to
// buffer, e.g. a changed video frame's interlace flag).
type BufferMeta struct {
	Type   BufferMetaType
	Fields map[string]Value
}

// NewBufferMeta returns a fresh, empty meta tagged with t — used both at
// Buffer construction and by Reset, which must produce "a fresh instance of
// the same media-type tag" (spec.md §4.1).
func NewBufferMeta(t BufferMetaType) *BufferMeta {
	return &BufferMeta{Type: t, Fields: make(map[string]Value)}
}

func (bm *BufferMeta) Set(key string, v Value) { bm.Fields[key] = v }
func (bm *BufferMeta) Get(key string) (Value, bool) {
	v, ok := bm.Fields[key]
	return v, ok
}

// Buffer is the reference-counted (via Go's GC — no manual refcounting is
// needed in a garbage-collected language; sharing is just holding a *Buffer)
// carrier of one Memory region plus per-sample metadata. spec.md §4.1.
type Buffer struct {
	StreamID string
	Pts      int64
	Dts      int64
	Duration int64
	Flags    BufferFlag

	Meta *BufferMeta

	mem *Memory
}

// AllocBuffer allocates a Buffer with one fresh Memory region of the given
// capacity and alignment (0 = unaligned), tagged with metaType.
func AllocBuffer(capacity, align int, allocator Allocator, metaType BufferMetaType) *Buffer {
	return &Buffer{
		Pts:  PtsUnknown,
		Dts:  PtsUnknown,
		Meta: NewBufferMeta(metaType),
		mem:  NewMemory(capacity, align, allocator),
	}
}

// WrapBuffer returns a Buffer referencing caller-owned memory; the Buffer
// will not free it.
func WrapBuffer(data []byte, size int, metaType BufferMetaType) *Buffer {
	return &Buffer{
		Pts:  PtsUnknown,
		Dts:  PtsUnknown,
		Meta: NewBufferMeta(metaType),
		mem:  WrapMemory(data, size),
	}
}

// Memory exposes the backing Memory region for plugins that need direct
// byte access (most filters only call Write/Read/Size/Capacity below).
func (b *Buffer) Memory() *Memory { return b.mem }

// Capacity returns the buffer's byte capacity.
func (b *Buffer) Capacity() int { return b.mem.GetCapacity() }

// Size returns the buffer's current valid byte size.
func (b *Buffer) Size() int { return b.mem.GetSize() }

// Write copies up to len(src) bytes at position (defaulting to the current
// size when position < 0), returning the number of bytes actually copied.
func (b *Buffer) Write(src []byte, position int) int {
	if position < 0 {
		position = b.mem.GetSize()
	}
	return b.mem.Write(src, position)
}

// Read copies up to len(dst) bytes starting at position (defaulting to 0
// when position < 0), returning the number of bytes actually copied.
func (b *Buffer) Read(dst []byte, position int) int {
	if position < 0 {
		position = 0
	}
	return b.mem.Read(dst, position)
}

// Bytes returns the valid payload as a byte slice (read-only by contract:
// spec.md states a Buffer is never mutated after being handed downstream).
func (b *Buffer) Bytes() []byte {
	return b.mem.GetReadOnlyData(0)
}

// IsEOS reports whether the end-of-stream flag is set.
func (b *Buffer) IsEOS() bool { return b.Flags&BufferFlagEOS != 0 }

// Reset sets size to 0, resets scalar fields, and replaces the typed meta
// with a fresh instance of the same media-type tag (spec.md §4.1). It does
// not reallocate the backing Memory.
func (b *Buffer) Reset() {
	b.mem.Reset()
	b.Pts = PtsUnknown
	b.Dts = PtsUnknown
	b.Duration = 0
	b.Flags = 0
	b.Meta = NewBufferMeta(b.Meta.Type)
}
