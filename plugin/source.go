package plugin

import "github.com/chicogong/histreamer/foundation"

// Source reads raw bytes from an origin (file, http, s3, in-memory) without
// any format awareness (spec.md §4.3). SetSource accepts a URI-shaped
// string; the concrete scheme determines which registered Source plugin is
// selected.
type Source interface {
	Base
	SetSource(uri string) foundation.ErrorCode
	Read(buf *foundation.Buffer, wantLen int) foundation.ErrorCode
	GetSize() (int64, foundation.ErrorCode)
	IsSeekable() bool
	SeekTo(offset int64) foundation.ErrorCode
}
