// Package meta implements the stream-description data model (spec.md §3
// and §4.2): a typed key→value map (Meta) and its predicate counterpart
// (Capability), plus the CompatibleWith algorithm that is the sole
// authority for "can plugin P handle stream S?".
package meta

// Tag identifies a well-known meta key. The runtime type stored under a tag
// is fixed by convention (documented alongside each constant) — Meta itself
// enforces this at Get/Set time via foundation.Value's type check.
type Tag string

const (
	// Regular tags.
	TagMime        Tag = "mime"         // string, "type/subtype"
	TagStreamIndex Tag = "stream_index" // uint32

	// Media tags.
	TagMediaTitle       Tag = "media_title"       // string
	TagMediaDuration    Tag = "media_duration"    // int64, microseconds
	TagMediaFileSize    Tag = "media_file_size"   // int64
	TagMediaBitrate     Tag = "media_bitrate"     // int64
	TagMediaCodecConfig Tag = "media_codec_config" // []byte

	// Audio tags.
	TagAudioChannels      Tag = "audio_channels"       // uint32
	TagAudioChannelLayout Tag = "audio_channel_layout" // string enum (e.g. "stereo", "surround", "ch2.1")
	TagAudioSampleRate    Tag = "audio_sample_rate"    // uint32
	TagAudioSampleFormat  Tag = "audio_sample_format"  // string enum (e.g. "s16le", "f32le")

	// Video tags.
	TagVideoWidth       Tag = "video_width"        // uint32
	TagVideoHeight      Tag = "video_height"       // uint32
	TagVideoPixelFormat Tag = "video_pixel_format"  // string enum (e.g. "yuv420p", "nv12")
	TagVideoFrameRate   Tag = "video_frame_rate"   // float64
)

// Audio channel-layout and sample-format enumerants used by the reference
// plugins and the S7 compatibility-boundary test.
const (
	ChannelLayoutStereo   = "stereo"
	ChannelLayoutSurround = "surround"
	ChannelLayoutCh2Dot1  = "ch2.1"
)

// MIME catalog (spec.md §6): the subset of media types the reference
// plugins in this module and its tests know about.
const (
	MimeAudioRaw      = "audio/raw"
	MimeAudioMPEG     = "audio/mpeg"
	MimeAudioAAC      = "audio/aac"
	MimeAudioAACLATM  = "audio/aac-latm"
	MimeAudioFLAC     = "audio/flac"
	MimeAudioAPE      = "audio/ape"
	MimeVideoAVC      = "video/avc"
	MimeVideoRaw      = "video/raw"
	MimeApplicationM3U8 = "application/vnd.apple.mpegurl"
)

// checkableTags is the capability-check dispatch table: §4.2 step 3 says an
// unknown constrained tag causes the whole capability to be rejected
// (fail-closed). Each entry records whether the tag's stored type is
// numeric (eligible for Interval) or not.
var checkableTags = map[Tag]bool{
	TagAudioChannels:      true,
	TagAudioSampleRate:    true,
	TagAudioChannelLayout: false,
	TagAudioSampleFormat:  false,
	TagVideoWidth:         true,
	TagVideoHeight:        true,
	TagVideoFrameRate:     true,
	TagVideoPixelFormat:   false,
	TagMime:               false,
	TagMediaBitrate:       true,
	TagMediaDuration:      true,
}

// IsCheckable reports whether t is known to the capability-check dispatch
// table.
func IsCheckable(t Tag) bool {
	_, ok := checkableTags[t]
	return ok
}

// IsNumeric reports whether t's stored value is a numeric type eligible for
// an Interval constraint.
func IsNumeric(t Tag) bool {
	return checkableTags[t]
}
