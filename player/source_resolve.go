package player

import (
	"fmt"
	"strings"

	"github.com/chicogong/histreamer/meta"
	"github.com/chicogong/histreamer/plugin/demux/hlsdemux"
	"github.com/chicogong/histreamer/plugin/demux/rawdemux"
	"github.com/chicogong/histreamer/plugin/source/filesource"
	"github.com/chicogong/histreamer/plugin/source/httpsource"
	"github.com/chicogong/histreamer/plugin/source/s3source"
	"github.com/chicogong/histreamer/plugin/source/streamsource"
)

// schemeOf returns uri's scheme, or "" if it carries none (spec.md §6: "A
// scheme-less path is treated as file").
func schemeOf(uri string) string {
	if i := strings.Index(uri, "://"); i >= 0 {
		return uri[:i]
	}
	return ""
}

// sourcePluginName maps uri's scheme to the registered Source plugin name
// that handles it (spec.md §6's "file://, fd://, stream://" catalog; fd://
// has no reference plugin in this build, see DESIGN.md).
func sourcePluginName(uri string) (string, error) {
	switch scheme := schemeOf(uri); scheme {
	case "", "file":
		return filesource.Name, nil
	case "http", "https":
		return httpsource.Name, nil
	case "s3":
		return s3source.Name, nil
	case "stream":
		return streamsource.Name, nil
	default:
		return "", fmt.Errorf("player: no Source plugin registered for scheme %q", scheme)
	}
}

// extensionMime guesses a container/elementary-stream mime from uri's file
// extension, for the plugins (rawdemux) that need to be told their
// content type rather than sniffing it themselves.
func extensionMime(uri string) string {
	lower := strings.ToLower(uri)
	switch {
	case strings.HasSuffix(lower, ".aac"):
		return meta.MimeAudioAAC
	case strings.HasSuffix(lower, ".mp3"):
		return meta.MimeAudioMPEG
	case strings.HasSuffix(lower, ".flac"):
		return meta.MimeAudioFLAC
	case strings.HasSuffix(lower, ".ape"):
		return meta.MimeAudioAPE
	case strings.HasSuffix(lower, ".264"), strings.HasSuffix(lower, ".h264"), strings.HasSuffix(lower, ".avc"):
		return meta.MimeVideoAVC
	default:
		return meta.MimeAudioRaw
	}
}

// demuxerPluginName picks the registered Demuxer plugin name for uri: an
// .m3u8 suffix selects hlsdemux, anything else the raw passthrough
// demuxer (spec.md §6's Demuxer.extensions + sniffer, simplified here to
// a suffix check since this build registers only these two demuxers).
func demuxerPluginName(uri string) string {
	if strings.HasSuffix(strings.ToLower(uri), ".m3u8") {
		return hlsdemux.Name
	}
	return rawdemux.Name
}
