// Package filters supplies the concrete pipeline.Filter implementations
// that wrap the reference plugins (plugin/source, plugin/demux,
// plugin/codec, plugin/sink) into pipeline stages: SourceFilter,
// DemuxerFilter, DecoderFilter, AudioSinkFilter, VideoSinkFilter. This is
// the layer spec.md §4.3 calls "the engine" when it says the engine wires
// a Demuxer to its data-source-helper or normalizes a player-level volume
// into a plugin-level one — work that belongs above the plugin contracts
// but below the public Player API.
package filters
