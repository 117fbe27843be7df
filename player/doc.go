// Package player implements the engine's public embedder-facing surface
// (spec.md §6): set_source/prepare/play/pause/resume/stop/rewind,
// set_volume/set_loop, get_current_position/get_duration/get_state, and
// the PlayerCallback hooks. It is the glue spec.md §4.6 assigns to the
// PlayExecutor: Player owns a state.Machine, a pipeline.Pipeline and a
// plugin/registry.Registry, and supplies state.ExecutorHooks that turn
// each intent into concrete plugin/pipeline calls.
package player
