// Package registry implements the plugin registry (spec.md §6): rank and
// capability-based plugin selection, grounded on the teacher's
// pkg/operators.Registry (global + instance registry backed by a
// mutex-guarded map, with package-level convenience wrappers around the
// default instance).
package registry

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chicogong/histreamer/meta"
	"github.com/chicogong/histreamer/metrics"
	"github.com/chicogong/histreamer/plugin"
	"github.com/rs/zerolog/log"
)

// HostAPIVersion is the API version this build of the engine exposes;
// RegInfo.Valid checks registrants' major version against it.
var HostAPIVersion = plugin.APIVersion{Major: 1, Minor: 0}

// Registry stores registered plugin descriptors, keyed by type then name.
type Registry struct {
	mu    sync.RWMutex
	byTyp map[plugin.Type]map[string]plugin.RegInfo
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{byTyp: make(map[plugin.Type]map[string]plugin.RegInfo)}
}

var global = New()

// Global returns the process-wide registry used by the pipeline builder
// when no explicit Registry is supplied.
func Global() *Registry { return global }

// Register validates and stores info (spec.md §6: rank outside [0,100] or
// an API major mismatch is rejected at registration time). Re-registering
// the same (type, name) pair overwrites the previous entry, matching the
// teacher's "allow re-registration, useful for testing" policy.
func (r *Registry) Register(info plugin.RegInfo) error {
	if !info.Valid(HostAPIVersion) {
		return fmt.Errorf("registry: reject plugin %q: invalid rank %d or API mismatch (got %d.%d, host %d.x)",
			info.Name, info.Rank, info.APIVersion.Major, info.APIVersion.Minor, HostAPIVersion.Major)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byTyp[info.Type]
	if !ok {
		m = make(map[string]plugin.RegInfo)
		r.byTyp[info.Type] = m
	}
	m[info.Name] = info
	log.Debug().Str("plugin", info.Name).Str("type", info.Type.String()).Int("rank", info.Rank).Msg("plugin registered")
	return nil
}

// Reset clears all registrations; used by tests.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTyp = make(map[plugin.Type]map[string]plugin.RegInfo)
}

// Get returns the descriptor registered under (t, name).
func (r *Registry) Get(t plugin.Type, name string) (plugin.RegInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byTyp[t]
	if !ok {
		return plugin.RegInfo{}, fmt.Errorf("registry: no plugins registered for type %s", t)
	}
	info, ok := m[name]
	if !ok {
		return plugin.RegInfo{}, fmt.Errorf("registry: plugin %q not found for type %s", name, t)
	}
	return info, nil
}

// List returns all descriptors registered for t.
func (r *Registry) List(t plugin.Type) []plugin.RegInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.byTyp[t]
	out := make([]plugin.RegInfo, 0, len(m))
	for _, info := range m {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Select finds the best-ranked registered plugin of type t whose output
// capabilities are compatible with want (spec.md §6: "ties are broken by
// rank, highest first; a capability mismatch excludes the candidate
// entirely regardless of rank"). It returns an error if none match.
func (r *Registry) Select(t plugin.Type, want *meta.Meta) (plugin.RegInfo, error) {
	start := time.Now()
	defer func() { metrics.ObservePluginSelection(time.Since(start).Seconds()) }()

	r.mu.RLock()
	candidates := make([]plugin.RegInfo, 0, len(r.byTyp[t]))
	for _, info := range r.byTyp[t] {
		candidates = append(candidates, info)
	}
	r.mu.RUnlock()

	var best plugin.RegInfo
	found := false
	for _, info := range candidates {
		if !meta.CompatibleWithSet(info.OutCaps, want) {
			continue
		}
		if !found || info.Rank > best.Rank || (info.Rank == best.Rank && info.Name < best.Name) {
			best = info
			found = true
		}
	}
	if !found {
		return plugin.RegInfo{}, fmt.Errorf("registry: no %s plugin compatible with requested stream", t)
	}
	return best, nil
}

// Create instantiates name's plugin of type t.
func (r *Registry) Create(t plugin.Type, name string) (plugin.Base, error) {
	info, err := r.Get(t, name)
	if err != nil {
		return nil, err
	}
	return info.Creator()
}

// Register, Get, List and Select delegate to the package-level Global
// registry, mirroring the teacher's top-level Register/Get/List wrappers.
func Register(info plugin.RegInfo) error                     { return global.Register(info) }
func Get(t plugin.Type, name string) (plugin.RegInfo, error)  { return global.Get(t, name) }
func List(t plugin.Type) []plugin.RegInfo                     { return global.List(t) }
func Select(t plugin.Type, want *meta.Meta) (plugin.RegInfo, error) {
	return global.Select(t, want)
}
