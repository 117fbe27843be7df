package pipeline

import (
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/metrics"
)

// owners tracks which Pipeline a Filter belongs to, across all Pipeline
// instances, so Connect can refuse to link filters from two different
// pipelines even when asked via one side's LinkPorts (spec.md §4.4:
// "Port connection refuses to connect two ports whose owning filters do
// not share the same pipeline").
var owners sync.Map // Filter -> *Pipeline

// Pipeline owns a set of Filters and drives their lifecycle in reverse
// order (spec.md §4.5), grounded on the teacher's pkg/planner.Graph node
// bookkeeping generalized from a one-shot DAG to a long-lived, mutable
// filter graph. One mutex guards the filter list and event aggregation;
// per-filter lifecycle calls run outside that lock (snapshot-then-iterate,
// as spec.md §4.5 mandates, to avoid deadlocking against a filter's own
// event callback).
type Pipeline struct {
	mu              sync.Mutex
	filters         []Filter
	filtersToRemove []Filter
	readyCount      int
	onReady         func()
	onEvent         func(f Filter, ev Event)
}

// New returns an empty Pipeline. onReady is invoked exactly once per
// Prepare cycle, after every filter has individually reported Ready.
// onEvent, if non-nil, receives every other event type verbatim.
func New(onReady func(), onEvent func(Filter, Event)) *Pipeline {
	return &Pipeline{onReady: onReady, onEvent: onEvent}
}

// AddFilters inserts new filters (deduplicated by identity) and Inits each
// one with this pipeline as its Receiver. It reports AlreadyExists-shaped
// error if every filter in fs was already present.
func (p *Pipeline) AddFilters(fs ...Filter) error {
	p.mu.Lock()
	var toInit []Filter
	for _, f := range fs {
		if p.contains(f) {
			continue
		}
		p.filters = append(p.filters, f)
		toInit = append(toInit, f)
		owners.Store(f, p)
	}
	p.mu.Unlock()

	if len(toInit) == 0 {
		return fmt.Errorf("pipeline: AddFilters: all filters already present")
	}
	for _, f := range toInit {
		if code := f.Init(p, nil); !code.OK() {
			return fmt.Errorf("pipeline: filter %s Init failed: %w", f.Name(), code)
		}
	}
	return nil
}

func (p *Pipeline) contains(f Filter) bool {
	for _, existing := range p.filters {
		if existing == f {
			return true
		}
	}
	return false
}

// LinkFilters connects F_i's default out-port to F_{i+1}'s default in-port
// for a simple chain, in order.
func (p *Pipeline) LinkFilters(fs ...Filter) error {
	for i := 0; i+1 < len(fs); i++ {
		out := fs[i].DefaultOutPort()
		in := fs[i+1].DefaultInPort()
		if out == nil || in == nil {
			return fmt.Errorf("pipeline: LinkFilters: %s or %s has no default port", fs[i].Name(), fs[i+1].Name())
		}
		if err := p.LinkPorts(out, in); err != nil {
			return err
		}
	}
	return nil
}

// LinkPorts pairwise-connects out and in; either side erroring aborts and
// leaves both disconnected.
func (p *Pipeline) LinkPorts(out *OutPort, in *InPort) error {
	return Connect(out, in, p.pipelineOf)
}

func (p *Pipeline) pipelineOf(f Filter) *Pipeline {
	if owner, ok := owners.Load(f); ok {
		return owner.(*Pipeline)
	}
	return nil
}

// RemoveFilterChain does a BFS from first over out-port peers (spec.md
// §4.5): each visited filter is unlinked from its predecessors and queued
// in filtersToRemove; actual removal from the live filter list happens
// inside Stop.
func (p *Pipeline) RemoveFilterChain(first Filter) {
	p.mu.Lock()
	defer p.mu.Unlock()

	seen := map[Filter]bool{}
	queue := []Filter{first}
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if seen[f] {
			continue
		}
		seen[f] = true
		f.UnlinkPrevFilters()
		p.filtersToRemove = append(p.filtersToRemove, f)
		for _, out := range f.OutPorts() {
			if peer := out.Peer(); peer != nil {
				queue = append(queue, peer.Owner())
			}
		}
	}
}

func (p *Pipeline) snapshotReversed() []Filter {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Filter, len(p.filters))
	for i, f := range p.filters {
		out[len(p.filters)-1-i] = f
	}
	return out
}

// Prepare iterates filters in reverse order, invoking Prepare on each;
// short-circuits on the first failure (spec.md §4.5).
func (p *Pipeline) Prepare() foundation.ErrorCode {
	p.mu.Lock()
	p.readyCount = 0
	p.mu.Unlock()
	for _, f := range p.snapshotReversed() {
		if code := f.Prepare(); !code.OK() {
			return code
		}
	}
	return foundation.Success
}

// Start iterates filters in reverse order, returning the first non-success
// result.
func (p *Pipeline) Start() foundation.ErrorCode { return p.forEachReversed(Filter.Start) }

// Pause iterates filters in reverse order.
func (p *Pipeline) Pause() foundation.ErrorCode { return p.forEachReversed(Filter.Pause) }

// Resume iterates filters in reverse order.
func (p *Pipeline) Resume() foundation.ErrorCode { return p.forEachReversed(Filter.Resume) }

// FlushStart drains every filter concurrently: unlike Start/Stop, flush
// order between filters doesn't matter (each filter only drains its own
// queued buffers), so this fans out with an errgroup rather than the
// ordered reverse walk the lifecycle transitions need.
func (p *Pipeline) FlushStart() foundation.ErrorCode { return p.forEachConcurrent(Filter.FlushStart) }

// FlushEnd calls FlushEnd on every filter concurrently, same rationale as
// FlushStart.
func (p *Pipeline) FlushEnd() foundation.ErrorCode { return p.forEachConcurrent(Filter.FlushEnd) }

func (p *Pipeline) forEachReversed(call func(Filter) foundation.ErrorCode) foundation.ErrorCode {
	var first foundation.ErrorCode = foundation.Success
	for _, f := range p.snapshotReversed() {
		if code := call(f); !code.OK() && first.OK() {
			first = code
		}
	}
	return first
}

// forEachConcurrent runs call against every filter in the same snapshot
// forEachReversed would use, but in parallel via an errgroup rather than
// one at a time, for calls where cross-filter ordering carries no meaning.
func (p *Pipeline) forEachConcurrent(call func(Filter) foundation.ErrorCode) foundation.ErrorCode {
	filters := p.snapshotReversed()
	var g errgroup.Group
	var mu sync.Mutex
	first := foundation.Success
	for _, f := range filters {
		g.Go(func() error {
			if code := call(f); !code.OK() {
				mu.Lock()
				if first.OK() {
					first = code
				}
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()
	return first
}

// Stop iterates filters in reverse order collecting drains, then applies
// any pending removals queued by RemoveFilterChain.
func (p *Pipeline) Stop() foundation.ErrorCode {
	code := p.forEachReversed(Filter.Stop)

	p.mu.Lock()
	toRemove := p.filtersToRemove
	p.filtersToRemove = nil
	if len(toRemove) > 0 {
		remove := make(map[Filter]bool, len(toRemove))
		for _, f := range toRemove {
			remove[f] = true
		}
		kept := p.filters[:0]
		for _, f := range p.filters {
			if !remove[f] {
				kept = append(kept, f)
			}
		}
		p.filters = kept
	}
	p.mu.Unlock()

	return code
}

// OnEvent implements Receiver. A Ready event increments the aggregate
// ready count; only once every filter has reported Ready is a single
// Ready propagated upward via onReady (spec.md §4.5). Every other event
// type passes through verbatim via onEvent.
func (p *Pipeline) OnEvent(f Filter, ev Event) {
	if ev.Type == EventReady {
		p.mu.Lock()
		p.readyCount++
		n := len(p.filters)
		ready := p.readyCount
		p.mu.Unlock()
		if ready == n {
			metrics.RecordPipelineReady()
		}
		if ready == n && p.onReady != nil {
			p.onReady()
		}
		return
	}
	if p.onEvent != nil {
		p.onEvent(f, ev)
	}
}

// Filters returns a snapshot of the currently-held filters in pipeline
// order (not reversed); used by tests and diagnostics.
func (p *Pipeline) Filters() []Filter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Filter(nil), p.filters...)
}
