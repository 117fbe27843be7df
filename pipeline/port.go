package pipeline

import (
	"fmt"

	"github.com/chicogong/histreamer/foundation"
	"github.com/chicogong/histreamer/meta"
)

// OutPort is a Filter's outgoing connection point.
type OutPort struct {
	Name  string
	owner Filter
	peer  *InPort
}

// InPort is a Filter's incoming connection point.
type InPort struct {
	Name       string
	owner      Filter
	peer       *OutPort
	activeMode WorkMode
	activated  bool
}

// NewOutPort and NewInPort are used by Filter implementations to build
// their port set at construction time.
func NewOutPort(owner Filter, name string) *OutPort { return &OutPort{Name: name, owner: owner} }
func NewInPort(owner Filter, name string) *InPort   { return &InPort{Name: name, owner: owner} }

func (p *OutPort) Peer() *InPort { return p.peer }
func (p *InPort) Peer() *OutPort { return p.peer }
func (p *OutPort) Owner() Filter { return p.owner }
func (p *InPort) Owner() Filter  { return p.owner }

// Connect wires out to in, refusing to connect ports whose owning filters
// do not share the same pipeline (spec.md §4.4's "prevents cross-pipeline
// loops"). pipelineOf resolves a filter's pipeline membership; filters not
// yet added to any pipeline (pipelineOf returns nil) are allowed to connect
// so a graph can be wired up before add_filters.
func Connect(out *OutPort, in *InPort, pipelineOf func(Filter) *Pipeline) error {
	po, pi := pipelineOf(out.owner), pipelineOf(in.owner)
	if po != nil && pi != nil && po != pi {
		out.peer, in.peer = nil, nil
		return fmt.Errorf("pipeline: cannot connect %s.%s to %s.%s: different pipelines",
			out.owner.Name(), out.Name, in.owner.Name(), in.Name)
	}
	out.peer = in
	in.peer = out
	return nil
}

// Negotiate runs the two-pass capability negotiation described in spec.md
// §4.4: the producer asks its peer (the consumer) what it can accept given
// upstreamMeta; the consumer recurses into its own downstream link first
// so the whole chain settles before returning caps upward.
func (p *OutPort) Negotiate(upstreamMeta *meta.Meta) (meta.CapabilitySet, foundation.ErrorCode) {
	if p.peer == nil {
		return nil, foundation.ErrorInvalidState
	}
	accepted, code := p.peer.owner.Negotiate(upstreamMeta)
	if !code.OK() {
		return nil, code
	}
	if len(accepted) == 0 {
		return nil, foundation.ErrorNegotiationFailed
	}
	return accepted, foundation.Success
}

// Configure runs negotiation's second pass: the consumer applies concrete
// parameters now that capabilities are settled.
func (p *OutPort) Configure(upstreamMeta *meta.Meta) foundation.ErrorCode {
	if p.peer == nil {
		return foundation.ErrorInvalidState
	}
	return p.peer.owner.Configure(upstreamMeta)
}

// Activate picks the first mode in preferred that the peer out-port's
// owning filter supports (spec.md §4.4's work-mode activation).
func (in *InPort) Activate(preferred []WorkMode) foundation.ErrorCode {
	if in.peer == nil {
		return foundation.ErrorInvalidState
	}
	supported := in.peer.owner.SupportedWorkModes()
	for _, want := range preferred {
		for _, has := range supported {
			if want == has {
				in.activeMode = want
				in.activated = true
				return foundation.Success
			}
		}
	}
	return foundation.ErrorNegotiationFailed
}

// ActiveMode reports the work mode Activate selected; ok is false before
// activation.
func (in *InPort) ActiveMode() (WorkMode, bool) { return in.activeMode, in.activated }

// PushData forwards buf synchronously to the peer in-port's owning filter
// (spec.md §4.4's Push mode).
func (p *OutPort) PushData(buf *foundation.Buffer) foundation.ErrorCode {
	if p.peer == nil {
		return foundation.ErrorInvalidState
	}
	return p.peer.owner.PushData(p.peer.Name, buf)
}

// PullData forwards the request across the link to the producer's
// PullData (spec.md §4.4's Pull mode); the source returns EndOfStream past
// the media size.
func (in *InPort) PullData(offset int64, size int, buf *foundation.Buffer) foundation.ErrorCode {
	if in.peer == nil {
		return foundation.ErrorInvalidState
	}
	return in.peer.owner.PullData(offset, size, buf)
}
