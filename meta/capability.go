package meta

// ConstraintKind is the flavor of a single per-tag constraint (spec.md §3).
type ConstraintKind int

const (
	Fixed ConstraintKind = iota
	Interval
	Discrete
)

// Constraint is one constrained tag inside a Capability.
type Constraint struct {
	Kind     ConstraintKind
	Fixed    any
	Lo, Hi   any // Interval only; numeric tags only
	Discrete []any
}

// Capability is a predicate over Meta: a mime pattern plus a set of
// per-tag constraints (spec.md §3). Construction follows a builder pattern:
// NewCapability sets the mime, then AppendFixed/AppendInterval/AppendDiscrete
// add one constraint per tag.
type Capability struct {
	Mime        string
	Constraints map[Tag]Constraint
}

// NewCapability starts a builder for a capability matching the given mime
// pattern ("*", "x/*", or "x/y").
func NewCapability(mime string) *Capability {
	return &Capability{Mime: mime, Constraints: make(map[Tag]Constraint)}
}

// AppendFixed constrains tag to equal exactly value.
func (c *Capability) AppendFixed(tag Tag, value any) *Capability {
	c.Constraints[tag] = Constraint{Kind: Fixed, Fixed: value}
	return c
}

// AppendInterval constrains a numeric tag to lie within [min(lo,hi), max(lo,hi)].
func (c *Capability) AppendInterval(tag Tag, lo, hi any) *Capability {
	c.Constraints[tag] = Constraint{Kind: Interval, Lo: lo, Hi: hi}
	return c
}

// AppendDiscrete constrains tag to equal one of values.
func (c *Capability) AppendDiscrete(tag Tag, values ...any) *Capability {
	c.Constraints[tag] = Constraint{Kind: Discrete, Discrete: values}
	return c
}

// CapabilitySet is a set of alternative Capabilities; a Meta matches the set
// iff it matches any member (spec.md §3, Testable Property 1).
type CapabilitySet []*Capability
