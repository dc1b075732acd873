package semantics

// Atomicity is the granularity at which locking would be acquired around an
// affected range. Only None is fully implemented; the other values are
// reserved for a future lock manager.
type Atomicity int

const (
	AtomicityNone Atomicity = iota
	AtomicityOperation
	AtomicityBatch
)

// Concurrency declares whether overlap is permitted among concurrent
// clients. The engine only consults this to decide locking, which is a
// no-op today since Atomicity is always None in practice.
type Concurrency int

const (
	ConcurrencyNone Concurrency = iota
	ConcurrencyOverlapping
	ConcurrencyNonOverlapping
)

// Consistency controls whether a reply must reflect committed state.
type Consistency int

const (
	ConsistencyImmediate Consistency = iota
	ConsistencyEventual
	ConsistencySession
)

// Ordering controls whether the batch engine may reorder or merge
// operations within a batch.
type Ordering int

const (
	OrderingStrict Ordering = iota
	OrderingSemiRelaxed
	OrderingRelaxed
)

// Persistency is one of the two inputs (along with an explicit override)
// that determine the effective Safety of a batch.
type Persistency int

const (
	PersistencyNone Persistency = iota
	PersistencyNetwork
	PersistencyStorage
)

// Safety is the durability/ack policy requested by a batch: fire-and-forget,
// await-a-reply, or durable-before-reply.
type Safety int

const (
	// SafetyNone: fire-and-forget, no reply is read.
	SafetyNone Safety = iota
	// SafetyNetwork: await a reply from the server.
	SafetyNetwork
	// SafetyStorage: the server fsyncs before replying.
	SafetyStorage
)

// Axis identifies one of the knobs a Semantics bundle carries, for the
// generic Get accessor.
type Axis int

const (
	AxisAtomicity Axis = iota
	AxisConcurrency
	AxisConsistency
	AxisOrdering
	AxisPersistency
	AxisSafety
)

// Template is a named preset that fixes every axis at once.
type Template int

const (
	TemplateDefault Template = iota
	TemplatePOSIX
	TemplateTemporary
)

// Semantics is an immutable bundle of consistency/safety/ordering knobs.
// Once returned by Builder.Done, its axis values never change; concurrent
// reads require no synchronization.
type Semantics struct {
	atomicity   Atomicity
	concurrency Concurrency
	consistency Consistency
	ordering    Ordering
	persistency Persistency
	safetyOverride Safety
	hasSafetyOverride bool
}

// Builder constructs a Semantics value axis-by-axis while it remains
// uniquely owned. Calling Done freezes the builder's state; using a Builder
// after Done is a precondition violation.
type Builder struct {
	s    Semantics
	done bool
}

// NewBuilder returns a Builder seeded from template's preset values.
func NewBuilder(template Template) *Builder {
	b := &Builder{}
	switch template {
	case TemplatePOSIX:
		b.s = Semantics{
			atomicity:   AtomicityNone,
			concurrency: ConcurrencyOverlapping,
			consistency: ConsistencyImmediate,
			ordering:    OrderingStrict,
			persistency: PersistencyStorage,
		}
	case TemplateTemporary:
		b.s = Semantics{
			atomicity:   AtomicityNone,
			concurrency: ConcurrencyNonOverlapping,
			consistency: ConsistencyEventual,
			ordering:    OrderingRelaxed,
			persistency: PersistencyNone,
		}
	default: // TemplateDefault
		b.s = Semantics{
			atomicity:   AtomicityNone,
			concurrency: ConcurrencyOverlapping,
			consistency: ConsistencySession,
			ordering:    OrderingSemiRelaxed,
			persistency: PersistencyNetwork,
		}
	}
	return b
}

func (b *Builder) mustBeOpen() {
	if b.done {
		panic("semantics: Builder used after Done")
	}
}

// SetAtomicity overrides the Atomicity axis and returns the builder for chaining.
func (b *Builder) SetAtomicity(v Atomicity) *Builder { b.mustBeOpen(); b.s.atomicity = v; return b }

// SetConcurrency overrides the Concurrency axis.
func (b *Builder) SetConcurrency(v Concurrency) *Builder { b.mustBeOpen(); b.s.concurrency = v; return b }

// SetConsistency overrides the Consistency axis.
func (b *Builder) SetConsistency(v Consistency) *Builder { b.mustBeOpen(); b.s.consistency = v; return b }

// SetOrdering overrides the Ordering axis.
func (b *Builder) SetOrdering(v Ordering) *Builder { b.mustBeOpen(); b.s.ordering = v; return b }

// SetPersistency overrides the Persistency axis.
func (b *Builder) SetPersistency(v Persistency) *Builder { b.mustBeOpen(); b.s.persistency = v; return b }

// SetSafety sets an explicit Safety override. Semantics.Safety returns the
// strongest of {Persistency-derived safety, this override}.
func (b *Builder) SetSafety(v Safety) *Builder {
	b.mustBeOpen()
	b.s.safetyOverride = v
	b.s.hasSafetyOverride = true
	return b
}

// Done freezes the builder's accumulated state into an immutable Semantics.
// The Builder must not be used again afterward.
func (b *Builder) Done() *Semantics {
	b.mustBeOpen()
	b.done = true
	s := b.s
	return &s
}

func persistencySafety(p Persistency) Safety {
	switch p {
	case PersistencyStorage:
		return SafetyStorage
	case PersistencyNetwork:
		return SafetyNetwork
	default:
		return SafetyNone
	}
}

func maxSafety(a, b Safety) Safety {
	if b > a {
		return b
	}
	return a
}

// Safety returns the effective safety: the strongest of the persistency-
// derived safety and any explicit override.
func (s *Semantics) Safety() Safety {
	derived := persistencySafety(s.persistency)
	if s.hasSafetyOverride {
		return maxSafety(derived, s.safetyOverride)
	}
	return derived
}

// Get returns the value of the given axis as an int, mirroring the generic
// j_semantics_get(axis) query from the upstream ABI. AxisSafety yields the
// derived effective safety, the same value Safety returns.
func (s *Semantics) Get(axis Axis) int {
	switch axis {
	case AxisAtomicity:
		return int(s.atomicity)
	case AxisConcurrency:
		return int(s.concurrency)
	case AxisConsistency:
		return int(s.consistency)
	case AxisOrdering:
		return int(s.ordering)
	case AxisPersistency:
		return int(s.persistency)
	case AxisSafety:
		return int(s.Safety())
	default:
		panic("semantics: unknown axis")
	}
}

// Ordering returns the Ordering axis directly; the batch engine consults
// this on every execute call, so a typed accessor avoids a Get/cast at each
// merge decision.
func (s *Semantics) Ordering() Ordering { return s.ordering }

// Default returns the Semantics produced by TemplateDefault, for callers
// that don't need a Builder.
func Default() *Semantics {
	return NewBuilder(TemplateDefault).Done()
}
