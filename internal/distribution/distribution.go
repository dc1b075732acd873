package distribution

import "fmt"

// StripeSize is the maximum block size any strategy will use, regardless of
// what SetBlockSize is asked for.
const StripeSize uint64 = 4 * 1024 * 1024

// Type selects which striping strategy a Distribution uses. The numeric
// values match the order the upstream vtable table is populated in
// (original_source/lib/jdistribution.c's j_distribution_init), so a
// serialized "type" tag round-trips even if this package's own strategy
// struct layouts change.
type Type int32

const (
	RoundRobin Type = iota
	SingleServer
	Weighted
)

func (t Type) String() string {
	switch t {
	case RoundRobin:
		return "round-robin"
	case SingleServer:
		return "single-server"
	case Weighted:
		return "weighted"
	default:
		return fmt.Sprintf("Type(%d)", int32(t))
	}
}

// Result is one chunk emitted by Distribute: Length bytes of this
// object's data live on server Index, starting at the server-local Offset,
// as part of global block BlockID.
type Result struct {
	Index   uint32
	Length  uint64
	Offset  uint64
	BlockID uint64
}

// strategy is the internal contract every striping algorithm implements.
// Distribution wraps one and exposes it as the public API.
type strategy interface {
	reset(length, offset uint64)
	distribute() (Result, bool)
	setBlockSize(v uint64)
	setStartIndex(v uint32)
	setWeight(serverIndex, weight uint32)
	toDoc() doc
	fromDoc(d doc)
}

// Distribution strides a (length, offset) byte range across a server fleet.
// It is not safe for concurrent use. The batch engine and the object client
// do not use it; callers that stripe an object drive one themselves.
type Distribution struct {
	serverCount uint32
	typ         Type
	impl        strategy
}

// New returns a Distribution of the given strategy for a fleet of
// serverCount servers. Panics if serverCount is zero: a zero-server fleet
// is a precondition violation.
func New(typ Type, serverCount uint32) *Distribution {
	if serverCount == 0 {
		panic("distribution: New called with serverCount == 0")
	}
	return &Distribution{
		serverCount: serverCount,
		typ:         typ,
		impl:        newStrategy(typ, serverCount),
	}
}

func newStrategy(typ Type, serverCount uint32) strategy {
	switch typ {
	case RoundRobin:
		return newRoundRobin(serverCount)
	case SingleServer:
		return newSingleServer(serverCount)
	case Weighted:
		return newWeighted(serverCount)
	default:
		panic(fmt.Sprintf("distribution: unknown type %v", typ))
	}
}

// Type returns the distribution's strategy.
func (d *Distribution) Type() Type { return d.typ }

// SetBlockSize sets the block size used by round-robin and weighted
// distributions, clamped to StripeSize. A no-op for single-server.
func (d *Distribution) SetBlockSize(v uint64) {
	if v == 0 {
		panic("distribution: SetBlockSize called with v == 0")
	}
	if v > StripeSize {
		v = StripeSize
	}
	d.impl.setBlockSize(v)
}

// SetStartIndex sets the server index the cyclic cursor starts at
// (round-robin, weighted) or the fixed server used (single-server).
func (d *Distribution) SetStartIndex(v uint32) {
	d.impl.setStartIndex(v)
}

// SetWeight assigns a weight to one server for the weighted strategy. A
// weight of zero excludes the server from the cycle entirely. A no-op for
// the other strategies.
func (d *Distribution) SetWeight(serverIndex, weight uint32) {
	d.impl.setWeight(serverIndex, weight)
}

// Reset begins a new striping pass over [offset, offset+length).
func (d *Distribution) Reset(length, offset uint64) {
	d.impl.reset(length, offset)
}

// Distribute returns the next chunk, or false once the range passed to
// Reset has been fully covered.
func (d *Distribution) Distribute() (Result, bool) {
	return d.impl.distribute()
}
