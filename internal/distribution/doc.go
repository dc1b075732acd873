// Package distribution stripes a (length, offset) byte range across a fixed
// number of servers.
//
// A Distribution is reset with the range to cover, then repeatedly asked to
// Distribute the next chunk; it returns false once the whole range has been
// emitted. The three strategies -- round-robin, single-server, and weighted
// -- share this same Reset/Distribute contract (the unexported strategy
// interface in distribution.go), mirroring the upstream C vtable of
// distribution_new/distribution_set/distribution_reset/distribution_distribute
// vtable, reimagined as a Go interface, applying the same dynamic-dispatch
// treatment used for storage backends equally to distribution strategies.
//
// Distributions serialize to and from a small self-describing document via
// gopkg.in/yaml.v3, so that the distribution chosen for an object can be
// persisted alongside it and later reconstructed without the caller
// supplying the strategy out of band.
package distribution
