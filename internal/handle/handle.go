package handle

import (
	"hash/fnv"
	"sync/atomic"
)

// HashIndex maps name to a server index in [0, serverCount) using FNV-1a.
// The result is stable for a given (name, serverCount) pair across process
// restarts, since hash/fnv's algorithm and seed are fixed.
//
// Panics if serverCount is zero: a zero-server fleet is a precondition
// violation, not a runtime-recoverable condition.
func HashIndex(name string, serverCount uint32) uint32 {
	if serverCount == 0 {
		panic("handle: HashIndex called with serverCount == 0")
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(name))

	return h.Sum32() % serverCount
}

// Key is a handle's identity tuple (server-index, namespace, name),
// comparable with == and standing in for pointer identity. The batch
// engine does not consult it: runs are grouped by the engine's own key of
// (operation kind, server index, namespace).
type Key struct {
	Namespace string
	Name      string
	Server    uint32
}

// Kind distinguishes which server fleet a Key or handle belongs to, since
// object and KV handles hash into independent index spaces even when they
// share a name.
type Kind int

const (
	// KindObject identifies an object-service handle or key.
	KindObject Kind = iota
	// KindKV identifies a KV-service handle or key.
	KindKV
)

// Base is embedded by ObjectHandle and KVHandle (in their respective client
// packages) to provide shared-by-reference lifecycle semantics.
type Base struct {
	release  func()
	refCount int32
}

// NewBase returns a Base with an initial reference count of one. release is
// invoked exactly once, when the last Unref call observes the count
// dropping to zero; it may be nil if there is nothing to release.
func NewBase(release func()) *Base {
	return &Base{refCount: 1, release: release}
}

// Ref increments the reference count and returns the same Base, mirroring
// the upstream j_object_ref/j_kv_ref calling convention of "ref then
// reassign".
func (b *Base) Ref() *Base {
	atomic.AddInt32(&b.refCount, 1)
	return b
}

// Unref decrements the reference count and runs the release function
// exactly once when it reaches zero. Calling Unref after the count has
// already reached zero is a precondition violation.
func (b *Base) Unref() {
	n := atomic.AddInt32(&b.refCount, -1)
	if n < 0 {
		panic("handle: Unref called on handle with no remaining references")
	}
	if n == 0 && b.release != nil {
		b.release()
	}
}

// RefCount returns the current reference count, chiefly for tests.
func (b *Base) RefCount() int32 {
	return atomic.LoadInt32(&b.refCount)
}
