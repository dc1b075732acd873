package batch

import (
	"fmt"
	"sync"

	"github.com/dreamware/julea/internal/semantics"
)

// Batch is an ordered, single-owner sequence of operations plus an
// immutable Semantics, following the lifecycle new -> add* -> execute ->
// drained (reusable for a new cycle after drain).
type Batch struct {
	mu        sync.Mutex
	semantics *semantics.Semantics
	ops       []*Operation
	executed  bool
}

// New returns an empty batch governed by sem.
func New(sem *semantics.Semantics) *Batch {
	return &Batch{semantics: sem}
}

// Semantics returns the batch's immutable semantics bundle.
func (b *Batch) Semantics() *semantics.Semantics {
	return b.semantics
}

// Add enqueues op. Add after Execute (before Drain) panics: a batch is not
// shared across threads and reuse without draining is a caller bug, not a
// runtime condition to recover from.
func (b *Batch) Add(op *Operation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.executed {
		panic("batch: Add called on an executed, undrained batch")
	}
	b.ops = append(b.ops, op)
}

// Drain clears the batch's operation list, making it reusable for a new
// add/execute cycle.
func (b *Batch) Drain() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, op := range b.ops {
		op.releaseHandle()
	}
	b.ops = nil
	b.executed = false
}

func (b *Batch) snapshot() ([]*Operation, *semantics.Semantics, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.executed {
		return nil, nil, fmt.Errorf("batch: already executed; call Drain before reuse")
	}
	b.executed = true
	ops := make([]*Operation, len(b.ops))
	copy(ops, b.ops)
	return ops, b.semantics, nil
}
