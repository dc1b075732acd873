package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/dreamware/julea/internal/backend"
	"github.com/dreamware/julea/internal/semantics"
)

// Backend implements backend.KV with an in-memory map. Init/Fini are
// no-ops beyond bookkeeping: there is no on-disk path to open, since
// nothing here survives a restart.
type Backend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New returns a ready-to-use Backend. Most callers go through Init instead,
// to satisfy the backend.KV interface uniformly with other backends.
func New() *Backend {
	return &Backend{data: make(map[string][]byte)}
}

// Init implements backend.KV. path is accepted but unused.
func (b *Backend) Init(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		b.data = make(map[string][]byte)
	}
	return nil
}

// Fini implements backend.KV.
func (b *Backend) Fini() error {
	return nil
}

// encodeKey applies the on-disk KV key encoding convention: "<ns>:<key>\0".
func encodeKey(namespace, key string) string {
	return namespace + ":" + key + "\x00"
}

// encodePrefix encodes a namespace-scoped key prefix, without the
// terminating NUL a complete key carries, since a prefix by definition
// matches keys that continue past it.
func encodePrefix(namespace, prefix string) string {
	return namespace + ":" + prefix
}

// Get implements backend.KV.
func (b *Backend) Get(namespace, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	v, ok := b.data[encodeKey(namespace, key)]
	if !ok {
		return nil, backend.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (b *Backend) put(namespace, key string, value []byte) {
	stored := make([]byte, len(value))
	copy(stored, value)
	b.data[encodeKey(namespace, key)] = stored
}

func (b *Backend) delete(namespace, key string) {
	delete(b.data, encodeKey(namespace, key))
}

// BatchStart implements backend.KV. The in-memory backend buffers the
// batch's operations and applies them all under a single write lock at
// Execute, which is as atomic a commit as a plain map can offer.
func (b *Backend) BatchStart(namespace string, safety semantics.Safety) (backend.Batch, error) {
	return &writeBatch{backend: b, namespace: namespace, safety: safety}, nil
}

type pendingOp struct {
	key     string
	value   []byte
	isPut   bool
}

type writeBatch struct {
	backend   *Backend
	namespace string
	safety    semantics.Safety
	ops       []pendingOp
}

func (wb *writeBatch) Put(key string, value []byte) error {
	wb.ops = append(wb.ops, pendingOp{key: key, value: value, isPut: true})
	return nil
}

func (wb *writeBatch) Delete(key string) error {
	wb.ops = append(wb.ops, pendingOp{key: key, isPut: false})
	return nil
}

// Execute commits every accumulated Put/Delete under one lock. Safety >=
// storage has no distinct durable path for an in-memory backend -- there is
// no medium to fsync -- so it is treated the same as network safety; a
// persistent backend (e.g. backend/posix's equivalent for KV) would fsync
// an append log here instead.
func (wb *writeBatch) Execute() error {
	wb.backend.mu.Lock()
	defer wb.backend.mu.Unlock()

	for _, op := range wb.ops {
		if op.isPut {
			wb.backend.put(wb.namespace, op.key, op.value)
		} else {
			wb.backend.delete(wb.namespace, op.key)
		}
	}
	return nil
}

// GetAll implements backend.KV.
func (b *Backend) GetAll(namespace string) (backend.Iterator, error) {
	return b.iterate(encodePrefix(namespace, ""))
}

// GetByPrefix implements backend.KV.
func (b *Backend) GetByPrefix(namespace, prefix string) (backend.Iterator, error) {
	return b.iterate(encodePrefix(namespace, prefix))
}

func (b *Backend) iterate(encodedPrefix string) (backend.Iterator, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var keys []string
	for k := range b.data {
		if strings.HasPrefix(k, encodedPrefix) {
			keys = append(keys, k)
		}
	}
	// Sorted for deterministic test behavior; callers may only rely on "any
	// order", not a stable one.
	sort.Strings(keys)

	values := make([][]byte, len(keys))
	for i, k := range keys {
		v := b.data[k]
		out := make([]byte, len(v))
		copy(out, v)
		values[i] = out
	}

	return &iterator{values: values}, nil
}

type iterator struct {
	values [][]byte
	pos    int
	closed bool
}

func (it *iterator) Next() ([]byte, bool) {
	if it.closed || it.pos >= len(it.values) {
		it.Close()
		return nil, false
	}
	v := it.values[it.pos]
	it.pos++
	return v, true
}

func (it *iterator) Close() {
	it.closed = true
	it.values = nil
}
