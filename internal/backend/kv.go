package backend

import "github.com/dreamware/julea/internal/semantics"

// KV is the storage-backend trait for the key-value service: the usual
// init/fini/batch_start/batch_execute/put/delete/get/get_all/get_by_prefix/
// iterate vtable, expressed as an interface.
type KV interface {
	// Init prepares the backend to serve KV data rooted at path.
	Init(path string) error

	// Fini releases everything Init acquired.
	Fini() error

	// BatchStart opens a backend-specific write-batch scoped to namespace
	// and safety. Put/Delete accumulate into it; Execute commits.
	BatchStart(namespace string, safety semantics.Safety) (Batch, error)

	// Get returns the value stored at (namespace, key). Returns
	// ErrNotFound if absent.
	Get(namespace, key string) ([]byte, error)

	// GetAll returns a lazy iterator over every value in namespace.
	GetAll(namespace string) (Iterator, error)

	// GetByPrefix returns a lazy iterator over every value whose key
	// starts with prefix within namespace.
	GetByPrefix(namespace, prefix string) (Iterator, error)
}

// Batch accumulates Put/Delete calls for atomic commit: it commits
// atomically (per backend capability) and releases the batch. If safety is
// at least storage-level, the commit is durable.
type Batch interface {
	Put(key string, value []byte) error
	Delete(key string) error
	Execute() error
}

// Iterator yields values lazily from GetAll/GetByPrefix. Next returns false
// once exhausted, at which point the backend iterator has already been
// freed; a caller abandoning iteration early must call Close to free it
// instead.
type Iterator interface {
	Next() (value []byte, ok bool)
	Close()
}
