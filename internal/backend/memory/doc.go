// Package memory implements backend.KV on an in-process map, the reference
// KV backend this repo ships in place of out-of-scope external leveldb/lmdb
// backends.
//
// It follows the same shape as a typical in-process key-value store: a
// sync.RWMutex-guarded map, with a copy-in/copy-out discipline to keep
// callers from mutating storage through an aliased slice. What's new here
// is namespacing, write-batches, and prefix iteration, none of which the
// teacher's single-namespace store needed.
package memory
