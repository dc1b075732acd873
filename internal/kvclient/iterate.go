package kvclient

import "github.com/dreamware/julea/internal/backend"

// GetAll returns a lazy iterator over every value in namespace on kv,
// bypassing the batch/operation engine entirely: iteration has no wire
// opcode and no run to merge into, so it talks to the backend directly.
// The caller is responsible for picking the right backend for namespace's
// server (e.g. via handle.HashIndex and the loaded backend map).
func GetAll(kv backend.KV, namespace string) (backend.Iterator, error) {
	return kv.GetAll(namespace)
}

// GetByPrefix returns a lazy iterator over every value in namespace on kv
// whose key starts with prefix, with the same direct-to-backend dispatch
// as GetAll.
func GetByPrefix(kv backend.KV, namespace, prefix string) (backend.Iterator, error) {
	return kv.GetByPrefix(namespace, prefix)
}
