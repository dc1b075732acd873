package kvclient

import "github.com/dreamware/julea/internal/handle"

// Handle identifies one KV document: (server index, namespace, key).
// Shared by reference count; the last Unref drops it.
type Handle struct {
	base *handle.Base

	namespace string
	key       string

	serverIndex uint32
}

// NewHandle returns a Handle whose server index is derived from key via
// handle.HashIndex.
func NewHandle(namespace, key string, serverCount uint32) *Handle {
	return newHandle(namespace, key, handle.HashIndex(key, serverCount))
}

// NewHandleWithIndex is NewHandle with an explicit server index, bypassing
// the hash.
func NewHandleWithIndex(namespace, key string, serverIndex uint32) *Handle {
	return newHandle(namespace, key, serverIndex)
}

func newHandle(namespace, key string, serverIndex uint32) *Handle {
	return &Handle{
		base:        handle.NewBase(nil),
		namespace:   namespace,
		key:         key,
		serverIndex: serverIndex,
	}
}

// Namespace returns the document's namespace.
func (h *Handle) Namespace() string { return h.namespace }

// Key returns the document's key.
func (h *Handle) Key() string { return h.key }

// ServerIndex returns the document's server index.
func (h *Handle) ServerIndex() uint32 { return h.serverIndex }

// Ref increments the handle's reference count and returns it.
func (h *Handle) Ref() *Handle {
	h.base.Ref()
	return h
}

// Unref decrements the reference count, releasing the handle once it
// reaches zero.
func (h *Handle) Unref() {
	h.base.Unref()
}

// RefCount returns the current reference count, chiefly for tests.
func (h *Handle) RefCount() int32 {
	return h.base.RefCount()
}
