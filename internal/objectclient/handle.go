package objectclient

import "github.com/dreamware/julea/internal/handle"

// Handle identifies one object: (server index, namespace, name). Shared by
// reference count; the last Unref drops it.
type Handle struct {
	base *handle.Base

	namespace string
	name      string

	// serverIndex addresses every operation on this handle: create, delete,
	// status, and every read/write regardless of offset.
	serverIndex uint32
}

// NewHandle returns a Handle whose server index is derived from name via
// handle.HashIndex.
func NewHandle(namespace, name string, serverCount uint32) *Handle {
	return newHandle(namespace, name, handle.HashIndex(name, serverCount))
}

// NewHandleWithIndex is NewHandle with an explicit server index, bypassing
// the hash, per the object handle's "unless an explicit index is supplied"
// clause.
func NewHandleWithIndex(namespace, name string, serverIndex uint32) *Handle {
	return newHandle(namespace, name, serverIndex)
}

func newHandle(namespace, name string, serverIndex uint32) *Handle {
	return &Handle{
		base:        handle.NewBase(nil),
		namespace:   namespace,
		name:        name,
		serverIndex: serverIndex,
	}
}

// Namespace returns the object's namespace.
func (h *Handle) Namespace() string { return h.namespace }

// Name returns the object's name.
func (h *Handle) Name() string { return h.name }

// ServerIndex returns the object's server index.
func (h *Handle) ServerIndex() uint32 { return h.serverIndex }

// Ref increments the handle's reference count and returns it, mirroring
// the object-service calling convention of "ref then reassign".
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
