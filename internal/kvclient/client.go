package kvclient

import (
	"github.com/dreamware/julea/internal/batch"
	"github.com/dreamware/julea/internal/wire"
)

// Put queues a KV_PUT for h onto b, transferring ownership of value: the
// engine frees it after execution, so callers must not mutate value
// afterward.
func Put(b *batch.Batch, h *Handle, value []byte) {
	o := &batch.Operation{
		Op:          wire.OpKVPut,
		ServerIndex: h.serverIndex,
		Namespace:   h.namespace,
		Name:        h.key,
		Data:        value,
	}
	o.AttachHandle(h.base)
	b.Add(o)
}

// Delete queues a KV_DELETE for h onto b.
func Delete(b *batch.Batch, h *Handle) {
	o := &batch.Operation{
		Op:          wire.OpKVDelete,
		ServerIndex: h.serverIndex,
		Namespace:   h.namespace,
		Name:        h.key,
	}
	o.AttachHandle(h.base)
	b.Add(o)
}

// Get queues a KV_GET for h onto b, delivering the value as an owned copy
// into valueOut. found, if non-nil, reports whether the key existed.
func Get(b *batch.Batch, h *Handle, valueOut *[]byte, found *bool) {
	o := &batch.Operation{
		Op:          wire.OpKVGet,
		ServerIndex: h.serverIndex,
		Namespace:   h.namespace,
		Name:        h.key,
		ValueOut:    valueOut,
		FoundOut:    found,
	}
	o.AttachHandle(h.base)
	b.Add(o)
}

// GetCallback queues a KV_GET for h onto b, delivering the value to onValue
// as a transient, zero-copy view valid only for the duration of the call,
// instead of copying it out. found, if non-nil, reports whether the key
// existed.
func GetCallback(b *batch.Batch, h *Handle, onValue func([]byte), found *bool) {
	o := &batch.Operation{
		Op:          wire.OpKVGet,
		ServerIndex: h.serverIndex,
		Namespace:   h.namespace,
		Name:        h.key,
		OnValue:     onValue,
		FoundOut:    found,
	}
	o.AttachHandle(h.base)
	b.Add(o)
}
