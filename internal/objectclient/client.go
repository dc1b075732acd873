package objectclient

import (
	"sync/atomic"

	"github.com/dreamware/julea/internal/batch"
	"github.com/dreamware/julea/internal/wire"
)

// Create queues an OBJECT_CREATE for h onto b.
func Create(b *batch.Batch, h *Handle) {
	enqueueSimple(b, h, wire.OpObjectCreate)
}

// Delete queues an OBJECT_DELETE for h onto b.
func Delete(b *batch.Batch, h *Handle) {
	enqueueSimple(b, h, wire.OpObjectDelete)
}

// Status queues an OBJECT_STATUS for h onto b. out is written once the
// batch executes.
func Status(b *batch.Batch, h *Handle, out *batch.ObjectStatus) {
	op := &batch.Operation{
		Op:          wire.OpObjectStatus,
		ServerIndex: h.serverIndex,
		Namespace:   h.namespace,
		Name:        h.name,
		StatusOut:   out,
	}
	op.AttachHandle(h.base)
	b.Add(op)
}

func enqueueSimple(b *batch.Batch, h *Handle, op wire.Opcode) {
	o := &batch.Operation{
		Op:          op,
		ServerIndex: h.serverIndex,
		Namespace:   h.namespace,
		Name:        h.name,
	}
	o.AttachHandle(h.base)
	b.Add(o)
}

// Read queues an OBJECT_READ of len(buf) bytes at offset. nbytesDone
// receives the actual byte count via atomic add once the batch executes,
// so a counter shared across several reads (e.g. one per object fragment
// an application stripes itself) sums correctly.
func Read(b *batch.Batch, h *Handle, buf []byte, offset uint64, nbytesDone *atomic.Uint64) {
	o := &batch.Operation{
		Op:          wire.OpObjectRead,
		ServerIndex: h.serverIndex,
		Namespace:   h.namespace,
		Name:        h.name,
		Offset:      offset,
		Buf:         buf,
		NBytesDone:  nbytesDone,
	}
	o.AttachHandle(h.base)
	b.Add(o)
}

// Write queues an OBJECT_WRITE of data at offset. Under safety=none the
// engine optimistically records len(data) into nbytesDone as soon as the
// write is sent; under safety >= network it instead records the
// server-confirmed byte count.
func Write(b *batch.Batch, h *Handle, data []byte, offset uint64, nbytesDone *atomic.Uint64) {
	o := &batch.Operation{
		Op:          wire.OpObjectWrite,
		ServerIndex: h.serverIndex,
		Namespace:   h.namespace,
		Name:        h.name,
		Offset:      offset,
		Data:        data,
		NBytesDone:  nbytesDone,
	}
	o.AttachHandle(h.base)
	b.Add(o)
}
