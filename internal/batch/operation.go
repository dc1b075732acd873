package batch

import (
	"sync/atomic"
	"time"

	"github.com/dreamware/julea/internal/handle"
	"github.com/dreamware/julea/internal/wire"
)

// ObjectStatus answers an OBJECT_STATUS operation.
type ObjectStatus struct {
	MTime time.Time
	Size  uint64
}

// Operation is one queued unit of work: the classic quintuple of
// (key, data, exec-fn, free-fn, op-type) collapsed into a single Go value.
// Op plus (ServerIndex, Namespace) is the locality key and selects the
// exec-fn,
// the rest is data, and Go's GC is the free-fn.
//
// Exactly one of the result sinks below is populated, matching Op:
// NBytesDone for object read/write, StatusOut for object status, ValueOut
// or OnValue for KV get. Object/KV clients set these before enqueuing;
// Engine.Execute fills them in (or sets Err) by the time the batch's
// owning Wait returns.
type Operation struct {
	Op          wire.Opcode
	ServerIndex uint32
	Namespace   string

	// Name is the object name or KV key this operation addresses.
	Name string

	// Offset addresses a byte range for OBJECT_READ/OBJECT_WRITE.
	Offset uint64

	// Data is the outbound payload: object write bytes, or a KV put
	// value. The batch takes ownership; callers must not mutate it after
	// Add.
	Data []byte

	// Buf is the inbound destination for OBJECT_READ: len(Buf) bounds how
	// much is requested, and the engine writes into it in place.
	Buf []byte

	// NBytesDone receives the actual byte count for OBJECT_READ/WRITE via
	// atomic add, so concurrent runs touching the same counter (e.g. a
	// striped write split across servers) sum correctly.
	NBytesDone *atomic.Uint64

	// StatusOut receives the result of OBJECT_STATUS.
	StatusOut *ObjectStatus

	// ValueOut receives a copy of the value for KV_GET when non-nil.
	ValueOut *[]byte

	// OnValue, when set, is invoked with a transient view of the KV_GET
	// result; ValueOut, if also set, still receives its own copy. The slice
	// passed to OnValue is only valid for the duration of the call.
	OnValue func([]byte)

	// FoundOut receives whether a KV_GET key existed.
	FoundOut *bool

	// Err receives the operation's outcome. A run-level failure (e.g. a
	// dropped connection) is reported on every operation in the run.
	Err error

	handle *handle.Base
}

// AttachHandle associates op with the ref-counted handle it was issued
// from. The engine releases one reference when the operation finishes
// executing; enqueue attaches a ref-counted reference to the handle.
func (op *Operation) AttachHandle(h *handle.Base) {
	h.Ref()
	op.handle = h
}

func (op *Operation) releaseHandle() {
	if op.handle != nil {
		op.handle.Unref()
		op.handle = nil
	}
}
