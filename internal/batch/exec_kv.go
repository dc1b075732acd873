package batch

import (
	"errors"
	"fmt"

	"github.com/dreamware/julea/internal/backend"
	"github.com/dreamware/julea/internal/semantics"
	"github.com/dreamware/julea/internal/wire"
)

// executeKVWriteRun handles KV_PUT and KV_DELETE: the write-side operations
// that open a backend batch_start/.../batch_execute scope for the whole
// run.
func (e *Engine) executeKVWriteRun(run []*Operation, k runKey, sem *semantics.Semantics) (string, error) {
	if kv, ok := e.localKV(k.serverIndex); ok {
		return "local", runKVWriteLocal(kv, run, k, sem)
	}
	return "remote", e.runKVWriteRemote(run, k, sem)
}

func runKVWriteLocal(kv backend.KV, run []*Operation, k runKey, sem *semantics.Semantics) error {
	wb, err := kv.BatchStart(k.namespace, sem.Safety())
	if err != nil {
		return err
	}

	for _, op := range run {
		switch op.Op {
		case wire.OpKVPut:
			if err := wb.Put(op.Name, op.Data); err != nil {
				op.Err = err
			}
		case wire.OpKVDelete:
			if err := wb.Delete(op.Name); err != nil {
				op.Err = err
			}
		default:
			op.Err = fmt.Errorf("batch: unexpected opcode %v in kv-write run", op.Op)
		}
	}

	if err := wb.Execute(); err != nil {
		return err
	}
	return joinOpErrors(run)
}

// runKVWriteRemote dispatches a KV_PUT/KV_DELETE run over the wire. Under
// the safety upgrade rule, KV_PUT always awaits a reply regardless of the
// batch's configured safety, to avoid a read-after-write race across two
// different pooled connections; KV_DELETE follows the
// batch's actual safety.
func (e *Engine) runKVWriteRemote(run []*Operation, k runKey, sem *semantics.Semantics) error {
	wantsReply := sem.Safety() >= semantics.SafetyNetwork || k.op == wire.OpKVPut

	req := &wire.Request{Op: k.op, Namespace: k.namespace, Ops: make([]wire.OperationPayload, len(run))}
	if wantsReply {
		req.Flags |= wire.FlagSafetyNetwork
	}
	for i, op := range run {
		req.Ops[i] = wire.OperationPayload{Name: op.Name, Value: op.Data}
	}

	conn, rc, err := e.leaseRemote(e.deps.KVPool, k.serverIndex)
	if err != nil {
		for _, op := range run {
			op.Err = err
		}
		return err
	}

	if err := wire.EncodeRequest(rc, req); err != nil {
		e.deps.KVPool.Drop(k.serverIndex, conn)
		for _, op := range run {
			op.Err = err
		}
		return err
	}

	if !wantsReply {
		e.deps.KVPool.Push(k.serverIndex, conn)
		return nil
	}

	if _, err := wire.ReadAll(rc, k.op, len(run)); err != nil {
		e.deps.KVPool.Drop(k.serverIndex, conn)
		for _, op := range run {
			op.Err = err
		}
		return err
	}
	e.deps.KVPool.Push(k.serverIndex, conn)
	return nil
}

// executeKVGetRun handles KV_GET, a read-side operation that calls the
// backend directly without a write-batch scope.
func (e *Engine) executeKVGetRun(run []*Operation, k runKey, sem *semantics.Semantics) (string, error) {
	if kv, ok := e.localKV(k.serverIndex); ok {
		for _, op := range run {
			runKVGetLocal(kv, op)
		}
		return "local", joinOpErrors(run)
	}
	return "remote", e.runKVGetRemote(run, k)
}

func runKVGetLocal(kv backend.KV, op *Operation) {
	value, err := kv.Get(op.Namespace, op.Name)
	if errors.Is(err, backend.ErrNotFound) {
		if op.FoundOut != nil {
			*op.FoundOut = false
		}
		return
	}
	if err != nil {
		op.Err = err
		return
	}
	deliverValue(op, value)
}

// runKVGetRemote always requests a reply: KV_GET is inherently a request
// that needs its answer, so the safety-upgrade rule applies
// unconditionally here too.
func (e *Engine) runKVGetRemote(run []*Operation, k runKey) error {
	req := &wire.Request{
		Op:        k.op,
		Namespace: k.namespace,
		Flags:     wire.FlagSafetyNetwork,
		Ops:       make([]wire.OperationPayload, len(run)),
	}
	for i, op := range run {
		req.Ops[i] = wire.OperationPayload{Name: op.Name}
	}

	conn, rc, err := e.leaseRemote(e.deps.KVPool, k.serverIndex)
	if err != nil {
		for _, op := range run {
			op.Err = err
		}
		return err
	}

	if err := wire.EncodeRequest(rc, req); err != nil {
		e.deps.KVPool.Drop(k.serverIndex, conn)
		for _, op := range run {
			op.Err = err
		}
		return err
	}

	results, err := wire.ReadAll(rc, k.op, len(run))
	if err != nil {
		e.deps.KVPool.Drop(k.serverIndex, conn)
		for _, op := range run {
			op.Err = err
		}
		return err
	}
	e.deps.KVPool.Push(k.serverIndex, conn)

	for i, op := range run {
		if i >= len(results) {
			break
		}
		if op.FoundOut != nil {
			*op.FoundOut = results[i].Found
		}
		if results[i].Found {
			deliverValue(op, results[i].Value)
		}
	}
	return nil
}

// deliverValue routes a fetched KV value to whichever sink the caller set:
// OnValue gets a transient zero-copy view, ValueOut gets an owned copy.
func deliverValue(op *Operation, value []byte) {
	if op.FoundOut != nil {
		*op.FoundOut = true
	}
	if op.OnValue != nil {
		op.OnValue(value)
	}
	if op.ValueOut != nil {
		out := make([]byte, len(value))
		copy(out, value)
		*op.ValueOut = out
	}
}
