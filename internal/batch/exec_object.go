package batch

import (
	"fmt"

	"github.com/dreamware/julea/internal/backend"
	"github.com/dreamware/julea/internal/semantics"
	"github.com/dreamware/julea/internal/wire"
)

// executeObjectSimpleRun handles OBJECT_CREATE/DELETE/STATUS: each packed
// operation addresses its own object name independently (no shared open
// handle across the run).
func (e *Engine) executeObjectSimpleRun(run []*Operation, k runKey, sem *semantics.Semantics) (string, error) {
	if ob, ok := e.localObject(k.serverIndex); ok {
		for _, op := range run {
			op.Err = runObjectSimpleLocal(ob, op)
		}
		return "local", joinOpErrors(run)
	}

	if err := e.runObjectSimpleRemote(run, k, sem); err != nil {
		return "remote", err
	}
	return "remote", nil
}

func runObjectSimpleLocal(ob backend.Object, op *Operation) error {
	switch op.Op {
	case wire.OpObjectCreate:
		f, err := ob.Create(op.Namespace, op.Name)
		if err != nil {
			return err
		}
		return f.Close()

	case wire.OpObjectDelete:
		f, err := ob.Open(op.Namespace, op.Name)
		if err != nil {
			return err
		}
		if err := f.Delete(); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()

	case wire.OpObjectStatus:
		f, err := ob.Open(op.Namespace, op.Name)
		if err != nil {
			return err
		}
		mtime, size, err := f.Status()
		if err != nil {
			_ = f.Close()
			return err
		}
		if op.StatusOut != nil {
			*op.StatusOut = ObjectStatus{MTime: mtime, Size: size}
		}
		return f.Close()

	default:
		return fmt.Errorf("batch: unexpected opcode %v in object-simple run", op.Op)
	}
}

func (e *Engine) runObjectSimpleRemote(run []*Operation, k runKey, sem *semantics.Semantics) error {
	wantsReply := sem.Safety() >= semantics.SafetyNetwork

	req := &wire.Request{Op: k.op, Namespace: k.namespace, Ops: make([]wire.OperationPayload, len(run))}
	if wantsReply {
		req.Flags |= wire.FlagSafetyNetwork
	}
	for i, op := range run {
		req.Ops[i] = wire.OperationPayload{Name: op.Name}
	}

	conn, rc, err := e.leaseRemote(e.deps.ObjectPool, k.serverIndex)
	if err != nil {
		for _, op := range run {
			op.Err = err
		}
		return err
	}

	if err := wire.EncodeRequest(rc, req); err != nil {
		e.deps.ObjectPool.Drop(k.serverIndex, conn)
		for _, op := range run {
			op.Err = err
		}
		return err
	}

	if !wantsReply {
		e.deps.ObjectPool.Push(k.serverIndex, conn)
		return nil
	}

	results, err := wire.ReadAll(rc, k.op, len(run))
	if err != nil {
		e.deps.ObjectPool.Drop(k.serverIndex, conn)
		for _, op := range run {
			op.Err = err
		}
		return err
	}
	e.deps.ObjectPool.Push(k.serverIndex, conn)

	for i, op := range run {
		if k.op == wire.OpObjectStatus && op.StatusOut != nil && i < len(results) {
			*op.StatusOut = ObjectStatus{
				MTime: int64ToTime(results[i].MTime),
				Size:  results[i].Size,
			}
		}
	}
	return nil
}

// executeObjectStreamRun handles OBJECT_READ/OBJECT_WRITE. The locality key
// only covers (opcode, server, namespace); within that, operations addressing
// different object names are further split so each sub-run opens exactly
// one object: it opens the object once at the start of the run and closes
// it at the end.
func (e *Engine) executeObjectStreamRun(run []*Operation, k runKey, sem *semantics.Semantics) (string, error) {
	path := "remote"
	if _, ok := e.localObject(k.serverIndex); ok {
		path = "local"
	}

	var firstErr error
	for _, sub := range splitByName(run) {
		var err error
		if path == "local" {
			ob, _ := e.localObject(k.serverIndex)
			err = runObjectStreamLocal(ob, sub, sem)
		} else {
			err = e.runObjectStreamRemote(sub, k, sem)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return path, firstErr
}

func splitByName(run []*Operation) [][]*Operation {
	var groups [][]*Operation
	for i := 0; i < len(run); {
		j := i + 1
		for j < len(run) && run[j].Name == run[i].Name {
			j++
		}
		groups = append(groups, run[i:j])
		i = j
	}
	return groups
}

func runObjectStreamLocal(ob backend.Object, sub []*Operation, sem *semantics.Semantics) error {
	namespace := sub[0].Namespace
	name := sub[0].Name

	f, err := ob.Open(namespace, name)
	if err != nil {
		for _, op := range sub {
			op.Err = err
		}
		return err
	}
	defer f.Close()

	wrote := false
	for _, op := range sub {
		switch op.Op {
		case wire.OpObjectRead:
			n, err := f.Read(op.Buf, op.Offset)
			if err != nil {
				op.Err = err
				continue
			}
			if op.NBytesDone != nil {
				op.NBytesDone.Add(uint64(n))
			}
		case wire.OpObjectWrite:
			n, err := f.Write(op.Data, op.Offset)
			if err != nil {
				op.Err = err
				continue
			}
			wrote = true
			if op.NBytesDone != nil {
				op.NBytesDone.Add(uint64(n))
			}
		default:
			op.Err = fmt.Errorf("batch: unexpected opcode %v in object-stream run", op.Op)
		}
	}

	if wrote && sem.Safety() >= semantics.SafetyStorage {
		if err := f.Sync(); err != nil {
			for _, op := range sub {
				if op.Op == wire.OpObjectWrite && op.Err == nil {
					op.Err = err
				}
			}
		}
	}

	return joinOpErrors(sub)
}

func (e *Engine) runObjectStreamRemote(sub []*Operation, k runKey, sem *semantics.Semantics) error {
	wantsReply := sem.Safety() >= semantics.SafetyNetwork

	req := &wire.Request{
		Op:        k.op,
		Namespace: k.namespace,
		Name:      sub[0].Name,
		Ops:       make([]wire.OperationPayload, len(sub)),
	}
	if wantsReply {
		req.Flags |= wire.FlagSafetyNetwork
	}
	for i, op := range sub {
		if k.op == wire.OpObjectWrite {
			req.Ops[i] = wire.OperationPayload{Length: uint64(len(op.Data)), Offset: op.Offset, Value: op.Data}
		} else {
			req.Ops[i] = wire.OperationPayload{Length: uint64(len(op.Buf)), Offset: op.Offset}
		}
	}

	conn, rc, err := e.leaseRemote(e.deps.ObjectPool, k.serverIndex)
	if err != nil {
		for _, op := range sub {
			op.Err = err
		}
		return err
	}

	if err := wire.EncodeRequest(rc, req); err != nil {
		e.deps.ObjectPool.Drop(k.serverIndex, conn)
		for _, op := range sub {
			op.Err = err
		}
		return err
	}

	if k.op == wire.OpObjectWrite && !wantsReply {
		// Fire-and-forget write: optimistically record the requested
		// length, the safety=none fast path.
		for _, op := range sub {
			if op.NBytesDone != nil {
				op.NBytesDone.Add(uint64(len(op.Data)))
			}
		}
		e.deps.ObjectPool.Push(k.serverIndex, conn)
		return nil
	}

	results, err := wire.ReadAll(rc, k.op, len(sub))
	if err != nil {
		e.deps.ObjectPool.Drop(k.serverIndex, conn)
		for _, op := range sub {
			op.Err = err
		}
		return err
	}
	e.deps.ObjectPool.Push(k.serverIndex, conn)

	for i, op := range sub {
		if i >= len(results) {
			break
		}
		if k.op == wire.OpObjectRead {
			n := copy(op.Buf, results[i].Value)
			if op.NBytesDone != nil {
				op.NBytesDone.Add(uint64(n))
			}
		} else if op.NBytesDone != nil {
			op.NBytesDone.Add(results[i].NBytes)
		}
	}
	return nil
}
