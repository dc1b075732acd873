package server

import (
	"errors"

	"github.com/dreamware/julea/internal/backend"
	"github.com/dreamware/julea/internal/semantics"
	"github.com/dreamware/julea/internal/wire"
	"github.com/rs/zerolog/log"
)

// dispatchObjectSimple handles OBJECT_CREATE/DELETE/STATUS: each packed
// operation names its own object, independent of the others in the frame.
// The wire protocol carries no per-operation error channel, so a failed op
// is logged and left as a zero ReplyResult at its index; the reply's
// operation count still matches the request's.
func (s *Server) dispatchObjectSimple(req *wire.Request) *wire.Reply {
	results := make([]wire.ReplyResult, len(req.Ops))

	for i, op := range req.Ops {
		switch req.Op {
		case wire.OpObjectCreate:
			f, err := s.object.Create(req.Namespace, op.Name)
			if err != nil {
				logDispatchErr(req.Op, op.Name, err)
				continue
			}
			if err := f.Close(); err != nil {
				logDispatchErr(req.Op, op.Name, err)
			}

		case wire.OpObjectDelete:
			f, err := s.object.Open(req.Namespace, op.Name)
			if err != nil {
				logDispatchErr(req.Op, op.Name, err)
				continue
			}
			if err := f.Delete(); err != nil {
				logDispatchErr(req.Op, op.Name, err)
			}
			if err := f.Close(); err != nil {
				logDispatchErr(req.Op, op.Name, err)
			}

		case wire.OpObjectStatus:
			f, err := s.object.Open(req.Namespace, op.Name)
			if err != nil {
				logDispatchErr(req.Op, op.Name, err)
				continue
			}
			mtime, size, err := f.Status()
			if err != nil {
				logDispatchErr(req.Op, op.Name, err)
				_ = f.Close()
				continue
			}
			results[i] = wire.ReplyResult{MTime: mtime.UnixNano(), Size: size}
			if err := f.Close(); err != nil {
				logDispatchErr(req.Op, op.Name, err)
			}
		}
	}

	return &wire.Reply{Op: req.Op, Results: results}
}

// dispatchObjectStream handles OBJECT_READ/OBJECT_WRITE: every packed
// operation in the frame addresses req.Name, opened once for the whole
// frame and closed at the end, the server-side mirror of the client
// engine's per-run open/close.
func (s *Server) dispatchObjectStream(req *wire.Request) *wire.Reply {
	results := make([]wire.ReplyResult, len(req.Ops))

	f, err := s.object.Open(req.Namespace, req.Name)
	if err != nil {
		logDispatchErr(req.Op, req.Name, err)
		return &wire.Reply{Op: req.Op, Results: results}
	}
	defer func() {
		if err := f.Close(); err != nil {
			logDispatchErr(req.Op, req.Name, err)
		}
	}()

	for i, op := range req.Ops {
		switch req.Op {
		case wire.OpObjectRead:
			buf := make([]byte, op.Length)
			n, err := f.Read(buf, op.Offset)
			if err != nil {
				logDispatchErr(req.Op, req.Name, err)
				continue
			}
			results[i] = wire.ReplyResult{NBytes: uint64(n), Value: buf[:n]}

		case wire.OpObjectWrite:
			n, err := f.Write(op.Value, op.Offset)
			if err != nil {
				logDispatchErr(req.Op, req.Name, err)
				continue
			}
			results[i] = wire.ReplyResult{NBytes: uint64(n)}
		}
	}

	return &wire.Reply{Op: req.Op, Results: results}
}

// dispatchKVWrite handles KV_PUT/KV_DELETE inside one backend write-batch
// scope per frame, the server-side half of the client engine's
// batch_start/.../batch_execute run.
func (s *Server) dispatchKVWrite(req *wire.Request) *wire.Reply {
	results := make([]wire.ReplyResult, len(req.Ops))

	safety := semantics.SafetyNone
	if req.WantsReply() {
		safety = semantics.SafetyNetwork
	}

	wb, err := s.kv.BatchStart(req.Namespace, safety)
	if err != nil {
		logDispatchErr(req.Op, req.Namespace, err)
		return &wire.Reply{Op: req.Op, Results: results}
	}

	for _, op := range req.Ops {
		var err error
		switch req.Op {
		case wire.OpKVPut:
			err = wb.Put(op.Name, op.Value)
		case wire.OpKVDelete:
			err = wb.Delete(op.Name)
		}
		if err != nil {
			logDispatchErr(req.Op, op.Name, err)
		}
	}

	if err := wb.Execute(); err != nil {
		logDispatchErr(req.Op, req.Namespace, err)
	}

	return &wire.Reply{Op: req.Op, Results: results}
}

// dispatchKVGet handles KV_GET, answered directly from the backend with no
// batch scope, mirroring the client engine's read-side dispatch.
func (s *Server) dispatchKVGet(req *wire.Request) *wire.Reply {
	results := make([]wire.ReplyResult, len(req.Ops))

	for i, op := range req.Ops {
		value, err := s.kv.Get(req.Namespace, op.Name)
		if errors.Is(err, backend.ErrNotFound) {
			results[i] = wire.ReplyResult{Found: false}
			continue
		}
		if err != nil {
			logDispatchErr(req.Op, op.Name, err)
			continue
		}
		results[i] = wire.ReplyResult{Value: value, Found: true}
	}

	return &wire.Reply{Op: req.Op, Results: results}
}

func logDispatchErr(op wire.Opcode, name string, err error) {
	dispatchErrorsTotal.WithLabelValues(op.String()).Inc()
	log.Warn().Str("op", op.String()).Str("name", name).Err(err).Msg("server: dispatch error")
}
