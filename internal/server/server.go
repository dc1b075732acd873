package server

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/dreamware/julea/internal/backend"
	"github.com/dreamware/julea/internal/handle"
	"github.com/dreamware/julea/internal/wire"
	"github.com/rs/zerolog/log"
)

// Server accepts connections on a single listener and dispatches every
// decoded wire.Request against one locally loaded backend. Kind says which
// of Object/KV is populated.
type Server struct {
	kind   handle.Kind
	object backend.Object
	kv     backend.KV

	listener net.Listener
	wg       sync.WaitGroup
	closing  atomic.Bool
}

// NewObjectServer returns a Server dispatching OBJECT_* requests against ob.
func NewObjectServer(ob backend.Object) *Server {
	return &Server{kind: handle.KindObject, object: ob}
}

// NewKVServer returns a Server dispatching KV_* requests against kv.
func NewKVServer(kv backend.KV) *Server {
	return &Server{kind: handle.KindKV, kv: kv}
}

// Serve accepts connections on l until Shutdown is called, handling each on
// its own goroutine. It returns nil after a clean Shutdown, or the
// listener's error otherwise.
func (s *Server) Serve(l net.Listener) error {
	s.listener = l
	for {
		conn, err := l.Accept()
		if err != nil {
			if s.closing.Load() {
				return nil
			}
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// Shutdown stops accepting new connections and waits, up to ctx's deadline,
// for every connection handler to return. It does not close open
// connections: a handler returns only when its peer closes the connection
// or a frame fails to decode.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closing.Store(true)
	if s.listener != nil {
		_ = s.listener.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handleConn decodes and dispatches requests from conn until it closes or a
// frame fails to decode.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	for {
		req, err := wire.DecodeRequest(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !s.closing.Load() {
				log.Debug().Err(err).Msg("server: connection closed on decode error")
			}
			return
		}

		framesReceivedTotal.WithLabelValues(req.Op.String()).Inc()

		reply := s.dispatch(req)
		if !req.WantsReply() {
			continue
		}

		if err := wire.EncodeReply(conn, reply); err != nil {
			log.Debug().Err(err).Msg("server: failed writing reply")
			return
		}
		framesSentTotal.WithLabelValues(reply.Op.String()).Inc()
	}
}

func (s *Server) dispatch(req *wire.Request) *wire.Reply {
	switch req.Op {
	case wire.OpObjectCreate, wire.OpObjectDelete, wire.OpObjectStatus:
		return s.dispatchObjectSimple(req)
	case wire.OpObjectRead, wire.OpObjectWrite:
		return s.dispatchObjectStream(req)
	case wire.OpKVPut, wire.OpKVDelete:
		return s.dispatchKVWrite(req)
	case wire.OpKVGet:
		return s.dispatchKVGet(req)
	default:
		return &wire.Reply{Op: req.Op, Results: make([]wire.ReplyResult, len(req.Ops))}
	}
}
