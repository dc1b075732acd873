package pool

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
)

// Conn is the pooled resource: a live connection to one server. Callers
// that implement a real transport satisfy this with their connection type;
// tests satisfy it with a fake.
type Conn io.Closer

// Dialer opens a new connection to addr. Supplied by the caller so this
// package stays transport-agnostic: TCP is a choice made at the server
// loop, not mandated here.
type Dialer func(addr string) (Conn, error)

// Pool is a bounded, per-server-index LIFO of live connections, thread-safe.
// One Pool instance serves one server fleet: callers
// construct a separate Pool for object servers and one for KV servers.
// idle[index]+leased[index] never exceeds maxConn; Pop blocks once a
// server index is at capacity until a Push or Drop frees a slot.
type Pool struct {
	name    string
	servers []string
	maxConn int
	dial    Dialer

	mu     sync.Mutex
	cond   *sync.Cond
	idle   [][]Conn
	leased []int

	monitor *HealthMonitor
}

// New builds a Pool addressing len(servers) server indices, each bounded to
// maxConn live connections.
func New(name string, servers []string, maxConn int, dial Dialer) *Pool {
	p := &Pool{
		name:    name,
		servers: servers,
		maxConn: maxConn,
		dial:    dial,
		idle:    make([][]Conn, len(servers)),
		leased:  make([]int, len(servers)),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// ErrUnreachable is returned by Pop when the health monitor has flagged the
// target server down, instead of blocking on a dial that is likely to fail.
var ErrUnreachable = fmt.Errorf("pool: server flagged unreachable")

// AttachHealthMonitor wires a HealthMonitor so Pop can skip dialing servers
// already known to be down.
func (p *Pool) AttachHealthMonitor(hm *HealthMonitor) {
	p.monitor = hm
}

// Pop returns a live connection to servers[index]: an idle one if
// available, a freshly dialed one if the index is under maxConn, or else
// blocks until a Push or Drop frees a slot. index must be within range.
func (p *Pool) Pop(index uint32) (Conn, error) {
	if err := p.checkIndex(index); err != nil {
		return nil, err
	}

	if p.monitor != nil && !p.monitor.IsHealthy(p.servers[index]) {
		return nil, fmt.Errorf("%w: %s", ErrUnreachable, p.servers[index])
	}

	p.mu.Lock()
	for {
		if n := len(p.idle[index]); n > 0 {
			conn := p.idle[index][n-1]
			p.idle[index] = p.idle[index][:n-1]
			p.leased[index]++
			p.mu.Unlock()
			p.updateGauges(index)
			return conn, nil
		}

		if p.leased[index] < p.maxConn {
			p.leased[index]++
			p.mu.Unlock()

			conn, err := p.dial(p.servers[index])
			if err != nil {
				p.mu.Lock()
				p.leased[index]--
				p.cond.Broadcast()
				p.mu.Unlock()
				return nil, fmt.Errorf("pool: dialing %s: %w", p.servers[index], err)
			}
			p.updateGauges(index)
			return conn, nil
		}

		p.cond.Wait()
	}
}

// healthyConn is implemented by connections that can report their own
// liveness without a round trip (e.g. a cached error from the last I/O).
// Push consults it, when present, to decide whether a connection is worth
// keeping idle.
type healthyConn interface {
	Healthy() bool
}

// Push returns conn to the pool if it is still healthy and there is room in
// the idle list, otherwise closes it.
func (p *Pool) Push(index uint32, conn Conn) {
	if err := p.checkIndex(index); err != nil {
		log.Error().Err(err).Msg("pool: push with invalid index, closing connection")
		_ = conn.Close()
		return
	}

	p.mu.Lock()
	p.leased[index]--

	healthy := true
	if hc, ok := conn.(healthyConn); ok {
		healthy = hc.Healthy()
	}

	keep := healthy && len(p.idle[index]) < p.maxConn
	if keep {
		p.idle[index] = append(p.idle[index], conn)
	}
	p.cond.Broadcast()
	p.mu.Unlock()

	p.updateGauges(index)

	if !keep {
		_ = conn.Close()
	}
}

// Drop closes conn without returning it to the pool, for callers that know
// a connection is broken beyond what Push's health check would catch.
func (p *Pool) Drop(index uint32, conn Conn) {
	if err := p.checkIndex(index); err == nil {
		p.mu.Lock()
		p.leased[index]--
		p.cond.Broadcast()
		p.mu.Unlock()
		p.updateGauges(index)
	}
	_ = conn.Close()
}

// Close closes every idle connection in every server's pool. Leased
// connections are the caller's responsibility.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for i, conns := range p.idle {
		for _, c := range conns {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		p.idle[i] = nil
	}
	return firstErr
}

func (p *Pool) checkIndex(index uint32) error {
	if int(index) >= len(p.servers) {
		return fmt.Errorf("pool: server index %d out of range (have %d servers)", index, len(p.servers))
	}
	return nil
}

func (p *Pool) updateGauges(index uint32) {
	p.mu.Lock()
	idle := len(p.idle[index])
	leased := p.leased[index]
	p.mu.Unlock()

	label := strconv.FormatUint(uint64(index), 10)
	idleConnections.WithLabelValues(p.name, label).Set(float64(idle))
	leasedConnections.WithLabelValues(p.name, label).Set(float64(leased))
}
