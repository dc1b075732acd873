package pool

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// serverHealth tracks the liveness of a single configured server address,
// trimmed to what the pool actually consults (Pop only ever asks "is this
// address up right now", never "since when").
type serverHealth struct {
	status           string // "healthy", "unhealthy", "unknown"
	consecutiveFails int
}

// HealthMonitor periodically dials every configured server address and
// tracks which ones answer. Pop consults it to skip a doomed dial rather
// than block on one; it is not a retry or replication mechanism.
type HealthMonitor struct {
	servers     []string
	interval    time.Duration
	dialTimeout time.Duration
	maxFailures int
	dial        func(addr string, timeout time.Duration) error

	mu    sync.RWMutex
	state map[string]*serverHealth

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHealthMonitor builds a monitor for servers, checking every interval
// with a dialTimeout-bounded TCP dial. Servers are marked unhealthy after 3
// consecutive failures.
func NewHealthMonitor(servers []string, interval, dialTimeout time.Duration) *HealthMonitor {
	ctx, cancel := context.WithCancel(context.Background())

	return &HealthMonitor{
		servers:     servers,
		interval:    interval,
		dialTimeout: dialTimeout,
		maxFailures: 3,
		dial:        defaultDial,
		state:       make(map[string]*serverHealth, len(servers)),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func defaultDial(addr string, timeout time.Duration) error {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return err
	}
	return conn.Close()
}

// SetDialFunc overrides the liveness probe, for tests.
func (h *HealthMonitor) SetDialFunc(dial func(addr string, timeout time.Duration) error) {
	h.dial = dial
}

// Start runs the periodic check loop until ctx is done or Stop is called.
// It performs one check immediately, so there is no one-interval blind spot
// at startup.
func (h *HealthMonitor) Start(ctx context.Context) {
	h.wg.Add(1)
	defer h.wg.Done()

	if ctx == nil {
		ctx = h.ctx
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	log.Debug().Dur("interval", h.interval).Msg("pool: health monitor started")

	h.checkAll()

	for {
		select {
		case <-ticker.C:
			h.checkAll()
		case <-ctx.Done():
			return
		case <-h.ctx.Done():
			return
		}
	}
}

// Stop cancels the monitor and waits for its goroutine to exit.
func (h *HealthMonitor) Stop() {
	h.cancel()
	h.wg.Wait()
}

func (h *HealthMonitor) checkAll() {
	for _, addr := range h.servers {
		h.check(addr)
	}
}

func (h *HealthMonitor) check(addr string) {
	err := h.dial(addr, h.dialTimeout)

	h.mu.Lock()
	defer h.mu.Unlock()

	st, ok := h.state[addr]
	if !ok {
		st = &serverHealth{status: "unknown"}
		h.state[addr] = st
	}

	if err != nil {
		st.consecutiveFails++
		if st.consecutiveFails >= h.maxFailures && st.status != "unhealthy" {
			log.Warn().Str("server", addr).Int("fails", st.consecutiveFails).Msg("pool: server marked unhealthy")
		}
		if st.consecutiveFails >= h.maxFailures {
			st.status = "unhealthy"
		}
		return
	}

	if st.status == "unhealthy" {
		log.Info().Str("server", addr).Msg("pool: server recovered")
	}
	st.status = "healthy"
	st.consecutiveFails = 0
}

// IsHealthy reports whether addr is currently believed reachable. An
// address never checked yet (or not in the configured server list) is
// treated as healthy: Pop should not refuse a dial the monitor has not had
// a chance to evaluate.
func (h *HealthMonitor) IsHealthy(addr string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	st, ok := h.state[addr]
	if !ok {
		return true
	}
	return st.status != "unhealthy"
}
