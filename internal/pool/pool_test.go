package pool

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu      sync.Mutex
	closed  bool
	healthy bool
}

func newFakeConn() *fakeConn { return &fakeConn{healthy: true} }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) Healthy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.healthy
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func dialerFor(conns map[string][]*fakeConn) Dialer {
	return func(addr string) (Conn, error) {
		c := newFakeConn()
		conns[addr] = append(conns[addr], c)
		return c, nil
	}
}

func TestPopDialsWhenIdleIsEmpty(t *testing.T) {
	dialed := map[string][]*fakeConn{}
	p := New("object", []string{"srv0", "srv1"}, 4, dialerFor(dialed))

	conn, err := p.Pop(1)
	require.NoError(t, err)
	require.NotNil(t, conn)
	assert.Len(t, dialed["srv1"], 1)
	assert.Empty(t, dialed["srv0"])
}

func TestPushThenPopReusesIdleConnection(t *testing.T) {
	dialed := map[string][]*fakeConn{}
	p := New("object", []string{"srv0"}, 4, dialerFor(dialed))

	conn, err := p.Pop(0)
	require.NoError(t, err)
	p.Push(0, conn)

	again, err := p.Pop(0)
	require.NoError(t, err)
	assert.Same(t, conn, again, "pop after push must reuse the same connection")
	assert.Len(t, dialed["srv0"], 1, "reuse must not dial a second connection")
}

func TestPushDropsUnhealthyConnection(t *testing.T) {
	dialed := map[string][]*fakeConn{}
	p := New("object", []string{"srv0"}, 4, dialerFor(dialed))

	conn, err := p.Pop(0)
	require.NoError(t, err)
	fc := conn.(*fakeConn)
	fc.healthy = false

	p.Push(0, conn)

	assert.True(t, fc.isClosed(), "unhealthy connection must be closed, not pooled")

	_, err = p.Pop(0)
	require.NoError(t, err)
	assert.Len(t, dialed["srv0"], 2, "a new connection must be dialed since the old one was dropped")
}

func TestPopBlocksAtCapacityUntilSlotFrees(t *testing.T) {
	dialed := map[string][]*fakeConn{}
	p := New("object", []string{"srv0"}, 1, dialerFor(dialed))

	a, err := p.Pop(0)
	require.NoError(t, err)

	result := make(chan Conn, 1)
	go func() {
		conn, err := p.Pop(0)
		require.NoError(t, err)
		result <- conn
	}()

	select {
	case <-result:
		t.Fatal("Pop must block while the single connection slot is leased")
	case <-time.After(50 * time.Millisecond):
	}

	p.Push(0, a)

	select {
	case conn := <-result:
		assert.Same(t, a, conn, "the freed connection must be handed to the blocked waiter")
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock after Push freed a slot")
	}

	assert.Len(t, dialed["srv0"], 1, "a blocked Pop must reuse the freed connection, not dial a second one")
}

func TestPopOutOfRangeIndexErrors(t *testing.T) {
	dialed := map[string][]*fakeConn{}
	p := New("object", []string{"srv0"}, 4, dialerFor(dialed))

	_, err := p.Pop(5)
	assert.Error(t, err)
}

func TestPopSkipsDialWhenMonitorFlagsUnhealthy(t *testing.T) {
	dialed := map[string][]*fakeConn{}
	p := New("object", []string{"srv0", "srv1"}, 4, dialerFor(dialed))

	hm := NewHealthMonitor([]string{"srv0", "srv1"}, 0, 0)
	hm.SetDialFunc(func(addr string, _ time.Duration) error {
		if addr == "srv1" {
			return errors.New("connection refused")
		}
		return nil
	})
	for i := 0; i < 3; i++ {
		hm.checkAll()
	}
	p.AttachHealthMonitor(hm)

	_, err := p.Pop(1)
	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Empty(t, dialed["srv1"], "pop must not dial a server the monitor flagged unhealthy")

	conn, err := p.Pop(0)
	require.NoError(t, err)
	require.NotNil(t, conn)
}

func TestDropClosesWithoutPooling(t *testing.T) {
	dialed := map[string][]*fakeConn{}
	p := New("object", []string{"srv0"}, 4, dialerFor(dialed))

	conn, err := p.Pop(0)
	require.NoError(t, err)
	p.Drop(0, conn)

	assert.True(t, conn.(*fakeConn).isClosed())

	_, err = p.Pop(0)
	require.NoError(t, err)
	assert.Len(t, dialed["srv0"], 2)
}

func TestCloseClosesAllIdleConnections(t *testing.T) {
	dialed := map[string][]*fakeConn{}
	p := New("object", []string{"srv0"}, 4, dialerFor(dialed))

	conn, err := p.Pop(0)
	require.NoError(t, err)
	p.Push(0, conn)

	require.NoError(t, p.Close())
	assert.True(t, conn.(*fakeConn).isClosed())
}

func TestConcurrentPopPushIsRaceFree(t *testing.T) {
	dialed := map[string][]*fakeConn{}
	var mu sync.Mutex
	dial := func(addr string) (Conn, error) {
		mu.Lock()
		defer mu.Unlock()
		c := newFakeConn()
		dialed[addr] = append(dialed[addr], c)
		return c, nil
	}
	p := New("object", []string{"srv0"}, 8, dial)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, err := p.Pop(0)
			if err != nil {
				return
			}
			p.Push(0, conn)
		}()
	}
	wg.Wait()
}
