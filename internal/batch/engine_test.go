package batch

import (
	"bytes"
	"sync/atomic"
	"testing"

	"github.com/dreamware/julea/internal/backend"
	"github.com/dreamware/julea/internal/backend/memory"
	"github.com/dreamware/julea/internal/backend/posix"
	"github.com/dreamware/julea/internal/pool"
	"github.com/dreamware/julea/internal/semantics"
	"github.com/dreamware/julea/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func op(kind wire.Opcode, server uint32, ns, name string) *Operation {
	return &Operation{Op: kind, ServerIndex: server, Namespace: ns, Name: name}
}

func TestBuildRunsStrictOnlyMergesAdjacent(t *testing.T) {
	ops := []*Operation{
		op(wire.OpKVPut, 0, "ns", "a"),
		op(wire.OpKVPut, 1, "ns", "b"),
		op(wire.OpKVPut, 0, "ns", "c"),
	}
	runs := buildRuns(ops, semantics.OrderingStrict)
	require.Len(t, runs, 3, "server 0's two puts are not adjacent, so strict ordering must not merge them")
}

func TestBuildRunsSemiRelaxedMergesNonAdjacentSameKey(t *testing.T) {
	ops := []*Operation{
		op(wire.OpKVPut, 0, "ns", "a"),
		op(wire.OpKVPut, 1, "ns", "b"),
		op(wire.OpKVPut, 0, "ns", "c"),
	}
	runs := buildRuns(ops, semantics.OrderingSemiRelaxed)
	require.Len(t, runs, 2)
	assert.Len(t, runs[0], 2, "server 0's puts must merge under semi-relaxed ordering")
	assert.Equal(t, "a", runs[0][0].Name)
	assert.Equal(t, "c", runs[0][1].Name)
}

func TestBuildRunsSemiRelaxedPreservesFirstAppearanceOrder(t *testing.T) {
	ops := []*Operation{
		op(wire.OpKVPut, 1, "ns", "b"),
		op(wire.OpKVPut, 0, "ns", "a"),
		op(wire.OpKVPut, 1, "ns", "d"),
	}
	runs := buildRuns(ops, semantics.OrderingSemiRelaxed)
	require.Len(t, runs, 2)
	assert.Equal(t, uint32(1), runs[0][0].ServerIndex, "server 1 appeared first, so its group stays first")
}

func TestBuildRunsRelaxedSortsByNamespaceThenName(t *testing.T) {
	ops := []*Operation{
		op(wire.OpKVPut, 0, "ns", "zeta"),
		op(wire.OpKVPut, 0, "ns", "alpha"),
	}
	runs := buildRuns(ops, semantics.OrderingRelaxed)
	require.Len(t, runs, 1)
	assert.Equal(t, "alpha", runs[0][0].Name)
	assert.Equal(t, "zeta", runs[0][1].Name)
}

func TestDifferentOpcodesNeverMergeEvenUnderRelaxed(t *testing.T) {
	ops := []*Operation{
		op(wire.OpKVPut, 0, "ns", "a"),
		op(wire.OpKVDelete, 0, "ns", "a"),
	}
	runs := buildRuns(ops, semantics.OrderingRelaxed)
	assert.Len(t, runs, 2, "differing exec-fn (opcode) must never merge")
}

func newLocalEngine(t *testing.T, serverIndex uint32) (*Engine, *posix.Backend, *memory.Backend) {
	t.Helper()
	ob := posix.New("")
	require.NoError(t, ob.Init(t.TempDir()))
	kv := memory.New()
	require.NoError(t, kv.Init(""))

	e := NewEngine(Dependencies{
		ObjectBackends: map[uint32]backend.Object{serverIndex: ob},
		KVBackends:     map[uint32]backend.KV{serverIndex: kv},
	}, nil)
	return e, ob, kv
}

func TestLocalObjectCreateWriteReadStatusDelete(t *testing.T) {
	e, _, _ := newLocalEngine(t, 0)
	sem := semantics.Default()

	b := New(sem)
	b.Add(op(wire.OpObjectCreate, 0, "ns", "obj1"))
	require.NoError(t, e.Execute(b))
	b.Drain()

	var nWritten atomic.Uint64
	writeOp := op(wire.OpObjectWrite, 0, "ns", "obj1")
	writeOp.Data = []byte("hello")
	writeOp.NBytesDone = &nWritten
	b.Add(writeOp)
	require.NoError(t, e.Execute(b))
	assert.Equal(t, uint64(5), nWritten.Load())
	b.Drain()

	var nRead atomic.Uint64
	readOp := op(wire.OpObjectRead, 0, "ns", "obj1")
	readOp.Buf = make([]byte, 5)
	readOp.NBytesDone = &nRead
	b.Add(readOp)
	require.NoError(t, e.Execute(b))
	assert.Equal(t, uint64(5), nRead.Load())
	assert.Equal(t, "hello", string(readOp.Buf))
	b.Drain()

	var status ObjectStatus
	statusOp := op(wire.OpObjectStatus, 0, "ns", "obj1")
	statusOp.StatusOut = &status
	b.Add(statusOp)
	require.NoError(t, e.Execute(b))
	assert.Equal(t, uint64(5), status.Size)
	b.Drain()

	b.Add(op(wire.OpObjectDelete, 0, "ns", "obj1"))
	require.NoError(t, e.Execute(b))
	b.Drain()

	statusOp2 := op(wire.OpObjectStatus, 0, "ns", "obj1")
	b.Add(statusOp2)
	err := e.Execute(b)
	assert.Error(t, err, "status on a deleted object must fail")
}

func TestLocalObjectStreamRunOpensOncePerName(t *testing.T) {
	e, _, _ := newLocalEngine(t, 0)
	sem := semantics.Default()

	b := New(sem)
	b.Add(op(wire.OpObjectCreate, 0, "ns", "obj1"))
	require.NoError(t, e.Execute(b))
	b.Drain()

	var n1, n2 atomic.Uint64
	write1 := op(wire.OpObjectWrite, 0, "ns", "obj1")
	write1.Data = []byte("aaaa")
	write1.NBytesDone = &n1
	write2 := op(wire.OpObjectWrite, 0, "ns", "obj1")
	write2.Data = []byte("bbbb")
	write2.Offset = 4
	write2.NBytesDone = &n2

	b.Add(write1)
	b.Add(write2)
	require.NoError(t, e.Execute(b))
	assert.Equal(t, uint64(4), n1.Load())
	assert.Equal(t, uint64(4), n2.Load())
}

func TestLocalKVPutGetDelete(t *testing.T) {
	e, _, _ := newLocalEngine(t, 0)
	sem := semantics.Default()

	b := New(sem)
	put := op(wire.OpKVPut, 0, "ns", "a")
	put.Data = []byte(`{"x":1}`)
	b.Add(put)
	require.NoError(t, e.Execute(b))
	b.Drain()

	var found bool
	var value []byte
	get := op(wire.OpKVGet, 0, "ns", "a")
	get.FoundOut = &found
	get.ValueOut = &value
	b.Add(get)
	require.NoError(t, e.Execute(b))
	assert.True(t, found)
	assert.Equal(t, []byte(`{"x":1}`), value)
	b.Drain()

	del := op(wire.OpKVDelete, 0, "ns", "a")
	b.Add(del)
	require.NoError(t, e.Execute(b))
	b.Drain()

	var foundAfterDelete bool
	get2 := op(wire.OpKVGet, 0, "ns", "a")
	get2.FoundOut = &foundAfterDelete
	b.Add(get2)
	require.NoError(t, e.Execute(b))
	assert.False(t, foundAfterDelete)
}

func TestLocalKVGetMissingKeyIsNotAnEngineError(t *testing.T) {
	e, _, _ := newLocalEngine(t, 0)
	sem := semantics.Default()

	b := New(sem)
	var found bool
	get := op(wire.OpKVGet, 0, "ns", "absent")
	get.FoundOut = &found
	b.Add(get)

	require.NoError(t, e.Execute(b))
	assert.False(t, found)
	assert.NoError(t, get.Err)
}

func TestKVGetOnValueCallbackDelivery(t *testing.T) {
	e, _, _ := newLocalEngine(t, 0)
	sem := semantics.Default()

	b := New(sem)
	put := op(wire.OpKVPut, 0, "ns", "a")
	put.Data = []byte("value-a")
	b.Add(put)
	require.NoError(t, e.Execute(b))
	b.Drain()

	var delivered []byte
	get := op(wire.OpKVGet, 0, "ns", "a")
	get.OnValue = func(v []byte) { delivered = append([]byte(nil), v...) }
	b.Add(get)
	require.NoError(t, e.Execute(b))
	assert.Equal(t, []byte("value-a"), delivered)
}

// fakeConn is a loopback io.ReadWriteCloser whose reads are pre-seeded and
// whose writes are captured for inspection, used to exercise the remote
// dispatch path without a real listener.
type fakeConn struct {
	written bytes.Buffer
	toRead  *bytes.Buffer
	closed  bool
}

func (c *fakeConn) Read(p []byte) (int, error)  { return c.toRead.Read(p) }
func (c *fakeConn) Write(p []byte) (int, error) { return c.written.Write(p) }
func (c *fakeConn) Close() error                { c.closed = true; return nil }

func TestKVPutRemoteAlwaysUpgradesSafetyToNetwork(t *testing.T) {
	fc := &fakeConn{toRead: new(bytes.Buffer)}
	require.NoError(t, wire.EncodeReply(fc.toRead, &wire.Reply{Op: wire.OpKVPut, Results: []wire.ReplyResult{{}}}))

	p := pool.New("kv", []string{"addr0"}, 2, func(addr string) (pool.Conn, error) { return fc, nil })
	e := NewEngine(Dependencies{KVPool: p}, nil)

	sem := semantics.NewBuilder(semantics.TemplateDefault).SetPersistency(semantics.PersistencyNone).Done()
	require.Equal(t, semantics.SafetyNone, sem.Safety())

	b := New(sem)
	put := op(wire.OpKVPut, 0, "ns", "a")
	put.Data = []byte("v")
	b.Add(put)
	require.NoError(t, e.Execute(b))

	req, err := wire.DecodeRequest(bytes.NewReader(fc.written.Bytes()))
	require.NoError(t, err)
	assert.True(t, req.WantsReply(), "KV_PUT must request a reply even under safety=none")
}

func TestKVGetRemoteRoundTrip(t *testing.T) {
	fc := &fakeConn{toRead: new(bytes.Buffer)}
	require.NoError(t, wire.EncodeReply(fc.toRead, &wire.Reply{
		Op:      wire.OpKVGet,
		Results: []wire.ReplyResult{{Value: []byte("remote-value"), Found: true}},
	}))

	p := pool.New("kv", []string{"addr0"}, 2, func(addr string) (pool.Conn, error) { return fc, nil })
	e := NewEngine(Dependencies{KVPool: p}, nil)

	sem := semantics.Default()
	b := New(sem)
	var found bool
	var value []byte
	get := op(wire.OpKVGet, 0, "ns", "a")
	get.FoundOut = &found
	get.ValueOut = &value
	b.Add(get)

	require.NoError(t, e.Execute(b))
	assert.True(t, found)
	assert.Equal(t, []byte("remote-value"), value)
	assert.False(t, fc.closed, "a successful round trip must return the connection to the pool, not close it")
}

func TestRemoteDispatchDropsConnectionOnIOError(t *testing.T) {
	fc := &fakeConn{toRead: new(bytes.Buffer)} // empty: DecodeReply will fail on EOF
	p := pool.New("kv", []string{"addr0"}, 2, func(addr string) (pool.Conn, error) { return fc, nil })
	e := NewEngine(Dependencies{KVPool: p}, nil)

	sem := semantics.Default()
	b := New(sem)
	get := op(wire.OpKVGet, 0, "ns", "a")
	b.Add(get)

	err := e.Execute(b)
	assert.Error(t, err)
	assert.True(t, fc.closed, "a broken connection must be dropped, not pooled")
	assert.Error(t, get.Err)
}

func TestBatchAddAfterExecuteWithoutDrainPanics(t *testing.T) {
	e, _, _ := newLocalEngine(t, 0)
	sem := semantics.Default()
	b := New(sem)
	b.Add(op(wire.OpKVGet, 0, "ns", "a"))
	require.NoError(t, e.Execute(b))

	assert.Panics(t, func() {
		b.Add(op(wire.OpKVGet, 0, "ns", "b"))
	})
}

func TestExecuteTwiceWithoutDrainErrors(t *testing.T) {
	e, _, _ := newLocalEngine(t, 0)
	sem := semantics.Default()
	b := New(sem)
	b.Add(op(wire.OpKVGet, 0, "ns", "a"))
	require.NoError(t, e.Execute(b))

	err := e.Execute(b)
	assert.Error(t, err)
}
