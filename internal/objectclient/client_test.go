package objectclient

import (
	"sync/atomic"
	"testing"

	"github.com/dreamware/julea/internal/backend"
	"github.com/dreamware/julea/internal/backend/posix"
	"github.com/dreamware/julea/internal/batch"
	"github.com/dreamware/julea/internal/semantics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalEngine(t *testing.T, serverIndex uint32) *batch.Engine {
	t.Helper()
	ob := posix.New("")
	require.NoError(t, ob.Init(t.TempDir()))
	return batch.NewEngine(batch.Dependencies{
		ObjectBackends: map[uint32]backend.Object{serverIndex: ob},
	}, nil)
}

func TestCreateWriteReadStatusDeleteRoundtrip(t *testing.T) {
	e := newLocalEngine(t, 0)
	sem := semantics.Default()
	h := NewHandleWithIndex("ns", "obj1", 0)

	b := batch.New(sem)
	Create(b, h)
	require.NoError(t, e.Execute(b))
	b.Drain()

	var nWritten atomic.Uint64
	Write(b, h, []byte("hello world"), 0, &nWritten)
	require.NoError(t, e.Execute(b))
	assert.Equal(t, uint64(11), nWritten.Load())
	b.Drain()

	var nRead atomic.Uint64
	buf := make([]byte, 11)
	Read(b, h, buf, 0, &nRead)
	require.NoError(t, e.Execute(b))
	assert.Equal(t, uint64(11), nRead.Load())
	assert.Equal(t, "hello world", string(buf))
	b.Drain()

	var status batch.ObjectStatus
	Status(b, h, &status)
	require.NoError(t, e.Execute(b))
	assert.Equal(t, uint64(11), status.Size)
	b.Drain()

	Delete(b, h)
	require.NoError(t, e.Execute(b))
}

func TestHashIndexPicksConsistentServer(t *testing.T) {
	h1 := NewHandle("ns", "obj1", 4)
	h2 := NewHandle("ns", "obj1", 4)
	assert.Equal(t, h1.ServerIndex(), h2.ServerIndex(), "hashing the same name must be deterministic")
	assert.Less(t, h1.ServerIndex(), uint32(4))
}

func TestHandleRefCountTracksAttachedOperations(t *testing.T) {
	h := NewHandleWithIndex("ns", "obj1", 0)
	assert.Equal(t, int32(1), h.RefCount())

	sem := semantics.Default()
	b := batch.New(sem)
	Create(b, h)
	assert.Equal(t, int32(2), h.RefCount(), "enqueuing an operation must take a reference")

	e := newLocalEngine(t, 0)
	require.NoError(t, e.Execute(b))
	assert.Equal(t, int32(1), h.RefCount(), "execution must release the operation's reference")
}

func TestPartialWriteThenReadAtOffset(t *testing.T) {
	e := newLocalEngine(t, 0)
	sem := semantics.Default()
	h := NewHandleWithIndex("ns", "obj1", 0)

	b := batch.New(sem)
	Create(b, h)
	require.NoError(t, e.Execute(b))
	b.Drain()

	var n1, n2 atomic.Uint64
	Write(b, h, []byte("aaaa"), 0, &n1)
	Write(b, h, []byte("bbbb"), 4, &n2)
	require.NoError(t, e.Execute(b))
	assert.Equal(t, uint64(4), n1.Load())
	assert.Equal(t, uint64(4), n2.Load())
	b.Drain()

	var nRead atomic.Uint64
	buf := make([]byte, 8)
	Read(b, h, buf, 0, &nRead)
	require.NoError(t, e.Execute(b))
	assert.Equal(t, "aaaabbbb", string(buf))
}
