package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectWriteRoundTrip(t *testing.T) {
	req := &Request{
		Op:        OpObjectWrite,
		Flags:     FlagSafetyNetwork,
		Namespace: "ns",
		Name:      "obj",
		Ops: []OperationPayload{
			{Length: 6, Offset: 10, Value: []byte("ABCDEF")},
			{Length: 3, Offset: 20, Value: []byte("xyz")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeRequest(&buf, req))

	got, err := DecodeRequest(&buf)
	require.NoError(t, err)

	assert.Equal(t, req.Namespace, got.Namespace)
	assert.Equal(t, req.Name, got.Name)
	assert.True(t, got.WantsReply())
	require.Len(t, got.Ops, 2)
	assert.Equal(t, uint64(6), got.Ops[0].Length)
	assert.Equal(t, uint64(10), got.Ops[0].Offset)
	assert.Equal(t, []byte("ABCDEF"), got.Ops[0].Value)
	assert.Equal(t, []byte("xyz"), got.Ops[1].Value)
}

func TestObjectCreateDeleteRoundTrip(t *testing.T) {
	req := &Request{
		Op:        OpObjectCreate,
		Namespace: "ns",
		Ops: []OperationPayload{
			{Name: "a"}, {Name: "b"}, {Name: "c"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeRequest(&buf, req))

	got, err := DecodeRequest(&buf)
	require.NoError(t, err)
	require.Len(t, got.Ops, 3)
	assert.Equal(t, "a", got.Ops[0].Name)
	assert.Equal(t, "c", got.Ops[2].Name)
	assert.False(t, got.WantsReply())
}

func TestObjectReadRoundTripAndReply(t *testing.T) {
	req := &Request{
		Op:        OpObjectRead,
		Flags:     FlagSafetyNetwork,
		Namespace: "ns",
		Name:      "obj",
		Ops: []OperationPayload{
			{Length: 6, Offset: 10},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeRequest(&buf, req))
	got, err := DecodeRequest(&buf)
	require.NoError(t, err)
	assert.Equal(t, uint64(6), got.Ops[0].Length)

	reply := &Reply{
		Op:      OpObjectRead,
		Flags:   FlagSafetyNetwork,
		Results: []ReplyResult{{NBytes: 6, Value: []byte("ABCDEF")}},
	}
	var rbuf bytes.Buffer
	require.NoError(t, EncodeReply(&rbuf, reply))

	gotReply, err := DecodeReply(&rbuf)
	require.NoError(t, err)
	require.Len(t, gotReply.Results, 1)
	assert.Equal(t, []byte("ABCDEF"), gotReply.Results[0].Value)
}

func TestObjectStatusReply(t *testing.T) {
	reply := &Reply{
		Op:      OpObjectStatus,
		Results: []ReplyResult{{MTime: 1234, Size: 4096}},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeReply(&buf, reply))
	got, err := DecodeReply(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, 1234, got.Results[0].MTime)
	assert.EqualValues(t, 4096, got.Results[0].Size)
}

func TestKVPutGetRoundTrip(t *testing.T) {
	putReq := &Request{
		Op:        OpKVPut,
		Namespace: "ns",
		Ops: []OperationPayload{
			{Name: "a", Value: []byte(`{"x":1}`)},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeRequest(&buf, putReq))
	got, err := DecodeRequest(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"x":1}`), got.Ops[0].Value)

	getReply := &Reply{
		Op:      OpKVGet,
		Results: []ReplyResult{{Value: []byte(`{"x":1}`), Found: true}},
	}
	var rbuf bytes.Buffer
	require.NoError(t, EncodeReply(&rbuf, getReply))
	gotReply, err := DecodeReply(&rbuf)
	require.NoError(t, err)
	assert.True(t, gotReply.Results[0].Found)
	assert.Equal(t, []byte(`{"x":1}`), gotReply.Results[0].Value)
}

func TestKVGetMiss(t *testing.T) {
	reply := &Reply{Op: OpKVGet, Results: []ReplyResult{{Value: nil, Found: false}}}
	var buf bytes.Buffer
	require.NoError(t, EncodeReply(&buf, reply))
	got, err := DecodeReply(&buf)
	require.NoError(t, err)
	assert.False(t, got.Results[0].Found)
	assert.Empty(t, got.Results[0].Value)
}

func TestOperationsDoneAggregatesAcrossFrames(t *testing.T) {
	// Simulate a server pipelining three KV_GET results over two reply
	// frames.
	var stream bytes.Buffer
	require.NoError(t, EncodeReply(&stream, &Reply{
		Op:      OpKVGet,
		Results: []ReplyResult{{Value: []byte("1"), Found: true}, {Value: []byte("2"), Found: true}},
	}))
	require.NoError(t, EncodeReply(&stream, &Reply{
		Op:      OpKVGet,
		Results: []ReplyResult{{Value: []byte("3"), Found: true}},
	}))

	results, err := ReadAll(&stream, OpKVGet, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []byte("1"), results[0].Value)
	assert.Equal(t, []byte("3"), results[2].Value)
}

func TestDecodeRequestRejectsReplyFrame(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeReply(&buf, &Reply{Op: OpKVPut}))
	_, err := DecodeRequest(&buf)
	assert.Error(t, err)
}

func TestDecodeRequestMalformedShortPayload(t *testing.T) {
	var buf bytes.Buffer
	// Claim a total-length far larger than the bytes actually present.
	require.NoError(t, writeHeader(&buf, header{Op: uint32(OpKVGet), Count: 1, TotalLength: 100}))
	buf.WriteString("short")

	_, err := DecodeRequest(&buf)
	assert.Error(t, err)
}

func TestNameWithNULRejected(t *testing.T) {
	req := &Request{Op: OpObjectCreate, Namespace: "ns", Ops: []OperationPayload{{Name: "bad\x00name"}}}
	var buf bytes.Buffer
	err := EncodeRequest(&buf, req)
	assert.Error(t, err)
}
