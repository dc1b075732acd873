package wire

import (
	"bytes"
	"fmt"
	"io"
)

// ReplyResult carries the wire fields for one operation's result. Which
// fields are meaningful depends on the owning Reply's Op.
type ReplyResult struct {
	// NBytes is the byte count produced by OBJECT_READ/OBJECT_WRITE.
	NBytes uint64

	// MTime and Size answer OBJECT_STATUS.
	MTime int64
	Size  uint64

	// Value answers KV_GET; a zero-length Value with Found==false means
	// the key was missing.
	Value []byte
	Found bool
}

// Reply is one wire frame's worth of operation results, answering a
// previously sent Request with the same logical Op.
type Reply struct {
	// Op is the logical (reply-bit-stripped) opcode being answered.
	Op      Opcode
	Flags   uint32
	Results []ReplyResult
}

// EncodeReply serializes reply to w as a single wire frame whose op field
// carries the reply bit.
func EncodeReply(w io.Writer, reply *Reply) error {
	var payload bytes.Buffer

	switch reply.Op {
	case OpObjectCreate, OpObjectDelete, OpKVPut, OpKVDelete:
		// No per-operation fields; count alone conveys how many of the
		// request's operations this frame answers for.
	case OpObjectStatus:
		for _, res := range reply.Results {
			putInt64(&payload, res.MTime)
			putUint64(&payload, res.Size)
		}
	case OpObjectRead, OpObjectWrite:
		for _, res := range reply.Results {
			putUint64(&payload, res.NBytes)
		}
	case OpKVGet:
		for _, res := range reply.Results {
			putUint32(&payload, uint32(len(res.Value)))
		}
	default:
		return fmt.Errorf("wire: unknown reply opcode %v", reply.Op)
	}

	if err := writeHeader(w, header{
		Op:          uint32(reply.Op) | ReplyBit,
		Flags:       reply.Flags,
		Count:       uint32(len(reply.Results)),
		TotalLength: uint32(payload.Len()),
	}); err != nil {
		return err
	}

	if _, err := w.Write(payload.Bytes()); err != nil {
		return err
	}

	switch reply.Op {
	case OpObjectRead:
		for _, res := range reply.Results {
			if _, err := w.Write(res.Value); err != nil {
				return err
			}
		}
	case OpKVGet:
		for _, res := range reply.Results {
			if _, err := w.Write(res.Value); err != nil {
				return err
			}
		}
	}

	return nil
}

// DecodeReply reads one wire frame from r and parses it as a Reply.
func DecodeReply(r io.Reader) (*Reply, error) {
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if h.Op&ReplyBit == 0 {
		return nil, fmt.Errorf("wire: expected reply frame, got request (op=%#x)", h.Op)
	}
	op := Opcode(h.Op &^ ReplyBit)

	payload := make([]byte, h.TotalLength)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("wire: malformed frame: short payload: %w", err)
	}
	pr := bytes.NewReader(payload)

	reply := &Reply{Op: op, Flags: h.Flags}

	switch op {
	case OpObjectCreate, OpObjectDelete, OpKVPut, OpKVDelete:
		reply.Results = make([]ReplyResult, h.Count)
	case OpObjectStatus:
		reply.Results = make([]ReplyResult, h.Count)
		for i := range reply.Results {
			mtime, err := readInt64(pr)
			if err != nil {
				return nil, err
			}
			size, err := readUint64(pr)
			if err != nil {
				return nil, err
			}
			reply.Results[i] = ReplyResult{MTime: mtime, Size: size}
		}
	case OpObjectRead, OpObjectWrite:
		reply.Results = make([]ReplyResult, h.Count)
		for i := range reply.Results {
			nbytes, err := readUint64(pr)
			if err != nil {
				return nil, err
			}
			reply.Results[i] = ReplyResult{NBytes: nbytes}
		}
		if op == OpObjectRead {
			for i := range reply.Results {
				buf := make([]byte, reply.Results[i].NBytes)
				if _, err := io.ReadFull(r, buf); err != nil {
					return nil, fmt.Errorf("wire: malformed frame: short bulk: %w", err)
				}
				reply.Results[i].Value = buf
			}
		}
	case OpKVGet:
		reply.Results = make([]ReplyResult, h.Count)
		vlens := make([]uint32, h.Count)
		for i := range reply.Results {
			vlen, err := readUint32(pr)
			if err != nil {
				return nil, err
			}
			vlens[i] = vlen
		}
		for i := range reply.Results {
			buf := make([]byte, vlens[i])
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, fmt.Errorf("wire: malformed frame: short bulk: %w", err)
			}
			reply.Results[i] = ReplyResult{Value: buf, Found: vlens[i] > 0}
		}
	default:
		return nil, fmt.Errorf("wire: unknown reply opcode %v", op)
	}

	return reply, nil
}

// OperationsDone aggregates ReplyResults across however many reply frames a
// server needed to answer one request: a single request may be answered by
// multiple reply frames, and the receiver loops until it has as many
// results as the request had
// operations.
type OperationsDone struct {
	want   int
	Op     Opcode
	Result []ReplyResult
}

// NewOperationsDone returns an aggregator that is Done once it has
// accumulated wantCount results for op.
func NewOperationsDone(op Opcode, wantCount int) *OperationsDone {
	return &OperationsDone{Op: op, want: wantCount, Result: make([]ReplyResult, 0, wantCount)}
}

// Add folds one reply frame's results into the aggregate. It returns an
// error if the frame answers a different opcode than expected.
func (a *OperationsDone) Add(reply *Reply) error {
	if reply.Op != a.Op {
		return fmt.Errorf("wire: reply opcode %v does not match request opcode %v", reply.Op, a.Op)
	}
	a.Result = append(a.Result, reply.Results...)
	return nil
}

// Done reports whether enough results have been accumulated to satisfy the
// request's operation count.
func (a *OperationsDone) Done() bool {
	return len(a.Result) >= a.want
}

// ReadAll reads reply frames from r via DecodeReply until Done(), returning
// the aggregated results.
func ReadAll(r io.Reader, op Opcode, wantCount int) ([]ReplyResult, error) {
	agg := NewOperationsDone(op, wantCount)
	for !agg.Done() {
		reply, err := DecodeReply(r)
		if err != nil {
			return nil, err
		}
		if err := agg.Add(reply); err != nil {
			return nil, err
		}
	}
	return agg.Result, nil
}
