package wire

import (
	"bytes"
	"fmt"
	"io"
)

// OperationPayload carries the wire fields for a single packed operation.
// Which fields are meaningful depends on the owning Request's Op; unused
// fields are left at their zero value.
type OperationPayload struct {
	// Name is the object name (create/delete/status) or KV key
	// (put/delete/get).
	Name string

	// Length and Offset address a byte range for object read/write.
	Length uint64
	Offset uint64

	// Value is the bulk payload: object bytes to write, or a KV value to
	// put. Encoded in the trailing bulk region, never inline.
	Value []byte
}

// Request is one wire frame's worth of packed operations sharing an opcode,
// a namespace, and (for object read/write) a single target object name.
type Request struct {
	Op        Opcode
	Flags     uint32
	Namespace string
	// Name is set only for OBJECT_READ and OBJECT_WRITE, where every
	// packed operation in the frame addresses the same open object.
	Name string
	Ops  []OperationPayload
}

// WantsReply reports whether FlagSafetyNetwork is set, i.e. the sender
// expects at least one reply frame back.
func (r *Request) WantsReply() bool {
	return r.Flags&FlagSafetyNetwork != 0
}

// EncodeRequest serializes req to w as a single wire frame.
func EncodeRequest(w io.Writer, req *Request) error {
	var payload bytes.Buffer

	if err := putString(&payload, req.Namespace); err != nil {
		return err
	}

	switch req.Op {
	case OpObjectRead, OpObjectWrite:
		if err := putString(&payload, req.Name); err != nil {
			return err
		}
		for _, op := range req.Ops {
			putUint64(&payload, op.Length)
			putUint64(&payload, op.Offset)
		}
	case OpObjectCreate, OpObjectDelete, OpObjectStatus:
		for _, op := range req.Ops {
			if err := putString(&payload, op.Name); err != nil {
				return err
			}
		}
	case OpKVPut:
		for _, op := range req.Ops {
			if err := putString(&payload, op.Name); err != nil {
				return err
			}
			putUint32(&payload, uint32(len(op.Value)))
		}
	case OpKVDelete, OpKVGet:
		for _, op := range req.Ops {
			if err := putString(&payload, op.Name); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("wire: unknown request opcode %v", req.Op)
	}

	if err := writeHeader(w, header{
		Op:          uint32(req.Op),
		Flags:       req.Flags,
		Count:       uint32(len(req.Ops)),
		TotalLength: uint32(payload.Len()),
	}); err != nil {
		return err
	}

	if _, err := w.Write(payload.Bytes()); err != nil {
		return err
	}

	// Trailing bulk region: object write bytes or KV values, concatenated
	// in operation order.
	if req.Op == OpObjectWrite || req.Op == OpKVPut {
		for _, op := range req.Ops {
			if _, err := w.Write(op.Value); err != nil {
				return err
			}
		}
	}

	return nil
}

// DecodeRequest reads one wire frame from r and parses it as a Request.
func DecodeRequest(r io.Reader) (*Request, error) {
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if h.Op&ReplyBit != 0 {
		return nil, fmt.Errorf("wire: expected request frame, got reply (op=%#x)", h.Op)
	}

	payload := make([]byte, h.TotalLength)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("wire: malformed frame: short payload: %w", err)
	}
	pr := bytes.NewReader(payload)

	req := &Request{Op: Opcode(h.Op), Flags: h.Flags}

	req.Namespace, err = readString(pr)
	if err != nil {
		return nil, err
	}

	switch req.Op {
	case OpObjectRead, OpObjectWrite:
		req.Name, err = readString(pr)
		if err != nil {
			return nil, err
		}
		req.Ops = make([]OperationPayload, h.Count)
		for i := range req.Ops {
			length, err := readUint64(pr)
			if err != nil {
				return nil, err
			}
			offset, err := readUint64(pr)
			if err != nil {
				return nil, err
			}
			req.Ops[i] = OperationPayload{Length: length, Offset: offset}
		}
		if req.Op == OpObjectWrite {
			for i := range req.Ops {
				buf := make([]byte, req.Ops[i].Length)
				if _, err := io.ReadFull(r, buf); err != nil {
					return nil, fmt.Errorf("wire: malformed frame: short bulk: %w", err)
				}
				req.Ops[i].Value = buf
			}
		}
	case OpObjectCreate, OpObjectDelete, OpObjectStatus:
		req.Ops = make([]OperationPayload, h.Count)
		for i := range req.Ops {
			name, err := readString(pr)
			if err != nil {
				return nil, err
			}
			req.Ops[i] = OperationPayload{Name: name}
		}
	case OpKVPut:
		req.Ops = make([]OperationPayload, h.Count)
		vlens := make([]uint32, h.Count)
		for i := range req.Ops {
			key, err := readString(pr)
			if err != nil {
				return nil, err
			}
			vlen, err := readUint32(pr)
			if err != nil {
				return nil, err
			}
			req.Ops[i] = OperationPayload{Name: key}
			vlens[i] = vlen
		}
		for i := range req.Ops {
			buf := make([]byte, vlens[i])
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, fmt.Errorf("wire: malformed frame: short bulk: %w", err)
			}
			req.Ops[i].Value = buf
		}
	case OpKVDelete, OpKVGet:
		req.Ops = make([]OperationPayload, h.Count)
		for i := range req.Ops {
			key, err := readString(pr)
			if err != nil {
				return nil, err
			}
			req.Ops[i] = OperationPayload{Name: key}
		}
	default:
		return nil, fmt.Errorf("wire: unknown request opcode %v", req.Op)
	}

	return req, nil
}
