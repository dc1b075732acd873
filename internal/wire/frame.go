package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Opcode identifies the kind of operation a frame carries.
type Opcode uint32

const (
	OpObjectCreate Opcode = iota + 1
	OpObjectDelete
	OpObjectRead
	OpObjectWrite
	OpObjectStatus
	OpKVPut
	OpKVDelete
	OpKVGet
)

func (o Opcode) String() string {
	switch o {
	case OpObjectCreate:
		return "OBJECT_CREATE"
	case OpObjectDelete:
		return "OBJECT_DELETE"
	case OpObjectRead:
		return "OBJECT_READ"
	case OpObjectWrite:
		return "OBJECT_WRITE"
	case OpObjectStatus:
		return "OBJECT_STATUS"
	case OpKVPut:
		return "KV_PUT"
	case OpKVDelete:
		return "KV_DELETE"
	case OpKVGet:
		return "KV_GET"
	default:
		return fmt.Sprintf("Opcode(%d)", uint32(o))
	}
}

// ReplyBit, OR'd into the header's op field, marks a frame as a reply to a
// previously sent request carrying the same logical opcode.
const ReplyBit uint32 = 1 << 31

// Flag bits carried in the header's flags field.
const (
	// FlagSafetyNetwork marks a request as requiring a reply (Safety >=
	// network). The server does not set it on the reply frames it sends.
	FlagSafetyNetwork uint32 = 1 << 0
)

const headerSize = 16

type header struct {
	Op          uint32
	Flags       uint32
	Count       uint32
	TotalLength uint32
}

func writeHeader(w io.Writer, h header) error {
	var buf [headerSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], h.Op)
	binary.LittleEndian.PutUint32(buf[4:8], h.Flags)
	binary.LittleEndian.PutUint32(buf[8:12], h.Count)
	binary.LittleEndian.PutUint32(buf[12:16], h.TotalLength)
	_, err := w.Write(buf[:])
	return err
}

func readHeader(r io.Reader) (header, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return header{}, err
	}
	return header{
		Op:          binary.LittleEndian.Uint32(buf[0:4]),
		Flags:       binary.LittleEndian.Uint32(buf[4:8]),
		Count:       binary.LittleEndian.Uint32(buf[8:12]),
		TotalLength: binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}

func putString(buf *bytes.Buffer, s string) error {
	if bytes.IndexByte([]byte(s), 0) >= 0 {
		return fmt.Errorf("wire: string %q contains a NUL byte", s)
	}
	buf.WriteString(s)
	buf.WriteByte(0)
	return nil
}

func readString(r *bytes.Reader) (string, error) {
	s, err := r.ReadString(0)
	if err != nil {
		return "", fmt.Errorf("wire: malformed frame: unterminated string: %w", err)
	}
	return s[:len(s)-1], nil
}

func putUint64(buf *bytes.Buffer, v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	buf.Write(tmp[:])
}

func putInt64(buf *bytes.Buffer, v int64) {
	putUint64(buf, uint64(v))
}

func putUint32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var tmp [8]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return 0, fmt.Errorf("wire: malformed frame: %w", err)
	}
	return binary.LittleEndian.Uint64(tmp[:]), nil
}

func readInt64(r *bytes.Reader) (int64, error) {
	v, err := readUint64(r)
	return int64(v), err
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var tmp [4]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return 0, fmt.Errorf("wire: malformed frame: %w", err)
	}
	return binary.LittleEndian.Uint32(tmp[:]), nil
}
