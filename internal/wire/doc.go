// Package wire implements the length-prefixed, opcode-dispatched
// request/reply frame format this module's servers and clients speak.
//
// # Frame layout
//
// Every frame starts with a fixed 16-byte header, little-endian:
//
//	op(4) | flags(4) | count(4) | total-length(4)
//
// total-length bytes of "payload" follow the header; payload holds the
// namespace/name strings and the fixed-width per-operation fields. Variable
// length byte data -- an object's written/read bytes, a KV value -- is never
// interleaved with the fixed fields; it is appended as one trailing "bulk"
// region after the payload, each operation's share back to back in
// operation order. The size of each operation's bulk share is always recoverable
// from a fixed-width field already present in the payload (a length or a
// byte count), so no extra framing is needed for the bulk region itself.
//
// # Replies
//
// A reply reuses the request's opcode with the reply bit set (Op |
// ReplyBit). Its count field is the number of per-operation results carried
// by this particular reply frame, which may be less than the request's
// operation count -- the receiver keeps reading reply frames and
// accumulating results (see OperationsDone) until it has as many results as
// the request had operations, allowing a server to pipeline disk I/O across
// several reply frames for one request.
package wire
