// Package handle defines the identity types shared by the object and KV
// clients: the server-index hashing scheme, the reference-counted handle
// base, and the (server-index, namespace, name) identity Key.
//
// # Server-index hashing
//
// Both object names and KV keys are routed to a server with the same
// scheme: FNV-1a the name, reduce modulo the server count. The hash is
// stable across runs and across object/KV handle types independently,
// since each type hashes its own string through its own FNV state.
//
// # Reference counting
//
// Handles are shared by reference the way the upstream C implementation
// shares JObject/JKV: Ref increments an atomic counter, Unref decrements it
// and runs a release func exactly once when the count reaches zero. Go's
// garbage collector makes this unnecessary for memory safety, but the
// counting discipline is kept because callers use it to decide when a
// handle's last concurrent user has finished with it (e.g. closing a file
// descriptor held open by a backend).
package handle
