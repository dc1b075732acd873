// Package backend defines the abstract contract every storage backend
// implements: an Object trait and a KV trait, provided either by the
// reference backends compiled in under backend/memory and backend/posix or
// by a Go plugin opened into this process and looked up through a single
// exported symbol.
//
// A tagged-function-pointer vtable becomes two ordinary Go interfaces here.
// The "local-or-remote" duality at the client's execute step is a sum type
// selected once, at Runtime construction: a loaded Object/KV value for local
// dispatch, or nothing (meaning every run for that service goes out over the
// wire) for remote dispatch.
package backend
