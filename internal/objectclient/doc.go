// Package objectclient translates object-service calls
// (create/delete/read/write/status) into batch.Operation values queued on
// a caller-supplied batch. It never dispatches anything itself: building
// the operation and handing it to the batch engine are deliberately
// separate, the same split the batch package keeps between a queued
// Operation and the Engine that runs it.
//
// A Handle pins an object to a single server index, derived once from its
// name by handle.HashIndex unless given explicitly, which addresses every
// operation on that handle. Spreading one logical object's bytes across
// several servers is the distribution package's job, applied by whatever
// calls this client, not something this client does on its own.
package objectclient
