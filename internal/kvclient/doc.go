// Package kvclient translates KV-service calls (put/delete/get/
// get_callback) into batch.Operation values queued on a caller-supplied
// batch, the KV-side counterpart of objectclient.
//
// Iteration (GetAll/GetByPrefix) is deliberately not batch-shaped: it
// bypasses the batch/operation engine entirely and calls a backend
// directly, returning the backend's lazy Iterator, since there is no
// wire opcode for a multi-server scan and no "run" to merge it into.
package kvclient
