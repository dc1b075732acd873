// Package pool implements the per-server-index connection pool: a bounded
// LIFO of live connections per server, one pool instance per server fleet
// (object servers, KV servers).
//
// Unlike an http.Client, which already pools connections under the hood,
// this module's wire protocol is a raw TCP stream, so pooling has to be
// explicit: a leased
// connection is exclusively owned by whichever run borrowed it until it is
// pushed back or dropped.
package pool
