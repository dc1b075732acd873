// Package server implements the TCP-facing half of an object or KV server
// process: accept a connection, decode one wire.Request frame at a time,
// dispatch it against a locally loaded backend, and, when the request asks
// for one, encode a wire.Reply back.
//
// A Server hosts exactly one backend of one kind (object or KV), matching
// one entry in a client's ObjectServers/KVServers list. Running both
// services out of the same process means running two Servers side by side,
// one per listener.
package server
