// Package batch implements the client-side request pipeline: operations
// are queued onto a Batch in insertion order, then Execute groups adjacent,
// locality-compatible operations into runs and dispatches each run to a
// local backend or over the wire to a
// pooled connection.
//
// A run's locality key is (operation kind, server index, namespace); two
// operations merge into the same run only when they share all three and
// are adjacent, either as queued or after the reordering the batch's
// ordering semantics permits. This mirrors
// a common pattern of keeping the "what to do" (Operation) and the
// "how to run it" (Engine) in separate types connected only by the queue.
package batch
