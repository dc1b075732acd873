// Package semantics implements the immutable consistency/safety/ordering
// bundle attached to every batch.
//
// A Semantics value starts life owned uniquely by a Builder. Axis setters
// mutate the builder in place; Done freezes it into an immutable *Semantics
// that is safe to share across goroutines without locking, since nothing
// after Done ever writes to it again.
package semantics
