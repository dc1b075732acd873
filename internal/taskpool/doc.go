// Package taskpool implements a fixed-size background worker pool: a
// bounded set of goroutines draining a job queue, each job signaling a
// completion condition back to whatever submitted it (in practice, the
// batch engine's async execution path, internal/batch).
package taskpool
