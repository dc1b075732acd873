// Package runtime assembles the single long-lived handle every client and
// server call threads through: configuration, the two connection pools,
// whichever backends this process hosts in-process, the background task
// pool, and the batch engine that ties them together.
//
// Apart from the Prometheus collectors the pool, batch and server packages
// register at package level, and the command packages' flag variables,
// every piece of shared state lives on a *Runtime value that the
// caller constructs once at startup and passes down by reference, the Go
// analogue of the upstream library's single process-wide init/fini pair.
package runtime
