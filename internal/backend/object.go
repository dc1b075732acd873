package backend

import "time"

// Object is the storage-backend trait for the object service: the usual
// init/fini/create/open/delete/close/status/sync/read/write vtable,
// expressed as an interface.
type Object interface {
	// Init prepares the backend to serve objects rooted at path. Called
	// once at server (or local-client) startup.
	Init(path string) error

	// Fini releases everything Init acquired. Called once at shutdown.
	Fini() error

	// Create makes a new, empty object and returns a handle to it opened
	// for I/O. Fails if the object already exists.
	Create(namespace, name string) (ObjectFile, error)

	// Open returns a handle to an existing object. Fails if the object
	// does not exist; this is a semantic error, not a fatal one.
	Open(namespace, name string) (ObjectFile, error)
}

// ObjectFile is the opaque per-open-object handle the Object vtable's
// "gpointer data" becomes in Go: an ordinary value with methods, closed by
// the caller when the run that opened it finishes.
type ObjectFile interface {
	// Delete removes the underlying object. The handle must still be
	// Closed afterward.
	Delete() error

	// Close releases the handle. Does not delete the object.
	Close() error

	// Status reports the object's last-modified time and current size.
	Status() (mtime time.Time, size uint64, err error)

	// Sync forces any buffered writes to durable storage, for
	// safety = storage.
	Sync() error

	// Read copies up to len(buf) bytes starting at offset into buf,
	// returning the number of bytes actually read. A short read (n <
	// len(buf)) without error is valid at end-of-object, mirroring
	// io.ReaderAt.
	Read(buf []byte, offset uint64) (n int, err error)

	// Write stores len(data) bytes starting at offset, returning the
	// number of bytes actually written.
	Write(data []byte, offset uint64) (n int, err error)
}
