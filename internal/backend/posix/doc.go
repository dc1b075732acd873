// Package posix implements backend.Object by storing each object as a
// regular file on local disk, the reference object backend this repo ships
// in place of out-of-scope external posix/gio backends.
//
// Layout: <root>/<namespace>/<name>. Namespaces are directories, created on
// first use; object names map directly to file names, so any name the
// local filesystem accepts is valid here (the "short UTF-8 strings without
// NUL" constraint is the client's to enforce, not this backend's).
package posix
