package backend

import "errors"

// ErrNotFound is returned by KV.Get and by Object.Open when the requested
// namespace/key or namespace/name does not exist. This is a semantic error:
// the operation reports failure but the batch continues.
var ErrNotFound = errors.New("backend: not found")

// ErrAlreadyExists is returned by Object.Create when an object with the
// same (namespace, name) already exists.
var ErrAlreadyExists = errors.New("backend: already exists")
