package posix

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dreamware/julea/internal/backend"
)

// Backend implements backend.Object by mapping each (namespace, name) pair
// onto a regular file under root.
type Backend struct {
	root string
}

// New returns a Backend rooted at root. Most callers go through Init
// instead, to satisfy the backend.Object interface uniformly with other
// backends.
func New(root string) *Backend {
	return &Backend{root: root}
}

// Init implements backend.Object. path becomes the backend's root
// directory, created if absent.
func (b *Backend) Init(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return err
	}
	b.root = path
	return nil
}

// Fini implements backend.Object.
func (b *Backend) Fini() error {
	return nil
}

func (b *Backend) namespaceDir(namespace string) string {
	return filepath.Join(b.root, namespace)
}

func (b *Backend) objectPath(namespace, name string) string {
	return filepath.Join(b.namespaceDir(namespace), name)
}

// Create implements backend.Object. It fails with backend.ErrAlreadyExists
// if an object with the same namespace and name already exists, matching
// the exclusive-create semantics object_create requires.
func (b *Backend) Create(namespace, name string) (backend.ObjectFile, error) {
	if err := os.MkdirAll(b.namespaceDir(namespace), 0o755); err != nil {
		return nil, err
	}

	path := b.objectPath(namespace, name)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, backend.ErrAlreadyExists
		}
		return nil, err
	}

	return &objectFile{path: path, f: f}, nil
}

// Open implements backend.Object.
func (b *Backend) Open(namespace, name string) (backend.ObjectFile, error) {
	path := b.objectPath(namespace, name)
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, backend.ErrNotFound
		}
		return nil, err
	}

	return &objectFile{path: path, f: f}, nil
}

// objectFile implements backend.ObjectFile over a single *os.File.
type objectFile struct {
	path string
	f    *os.File
}

// Delete removes the underlying file. The handle remains open for reading
// or writing until Close, mirroring POSIX unlink-while-open semantics.
func (o *objectFile) Delete() error {
	return os.Remove(o.path)
}

func (o *objectFile) Close() error {
	return o.f.Close()
}

// Status implements backend.ObjectFile.
func (o *objectFile) Status() (time.Time, uint64, error) {
	fi, err := o.f.Stat()
	if err != nil {
		return time.Time{}, 0, err
	}
	return fi.ModTime(), uint64(fi.Size()), nil
}

// Sync implements backend.ObjectFile via fsync, giving callers a real
// durable-before-reply path for semantics.SafetyStorage.
func (o *objectFile) Sync() error {
	return o.f.Sync()
}

// Read implements backend.ObjectFile. A read that runs past end-of-file
// returns the bytes available and a nil error: short reads are not an
// error. A read starting at or past end-of-file returns 0 and a nil error;
// io.EOF is never surfaced.
func (o *objectFile) Read(buf []byte, offset uint64) (int, error) {
	n, err := o.f.ReadAt(buf, int64(offset))
	if err == io.EOF {
		if n > 0 {
			return n, nil
		}
		return 0, nil
	}
	return n, err
}

// Write implements backend.ObjectFile.
func (o *objectFile) Write(data []byte, offset uint64) (int, error) {
	return o.f.WriteAt(data, int64(offset))
}
