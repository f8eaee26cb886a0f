// Package storage provides the key/value stores a repository lives in. A
// backend behaves like a tiny filesystem: leaves hold bytes and folders hold
// named children. Paths are slash-separated and rooted at the backend root,
// so "objects/ab" and "/objects/ab" name the same folder.
package storage

import (
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"emperror.dev/errors"
)

const (
	ErrNotExist    = errors.Sentinel("path does not exist")
	ErrIsFolder    = errors.Sentinel("path is a folder")
	ErrNotFolder   = errors.Sentinel("path is not a folder")
	ErrOutsideBase = errors.Sentinel("path is outside base")
)

// Metadata is the subset of stat(2) information the index records.
type Metadata struct {
	CTime time.Time
	MTime time.Time
	Dev   uint32
	Ino   uint32
	UID   uint32
	GID   uint32
	Mode  fs.FileMode
	Size  int64
}

// Backend is a blob store with folder semantics.
type Backend interface {
	// Get returns the bytes stored at a leaf.
	Get(p string) ([]byte, error)
	// List returns the sorted child names of a folder.
	List(p string) ([]string, error)
	// Set stores value at p. The parent folder must exist. When overwrite is
	// false and p already exists, Set does nothing.
	Set(p string, value []byte, overwrite bool) error
	// Mkdir creates an empty folder at p. It is a no-op if the folder exists.
	Mkdir(p string) error
	IsFolder(p string) bool
	IsFile(p string) bool
	Metadata(p string) (Metadata, error)
	// Clear removes everything below the root.
	Clear() error
	// Show writes a human-readable dump of the whole store.
	Show(w io.Writer) error
}

// Abs returns the clean rooted form of p.
func Abs(p string) string {
	return path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
}

// Rel returns p relative to base. It fails with ErrOutsideBase if p is not
// base itself or below it.
func Rel(p, base string) (string, error) {
	p, base = Abs(p), Abs(base)
	if p == base {
		return ".", nil
	}
	prefix := base
	if prefix != "/" {
		prefix += "/"
	}
	if !strings.HasPrefix(p, prefix) {
		return "", errors.WithDetails(ErrOutsideBase, "path", p, "base", base)
	}
	return p[len(prefix):], nil
}

// MkdirAll creates p and any missing parents.
func MkdirAll(b Backend, p string) error {
	cur := "/"
	for _, c := range split(p) {
		cur = path.Join(cur, c)
		if err := b.Mkdir(cur); err != nil {
			return err
		}
	}
	return nil
}

// split returns the components of p, or nil for the root.
func split(p string) []string {
	p = strings.Trim(Abs(p), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
