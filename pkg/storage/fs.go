package storage

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"emperror.dev/errors"
)

// FS stores everything in a directory on the local filesystem.
type FS struct {
	root string
}

var _ Backend = (*FS)(nil)

// NewFS returns a backend rooted at dir. The directory must already exist.
func NewFS(dir string) *FS {
	return &FS{root: dir}
}

// Root returns the directory the backend is rooted at.
func (f *FS) Root() string {
	return f.root
}

func (f *FS) osPath(p string) string {
	return filepath.Join(f.root, filepath.FromSlash(Abs(p)))
}

func (f *FS) Get(p string) ([]byte, error) {
	name := f.osPath(p)
	info, err := os.Stat(name)
	if err != nil {
		return nil, mapOSError(err, p)
	}
	if info.IsDir() {
		return nil, errors.WithDetails(ErrIsFolder, "path", p)
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, mapOSError(err, p)
	}
	return data, nil
}

func (f *FS) List(p string) ([]string, error) {
	ents, err := os.ReadDir(f.osPath(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.WithDetails(ErrNotExist, "path", p)
		}
		if !f.IsFolder(p) {
			return nil, errors.WithDetails(ErrNotFolder, "path", p)
		}
		return nil, errors.WrapIff(err, "list %s", p)
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Set writes value atomically: data goes to a temp file in the parent folder
// and is then renamed into place.
func (f *FS) Set(p string, value []byte, overwrite bool) error {
	name := f.osPath(p)
	if info, err := os.Stat(name); err == nil {
		if info.IsDir() {
			return errors.WithDetails(ErrIsFolder, "path", p)
		}
		if !overwrite {
			return nil
		}
	}

	dir := filepath.Dir(name)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return mapOSError(err, p)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WrapIff(err, "write %s", p)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WrapIff(err, "chmod %s", p)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.WrapIff(err, "close %s", p)
	}
	if err := os.Rename(tmpName, name); err != nil {
		os.Remove(tmpName)
		return errors.WrapIff(err, "rename %s", p)
	}
	return nil
}

func (f *FS) Mkdir(p string) error {
	name := f.osPath(p)
	err := os.Mkdir(name, 0o755)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		if f.IsFolder(p) {
			return nil
		}
		return errors.WithDetails(ErrNotFolder, "path", p)
	}
	return mapOSError(err, p)
}

func (f *FS) IsFolder(p string) bool {
	info, err := os.Stat(f.osPath(p))
	return err == nil && info.IsDir()
}

func (f *FS) IsFile(p string) bool {
	info, err := os.Lstat(f.osPath(p))
	return err == nil && !info.IsDir()
}

func (f *FS) Metadata(p string) (Metadata, error) {
	md, err := statMetadata(f.osPath(p))
	if err != nil {
		return Metadata{}, mapOSError(err, p)
	}
	return md, nil
}

func (f *FS) Clear() error {
	ents, err := os.ReadDir(f.root)
	if err != nil {
		return errors.WrapIf(err, "clear")
	}
	for _, e := range ents {
		if err := os.RemoveAll(filepath.Join(f.root, e.Name())); err != nil {
			return errors.WrapIff(err, "clear %s", e.Name())
		}
	}
	return nil
}

func (f *FS) Show(w io.Writer) error {
	return filepath.WalkDir(f.root, func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(f.root, name)
		if err != nil {
			return err
		}
		if rel == "." {
			_, err = fmt.Fprintln(w, "/")
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			_, err = fmt.Fprintf(w, "/%s/\n", rel)
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "/%s (%d bytes)\n", rel, info.Size())
		return err
	})
}

func mapOSError(err error, p string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return errors.WithDetails(ErrNotExist, "path", p)
	default:
		return errors.WrapIff(err, "access %s", p)
	}
}
