package storage

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path"
	"sort"

	"emperror.dev/errors"
)

// JSON keeps the whole store in a single JSON document. Folders are JSON
// objects and leaves are base64 strings, so arbitrary bytes survive the
// text encoding. Every mutation rewrites the document.
type JSON struct {
	filepath string
	root     *node
}

var _ Backend = (*JSON)(nil)

type node struct {
	children map[string]*node // nil for leaves
	data     []byte
}

func newFolder() *node {
	return &node{children: make(map[string]*node)}
}

func (n *node) isFolder() bool {
	return n.children != nil
}

func (n *node) MarshalJSON() ([]byte, error) {
	if n.isFolder() {
		return json.Marshal(n.children)
	}
	data := n.data
	if data == nil {
		data = []byte{}
	}
	return json.Marshal(data)
}

func (n *node) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		n.children = make(map[string]*node)
		return json.Unmarshal(b, &n.children)
	}
	n.children = nil
	if bytes.Equal(b, []byte("null")) {
		n.data = []byte{}
		return nil
	}
	return json.Unmarshal(b, &n.data)
}

// OpenJSON opens the JSON document at filepath. A missing or empty file
// starts out as an empty root folder and is created on first write.
func OpenJSON(filepath string) (*JSON, error) {
	data, err := os.ReadFile(filepath)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.WrapIff(err, "open json store %q", filepath)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}
	root := newFolder()
	if err := json.Unmarshal(data, root); err != nil {
		return nil, errors.WrapIff(err, "failed to read json store %q", filepath)
	}
	if !root.isFolder() {
		return nil, errors.Errorf("json store %q: document root is not an object", filepath)
	}
	return &JSON{filepath: filepath, root: root}, nil
}

// Path returns the location of the backing document.
func (j *JSON) Path() string {
	return j.filepath
}

func (j *JSON) lookup(p string) (*node, bool) {
	cur := j.root
	for _, c := range split(p) {
		if !cur.isFolder() {
			return nil, false
		}
		next, ok := cur.children[c]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func (j *JSON) parent(p string) (*node, string, error) {
	comps := split(p)
	if len(comps) == 0 {
		return nil, "", errors.WithDetails(ErrIsFolder, "path", "/")
	}
	dir, ok := j.lookup(path.Join(append([]string{"/"}, comps[:len(comps)-1]...)...))
	if !ok {
		return nil, "", errors.WithDetails(ErrNotExist, "path", path.Dir(Abs(p)))
	}
	if !dir.isFolder() {
		return nil, "", errors.WithDetails(ErrNotFolder, "path", path.Dir(Abs(p)))
	}
	return dir, comps[len(comps)-1], nil
}

func (j *JSON) Get(p string) ([]byte, error) {
	n, ok := j.lookup(p)
	if !ok {
		return nil, errors.WithDetails(ErrNotExist, "path", p)
	}
	if n.isFolder() {
		return nil, errors.WithDetails(ErrIsFolder, "path", p)
	}
	out := make([]byte, len(n.data))
	copy(out, n.data)
	return out, nil
}

func (j *JSON) List(p string) ([]string, error) {
	n, ok := j.lookup(p)
	if !ok {
		return nil, errors.WithDetails(ErrNotExist, "path", p)
	}
	if !n.isFolder() {
		return nil, errors.WithDetails(ErrNotFolder, "path", p)
	}
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (j *JSON) Set(p string, value []byte, overwrite bool) error {
	dir, name, err := j.parent(p)
	if err != nil {
		return err
	}
	if existing, ok := dir.children[name]; ok {
		if existing.isFolder() {
			return errors.WithDetails(ErrIsFolder, "path", p)
		}
		if !overwrite {
			return nil
		}
	}
	data := make([]byte, len(value))
	copy(data, value)
	dir.children[name] = &node{data: data}
	return j.write()
}

func (j *JSON) Mkdir(p string) error {
	if len(split(p)) == 0 {
		return nil
	}
	dir, name, err := j.parent(p)
	if err != nil {
		return err
	}
	if existing, ok := dir.children[name]; ok {
		if existing.isFolder() {
			return nil
		}
		return errors.WithDetails(ErrNotFolder, "path", p)
	}
	dir.children[name] = newFolder()
	return j.write()
}

func (j *JSON) IsFolder(p string) bool {
	n, ok := j.lookup(p)
	return ok && n.isFolder()
}

func (j *JSON) IsFile(p string) bool {
	n, ok := j.lookup(p)
	return ok && !n.isFolder()
}

// Metadata synthesizes stat information: the document has no timestamps,
// devices or owners, so only the mode and size are meaningful.
func (j *JSON) Metadata(p string) (Metadata, error) {
	n, ok := j.lookup(p)
	if !ok {
		return Metadata{}, errors.WithDetails(ErrNotExist, "path", p)
	}
	if n.isFolder() {
		return Metadata{Mode: os.ModeDir | 0o755}, nil
	}
	return Metadata{Mode: 0o644, Size: int64(len(n.data))}, nil
}

func (j *JSON) Clear() error {
	j.root = newFolder()
	return j.write()
}

func (j *JSON) Show(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(j.root)
}

func (j *JSON) write() error {
	f, err := os.OpenFile(j.filepath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.WrapIf(err, "failed to write json store")
	}
	enc := json.NewEncoder(f)
	if err := enc.Encode(j.root); err != nil {
		_ = f.Close()
		return errors.WrapIf(err, "failed to write json store")
	}
	return f.Close()
}
