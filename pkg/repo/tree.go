package repo

import (
	"path"
	"sort"
	"strings"

	"emperror.dev/errors"

	"github.com/odvcencio/tig/pkg/index"
	"github.com/odvcencio/tig/pkg/object"
)

// WriteTree writes the tree objects for the current index and returns the
// root tree hash.
func (r *Repo) WriteTree() (object.Hash, error) {
	idx, err := r.ReadIndex()
	if err != nil {
		return "", errors.WrapIf(err, "write tree")
	}
	return r.BuildTree(idx.Entries)
}

// BuildTree converts flat index entries into nested trees, writing every
// tree to the store bottom-up and returning the root hash. Entries with a
// non-zero stage are skipped.
//
// Entry names use forward-slash paths (e.g. "pkg/util/util.go"); each
// directory on the way becomes a tree with mode 40000. A name that is both
// an entry and a directory of another entry fails with ErrPathConflict.
func (r *Repo) BuildTree(entries []index.Entry) (object.Hash, error) {
	files := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Stage == 0 {
			files[e.Name] = true
		}
	}
	for _, e := range entries {
		if e.Stage != 0 {
			continue
		}
		for dir := parentDir(e.Name); dir != ""; dir = parentDir(dir) {
			if files[dir] {
				return "", errors.WithDetails(ErrPathConflict, "file", dir, "entry", e.Name)
			}
		}
	}

	builders := map[string]*object.TreeBuilder{"": object.NewTreeBuilder(nil)}
	var ensure func(dir string)
	ensure = func(dir string) {
		if _, ok := builders[dir]; ok {
			return
		}
		builders[dir] = object.NewTreeBuilder(nil)
		ensure(parentDir(dir))
	}

	for _, e := range entries {
		if e.Stage != 0 {
			continue
		}
		dir := parentDir(e.Name)
		ensure(dir)
		err := builders[dir].Insert(object.TreeEntry{
			Mode: treeModeFromIndex(e),
			Path: path.Base(e.Name),
			Hash: e.Hash,
		})
		if err != nil {
			return "", errors.WrapIff(err, "build tree: %s", e.Name)
		}
	}

	// Deepest directories first so every subtree hash is known before its
	// parent is written.
	dirs := make([]string, 0, len(builders))
	for d := range builders {
		if d != "" {
			dirs = append(dirs, d)
		}
	}
	sort.Slice(dirs, func(i, j int) bool {
		di, dj := strings.Count(dirs[i], "/"), strings.Count(dirs[j], "/")
		if di != dj {
			return di > dj
		}
		return dirs[i] < dirs[j]
	})

	for _, d := range dirs {
		h, err := r.Store.Write(builders[d].Tree())
		if err != nil {
			return "", errors.WrapIff(err, "build tree: write %s", d)
		}
		err = builders[parentDir(d)].Insert(object.TreeEntry{
			Mode: object.ModeTree,
			Path: path.Base(d),
			Hash: h,
		})
		if err != nil {
			return "", errors.WrapIff(err, "build tree: %s", d)
		}
	}

	h, err := r.Store.Write(builders[""].Tree())
	if err != nil {
		return "", errors.WrapIf(err, "build tree: write root")
	}
	return h, nil
}

func parentDir(p string) string {
	d := path.Dir(p)
	if d == "." {
		return ""
	}
	return d
}

// TreeListing is one line of LsTree output.
type TreeListing struct {
	Mode string
	Kind object.EntryKind
	Hash object.Hash
	Path string
}

// LsTree lists the tree name peels to. With recursive set, each subtree's
// entries follow the subtree itself, with paths prefixed by their parent.
func (r *Repo) LsTree(name string, recursive bool) ([]TreeListing, error) {
	root, err := r.PeelToTree(name)
	if err != nil {
		return nil, errors.WrapIff(err, "ls-tree %q", name)
	}
	tree, err := r.Store.ReadTree(root)
	if err != nil {
		return nil, errors.WrapIff(err, "ls-tree %q", name)
	}

	var out []TreeListing
	stack := pushListings(nil, tree, "")
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)

		if recursive && cur.Kind == object.KindTree {
			sub, err := r.Store.ReadTree(cur.Hash)
			if err != nil {
				return nil, errors.WrapIff(err, "ls-tree %q: %s", name, cur.Path)
			}
			stack = pushListings(stack, sub, cur.Path)
		}
	}
	return out, nil
}

// pushListings pushes the entries of tree in reverse so they pop in order.
func pushListings(stack []TreeListing, tree *object.Tree, prefix string) []TreeListing {
	entries := tree.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		stack = append(stack, TreeListing{
			Mode: e.Mode,
			Kind: e.Kind(),
			Hash: e.Hash,
			Path: path.Join(prefix, e.Path),
		})
	}
	return stack
}
