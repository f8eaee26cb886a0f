package repo

import (
	"path"
	"strings"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"

	"github.com/odvcencio/tig/pkg/object"
	"github.com/odvcencio/tig/pkg/storage"
)

// Checkout materializes the tree of commit into dir, which must be an
// existing, empty folder. dir is relative to the working root unless it is
// an absolute backend path. HEAD and the index are left untouched.
//
// The tree is walked depth-first with an explicit stack: a subtree's folder
// is created before any of its children are pushed, so every file lands in
// a folder that already exists. Gitlink entries are skipped.
func (r *Repo) Checkout(commit object.Hash, dir string) error {
	obj, err := r.Store.Read(commit)
	if err != nil {
		return errors.WrapIf(err, "checkout")
	}
	c, ok := obj.(*object.Commit)
	if !ok {
		return errors.WithDetails(ErrPrecondition, "object", string(commit), "type", string(obj.Type()), "reason", "not a commit")
	}

	dest := dir
	if !strings.HasPrefix(dest, "/") {
		dest = path.Join(r.RootDir, dest)
	}
	dest = storage.Abs(dest)
	if !r.Backend.IsFolder(dest) {
		return errors.WithDetails(ErrNotEmpty, "path", dir, "reason", "not a folder")
	}
	names, err := r.Backend.List(dest)
	if err != nil {
		return errors.WrapIf(err, "checkout")
	}
	if len(names) > 0 {
		return errors.WithDetails(ErrNotEmpty, "path", dir)
	}

	treeHash, err := c.TreeHash()
	if err != nil {
		return errors.WrapIff(err, "checkout %s", commit)
	}
	tree, err := r.Store.ReadTree(treeHash)
	if err != nil {
		return errors.WrapIff(err, "checkout %s", commit)
	}

	type item struct {
		entry object.TreeEntry
		dest  string
	}
	// Every entry of a tree is checked before any of them is written, so a
	// corrupt tree cannot place files outside dest.
	push := func(stack []item, t *object.Tree, parent string) ([]item, error) {
		entries := t.Entries()
		for _, e := range entries {
			if err := object.ValidateEntryPath(e.Path); err != nil {
				return nil, errors.WrapIff(err, "checkout: %s", parent)
			}
		}
		for _, e := range entries {
			stack = append(stack, item{entry: e, dest: path.Join(parent, e.Path)})
		}
		return stack, nil
	}

	stack, err := push(nil, tree, dest)
	if err != nil {
		return err
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cur.entry.Kind() == object.KindCommit {
			logrus.WithField("path", cur.dest).Debug("skipping gitlink")
			continue
		}

		obj, err := r.Store.Read(cur.entry.Hash)
		if err != nil {
			return errors.WrapIff(err, "checkout: %s", cur.dest)
		}
		switch o := obj.(type) {
		case *object.Tree:
			if err := r.Backend.Mkdir(cur.dest); err != nil {
				return errors.WrapIff(err, "checkout: mkdir %s", cur.dest)
			}
			if stack, err = push(stack, o, cur.dest); err != nil {
				return err
			}
		case *object.Blob:
			if err := r.Backend.Set(cur.dest, o.Data(), true); err != nil {
				return errors.WrapIff(err, "checkout: write %s", cur.dest)
			}
			logrus.WithFields(logrus.Fields{"path": cur.dest, "hash": cur.entry.Hash}).Debug("checked out file")
		default:
			return errors.Errorf("checkout: %s: unexpected %s in tree", cur.dest, obj.Type())
		}
	}
	return nil
}
