package repo

import (
	"strings"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"

	"github.com/odvcencio/tig/pkg/object"
	"github.com/odvcencio/tig/pkg/storage"
)

// Commit creates a new commit from the current index.
//
//  1. Write the index as a tree
//  2. Resolve HEAD to get the parent commit hash (if any)
//  3. Build the commit with tree, parent, author, committer and message
//  4. Write the commit to the store
//  5. Advance the branch HEAD points at, or HEAD itself when detached
func (r *Repo) Commit(message string) (object.Hash, error) {
	idx, err := r.ReadIndex()
	if err != nil {
		return "", errors.WrapIf(err, "commit")
	}
	if len(idx.Entries) == 0 {
		return "", errors.WrapIf(ErrNothingStaged, "commit")
	}

	treeHash, err := r.BuildTree(idx.Entries)
	if err != nil {
		return "", errors.WrapIf(err, "commit")
	}

	// Unborn branch: no parent.
	parentHash, hasParent, err := r.HeadHash()
	if err != nil {
		return "", errors.WrapIf(err, "commit: resolve HEAD")
	}

	sig, err := r.Signature(now())
	if err != nil {
		return "", errors.WrapIf(err, "commit")
	}
	kv := object.NewKVLM()
	err = kv.Add("tree", string(treeHash))
	if hasParent {
		err = errors.Combine(err, kv.Add("parent", string(parentHash)))
	}
	if err := errors.Combine(err, kv.Add("author", sig), kv.Add("committer", sig)); err != nil {
		return "", errors.WrapIf(err, "commit")
	}
	kv.Message = message

	commitHash, err := r.Store.Write(object.NewCommit(kv))
	if err != nil {
		return "", errors.WrapIf(err, "commit: write commit")
	}

	head, err := r.Head()
	if err != nil {
		return "", errors.WrapIf(err, "commit: read HEAD")
	}
	target := "HEAD"
	if strings.HasPrefix(head, "refs/") {
		target = head
	}
	// Guards against the ref moving since HEAD was resolved.
	expected := object.Hash("")
	if hasParent {
		expected = parentHash
	}
	if err := r.UpdateRef(target, commitHash, expected); err != nil {
		return "", errors.WrapIff(err, "commit: update %s", target)
	}

	logrus.WithFields(logrus.Fields{
		"commit": commitHash,
		"tree":   treeHash,
		"ref":    target,
	}).Debug("created commit")
	return commitHash, nil
}

// HashFile returns the blob digest of a worktree file, storing the blob when
// write is set.
func (r *Repo) HashFile(p string, write bool) (object.Hash, error) {
	abs := storage.Abs(p)
	if !strings.HasPrefix(p, "/") {
		abs = storage.Abs(r.RootDir + "/" + p)
	}
	if !r.Backend.IsFile(abs) {
		return "", errors.WithDetails(ErrNotAFile, "path", p)
	}
	data, err := r.Backend.Get(abs)
	if err != nil {
		return "", errors.WrapIff(err, "hash-object %s", p)
	}
	blob := object.NewBlob(data)
	if !write {
		return object.Sum(blob), nil
	}
	return r.Store.Write(blob)
}
