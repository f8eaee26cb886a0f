package repo

import (
	"path"
	"sort"
	"strings"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"

	"github.com/odvcencio/tig/pkg/object"
	"github.com/odvcencio/tig/pkg/storage"
)

// ResolveRef resolves the reference name inside namespace, both relative to
// the .git folder: ResolveRef("refs/heads", "main") reads .git/refs/heads/main
// and ResolveRef("", "HEAD") reads .git/HEAD.
//
// A leaf holding "ref: <path>" is followed to .git/<path>. ok is false when
// the reference names a folder. A missing leaf anywhere along the chain
// yields ErrNotFound, and a chain that loops or exceeds MaxRefDepth hops
// yields a *CyclicReferenceError.
func (r *Repo) ResolveRef(namespace, name string) (h object.Hash, ok bool, err error) {
	rel := path.Join(namespace, name)
	if err := validateRefPath(rel); err != nil {
		return "", false, err
	}
	return r.resolveRefPath(rel)
}

func (r *Repo) resolveRefPath(rel string) (object.Hash, bool, error) {
	visited := make(map[string]bool)
	var chain []string
	for {
		chain = append(chain, rel)
		if visited[rel] || len(chain) > MaxRefDepth {
			return "", false, &CyclicReferenceError{Chain: chain}
		}
		visited[rel] = true

		p := r.gitPath(rel)
		if r.Backend.IsFolder(p) {
			return "", false, nil
		}
		data, err := r.Backend.Get(p)
		if err != nil {
			if errors.Is(err, storage.ErrNotExist) {
				return "", false, errors.WithDetails(ErrNotFound, "ref", rel)
			}
			return "", false, errors.WrapIff(err, "resolve ref %q", rel)
		}

		content := strings.TrimSpace(string(data))
		if target, ok := strings.CutPrefix(content, "ref: "); ok {
			next := path.Clean(strings.TrimSpace(target))
			if err := validateRefPath(next); err != nil {
				return "", false, errors.WrapIff(err, "resolve ref %q", rel)
			}
			rel = next
			continue
		}

		h, err := object.ParseHash(content)
		if err != nil {
			return "", false, errors.WrapIff(err, "resolve ref %q", rel)
		}
		return h, true, nil
	}
}

// CreateRef points namespace/name at h, creating the namespace folders as
// needed. An existing reference is overwritten.
func (r *Repo) CreateRef(namespace, name string, h object.Hash) error {
	return r.UpdateRef(path.Join(namespace, name), h)
}

// UpdateRef writes a hash to the named ref under .git/. Parent folders are
// created as needed. If expectedOld is provided, the update only succeeds
// when the current ref hash matches it; an expected "" means the ref must
// not exist yet.
//
// The reflog is appended after the ref is written; if that fails, the ref
// update remains committed and a RefUpdateReflogError is returned.
func (r *Repo) UpdateRef(name string, h object.Hash, expectedOld ...object.Hash) error {
	if len(expectedOld) > 1 {
		return errors.Errorf("update ref %q: expected at most one old hash", name)
	}
	name = path.Clean(name)
	if err := validateRefPath(name); err != nil {
		return errors.WrapIff(err, "update ref %q", name)
	}
	h, err := object.ParseHash(string(h))
	if err != nil {
		return errors.WrapIff(err, "update ref %q", name)
	}

	r.refMu.Lock()
	defer r.refMu.Unlock()

	refPath := r.gitPath(name)
	if err := storage.MkdirAll(r.Backend, path.Dir(refPath)); err != nil {
		return errors.WrapIff(err, "update ref %q: mkdir", name)
	}
	if r.Backend.IsFolder(refPath) {
		return errors.WithDetails(storage.ErrIsFolder, "ref", name)
	}

	oldHash, err := r.readRefHash(refPath)
	if err != nil {
		return errors.WrapIff(err, "update ref %q: read old hash", name)
	}
	if len(expectedOld) == 1 && oldHash != expectedOld[0] {
		return errors.WithDetails(
			errors.WrapIff(ErrRefCASMismatch, "update ref %q", name),
			"expected", string(expectedOld[0]),
			"found", string(oldHash),
		)
	}

	if err := r.Backend.Set(refPath, []byte(string(h)+"\n"), true); err != nil {
		return errors.WrapIff(err, "update ref %q: write", name)
	}
	logrus.WithFields(logrus.Fields{
		"ref": name,
		"old": oldHash,
		"new": h,
	}).Debug("updated ref")

	if err := r.appendReflog(name, oldHash, h, "update"); err != nil {
		return &RefUpdateReflogError{
			Ref:     name,
			OldHash: oldHash,
			NewHash: h,
			Err:     err,
		}
	}
	return nil
}

// CreateSymbolicRef makes name (relative to .git) a symbolic reference to
// target, e.g. CreateSymbolicRef("HEAD", "refs/heads/main").
func (r *Repo) CreateSymbolicRef(name, target string) error {
	name, target = path.Clean(name), path.Clean(target)
	if err := validateRefPath(name); err != nil {
		return err
	}
	if err := validateRefPath(target); err != nil {
		return err
	}
	r.refMu.Lock()
	defer r.refMu.Unlock()

	refPath := r.gitPath(name)
	if err := storage.MkdirAll(r.Backend, path.Dir(refPath)); err != nil {
		return errors.WrapIff(err, "symbolic ref %q: mkdir", name)
	}
	if err := r.Backend.Set(refPath, []byte("ref: "+target+"\n"), true); err != nil {
		return errors.WrapIff(err, "symbolic ref %q", name)
	}
	logrus.WithFields(logrus.Fields{"ref": name, "target": target}).Debug("updated symbolic ref")
	return nil
}

// readRefHash returns the direct content of a ref leaf without following
// symbolic references. A missing ref reads as "".
func (r *Repo) readRefHash(refPath string) (object.Hash, error) {
	data, err := r.Backend.Get(refPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}

// GetAllReferences walks namespace (relative to .git, e.g. "refs") and
// returns every leaf reference keyed by its .git-relative path, resolved
// through any symbolic indirection. Dangling symbolic references are
// skipped.
func (r *Repo) GetAllReferences(namespace string) (map[string]object.Hash, error) {
	namespace = path.Clean(namespace)
	if err := validateRefPath(namespace); err != nil {
		return nil, err
	}
	refs := make(map[string]object.Hash)
	if !r.Backend.IsFolder(r.gitPath(namespace)) {
		return refs, nil
	}

	stack := []string{namespace}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		names, err := r.Backend.List(r.gitPath(dir))
		if err != nil {
			return nil, errors.WrapIff(err, "list refs %s", dir)
		}
		for _, n := range names {
			rel := path.Join(dir, n)
			if r.Backend.IsFolder(r.gitPath(rel)) {
				stack = append(stack, rel)
				continue
			}
			h, ok, err := r.resolveRefPath(rel)
			if errors.Is(err, ErrNotFound) {
				logrus.WithField("ref", rel).Debug("skipping dangling reference")
				continue
			}
			if err != nil {
				return nil, err
			}
			if ok {
				refs[rel] = h
			}
		}
	}
	return refs, nil
}

// RefNames returns the keys of refs sorted.
func RefNames(refs map[string]object.Hash) []string {
	names := make([]string, 0, len(refs))
	for n := range refs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// validateRefPath rejects names that would escape the .git folder or that
// git could not store.
func validateRefPath(rel string) error {
	if rel == "" || rel == "." {
		return errors.WithDetails(ErrInvalidRefName, "name", rel)
	}
	if strings.HasPrefix(rel, "/") || strings.ContainsAny(rel, " \t\n\r\x00") {
		return errors.WithDetails(ErrInvalidRefName, "name", rel)
	}
	for _, c := range strings.Split(rel, "/") {
		if c == "" || c == "." || c == ".." || strings.HasSuffix(c, ".lock") {
			return errors.WithDetails(ErrInvalidRefName, "name", rel)
		}
	}
	return nil
}
