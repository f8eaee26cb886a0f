package repo

import (
	"strings"

	"emperror.dev/errors"

	"github.com/odvcencio/tig/pkg/object"
)

// Namespaces searched, in order, when a name is not a hex digest.
var nameNamespaces = []string{"refs/tags", "refs/heads"}

// FindHashes lists every digest name could refer to.
//
// A name of 4 to 40 hex characters is treated as an abbreviated digest and
// matched against the stored objects only. Any other name is looked up as a
// tag and then as a branch, with one candidate per namespace that resolves,
// so a tag and a branch of the same name are ambiguous even when they agree.
// "HEAD" is looked up in .git itself.
func (r *Repo) FindHashes(name string) ([]object.Hash, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	if object.IsHexPrefix(name) {
		hashes, err := r.Store.FindPrefix(name)
		if err != nil {
			return nil, errors.WrapIff(err, "find %q", name)
		}
		return hashes, nil
	}

	if name == "HEAD" {
		h, ok, err := r.ResolveRef("", "HEAD")
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		return []object.Hash{h}, nil
	}

	if validateRefPath(name) != nil {
		return nil, nil
	}
	var out []object.Hash
	for _, ns := range nameNamespaces {
		h, ok, err := r.ResolveRef(ns, name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, h)
		}
	}
	return out, nil
}

// ResolveName returns the single digest name refers to. It fails with
// ErrNotFound when nothing matches and with an *AmbiguousNameError when
// several objects do.
//
// "<name>:<path>" selects the entry at path inside the tree name peels to.
func (r *Repo) ResolveName(name string) (object.Hash, error) {
	if rev, p, ok := strings.Cut(name, ":"); ok {
		tree, err := r.PeelToTree(rev)
		if err != nil {
			return "", err
		}
		p = strings.Trim(p, "/")
		if p == "" {
			return tree, nil
		}
		entry, found, err := r.treeEntryAtPath(tree, p)
		if err != nil {
			return "", err
		}
		if !found {
			return "", errors.WithDetails(ErrNotFound, "name", name)
		}
		return entry.Hash, nil
	}

	hashes, err := r.FindHashes(name)
	if err != nil {
		return "", err
	}
	switch len(hashes) {
	case 0:
		return "", errors.WithDetails(ErrNotFound, "name", name)
	case 1:
		return hashes[0], nil
	}
	return "", &AmbiguousNameError{Name: name, Candidates: hashes}
}

// FindObject resolves name and peels it one level: a tag yields the object
// it points at, a commit yields its tree, and anything else yields itself.
// Use ResolveName for the digest of the named object and PeelToCommit or
// PeelToTree to peel all the way to a given type.
func (r *Repo) FindObject(name string) (object.Hash, error) {
	h, err := r.ResolveName(name)
	if err != nil {
		return "", err
	}
	obj, err := r.Store.Read(h)
	if err != nil {
		return "", err
	}
	switch o := obj.(type) {
	case *object.Tag:
		return o.Target()
	case *object.Commit:
		return o.TreeHash()
	}
	return h, nil
}

// PeelToCommit resolves name and follows tags until it reaches a commit.
func (r *Repo) PeelToCommit(name string) (object.Hash, error) {
	h, err := r.ResolveName(name)
	if err != nil {
		return "", err
	}
	return r.peel(h, object.TypeCommit)
}

// PeelToTree resolves name and follows tags and commits until it reaches a
// tree.
func (r *Repo) PeelToTree(name string) (object.Hash, error) {
	h, err := r.ResolveName(name)
	if err != nil {
		return "", err
	}
	return r.peel(h, object.TypeTree)
}

func (r *Repo) peel(h object.Hash, want object.ObjectType) (object.Hash, error) {
	start := h
	for i := 0; i < MaxRefDepth; i++ {
		obj, err := r.Store.Read(h)
		if err != nil {
			return "", err
		}
		if obj.Type() == want {
			return h, nil
		}
		switch o := obj.(type) {
		case *object.Tag:
			h, err = o.Target()
		case *object.Commit:
			if want != object.TypeTree {
				return "", errors.WithDetails(ErrPrecondition, "object", string(start), "reason", "commit cannot peel to "+string(want))
			}
			h, err = o.TreeHash()
		default:
			return "", errors.WithDetails(ErrPrecondition, "object", string(start), "reason", string(obj.Type())+" cannot peel to "+string(want))
		}
		if err != nil {
			return "", errors.WrapIff(err, "peel %s", start)
		}
	}
	return "", errors.WithDetails(ErrPrecondition, "object", string(start), "reason", "tag chain too deep")
}
