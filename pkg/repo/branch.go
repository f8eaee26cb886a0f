package repo

import (
	"path"
	"sort"
	"strings"

	"emperror.dev/errors"

	"github.com/odvcencio/tig/pkg/object"
)

// CreateBranch creates refs/heads/<name> pointing at the commit start peels
// to. An empty start means HEAD. Returns an error if the branch already
// exists.
func (r *Repo) CreateBranch(name, start string) (object.Hash, error) {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return "", errors.WrapIf(err, "create branch")
	}
	if strings.TrimSpace(start) == "" {
		start = "HEAD"
	}
	target, err := r.PeelToCommit(start)
	if err != nil {
		return "", errors.WrapIff(err, "create branch %q", name)
	}

	refName := path.Join("refs/heads", name)
	if err := r.UpdateRef(refName, target, ""); err != nil {
		if errors.Is(err, ErrRefCASMismatch) {
			return "", errors.Errorf("create branch: branch %q already exists", name)
		}
		return "", errors.WrapIff(err, "create branch %q", name)
	}
	return target, nil
}

// ListBranches returns the branch names under refs/heads sorted
// alphabetically.
func (r *Repo) ListBranches() ([]string, error) {
	refs, err := r.GetAllReferences("refs/heads")
	if err != nil {
		return nil, errors.WrapIf(err, "list branches")
	}

	names := make([]string, 0, len(refs))
	for full := range refs {
		names = append(names, strings.TrimPrefix(full, "refs/heads/"))
	}
	sort.Strings(names)
	return names, nil
}
