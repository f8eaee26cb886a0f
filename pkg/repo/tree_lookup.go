package repo

import (
	"strings"

	"emperror.dev/errors"

	"github.com/odvcencio/tig/pkg/object"
)

func (r *Repo) treeEntryAtPath(treeHash object.Hash, relPath string) (object.TreeEntry, bool, error) {
	parts := strings.Split(relPath, "/")
	current := treeHash

	for i, part := range parts {
		treeObj, err := r.Store.ReadTree(current)
		if err != nil {
			return object.TreeEntry{}, false, errors.WrapIff(err, "read tree %s", current)
		}

		var (
			entry object.TreeEntry
			found bool
		)
		for _, te := range treeObj.Entries() {
			if te.Path == part {
				entry = te
				found = true
				break
			}
		}
		if !found {
			return object.TreeEntry{}, false, nil
		}

		if i == len(parts)-1 {
			return entry, true, nil
		}
		if !entry.IsTree() {
			return object.TreeEntry{}, false, nil
		}
		current = entry.Hash
	}

	return object.TreeEntry{}, false, nil
}
