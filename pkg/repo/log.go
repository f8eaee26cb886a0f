package repo

import (
	"emperror.dev/errors"

	"github.com/odvcencio/tig/pkg/object"
)

// LogEntry is one commit in a history walk.
type LogEntry struct {
	Hash   object.Hash
	Commit *object.Commit
}

// Log walks the history starting at the commit name peels to, following
// first-parent links, and returns up to limit commits newest first. A limit
// of zero or less walks to the root. A missing parent ends the walk.
func (r *Repo) Log(name string, limit int) ([]LogEntry, error) {
	start, err := r.PeelToCommit(name)
	if err != nil {
		return nil, errors.WrapIff(err, "log %q", name)
	}

	var entries []LogEntry
	seen := make(map[object.Hash]bool)
	for current := start; current != ""; {
		if limit > 0 && len(entries) >= limit {
			break
		}
		if seen[current] {
			return nil, errors.Errorf("log: commit %s appears twice in its own history", current)
		}
		seen[current] = true

		c, err := r.Store.ReadCommit(current)
		if err != nil {
			if errors.Is(err, ErrNotFound) && len(entries) > 0 {
				break
			}
			return nil, errors.WrapIff(err, "log: read commit %s", current)
		}
		entries = append(entries, LogEntry{Hash: current, Commit: c})

		parents := c.Parents()
		if len(parents) == 0 {
			break
		}
		current = parents[0]
	}
	return entries, nil
}
