package repo

import (
	"sort"
	"strings"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"

	"github.com/odvcencio/tig/pkg/index"
	"github.com/odvcencio/tig/pkg/object"
)

// Reset unstages paths by restoring index entries to their HEAD versions.
//
// Behavior:
//   - If a path exists in HEAD, its index entry is reset to HEAD's blob and mode.
//   - If a path does not exist in HEAD, its index entry is removed.
//   - A directory path resets every entry below it.
//   - If no paths are provided, the entire index is reset to HEAD.
//
// Reset does not modify the working tree. Restored entries carry no stat
// data, so Status hashes them on its next run.
func (r *Repo) Reset(paths ...string) error {
	idx, err := r.ReadIndex()
	if err != nil {
		return errors.WrapIf(err, "reset")
	}
	head, err := r.headTreeEntries()
	if err != nil {
		return errors.WrapIf(err, "reset")
	}

	staged := make(map[string]index.Entry, len(idx.Entries))
	for _, e := range idx.Entries {
		staged[e.Name] = e
	}
	targets, err := r.resetTargets(paths, staged, head)
	if err != nil {
		return errors.WrapIf(err, "reset")
	}

	for _, p := range targets {
		if he, ok := head[p]; ok {
			staged[p] = indexEntryFromTree(p, he)
			continue
		}
		delete(staged, p)
	}

	idx.Entries = idx.Entries[:0]
	for _, e := range staged {
		idx.Entries = append(idx.Entries, e)
	}
	logrus.WithField("paths", len(targets)).Debug("reset index entries")
	return r.WriteIndex(idx)
}

func (r *Repo) resetTargets(paths []string, staged map[string]index.Entry, head map[string]TreeListing) ([]string, error) {
	all := make(map[string]struct{}, len(staged)+len(head))
	for p := range staged {
		all[p] = struct{}{}
	}
	for p := range head {
		all[p] = struct{}{}
	}
	if len(paths) == 0 {
		return sortedPathSet(all), nil
	}

	targets := make(map[string]struct{})
	for _, raw := range paths {
		_, rel, err := r.worktreePath(raw)
		if err != nil {
			return nil, err
		}

		matched := false
		if _, ok := all[rel]; ok {
			targets[rel] = struct{}{}
			matched = true
		}
		prefix := rel + "/"
		for p := range all {
			if strings.HasPrefix(p, prefix) {
				targets[p] = struct{}{}
				matched = true
			}
		}
		if !matched {
			return nil, errors.WithDetails(ErrNotFound, "path", raw)
		}
	}
	return sortedPathSet(targets), nil
}

// indexEntryFromTree builds a stat-less index entry for a HEAD tree entry.
func indexEntryFromTree(p string, l TreeListing) index.Entry {
	e := index.Entry{Name: p, Hash: l.Hash, ModeType: index.ModeRegular, ModePerms: 0o644}
	switch strings.TrimSpace(l.Mode) {
	case object.ModeExecutable:
		e.ModePerms = 0o755
	case object.ModeSymlink:
		e.ModeType, e.ModePerms = index.ModeSymlink, 0
	case object.ModeGitlink:
		e.ModeType, e.ModePerms = index.ModeGitlink, 0
	}
	return e
}

func sortedPathSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
