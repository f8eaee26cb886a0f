package repo

import (
	"path"
	"sort"

	"emperror.dev/errors"

	"github.com/odvcencio/tig/pkg/index"
	"github.com/odvcencio/tig/pkg/object"
	"github.com/odvcencio/tig/pkg/storage"
)

// FileStatus represents the state of a file in the working tree or index.
type FileStatus int

const (
	StatusClean     FileStatus = iota // file matches between compared areas
	StatusNew                         // in the index, not in the HEAD tree
	StatusModified                    // in the index, different from HEAD
	StatusDeleted                     // in HEAD but not in the index (or in the index but not on disk)
	StatusUntracked                   // in the worktree but not in the index
	StatusDirty                       // staged but the worktree copy differs from the index
)

func (s FileStatus) String() string {
	switch s {
	case StatusClean:
		return "clean"
	case StatusNew:
		return "new"
	case StatusModified:
		return "modified"
	case StatusDeleted:
		return "deleted"
	case StatusUntracked:
		return "untracked"
	case StatusDirty:
		return "dirty"
	}
	return "unknown"
}

// StatusEntry records the status of a single file.
type StatusEntry struct {
	Path        string     // path relative to the working root
	IndexStatus FileStatus // index vs HEAD
	WorkStatus  FileStatus // worktree vs index
}

// Status compares the worktree, the index and the HEAD tree.
//
//  1. Read the index.
//  2. Walk the worktree, skipping .git and ignored paths.
//  3. Compare worktree files against index entries.
//  4. Compare index entries against the HEAD tree, if HEAD resolves.
//  5. Return entries sorted by path, omitting files clean on both sides.
func (r *Repo) Status() ([]StatusEntry, error) {
	idx, err := r.ReadIndex()
	if err != nil {
		return nil, errors.WrapIf(err, "status")
	}
	staged := make(map[string]index.Entry, len(idx.Entries))
	for _, e := range idx.Entries {
		if e.Stage == 0 {
			staged[e.Name] = e
		}
	}

	workFiles, err := r.worktreeFiles(NewIgnoreChecker(r.Backend, r.RootDir))
	if err != nil {
		return nil, errors.WrapIf(err, "status: walk")
	}

	result := make(map[string]*StatusEntry)
	get := func(p string) *StatusEntry {
		e, ok := result[p]
		if !ok {
			e = &StatusEntry{Path: p}
			result[p] = e
		}
		return e
	}

	// Worktree vs index.
	for p := range workFiles {
		se, ok := staged[p]
		if !ok {
			e := get(p)
			e.IndexStatus = StatusUntracked
			e.WorkStatus = StatusUntracked
			continue
		}
		dirty, err := r.worktreeDiffers(p, se)
		if err != nil {
			return nil, errors.WrapIff(err, "status: %s", p)
		}
		if dirty {
			get(p).WorkStatus = StatusDirty
		}
	}
	for p := range staged {
		if !workFiles[p] {
			get(p).WorkStatus = StatusDeleted
		}
	}

	// Index vs HEAD.
	head, err := r.headTreeEntries()
	if err != nil {
		return nil, errors.WrapIf(err, "status: read HEAD tree")
	}
	for p, se := range staged {
		he, inHead := head[p]
		switch {
		case !inHead:
			get(p).IndexStatus = StatusNew
		case he.Hash != se.Hash || he.Mode != treeModeFromIndex(se):
			get(p).IndexStatus = StatusModified
		}
	}
	for p := range head {
		if _, ok := staged[p]; !ok {
			get(p).IndexStatus = StatusDeleted
		}
	}

	entries := make([]StatusEntry, 0, len(result))
	for _, e := range result {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}

// worktreeFiles lists the files below the working root, relative to it.
func (r *Repo) worktreeFiles(ic *IgnoreChecker) (map[string]bool, error) {
	files := make(map[string]bool)
	stack := []string{""}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		names, err := r.Backend.List(path.Join(r.RootDir, dir))
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			rel := path.Join(dir, n)
			if ic.IsIgnored(rel) {
				continue
			}
			abs := path.Join(r.RootDir, rel)
			switch {
			case r.Backend.IsFolder(abs):
				stack = append(stack, rel)
			case r.Backend.IsFile(abs):
				files[rel] = true
			}
		}
	}
	return files, nil
}

// worktreeDiffers reports whether the worktree copy of rel no longer matches
// its index entry. Size and mtime are compared first; content is hashed only
// when the mtime disagrees or has no sub-second part.
func (r *Repo) worktreeDiffers(rel string, e index.Entry) (bool, error) {
	abs := storage.Abs(path.Join(r.RootDir, rel))
	md, err := r.Backend.Metadata(abs)
	if err != nil {
		return false, err
	}
	modeType, perms := indexModeFromFileMode(md.Mode)
	if modeType != e.ModeType || perms != e.ModePerms {
		return true, nil
	}
	// Entries restored by Reset carry no stat data and are always hashed.
	statless := e.MTime == index.Timestamp{} && e.Size == 0
	if !statless {
		if uint32(md.Size) != e.Size {
			return true, nil
		}
		mtime := timestamp(md.MTime.Unix(), md.MTime.Nanosecond())
		if mtime == e.MTime && mtime.Nanoseconds != 0 {
			return false, nil
		}
	}

	data, err := r.Backend.Get(abs)
	if err != nil {
		return false, err
	}
	return object.HashObject(object.TypeBlob, data) != e.Hash, nil
}

// headTreeEntries flattens the HEAD tree into path -> entry. An unborn HEAD
// yields an empty map. Gitlinks and blobs are both reported.
func (r *Repo) headTreeEntries() (map[string]TreeListing, error) {
	out := make(map[string]TreeListing)
	if _, ok, err := r.HeadHash(); err != nil || !ok {
		return out, err
	}
	listing, err := r.LsTree("HEAD", true)
	if err != nil {
		return nil, err
	}
	for _, l := range listing {
		if l.Kind != object.KindTree {
			out[l.Path] = l
		}
	}
	return out, nil
}
