package repo

import (
	"path"
	"strings"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"

	"github.com/odvcencio/tig/pkg/index"
	"github.com/odvcencio/tig/pkg/object"
	"github.com/odvcencio/tig/pkg/storage"
)

// indexPath returns the backend path of the index file.
func (r *Repo) indexPath() string {
	return r.gitPath("index")
}

// ReadIndex loads .git/index. If the file does not exist, an empty index is
// returned (no error). A present but malformed index is an error.
func (r *Repo) ReadIndex() (*index.Index, error) {
	data, err := r.Backend.Get(r.indexPath())
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return index.New(), nil
		}
		return nil, errors.WrapIf(err, "read index")
	}
	idx, err := index.Decode(data)
	if err != nil {
		return nil, errors.WrapIf(err, "read index")
	}
	return idx, nil
}

// WriteIndex sorts idx by path and rewrites .git/index.
func (r *Repo) WriteIndex(idx *index.Index) error {
	idx.Sort()
	data, err := index.Encode(idx)
	if err != nil {
		return errors.WrapIf(err, "write index")
	}
	if err := r.Backend.Set(r.indexPath(), data, true); err != nil {
		return errors.WrapIf(err, "write index")
	}
	logrus.WithField("entries", len(idx.Entries)).Debug("wrote index")
	return nil
}

// Add stages the given worktree files. Paths are relative to the working
// root or absolute backend paths. Each path must name a regular file; its
// content is stored as a blob and any existing entry for the same path is
// replaced. Staged entries that would collide with a new one as file versus
// directory (a staged "a" when adding "a/b", or the reverse) are dropped.
func (r *Repo) Add(paths ...string) error {
	idx, err := r.ReadIndex()
	if err != nil {
		return errors.WrapIf(err, "add")
	}

	added := make(map[string]index.Entry, len(paths))
	var order []string
	for _, p := range paths {
		abs, rel, err := r.worktreePath(p)
		if err != nil {
			return errors.WrapIf(err, "add")
		}
		if !r.Backend.IsFile(abs) {
			return errors.WithDetails(ErrNotAFile, "path", p)
		}
		md, err := r.Backend.Metadata(abs)
		if err != nil {
			return errors.WrapIff(err, "add %s", p)
		}
		if !md.Mode.IsRegular() {
			return errors.WithDetails(ErrNotAFile, "path", p)
		}
		data, err := r.Backend.Get(abs)
		if err != nil {
			return errors.WrapIff(err, "add %s", p)
		}
		h, err := r.Store.Write(object.NewBlob(data))
		if err != nil {
			return errors.WrapIff(err, "add %s", p)
		}

		modeType, perms := indexModeFromFileMode(md.Mode)
		if _, ok := added[rel]; !ok {
			order = append(order, rel)
		}
		added[rel] = index.Entry{
			CTime:     timestamp(md.CTime.Unix(), md.CTime.Nanosecond()),
			MTime:     timestamp(md.MTime.Unix(), md.MTime.Nanosecond()),
			Dev:       md.Dev,
			Ino:       md.Ino,
			ModeType:  modeType,
			ModePerms: perms,
			UID:       md.UID,
			GID:       md.GID,
			Size:      uint32(md.Size),
			Hash:      h,
			Name:      rel,
		}
		logrus.WithFields(logrus.Fields{"path": rel, "hash": h}).Debug("staged file")
	}

	kept := idx.Entries[:0]
	for _, e := range idx.Entries {
		if !conflictsWithAny(e.Name, order) {
			kept = append(kept, e)
			continue
		}
		if _, ok := added[e.Name]; !ok {
			logrus.WithField("path", e.Name).Debug("dropped conflicting entry")
		}
	}
	idx.Entries = kept
	for _, rel := range order {
		idx.Entries = append(idx.Entries, added[rel])
	}
	return r.WriteIndex(idx)
}

// Remove unstages the given paths. Paths that are not staged are ignored;
// the worktree is not touched.
func (r *Repo) Remove(paths ...string) error {
	idx, err := r.ReadIndex()
	if err != nil {
		return errors.WrapIf(err, "rm")
	}

	drop := make(map[string]bool, len(paths))
	for _, p := range paths {
		_, rel, err := r.worktreePath(p)
		if err != nil {
			return errors.WrapIf(err, "rm")
		}
		drop[rel] = true
	}

	kept := idx.Entries[:0]
	for _, e := range idx.Entries {
		if drop[e.Name] {
			logrus.WithField("path", e.Name).Debug("unstaged file")
			continue
		}
		kept = append(kept, e)
	}
	idx.Entries = kept
	return r.WriteIndex(idx)
}

// conflictsWithAny reports whether name is one of paths, a directory above
// one of them, or a path below one of them.
func conflictsWithAny(name string, paths []string) bool {
	for _, p := range paths {
		if name == p || strings.HasPrefix(p, name+"/") || strings.HasPrefix(name, p+"/") {
			return true
		}
	}
	return false
}

// worktreePath returns the absolute backend path of p and its path relative
// to the working root. Relative paths are taken from the working root.
func (r *Repo) worktreePath(p string) (abs, rel string, err error) {
	if strings.HasPrefix(p, "/") {
		abs = storage.Abs(p)
	} else {
		abs = storage.Abs(path.Join(r.RootDir, p))
	}
	rel, err = storage.Rel(abs, r.RootDir)
	if err != nil {
		return "", "", errors.WithDetails(ErrOutsideWorktree, "path", p)
	}
	if rel == "." {
		return "", "", errors.WithDetails(ErrNotAFile, "path", p)
	}
	if rel == GitDirName || strings.HasPrefix(rel, GitDirName+"/") {
		return "", "", errors.WithDetails(ErrOutsideWorktree, "path", p)
	}
	return abs, rel, nil
}

// timestamp clamps a unix time into the 32-bit index fields.
func timestamp(sec int64, nsec int) index.Timestamp {
	if sec < 0 {
		return index.Timestamp{}
	}
	return index.Timestamp{Seconds: uint32(sec), Nanoseconds: uint32(nsec)}
}
