package repo

import (
	"strings"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"

	"github.com/odvcencio/tig/pkg/index"
	"github.com/odvcencio/tig/pkg/object"
	"github.com/odvcencio/tig/pkg/storage"
)

// DefaultBranch is the branch HEAD points at in a fresh repository.
const DefaultBranch = "main"

// Init creates a new repository at root in b: the .git folder with
// objects/, objects/pack/, refs/heads/ and refs/tags/, a HEAD pointing at
// refs/heads/main, an empty index and a default config. It fails with
// ErrAlreadyInitialized if .git/HEAD already exists.
func Init(b storage.Backend, root string) (*Repo, error) {
	r := newRepo(b, root)

	if b.IsFile(r.gitPath("HEAD")) {
		return nil, errors.WithDetails(ErrAlreadyInitialized, "path", r.GitDir)
	}

	dirs := []string{
		r.gitPath("objects", "pack"),
		r.gitPath("refs", "heads"),
		r.gitPath("refs", "tags"),
	}
	for _, d := range dirs {
		if err := storage.MkdirAll(b, d); err != nil {
			return nil, errors.WrapIff(err, "init: mkdir %s", d)
		}
	}

	if err := b.Set(r.gitPath("HEAD"), []byte("ref: refs/heads/"+DefaultBranch+"\n"), true); err != nil {
		return nil, errors.WrapIf(err, "init: write HEAD")
	}
	if err := r.WriteIndex(index.New()); err != nil {
		return nil, errors.WrapIf(err, "init")
	}
	if err := r.WriteConfig(defaultConfig()); err != nil {
		return nil, errors.WrapIf(err, "init")
	}

	logrus.WithFields(logrus.Fields{"root": r.RootDir}).Debug("initialized repository")
	return r, nil
}

// Open opens the repository at root. The object store picks up the
// compression configured in .git/config.
func Open(b storage.Backend, root string) (*Repo, error) {
	r := newRepo(b, root)
	if !b.IsFolder(r.GitDir) {
		return nil, errors.WithDetails(ErrNotARepository, "path", r.RootDir)
	}

	cfg, err := r.ReadConfig()
	if err != nil {
		return nil, errors.WrapIf(err, "open")
	}
	c, err := object.ParseCompression(cfg.Section("core").Key("compression").String())
	if err != nil {
		return nil, errors.WrapIf(err, "open: core.compression")
	}
	r.Store.SetCompression(c)
	return r, nil
}

// Head reads .git/HEAD. If the content starts with "ref: ", it returns the
// ref path (e.g., "refs/heads/main"). Otherwise it returns the raw content
// as a detached hash string.
func (r *Repo) Head() (string, error) {
	data, err := r.Backend.Get(r.gitPath("HEAD"))
	if err != nil {
		return "", errors.WrapIf(err, "head")
	}
	content := strings.TrimSpace(string(data))

	if target, ok := strings.CutPrefix(content, "ref: "); ok {
		return strings.TrimSpace(target), nil
	}
	return content, nil
}

// HeadHash resolves HEAD to a digest. ok is false on an unborn branch.
func (r *Repo) HeadHash() (h object.Hash, ok bool, err error) {
	h, ok, err = r.ResolveRef("", "HEAD")
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	return h, ok, err
}

// CurrentBranch reads HEAD and returns the branch name if HEAD is a symbolic
// ref (e.g. "ref: refs/heads/main" -> "main"). If HEAD is detached it
// returns "".
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.Head()
	if err != nil {
		return "", errors.WrapIf(err, "current branch")
	}
	if name, ok := strings.CutPrefix(head, "refs/heads/"); ok {
		return name, nil
	}
	return "", nil
}
