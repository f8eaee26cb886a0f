// Package repo ties the object store, references and the index together
// into a repository living in a storage backend.
package repo

import (
	"path"
	"sync"

	"github.com/odvcencio/tig/pkg/object"
	"github.com/odvcencio/tig/pkg/storage"
)

// GitDirName is the metadata folder below the working root.
const GitDirName = ".git"

// Repo represents an opened repository. All paths are backend paths.
type Repo struct {
	Backend storage.Backend
	RootDir string        // working tree root, e.g. "/"
	GitDir  string        // RootDir/.git
	Store   *object.Store // content-addressed object store

	refMu sync.Mutex // serializes ref read-compare-write within the process
}

func newRepo(b storage.Backend, root string) *Repo {
	root = storage.Abs(root)
	gitDir := path.Join(root, GitDirName)
	return &Repo{
		Backend: b,
		RootDir: root,
		GitDir:  gitDir,
		Store:   object.NewStore(b, path.Join(gitDir, "objects")),
	}
}

// gitPath joins elems below the metadata folder.
func (r *Repo) gitPath(elems ...string) string {
	return path.Join(append([]string{r.GitDir}, elems...)...)
}
