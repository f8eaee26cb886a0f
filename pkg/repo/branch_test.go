package repo

import (
	"testing"

	"emperror.dev/errors"
	"github.com/stretchr/testify/require"
)

func TestCreateBranch(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		_, err := r.CreateBranch("feature", "")
		require.True(t, errors.Is(err, ErrNotFound), "unborn HEAD: got %v", err)

		writeFile(t, r, "a.txt", "a")
		require.NoError(t, r.Add("a.txt"))
		commit, err := r.Commit("first")
		require.NoError(t, err)

		got, err := r.CreateBranch("feature", "")
		require.NoError(t, err)
		require.Equal(t, commit, got)

		_, err = r.CreateBranch("feature", "main")
		require.Error(t, err)

		_, err = r.CreateTag("refs/tags", "t", "main", true)
		require.NoError(t, err)
		_, err = r.CreateBranch("from-tag", "t")
		// The heavy tag points at the tree, which is not a commit.
		require.True(t, errors.Is(err, ErrPrecondition), "got %v", err)

		names, err := r.ListBranches()
		require.NoError(t, err)
		require.Equal(t, []string{"feature", "main"}, names)
	})
}
