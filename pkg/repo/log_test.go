package repo

import (
	"testing"

	"emperror.dev/errors"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/tig/pkg/object"
)

func TestLog_FirstParentWalk(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		_, err := r.Log("HEAD", 0)
		require.True(t, errors.Is(err, ErrNotFound), "unborn HEAD: got %v", err)

		var commits []object.Hash
		for _, content := range []string{"1", "2", "3"} {
			writeFile(t, r, "f.txt", content)
			require.NoError(t, r.Add("f.txt"))
			h, err := r.Commit("commit " + content)
			require.NoError(t, err)
			commits = append(commits, h)
		}

		entries, err := r.Log("HEAD", 0)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		require.Equal(t, commits[2], entries[0].Hash)
		require.Equal(t, "commit 3", entries[0].Commit.Message())
		require.Equal(t, commits[0], entries[2].Hash)

		limited, err := r.Log("main", 2)
		require.NoError(t, err)
		require.Len(t, limited, 2)
		require.Equal(t, commits[1], limited[1].Hash)

		fromMiddle, err := r.Log(string(commits[1]), 0)
		require.NoError(t, err)
		require.Len(t, fromMiddle, 2)
	})
}

func TestLog_StopsAtMissingParent(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		tree, err := r.WriteTree()
		require.NoError(t, err)

		kv := object.NewKVLM()
		require.NoError(t, kv.Add("tree", string(tree)))
		require.NoError(t, kv.Add("parent", "1111111111111111111111111111111111111111"))
		kv.Message = "orphaned"
		h, err := r.Store.Write(object.NewCommit(kv))
		require.NoError(t, err)

		entries, err := r.Log(string(h), 0)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, h, entries[0].Hash)
	})
}
