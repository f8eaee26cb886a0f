package repo

import (
	"testing"
	"time"

	"emperror.dev/errors"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/tig/pkg/object"
)

// fixClock pins now for the duration of the test.
func fixClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func TestCommit_NothingStaged(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		_, err := r.Commit("empty")
		require.True(t, errors.Is(err, ErrNothingStaged), "got %v", err)
	})
}

func TestCommit_CreatesObjectAndAdvancesBranch(t *testing.T) {
	fixClock(t, time.Unix(1700000000, 0).In(time.FixedZone("", 2*3600)))

	forEachBackend(t, func(t *testing.T, r *Repo) {
		require.NoError(t, r.SetConfig("user.name", "Sam Ortiz"))
		require.NoError(t, r.SetConfig("user.email", "sam@example.com"))
		writeFile(t, r, "main.go", "package main\n")
		require.NoError(t, r.Add("main.go"))

		h, err := r.Commit("initial commit\n")
		require.NoError(t, err)

		c, err := r.Store.ReadCommit(h)
		require.NoError(t, err)
		require.Empty(t, c.Parents())
		require.Equal(t, "initial commit", c.Message(), "trailing whitespace is trimmed on encode")
		require.Equal(t, []string{"Sam Ortiz <sam@example.com> 1700000000 +0200"}, c.Header("author"))
		require.Equal(t, c.Header("author"), c.Header("committer"))

		tree, err := c.TreeHash()
		require.NoError(t, err)
		written, err := r.WriteTree()
		require.NoError(t, err)
		require.Equal(t, written, tree)

		head, ok, err := r.HeadHash()
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, h, head)

		branch, _, err := r.ResolveRef("refs/heads", "main")
		require.NoError(t, err)
		require.Equal(t, h, branch)
	})
}

func TestCommit_ChainsParents(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		writeFile(t, r, "a.txt", "1")
		require.NoError(t, r.Add("a.txt"))
		first, err := r.Commit("first")
		require.NoError(t, err)

		writeFile(t, r, "a.txt", "2")
		require.NoError(t, r.Add("a.txt"))
		second, err := r.Commit("second")
		require.NoError(t, err)

		c, err := r.Store.ReadCommit(second)
		require.NoError(t, err)
		require.Equal(t, []object.Hash{first}, c.Parents())
	})
}

func TestCommit_DetachedHead(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		writeFile(t, r, "a.txt", "1")
		require.NoError(t, r.Add("a.txt"))
		first, err := r.Commit("first")
		require.NoError(t, err)

		require.NoError(t, r.Backend.Set(".git/HEAD", []byte(string(first)+"\n"), true))
		branch, err := r.CurrentBranch()
		require.NoError(t, err)
		require.Empty(t, branch)

		writeFile(t, r, "b.txt", "2")
		require.NoError(t, r.Add("b.txt"))
		second, err := r.Commit("detached")
		require.NoError(t, err)

		head, _, err := r.HeadHash()
		require.NoError(t, err)
		require.Equal(t, second, head)

		tip, _, err := r.ResolveRef("refs/heads", "main")
		require.NoError(t, err)
		require.Equal(t, first, tip, "branch stays put while detached")
	})
}

func TestWriteTree_Nested(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		writeFile(t, r, "README", "readme")
		writeFile(t, r, "pkg/util/util.go", "package util")
		writeFile(t, r, "pkg/main.go", "package main")
		require.NoError(t, r.Add("README", "pkg/util/util.go", "pkg/main.go"))

		root, err := r.WriteTree()
		require.NoError(t, err)

		tree, err := r.Store.ReadTree(root)
		require.NoError(t, err)
		entries := tree.Entries()
		require.Len(t, entries, 2)
		require.Equal(t, "README", entries[0].Path)
		require.Equal(t, object.ModeFile, entries[0].Mode)
		require.Equal(t, "pkg", entries[1].Path)
		require.True(t, entries[1].IsTree())

		listing, err := r.LsTree(string(root), true)
		require.NoError(t, err)
		var paths []string
		for _, l := range listing {
			paths = append(paths, l.Path)
		}
		require.Equal(t, []string{"README", "pkg", "pkg/main.go", "pkg/util", "pkg/util/util.go"}, paths)
		require.Equal(t, object.KindTree, listing[3].Kind)
		require.Equal(t, object.HashObject(object.TypeBlob, []byte("package util")), listing[4].Hash)

		flat, err := r.LsTree(string(root), false)
		require.NoError(t, err)
		require.Len(t, flat, 2)
	})
}

func TestWriteTree_Empty(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		h, err := r.WriteTree()
		require.NoError(t, err)
		require.Equal(t, object.Hash("4b825dc642cb6eb9a060e54bf8d69288fbee4904"), h)
	})
}

func TestHashFile(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		writeFile(t, r, "data.bin", "payload")
		want := object.HashObject(object.TypeBlob, []byte("payload"))

		h, err := r.HashFile("data.bin", false)
		require.NoError(t, err)
		require.Equal(t, want, h)
		require.False(t, r.Store.Has(h))

		h, err = r.HashFile("/data.bin", true)
		require.NoError(t, err)
		require.Equal(t, want, h)
		require.True(t, r.Store.Has(h))

		_, err = r.HashFile("nope", false)
		require.True(t, errors.Is(err, ErrNotAFile), "got %v", err)
	})
}
