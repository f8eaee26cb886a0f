package repo

import (
	"encoding/hex"
	"testing"

	"emperror.dev/errors"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/tig/pkg/index"
	"github.com/odvcencio/tig/pkg/object"
)

func TestCheckout_FlatTree(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		writeFile(t, r, "one.txt", "first blob")
		writeFile(t, r, "two.txt", "second blob")
		require.NoError(t, r.Add("one.txt", "two.txt"))
		commit, err := r.Commit("two files")
		require.NoError(t, err)

		require.NoError(t, r.Backend.Mkdir("/out"))
		require.NoError(t, r.Checkout(commit, "out"))

		names, err := r.Backend.List("/out")
		require.NoError(t, err)
		require.Equal(t, []string{"one.txt", "two.txt"}, names)

		data, err := r.Backend.Get("/out/one.txt")
		require.NoError(t, err)
		require.Equal(t, "first blob", string(data))
		data, err = r.Backend.Get("/out/two.txt")
		require.NoError(t, err)
		require.Equal(t, "second blob", string(data))
	})
}

func TestCheckout_NestedTree(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		writeFile(t, r, "top.txt", "top")
		writeFile(t, r, "a/b/deep.txt", "deep")
		writeFile(t, r, "a/side.txt", "side")
		require.NoError(t, r.Add("top.txt", "a/b/deep.txt", "a/side.txt"))
		commit, err := r.Commit("nested")
		require.NoError(t, err)

		require.NoError(t, r.Backend.Mkdir("/restore"))
		require.NoError(t, r.Checkout(commit, "/restore"))

		require.True(t, r.Backend.IsFolder("/restore/a"))
		require.True(t, r.Backend.IsFolder("/restore/a/b"))
		for p, want := range map[string]string{
			"/restore/top.txt":      "top",
			"/restore/a/side.txt":   "side",
			"/restore/a/b/deep.txt": "deep",
		} {
			data, err := r.Backend.Get(p)
			require.NoError(t, err, p)
			require.Equal(t, want, string(data), p)
		}
	})
}

func TestCheckout_SkipsGitlink(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		writeFile(t, r, "file.txt", "f")
		require.NoError(t, r.Add("file.txt"))

		idx, err := r.ReadIndex()
		require.NoError(t, err)
		sub := writeBlob(t, r, "stand-in for a submodule commit")
		idx.Entries = append(idx.Entries, index.Entry{ModeType: index.ModeGitlink, Name: "vendor/sub", Hash: sub})
		require.NoError(t, r.WriteIndex(idx))
		commit, err := r.Commit("with submodule")
		require.NoError(t, err)

		require.NoError(t, r.Backend.Mkdir("/out"))
		require.NoError(t, r.Checkout(commit, "out"))
		require.True(t, r.Backend.IsFile("/out/file.txt"))
		require.True(t, r.Backend.IsFolder("/out/vendor"))
		require.False(t, r.Backend.IsFile("/out/vendor/sub"))
	})
}

func TestCheckout_Errors(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		writeFile(t, r, "one.txt", "1")
		require.NoError(t, r.Add("one.txt"))
		commit, err := r.Commit("c")
		require.NoError(t, err)

		// The worktree root holds .git and one.txt.
		err = r.Checkout(commit, "/")
		require.True(t, errors.Is(err, ErrNotEmpty), "got %v", err)

		err = r.Checkout(commit, "missing")
		require.True(t, errors.Is(err, ErrNotEmpty), "got %v", err)

		require.NoError(t, r.Backend.Mkdir("/out"))
		blob := writeBlob(t, r, "not a commit")
		err = r.Checkout(blob, "out")
		require.True(t, errors.Is(err, ErrPrecondition), "got %v", err)

		tree, err := r.WriteTree()
		require.NoError(t, err)
		err = r.Checkout(tree, "out")
		require.True(t, errors.Is(err, ErrPrecondition), "got %v", err)

		err = r.Checkout("0000000000000000000000000000000000000000", "out")
		require.True(t, errors.Is(err, ErrNotFound), "got %v", err)

		names, err := r.Backend.List("/out")
		require.NoError(t, err)
		require.Empty(t, names)
	})
}

// rawTreeCommit stores a tree payload with a single blob entry named name,
// bypassing entry validation, and a commit pointing at it.
func rawTreeCommit(t *testing.T, r *Repo, name string) object.Hash {
	t.Helper()
	blob := writeBlob(t, r, "payload")
	raw, err := hex.DecodeString(string(blob))
	require.NoError(t, err)
	payload := append([]byte("100644 "+name+"\x00"), raw...)
	tree, err := r.Store.WriteRaw(object.TypeTree, payload)
	require.NoError(t, err)

	kv := object.NewKVLM()
	require.NoError(t, kv.Add("tree", string(tree)))
	kv.Message = "corrupt"
	commit, err := r.Store.Write(object.NewCommit(kv))
	require.NoError(t, err)
	return commit
}

func TestCheckout_RejectsEscapingEntries(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		for _, name := range []string{"../escaped.txt", "..", ".", "a/b.txt"} {
			commit := rawTreeCommit(t, r, name)
			if !r.Backend.IsFolder("/out") {
				require.NoError(t, r.Backend.Mkdir("/out"))
			}

			err := r.Checkout(commit, "out")
			require.True(t, errors.Is(err, object.ErrFormat), "%q: got %v", name, err)
			require.False(t, r.Backend.IsFile("/escaped.txt"), name)
			require.False(t, r.Backend.IsFile("/out/a/b.txt"), name)
			names, err := r.Backend.List("/out")
			require.NoError(t, err)
			require.Empty(t, names, name)
		}
	})
}
