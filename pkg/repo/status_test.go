package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odvcencio/tig/pkg/storage"
)

func statusMap(t *testing.T, r *Repo) map[string][2]FileStatus {
	t.Helper()
	entries, err := r.Status()
	require.NoError(t, err)
	out := make(map[string][2]FileStatus, len(entries))
	for _, e := range entries {
		out[e.Path] = [2]FileStatus{e.IndexStatus, e.WorkStatus}
	}
	return out
}

func TestStatus_FreshRepo(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		require.Empty(t, statusMap(t, r))

		writeFile(t, r, "new.txt", "n")
		require.Equal(t, map[string][2]FileStatus{
			"new.txt": {StatusUntracked, StatusUntracked},
		}, statusMap(t, r))

		require.NoError(t, r.Add("new.txt"))
		require.Equal(t, map[string][2]FileStatus{
			"new.txt": {StatusNew, StatusClean},
		}, statusMap(t, r))
	})
}

func TestStatus_AfterCommit(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		writeFile(t, r, "keep.txt", "keep")
		writeFile(t, r, "edit.txt", "before")
		writeFile(t, r, "gone.txt", "gone")
		writeFile(t, r, "dir/unstaged.txt", "u")
		require.NoError(t, r.Add("keep.txt", "edit.txt", "gone.txt", "dir/unstaged.txt"))
		_, err := r.Commit("base")
		require.NoError(t, err)
		require.Empty(t, statusMap(t, r), "clean after commit")

		writeFile(t, r, "edit.txt", "after, and longer")
		require.NoError(t, r.Add("edit.txt"))
		writeFile(t, r, "dir/unstaged.txt", "changed")
		require.NoError(t, r.Remove("gone.txt"))
		writeFile(t, r, "extra.txt", "x")

		require.Equal(t, map[string][2]FileStatus{
			"edit.txt":         {StatusModified, StatusClean},
			"dir/unstaged.txt": {StatusClean, StatusDirty},
			"gone.txt":         {StatusDeleted, StatusUntracked},
			"extra.txt":        {StatusUntracked, StatusUntracked},
		}, statusMap(t, r))
	})
}

func TestStatus_DeletedFromWorktree(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(storage.NewFS(dir), "/")
	require.NoError(t, err)
	writeFile(t, r, "a.txt", "a")
	require.NoError(t, r.Add("a.txt"))
	require.NoError(t, os.Remove(filepath.Join(dir, "a.txt")))

	require.Equal(t, map[string][2]FileStatus{
		"a.txt": {StatusNew, StatusDeleted},
	}, statusMap(t, r))
}

func TestStatus_HonorsIgnoreFile(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		writeFile(t, r, IgnoreFileName, "*.log\nbuild/\n")
		writeFile(t, r, "app.log", "noise")
		writeFile(t, r, "build/out.bin", "bin")
		writeFile(t, r, "main.go", "package main")

		require.Equal(t, map[string][2]FileStatus{
			IgnoreFileName: {StatusUntracked, StatusUntracked},
			"main.go":      {StatusUntracked, StatusUntracked},
		}, statusMap(t, r))
	})
}

func TestFileStatus_String(t *testing.T) {
	require.Equal(t, "dirty", StatusDirty.String())
	require.Equal(t, "untracked", StatusUntracked.String())
	require.Equal(t, "unknown", FileStatus(99).String())
}
