package repo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateTag_Lightweight(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		d := writeBlob(t, r, "salut")

		got, err := r.CreateTag("refs/tags", "another_salutation", string(d), false)
		require.NoError(t, err)
		require.Equal(t, d, got)

		resolved, ok, err := r.ResolveRef("refs/tags", "another_salutation")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, d, resolved)
	})
}

func TestCreateTag_Heavy(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		d := writeBlob(t, r, "salut")

		tagHash, err := r.CreateTag("refs/tags", "another_salutation", string(d), true)
		require.NoError(t, err)
		require.NotEqual(t, d, tagHash)

		resolved, _, err := r.ResolveRef("refs/tags", "another_salutation")
		require.NoError(t, err)
		require.Equal(t, tagHash, resolved)

		tag, err := r.Store.ReadTag(tagHash)
		require.NoError(t, err)
		require.Equal(t, []string{"another_salutation"}, tag.Header("tag"))
		require.Equal(t, []string{"commit"}, tag.Header("type"))
		require.Equal(t, []string{string(d)}, tag.Header("object"))
		require.Equal(t, TagPlaceholderMessage, tag.Message())
		require.Equal(t, []string{"tag", "type", "object"}, tag.KVLM().Keys())
	})
}

func TestCreateTag_PeelsCommitToTree(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		writeFile(t, r, "a.txt", "a")
		require.NoError(t, r.Add("a.txt"))
		commit, err := r.Commit("first")
		require.NoError(t, err)
		c, err := r.Store.ReadCommit(commit)
		require.NoError(t, err)
		tree, err := c.TreeHash()
		require.NoError(t, err)

		got, err := r.CreateTag("refs/tags", "v0", "main", false)
		require.NoError(t, err)
		require.Equal(t, tree, got)
	})
}

func TestCreateTag_InvalidName(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		d := writeBlob(t, r, "x")
		for _, name := range []string{"", "a b", "../x", "x/", "v1.lock"} {
			_, err := r.CreateTag("refs/tags", name, string(d), false)
			require.Error(t, err, "name %q", name)
		}
	})
}

func TestCreateAnnotatedTag(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		require.NoError(t, r.SetConfig("user.name", "Alex Jeon"))
		require.NoError(t, r.SetConfig("user.email", "alex@example.com"))
		writeFile(t, r, "a.txt", "a")
		require.NoError(t, r.Add("a.txt"))
		commit, err := r.Commit("first")
		require.NoError(t, err)

		tagHash, err := r.CreateAnnotatedTag("v1.0", "HEAD", "release one")
		require.NoError(t, err)

		tag, err := r.Store.ReadTag(tagHash)
		require.NoError(t, err)
		target, err := tag.Target()
		require.NoError(t, err)
		require.Equal(t, commit, target)
		require.Equal(t, []string{"commit"}, tag.Header("type"))
		require.Equal(t, "v1.0", tag.Name())
		require.Contains(t, tag.Header("tagger")[0], "Alex Jeon <alex@example.com>")
		require.Equal(t, "release one", tag.Message())

		_, err = r.CreateAnnotatedTag("v1.0", "HEAD", "again")
		require.Error(t, err)

		_, err = r.CreateAnnotatedTag("v2", "HEAD", "  ")
		require.Error(t, err)

		names, err := r.ListTags()
		require.NoError(t, err)
		require.Equal(t, []string{"v1.0"}, names)

		peeled, err := r.PeelToCommit("v1.0")
		require.NoError(t, err)
		require.Equal(t, commit, peeled)
	})
}
