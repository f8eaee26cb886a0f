package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/tig/pkg/object"
	"github.com/odvcencio/tig/pkg/storage"
)

// tigRunner runs CLI invocations against one directory with a private tool
// config.
type tigRunner struct {
	dir   string
	extra []string
}

func newRunner(t *testing.T, extra ...string) *tigRunner {
	t.Helper()
	color.NoColor = true
	for _, k := range []string{"TIG_BACKEND", "TIG_JSON_PATH", "TIG_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	return &tigRunner{dir: t.TempDir(), extra: extra}
}

func (r *tigRunner) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	full := append([]string{"-C", r.dir, "--config", filepath.Join(r.dir, "no-such-config.toml")}, r.extra...)
	root.SetArgs(append(full, args...))
	err := root.Execute()
	return out.String(), err
}

func (r *tigRunner) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := r.run(t, args...)
	require.NoError(t, err, "tig %s", strings.Join(args, " "))
	return out
}

func TestCLI_FSWorkflow(t *testing.T) {
	r := newRunner(t)

	out := r.mustRun(t, "init")
	require.Contains(t, out, "initialized empty tig repository")
	_, err := r.run(t, "init")
	require.Error(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(r.dir, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(r.dir, "a.txt"), []byte("alpha\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(r.dir, "docs", "b.md"), []byte("# bravo\n"), 0o644))

	r.mustRun(t, "add", "a.txt", "docs/b.md")
	require.Equal(t, "a.txt\ndocs/b.md\n", r.mustRun(t, "ls-files"))
	long := r.mustRun(t, "ls-files", "--long")
	require.Contains(t, long, "100644 "+string(object.HashObject(object.TypeBlob, []byte("alpha\n"))))
	require.Contains(t, long, "6 B")

	st := r.mustRun(t, "status")
	require.Contains(t, st, "on main (no commits yet)")
	require.Contains(t, st, "changes to be committed:")
	require.Contains(t, st, "docs/b.md")

	_, err = r.run(t, "commit")
	require.Error(t, err, "message is required")
	out = r.mustRun(t, "commit", "-m", "first")
	require.True(t, strings.HasPrefix(out, "[main "), out)

	head := strings.TrimSpace(r.mustRun(t, "rev-parse", "HEAD"))
	require.Equal(t, head[:8]+" first\n", r.mustRun(t, "log", "--oneline"))
	full := r.mustRun(t, "log", "-n", "1")
	require.Contains(t, full, "commit "+head+"\n")
	require.Contains(t, full, "\n    first\n")

	require.Contains(t, r.mustRun(t, "status"), "nothing to commit, working tree clean")
	require.NoError(t, os.WriteFile(filepath.Join(r.dir, "scratch.txt"), []byte("tmp"), 0o644))
	st = r.mustRun(t, "status")
	require.Contains(t, st, "untracked files:\n  scratch.txt")
	require.NoError(t, os.Remove(filepath.Join(r.dir, "scratch.txt")))
	require.Len(t, head, object.HexSize)
	require.Equal(t, head+"\n", r.mustRun(t, "rev-parse", head[:7]))
	require.Equal(t, "commit\n", r.mustRun(t, "cat-file", "-t", "HEAD"))
	require.True(t, strings.HasSuffix(r.mustRun(t, "cat-file", "-p", "HEAD"), "\n\nfirst\n"), "cat-file -p ends with a newline")
	require.Equal(t, "alpha\n", r.mustRun(t, "cat-file", "-p", "HEAD:a.txt"))
	_, err = r.run(t, "cat-file", "HEAD")
	require.Error(t, err, "one of -t or -p is required")

	tree := strings.TrimSpace(r.mustRun(t, "rev-parse", "--peel-tree", "HEAD"))
	require.Equal(t, tree+"\n", r.mustRun(t, "write-tree"))
	require.Equal(t, tree+"\n", r.mustRun(t, "rev-parse", "--object", "HEAD"))

	listing := r.mustRun(t, "ls-tree", "-r", "HEAD")
	lines := strings.Split(strings.TrimSpace(listing), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(lines[1], "040000 tree "), lines[1])
	require.True(t, strings.HasSuffix(lines[2], "\tdocs/b.md"), lines[2])

	blob := strings.TrimSpace(r.mustRun(t, "hash-object", "a.txt"))
	require.Equal(t, string(object.HashObject(object.TypeBlob, []byte("alpha\n"))), blob)

	r.mustRun(t, "tag", "-a", "-m", "release", "v1")
	r.mustRun(t, "tag", "snap")
	require.Equal(t, "snap\nv1\n", r.mustRun(t, "tag"))
	require.Equal(t, head+"\n", r.mustRun(t, "rev-parse", "--peel-commit", "v1"))
	require.Equal(t, tree+"\n", r.mustRun(t, "rev-parse", "snap"), "lightweight tags peel commits to trees")

	r.mustRun(t, "branch", "feature")
	require.Equal(t, "  feature\n* main\n", r.mustRun(t, "branch"))

	refs := r.mustRun(t, "show-ref")
	require.Contains(t, refs, head+" refs/heads/feature\n")
	require.Contains(t, refs, head+" refs/heads/main\n")
	require.Contains(t, refs, tree+" refs/tags/snap\n")

	r.mustRun(t, "checkout", "feature", "restore")
	data, err := os.ReadFile(filepath.Join(r.dir, "restore", "docs", "b.md"))
	require.NoError(t, err)
	require.Equal(t, "# bravo\n", string(data))
	_, err = r.run(t, "checkout", "HEAD", "restore")
	require.Error(t, err, "restore is no longer empty")

	r.mustRun(t, "config", "set", "user.name", "Pat Doe")
	require.Equal(t, "Pat Doe\n", r.mustRun(t, "config", "get", "user.name"))
	_, err = r.run(t, "config", "get", "user.missing")
	require.Error(t, err)

	reflog := r.mustRun(t, "reflog")
	require.Contains(t, reflog, head[:8]+" ")
	require.Contains(t, reflog, "refs/heads/main update")

	r.mustRun(t, "rm", "a.txt")
	require.Equal(t, "docs/b.md\n", r.mustRun(t, "ls-files"))
	r.mustRun(t, "reset", "a.txt")
	require.Equal(t, "a.txt\ndocs/b.md\n", r.mustRun(t, "ls-files"))
	r.mustRun(t, "rm", "a.txt")

	require.Contains(t, r.mustRun(t, "dump"), "/.git/HEAD (")
}

func TestCLI_JSONBackend(t *testing.T) {
	r := newRunner(t, "--backend", "json", "--json-path", "repo.json")
	r.mustRun(t, "init")

	doc := filepath.Join(r.dir, "repo.json")
	b, err := storage.OpenJSON(doc)
	require.NoError(t, err)
	require.NoError(t, b.Set("/hello.txt", []byte("hi there"), true))

	r.mustRun(t, "add", "hello.txt")
	r.mustRun(t, "commit", "-m", "json commit")
	r.mustRun(t, "checkout", "HEAD", "out")

	b, err = storage.OpenJSON(doc)
	require.NoError(t, err)
	data, err := b.Get("/out/hello.txt")
	require.NoError(t, err)
	require.Equal(t, "hi there", string(data))

	dump := r.mustRun(t, "dump")
	require.Contains(t, dump, `"hello.txt"`)
	_, err = os.Stat(filepath.Join(r.dir, ".git"))
	require.True(t, os.IsNotExist(err), "json backend must not touch the filesystem worktree")
}

func TestCLI_Errors(t *testing.T) {
	r := newRunner(t)
	_, err := r.run(t, "ls-files")
	require.Error(t, err, "not a repository")

	r = newRunner(t, "--backend", "sqlite")
	_, err = r.run(t, "init")
	require.Error(t, err)

	r = newRunner(t)
	r.mustRun(t, "init")
	_, err = r.run(t, "rev-parse", "nothing-here")
	require.Error(t, err)
	_, err = r.run(t, "add", "missing.txt")
	require.Error(t, err)
}
