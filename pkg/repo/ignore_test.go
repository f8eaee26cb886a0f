package repo

import (
	"testing"

	"github.com/odvcencio/tig/pkg/storage"
)

func TestIgnore_GitDirAlwaysIgnored(t *testing.T) {
	ic := NewIgnoreChecker(storage.NewFS(t.TempDir()), "/")

	for _, p := range []string{".git", ".git/config", ".git/objects/ab/cdef"} {
		if !ic.IsIgnored(p) {
			t.Errorf("expected %s to be ignored", p)
		}
	}
	for _, p := range []string{"main.go", "src/util.go", ".gitkeep"} {
		if ic.IsIgnored(p) {
			t.Errorf("expected %s to NOT be ignored", p)
		}
	}
}

func TestIgnore_ReadsIgnoreFileFromBackend(t *testing.T) {
	forEachBackend(t, func(t *testing.T, r *Repo) {
		writeFile(t, r, IgnoreFileName, "# build output\n*.o\nbuild/\n")

		ic := NewIgnoreChecker(r.Backend, r.RootDir)
		if !ic.IsIgnored("src/foo.o") {
			t.Error("expected src/foo.o to be ignored")
		}
		if !ic.IsIgnored("build/out/bin") {
			t.Error("expected build/out/bin to be ignored")
		}
		if ic.IsIgnored("src/foo.go") {
			t.Error("expected src/foo.go to NOT be ignored")
		}
	})
}

func TestIgnore_Patterns(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		want     bool
	}{
		{"glob", []string{"*.log"}, "debug.log", true},
		{"glob miss", []string{"*.log"}, "debug.txt", false},
		{"glob in subdir", []string{"*.o"}, "src/foo.o", true},
		{"dir pattern", []string{"build/"}, "build/output.o", true},
		{"dir pattern nested", []string{"build/"}, "build/sub/file.txt", true},
		{"dir pattern is not a base match", []string{"build/"}, "src/build.go", false},
		{"negation", []string{"*.log", "!important.log"}, "important.log", false},
		{"negation order", []string{"!important.log", "*.log"}, "important.log", true},
		{"comment", []string{"# *.go"}, "main.go", false},
		{"comment text", []string{"# note"}, "# note", false},
		{"anchored", []string{"/vendor"}, "vendor", true},
		{"anchored nested", []string{"/vendor"}, "lib/vendor/x.go", false},
		{"ignored folder contents", []string{"vendor"}, "lib/vendor/x.go", true},
		{"path literal", []string{"docs/draft.md"}, "docs/draft.md", true},
		{"path literal elsewhere", []string{"docs/draft.md"}, "other/docs/draft.md", false},
		{"path wildcard", []string{"docs/*.md"}, "docs/a.md", true},
		{"path wildcard depth", []string{"docs/*.md"}, "docs/sub/a.md", false},
		{"globstar", []string{"**/tmp/*.txt"}, "a/b/tmp/x.txt", true},
		{"globstar root", []string{"**/tmp/*.txt"}, "tmp/x.txt", true},
		{"globstar suffix", []string{"logs/**"}, "logs/2024/app.log", true},
		{"question mark", []string{"file?.txt"}, "file1.txt", true},
		{"question mark slash", []string{"a?b"}, "a/b", false},
		{"class", []string{"file[0-9].txt"}, "file7.txt", true},
		{"negated class", []string{"[!a]*.txt"}, "a.txt", false},
		{"negated class hit", []string{"[!a]*.txt"}, "b.txt", true},
		{"re-include under folder", []string{"build/", "!build/keep.txt"}, "build/keep.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ic := NewIgnoreCheckerFromPatterns(tt.patterns...)
			if got := ic.IsIgnored(tt.path); got != tt.want {
				t.Errorf("IsIgnored(%q) with %q = %v, want %v", tt.path, tt.patterns, got, tt.want)
			}
		})
	}
}
