package repo

import (
	"bufio"
	"bytes"
	"path"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/odvcencio/tig/pkg/storage"
)

// IgnoreFileName is read from the working root by NewIgnoreChecker.
const IgnoreFileName = ".tigignore"

// IgnoreChecker decides which worktree paths Status skips. Rules are kept in
// file order and the last rule that matches a path decides its fate.
type IgnoreChecker struct {
	rules []ignoreRule
}

type ignoreRule struct {
	negate bool
	re     *regexp.Regexp
}

// NewIgnoreChecker returns a checker for the worktree at root in b. The
// metadata folder is always ignored; rules from root/.tigignore are added
// when the file exists.
func NewIgnoreChecker(b storage.Backend, root string) *IgnoreChecker {
	data, err := b.Get(path.Join(storage.Abs(root), IgnoreFileName))
	if err != nil {
		data = nil
	}
	return newIgnoreChecker(data)
}

// NewIgnoreCheckerFromPatterns builds a checker from .tigignore-style lines.
func NewIgnoreCheckerFromPatterns(lines ...string) *IgnoreChecker {
	return newIgnoreChecker([]byte(strings.Join(lines, "\n")))
}

func newIgnoreChecker(data []byte) *IgnoreChecker {
	ic := &IgnoreChecker{}
	ic.rules = append(ic.rules, compileIgnoreRule(GitDirName))

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" || line[0] == '#' {
			continue
		}
		rule := compileIgnoreRule(line)
		if rule.re == nil {
			logrus.WithField("pattern", line).Debug("skipping ignore pattern")
			continue
		}
		ic.rules = append(ic.rules, rule)
	}
	return ic
}

// compileIgnoreRule turns one ignore line into a regexp over slash paths
// relative to the working root. A pattern without an inner slash matches at
// any depth; one with a slash, or a leading one, is anchored at the root. A
// trailing slash is dropped: rules are tested against every ancestor of a
// path, so "build/" and "build" both cover everything below build.
func compileIgnoreRule(line string) ignoreRule {
	var rule ignoreRule
	if rest, ok := strings.CutPrefix(line, "!"); ok {
		rule.negate = true
		line = rest
	}
	line = strings.TrimRight(line, "/")
	anchored := strings.HasPrefix(line, "/")
	line = strings.TrimLeft(line, "/")
	if line == "" {
		return rule
	}
	anchored = anchored || strings.Contains(line, "/")

	var sb strings.Builder
	sb.WriteString("^")
	if !anchored {
		sb.WriteString("(?:.*/)?")
	}
	sb.WriteString(globPattern(line))
	sb.WriteString("$")

	re, err := regexp.Compile(sb.String())
	if err == nil {
		rule.re = re
	}
	return rule
}

// globPattern translates glob syntax into regexp syntax: "**/" spans any
// number of folders, "**" anything, "*" and "?" stay within one component,
// and bracket classes pass through with "!" negation.
func globPattern(glob string) string {
	var sb strings.Builder
	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; {
		case strings.HasPrefix(glob[i:], "**/"):
			sb.WriteString("(?:.*/)?")
			i += 2
		case strings.HasPrefix(glob[i:], "**"):
			sb.WriteString(".*")
			i++
		case c == '*':
			sb.WriteString("[^/]*")
		case c == '?':
			sb.WriteString("[^/]")
		case c == '[':
			end := strings.IndexByte(glob[i+1:], ']')
			if end < 0 {
				sb.WriteString(`\[`)
				continue
			}
			class := glob[i+1 : i+1+end]
			if rest, ok := strings.CutPrefix(class, "!"); ok {
				class = "^" + rest
			}
			sb.WriteString("[" + strings.ReplaceAll(class, `\`, `\\`) + "]")
			i += end + 1
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return sb.String()
}

// IsIgnored reports whether rel, a slash-separated path relative to the
// working root, is ignored either itself or through one of its folders.
func (ic *IgnoreChecker) IsIgnored(rel string) bool {
	rel = strings.Trim(rel, "/")
	if rel == "" {
		return false
	}
	for i := len(ic.rules) - 1; i >= 0; i-- {
		if ic.rules[i].matches(rel) {
			return !ic.rules[i].negate
		}
	}
	return false
}

// matches tests rel and each of its ancestor folders.
func (r ignoreRule) matches(rel string) bool {
	for p := rel; ; {
		if r.re.MatchString(p) {
			return true
		}
		slash := strings.LastIndexByte(p, '/')
		if slash < 0 {
			return false
		}
		p = p[:slash]
	}
}
