package object

import (
	"bytes"
	"encoding/hex"
	"sort"
	"strings"

	"emperror.dev/errors"
)

const (
	// Tree mode constants in their canonical on-disk spelling.
	ModeTree       = "40000"
	ModeFile       = "100644"
	ModeExecutable = "100755"
	ModeSymlink    = "120000"
	ModeGitlink    = "160000"
)

// EntryKind is the kind of object a tree entry points at, derived from its mode.
type EntryKind string

const (
	KindTree    EntryKind = "tree"
	KindBlob    EntryKind = "blob"
	KindCommit  EntryKind = "commit"
	KindUnknown EntryKind = ""
)

// TreeEntry is one entry in a tree object. Mode is always six characters in
// memory: five-character modes such as "40000" are left-padded with a space.
type TreeEntry struct {
	Mode string
	Path string
	Hash Hash
}

// Kind classifies the entry by the first two digits of its zero-padded mode.
func (e TreeEntry) Kind() EntryKind {
	mode := strings.ReplaceAll(e.Mode, " ", "0")
	if len(mode) < 2 {
		return KindUnknown
	}
	switch mode[:2] {
	case "04":
		return KindTree
	case "10", "12":
		return KindBlob
	case "16":
		return KindCommit
	}
	return KindUnknown
}

// IsTree reports whether the entry names a subtree.
func (e TreeEntry) IsTree() bool {
	return e.Kind() == KindTree
}

// WireMode returns the mode as written to disk, without padding.
func (e TreeEntry) WireMode() string {
	return strings.TrimLeft(e.Mode, " ")
}

// sortKey orders subtrees as if their name ended in '/'.
func (e TreeEntry) sortKey() string {
	if e.IsTree() {
		return e.Path + "/"
	}
	return e.Path
}

// Tree holds the entries of a directory snapshot.
type Tree struct {
	entries []TreeEntry
}

// NewTree validates entries and returns a tree holding them.
func NewTree(entries []TreeEntry) (*Tree, error) {
	out := make([]TreeEntry, 0, len(entries))
	for _, e := range entries {
		norm, err := normalizeEntry(e)
		if err != nil {
			return nil, err
		}
		out = append(out, norm)
	}
	return &Tree{entries: out}, nil
}

func (t *Tree) Type() ObjectType { return TypeTree }
func (t *Tree) object()          {}

// Entries returns the entries in storage order.
func (t *Tree) Entries() []TreeEntry {
	out := make([]TreeEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Serialize encodes the entries in canonical order.
func (t *Tree) Serialize() []byte {
	return encodeTreeEntries(t.entries)
}

// encodeTreeEntries sorts a copy of entries and encodes each as
// "<mode> <path>\0<20 raw digest bytes>". Entries come from NewTree or
// ParseTree, so every hash is already 40 hex characters.
func encodeTreeEntries(entries []TreeEntry) []byte {
	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].sortKey() < sorted[j].sortKey()
	})

	var buf bytes.Buffer
	for _, e := range sorted {
		buf.WriteString(e.WireMode())
		buf.WriteByte(' ')
		buf.WriteString(e.Path)
		buf.WriteByte(0)
		raw, _ := hex.DecodeString(string(e.Hash))
		buf.Write(raw)
	}
	return buf.Bytes()
}

// DecodeTreeEntry decodes the entry starting at offset and returns it along
// with the offset of the next entry.
func DecodeTreeEntry(data []byte, offset int) (TreeEntry, int, error) {
	sp := bytes.IndexByte(data[offset:], ' ')
	if sp < 0 {
		return TreeEntry{}, 0, &FormatError{Offset: offset, Reason: "missing mode separator"}
	}
	if sp != 5 && sp != 6 {
		return TreeEntry{}, 0, &FormatError{Offset: offset, Reason: "mode must be 5 or 6 bytes"}
	}
	mode := string(data[offset : offset+sp])
	if sp == 5 {
		mode = " " + mode
	}

	pathStart := offset + sp + 1
	nul := bytes.IndexByte(data[pathStart:], 0)
	if nul < 0 {
		return TreeEntry{}, 0, &FormatError{Offset: offset, Reason: "missing path terminator"}
	}
	path := string(data[pathStart : pathStart+nul])

	hashStart := pathStart + nul + 1
	if len(data)-hashStart < HashSize {
		return TreeEntry{}, 0, &FormatError{Offset: offset, Reason: "truncated digest"}
	}
	h := Hash(hex.EncodeToString(data[hashStart : hashStart+HashSize]))

	return TreeEntry{Mode: mode, Path: path, Hash: h}, hashStart + HashSize, nil
}

// ParseTree decodes a tree payload, preserving storage order.
func ParseTree(data []byte) (*Tree, error) {
	var entries []TreeEntry
	for pos := 0; pos < len(data); {
		e, next, err := DecodeTreeEntry(data, pos)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
		pos = next
	}
	return &Tree{entries: entries}, nil
}

func normalizeEntry(e TreeEntry) (TreeEntry, error) {
	mode := strings.TrimLeft(e.Mode, " ")
	if len(mode) != 5 && len(mode) != 6 || strings.Trim(mode, "01234567") != "" {
		return TreeEntry{}, errors.WithDetails(ErrFormat, "reason", "invalid mode", "mode", e.Mode)
	}
	if len(mode) == 5 {
		mode = " " + mode
	}
	if err := ValidateEntryPath(e.Path); err != nil {
		return TreeEntry{}, err
	}
	h, err := ParseHash(string(e.Hash))
	if err != nil {
		return TreeEntry{}, err
	}
	return TreeEntry{Mode: mode, Path: e.Path, Hash: h}, nil
}

// ValidateEntryPath checks that p is a single path component. Decoded trees
// are not validated, so anything that writes entries out to a folder must
// call it first.
func ValidateEntryPath(p string) error {
	if p == "" || p == "." || p == ".." || strings.ContainsAny(p, "/\x00") {
		return errors.WithDetails(ErrFormat, "reason", "invalid path", "path", p)
	}
	return nil
}
