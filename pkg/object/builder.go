package object

import "sort"

// TreeBuilder collects entries for a tree before it is written. Inserting a
// path that is already present replaces the old entry.
type TreeBuilder struct {
	entries map[string]TreeEntry
}

// NewTreeBuilder returns a builder seeded with the entries of base, which
// may be nil.
func NewTreeBuilder(base *Tree) *TreeBuilder {
	b := &TreeBuilder{entries: make(map[string]TreeEntry)}
	if base != nil {
		for _, e := range base.entries {
			b.entries[e.Path] = e
		}
	}
	return b
}

// Insert validates e and adds it, replacing any entry with the same path.
func (b *TreeBuilder) Insert(e TreeEntry) error {
	norm, err := normalizeEntry(e)
	if err != nil {
		return err
	}
	b.entries[norm.Path] = norm
	return nil
}

// Remove drops the entry named path, if any.
func (b *TreeBuilder) Remove(path string) {
	delete(b.entries, path)
}

func (b *TreeBuilder) Len() int {
	return len(b.entries)
}

// Tree returns an immutable tree of the current entries in canonical order.
// The builder can keep being used afterwards.
func (b *TreeBuilder) Tree() *Tree {
	out := make([]TreeEntry, 0, len(b.entries))
	for _, e := range b.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].sortKey() < out[j].sortKey()
	})
	return &Tree{entries: out}
}
