package object

import (
	"emperror.dev/errors"
)

// Hash is a 40-character lowercase hex-encoded SHA-1 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
	TypeTag    ObjectType = "tag"
)

// ParseObjectType maps a type tag to its ObjectType.
func ParseObjectType(s string) (ObjectType, error) {
	switch t := ObjectType(s); t {
	case TypeBlob, TypeTree, TypeCommit, TypeTag:
		return t, nil
	}
	return "", errors.WithDetails(ErrUnknownFormat, "type", s)
}

// Object is one of *Blob, *Tree, *Commit or *Tag.
type Object interface {
	Type() ObjectType
	// Serialize returns the payload bytes, without the type/length envelope.
	Serialize() []byte

	object()
}

// Blob holds raw file data.
type Blob struct {
	data []byte
}

// NewBlob returns a blob holding a copy of data.
func NewBlob(data []byte) *Blob {
	return &Blob{data: clone(data)}
}

func (b *Blob) Type() ObjectType  { return TypeBlob }
func (b *Blob) Serialize() []byte { return clone(b.data) }
func (b *Blob) object()           {}

// Data returns the blob content.
func (b *Blob) Data() []byte {
	return b.data
}

// Commit is a KVLM payload tagged as a commit. Header presence is not
// validated; accessors report ErrMissingHeader instead.
type Commit struct {
	kv *KVLM
}

// NewCommit returns a commit holding a copy of kv.
func NewCommit(kv *KVLM) *Commit {
	return &Commit{kv: kv.Clone()}
}

func (c *Commit) Type() ObjectType  { return TypeCommit }
func (c *Commit) Serialize() []byte { return c.kv.Bytes() }
func (c *Commit) object()           {}

// KVLM returns a copy of the commit's headers and message.
func (c *Commit) KVLM() *KVLM { return c.kv.Clone() }

// Header returns every value recorded for key, in order.
func (c *Commit) Header(key string) []string { return c.kv.Get(key) }

// Message returns the free-text message.
func (c *Commit) Message() string { return c.kv.Message }

// TreeHash returns the digest in the tree header.
func (c *Commit) TreeHash() (Hash, error) {
	return headerHash(c.kv, "tree")
}

// Parents returns the digests in the parent headers.
func (c *Commit) Parents() []Hash {
	var out []Hash
	for _, p := range c.kv.Get("parent") {
		out = append(out, Hash(p))
	}
	return out
}

// Tag is a KVLM payload tagged as an annotated tag.
type Tag struct {
	kv *KVLM
}

// NewTag returns a tag holding a copy of kv.
func NewTag(kv *KVLM) *Tag {
	return &Tag{kv: kv.Clone()}
}

func (t *Tag) Type() ObjectType  { return TypeTag }
func (t *Tag) Serialize() []byte { return t.kv.Bytes() }
func (t *Tag) object()           {}

func (t *Tag) KVLM() *KVLM                { return t.kv.Clone() }
func (t *Tag) Header(key string) []string { return t.kv.Get(key) }
func (t *Tag) Message() string            { return t.kv.Message }

// Name returns the tag header.
func (t *Tag) Name() string {
	v, _ := t.kv.First("tag")
	return v
}

// Target returns the digest in the object header.
func (t *Tag) Target() (Hash, error) {
	return headerHash(t.kv, "object")
}

func headerHash(kv *KVLM, key string) (Hash, error) {
	v, ok := kv.First(key)
	if !ok {
		return "", errors.WithDetails(ErrMissingHeader, "header", key)
	}
	return ParseHash(v)
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
