package object

import (
	"bytes"
	"path"
	"strconv"
	"strings"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"

	"github.com/odvcencio/tig/pkg/storage"
)

// DefaultDir is where a repository keeps its loose objects.
const DefaultDir = ".git/objects"

// Store is a content-addressed object store with a 2-character fan-out
// layout: objects/ab/cdef0123...
type Store struct {
	backend     storage.Backend
	dir         string
	compression Compression
}

// NewStore creates a Store keeping objects below dir in b. Prefix folders
// are created lazily on first write.
func NewStore(b storage.Backend, dir string) *Store {
	return &Store{backend: b, dir: storage.Abs(dir), compression: CompressionZlib}
}

// SetCompression selects the encoding used for subsequent writes.
func (s *Store) SetCompression(c Compression) {
	s.compression = c
}

// Dir returns the folder objects are stored under.
func (s *Store) Dir() string {
	return s.dir
}

// objectPath returns the backend path for a given hash.
func (s *Store) objectPath(h Hash) string {
	return path.Join(s.dir, string(h[:2]), string(h[2:]))
}

// Has reports whether the store contains an object with the given hash.
func (s *Store) Has(h Hash) bool {
	if len(h) != HexSize {
		return false
	}
	return s.backend.IsFile(s.objectPath(h))
}

// Write stores obj and returns its content hash. The stored form is
// "type len\0content", compressed per the store's setting. Writing an object
// that is already present leaves the stored bytes untouched.
func (s *Store) Write(obj Object) (Hash, error) {
	return s.WriteRaw(obj.Type(), obj.Serialize())
}

// WriteRaw stores a payload of the given type without parsing it.
func (s *Store) WriteRaw(t ObjectType, data []byte) (Hash, error) {
	raw := AppendPrefix(make([]byte, 0, len(data)+32), t, len(data))
	raw = append(raw, data...)
	h := HashObject(t, data)

	// Fast path: already exists.
	if s.Has(h) {
		return h, nil
	}

	if err := storage.MkdirAll(s.backend, path.Join(s.dir, string(h[:2]))); err != nil {
		return "", errors.WrapIff(err, "object write %s: mkdir", h)
	}
	encoded, err := compress(s.compression, raw)
	if err != nil {
		return "", errors.WrapIff(err, "object write %s: compress", h)
	}
	if err := s.backend.Set(s.objectPath(h), encoded, false); err != nil {
		return "", errors.WrapIff(err, "object write %s", h)
	}

	logrus.WithFields(logrus.Fields{
		"hash": h,
		"type": t,
		"size": len(data),
	}).Debug("wrote object")
	return h, nil
}

// ReadRaw retrieves an object by hash, returning its type and payload.
func (s *Store) ReadRaw(h Hash) (ObjectType, []byte, error) {
	if len(h) != HexSize {
		return "", nil, errors.WithDetails(ErrInvalidHash, "hash", string(h))
	}
	stored, err := s.backend.Get(s.objectPath(h))
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return "", nil, errors.WithDetails(ErrNotFound, "hash", string(h))
		}
		return "", nil, errors.WrapIff(err, "object read %s", h)
	}
	raw, err := decompress(stored)
	if err != nil {
		return "", nil, errors.WrapIff(err, "object read %s: decompress", h)
	}

	// Parse envelope: "type len\0content"
	sp := bytes.IndexByte(raw, ' ')
	if sp < 0 {
		return "", nil, errors.Errorf("object read %s: invalid format (no space)", h)
	}
	nul := bytes.IndexByte(raw[sp+1:], 0)
	if nul < 0 {
		return "", nil, errors.Errorf("object read %s: invalid format (no NUL)", h)
	}
	nul += sp + 1

	t, err := ParseObjectType(string(raw[:sp]))
	if err != nil {
		return "", nil, errors.WithDetails(err, "hash", string(h))
	}
	lenField := string(raw[sp+1 : nul])
	length, err := strconv.Atoi(lenField)
	if err != nil || length < 0 {
		return "", nil, errors.Errorf("object read %s: invalid length %q", h, lenField)
	}
	content := raw[nul+1:]
	if len(content) != length {
		return "", nil, &LengthMismatchError{Hash: h, Declared: length, Actual: len(content)}
	}
	return t, content, nil
}

// Read retrieves and parses an object by hash.
func (s *Store) Read(h Hash) (Object, error) {
	t, data, err := s.ReadRaw(h)
	if err != nil {
		return nil, err
	}
	obj, err := Parse(t, data)
	if err != nil {
		return nil, errors.WrapIff(err, "object %s", h)
	}
	return obj, nil
}

// ---------------------------------------------------------------------------
// Typed convenience methods
// ---------------------------------------------------------------------------

// ReadBlob reads and deserializes a Blob.
func (s *Store) ReadBlob(h Hash) (*Blob, error) {
	t, data, err := s.ReadRaw(h)
	if err != nil {
		return nil, err
	}
	if t != TypeBlob {
		return nil, typeMismatch(h, t, TypeBlob)
	}
	return NewBlob(data), nil
}

// ReadTree reads and deserializes a Tree.
func (s *Store) ReadTree(h Hash) (*Tree, error) {
	t, data, err := s.ReadRaw(h)
	if err != nil {
		return nil, err
	}
	if t != TypeTree {
		return nil, typeMismatch(h, t, TypeTree)
	}
	tree, err := ParseTree(data)
	if err != nil {
		return nil, errors.WrapIff(err, "object %s", h)
	}
	return tree, nil
}

// ReadCommit reads and deserializes a Commit.
func (s *Store) ReadCommit(h Hash) (*Commit, error) {
	t, data, err := s.ReadRaw(h)
	if err != nil {
		return nil, err
	}
	if t != TypeCommit {
		return nil, typeMismatch(h, t, TypeCommit)
	}
	return ParseCommit(data)
}

// ReadTag reads and deserializes a Tag.
func (s *Store) ReadTag(h Hash) (*Tag, error) {
	t, data, err := s.ReadRaw(h)
	if err != nil {
		return nil, err
	}
	if t != TypeTag {
		return nil, typeMismatch(h, t, TypeTag)
	}
	return ParseTag(data)
}

// FindPrefix returns every stored digest starting with prefix, sorted. The
// prefix must be at least MinPrefixLength hex characters.
func (s *Store) FindPrefix(prefix string) ([]Hash, error) {
	if !IsHexPrefix(prefix) {
		return nil, errors.WithDetails(ErrInvalidHash, "prefix", prefix)
	}
	prefix = strings.ToLower(prefix)
	folder := path.Join(s.dir, prefix[:2])
	if !s.backend.IsFolder(folder) {
		return nil, nil
	}
	names, err := s.backend.List(folder)
	if err != nil {
		return nil, errors.WrapIff(err, "list objects %s", prefix[:2])
	}
	var out []Hash
	for _, name := range names {
		if len(name) == HexSize-2 && strings.HasPrefix(name, prefix[2:]) {
			out = append(out, Hash(prefix[:2]+name))
		}
	}
	return out, nil
}

func typeMismatch(h Hash, got, want ObjectType) error {
	return errors.Errorf("object %s: type mismatch: got %q, want %q", h, got, want)
}
