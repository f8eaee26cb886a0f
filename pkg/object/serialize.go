package object

import (
	"emperror.dev/errors"
)

// Parse builds the object variant for t from its payload. A nil or empty
// payload yields an empty object of that type.
func Parse(t ObjectType, data []byte) (Object, error) {
	switch t {
	case TypeBlob:
		return NewBlob(data), nil
	case TypeTree:
		return ParseTree(data)
	case TypeCommit:
		return ParseCommit(data)
	case TypeTag:
		return ParseTag(data)
	}
	return nil, errors.WithDetails(ErrUnknownFormat, "type", string(t))
}

// ParseCommit decodes a commit payload.
func ParseCommit(data []byte) (*Commit, error) {
	kv, err := ParseKVLM(data)
	if err != nil {
		return nil, errors.WrapIf(err, "parse commit")
	}
	return &Commit{kv: kv}, nil
}

// ParseTag decodes an annotated tag payload.
func ParseTag(data []byte) (*Tag, error) {
	kv, err := ParseKVLM(data)
	if err != nil {
		return nil, errors.WrapIf(err, "parse tag")
	}
	return &Tag{kv: kv}, nil
}
