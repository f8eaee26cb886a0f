package object

import (
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"

	"emperror.dev/errors"
	"github.com/pjbgf/sha1cd"
)

const (
	// HashSize is the length of a raw digest.
	HashSize = 20
	// HexSize is the length of a hex-encoded digest.
	HexSize = 2 * HashSize
	// MinPrefixLength is the shortest accepted abbreviated digest.
	MinPrefixLength = 4
)

var prefixPattern = regexp.MustCompile(`^[0-9A-Fa-f]{4,40}$`)

// IsHexPrefix reports whether s looks like a full or abbreviated digest.
func IsHexPrefix(s string) bool {
	return prefixPattern.MatchString(s)
}

// ParseHash validates a full hex digest and returns it lowercased.
func ParseHash(s string) (Hash, error) {
	s = strings.TrimSpace(s)
	if len(s) != HexSize {
		return "", errors.WithDetails(ErrInvalidHash, "hash", s)
	}
	if _, err := hex.DecodeString(s); err != nil {
		return "", errors.WithDetails(ErrInvalidHash, "hash", s)
	}
	return Hash(strings.ToLower(s)), nil
}

// AppendPrefix appends the "type len\0" envelope header to dst.
func AppendPrefix(dst []byte, t ObjectType, n int) []byte {
	dst = append(dst, string(t)...)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, int64(n), 10)
	return append(dst, 0)
}

// HashObject computes the SHA-1 of the envelope "type len\0content".
func HashObject(t ObjectType, data []byte) Hash {
	h := sha1cd.New()
	h.Write(AppendPrefix(nil, t, len(data)))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// Sum returns the digest obj would be stored under.
func Sum(obj Object) Hash {
	return HashObject(obj.Type(), obj.Serialize())
}
