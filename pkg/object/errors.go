package object

import (
	"fmt"

	"emperror.dev/errors"
)

const (
	ErrParse          = errors.Sentinel("malformed key-value message")
	ErrFormat         = errors.Sentinel("malformed object payload")
	ErrNotFound       = errors.Sentinel("object not found")
	ErrUnknownFormat  = errors.Sentinel("unknown object format")
	ErrLengthMismatch = errors.Sentinel("object length mismatch")
	ErrMissingHeader  = errors.Sentinel("missing header")
	ErrInvalidHash    = errors.Sentinel("invalid hash")
	ErrInvalidKey     = errors.Sentinel("invalid header key")
)

// ParseError reports a KVLM line that could not be decoded.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("parse kvlm: %s", e.Reason)
	}
	return fmt.Sprintf("parse kvlm: %s: %q", e.Reason, e.Line)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// FormatError reports a tree payload that violates the entry layout.
type FormatError struct {
	Offset int
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("tree entry at offset %d: %s", e.Offset, e.Reason)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// LengthMismatchError is returned when a stored envelope declares a payload
// size that differs from the bytes that follow it.
type LengthMismatchError struct {
	Hash     Hash
	Declared int
	Actual   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("object %s: length mismatch (header=%d, actual=%d)", e.Hash, e.Declared, e.Actual)
}

func (e *LengthMismatchError) Is(target error) bool {
	return target == ErrLengthMismatch
}
