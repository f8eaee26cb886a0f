package repo

import (
	"fmt"
	"strings"

	"emperror.dev/errors"

	"github.com/odvcencio/tig/pkg/object"
)

// ErrNotFound is returned for names, references and objects that do not exist.
const ErrNotFound = object.ErrNotFound

const (
	ErrAmbiguousName      = errors.Sentinel("ambiguous name")
	ErrNotEmpty           = errors.Sentinel("target is not an empty folder")
	ErrPrecondition       = errors.Sentinel("precondition failed")
	ErrCyclicReference    = errors.Sentinel("cyclic reference")
	ErrNotAFile           = errors.Sentinel("not a regular file")
	ErrOutsideWorktree    = errors.Sentinel("path is outside the working tree")
	ErrAlreadyInitialized = errors.Sentinel("repository already exists")
	ErrNotARepository     = errors.Sentinel("not a tig repository")
	ErrInvalidRefName     = errors.Sentinel("invalid reference name")
	ErrRefCASMismatch     = errors.Sentinel("ref compare-and-swap mismatch")
	ErrNothingStaged      = errors.Sentinel("nothing staged")
	ErrRefUpdatedNoReflog = errors.Sentinel("ref updated but reflog append failed")
	ErrUnknownConfigKey   = errors.Sentinel("invalid config key")
	ErrPathConflict       = errors.Sentinel("path is both a file and a directory")
)

// MaxRefDepth bounds the number of symbolic hops followed while resolving a
// reference.
const MaxRefDepth = 16

// AmbiguousNameError is returned when a name matches more than one object.
type AmbiguousNameError struct {
	Name       string
	Candidates []object.Hash
}

func (e *AmbiguousNameError) Error() string {
	hs := make([]string, len(e.Candidates))
	for i, h := range e.Candidates {
		hs[i] = string(h)
	}
	return fmt.Sprintf("%s %q: candidates %s", ErrAmbiguousName, e.Name, strings.Join(hs, ", "))
}

func (e *AmbiguousNameError) Is(target error) bool {
	return target == ErrAmbiguousName
}

// CyclicReferenceError is returned when a chain of symbolic references loops
// or exceeds MaxRefDepth.
type CyclicReferenceError struct {
	Chain []string
}

func (e *CyclicReferenceError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCyclicReference, strings.Join(e.Chain, " -> "))
}

func (e *CyclicReferenceError) Is(target error) bool {
	return target == ErrCyclicReference
}

// RefUpdateReflogError indicates the ref update succeeded, but appending
// the corresponding reflog entry failed.
type RefUpdateReflogError struct {
	Ref     string
	OldHash object.Hash
	NewHash object.Hash
	Err     error
}

func (e *RefUpdateReflogError) Error() string {
	return fmt.Sprintf(
		"update ref %q: %s (old=%s new=%s): %v",
		e.Ref,
		ErrRefUpdatedNoReflog,
		e.OldHash,
		e.NewHash,
		e.Err,
	)
}

func (e *RefUpdateReflogError) Unwrap() error {
	return e.Err
}

func (e *RefUpdateReflogError) Is(target error) bool {
	return target == ErrRefUpdatedNoReflog
}
