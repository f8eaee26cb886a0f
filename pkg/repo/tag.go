package repo

import (
	"path"
	"sort"
	"strings"

	"emperror.dev/errors"

	"github.com/odvcencio/tig/pkg/object"
)

// TagPlaceholderMessage is the message stored in tag objects made by
// CreateTag.
const TagPlaceholderMessage = "Some tag object"

// CreateTag points namespace/name (relative to .git, usually "refs/tags")
// at the object refName resolves to through FindObject. With heavy set, a
// tag object carrying the tag, type and object headers is written first and
// the reference points at it instead. It returns the digest the new
// reference holds.
func (r *Repo) CreateTag(namespace, name, refName string, heavy bool) (object.Hash, error) {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return "", errors.WrapIf(err, "create tag")
	}
	target, err := r.FindObject(refName)
	if err != nil {
		return "", errors.WrapIff(err, "create tag %q", name)
	}

	refHash := target
	if heavy {
		kv := object.NewKVLM()
		if err := errors.Combine(
			kv.Add("tag", name),
			kv.Add("type", string(object.TypeCommit)),
			kv.Add("object", string(target)),
		); err != nil {
			return "", errors.WrapIff(err, "create tag %q", name)
		}
		kv.Message = TagPlaceholderMessage
		refHash, err = r.Store.Write(object.NewTag(kv))
		if err != nil {
			return "", errors.WrapIff(err, "create tag %q: write tag object", name)
		}
	}

	if err := r.CreateRef(namespace, name, refHash); err != nil {
		return "", errors.WrapIff(err, "create tag %q", name)
	}
	return refHash, nil
}

// CreateAnnotatedTag creates refs/tags/<name> pointing at a new tag object
// for the object target resolves to. Unlike CreateTag the target is not
// peeled, the type header records the target's actual type and a tagger line
// is added. The tag must not exist yet.
func (r *Repo) CreateAnnotatedTag(name, target, message string) (object.Hash, error) {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return "", errors.WrapIf(err, "create annotated tag")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("create annotated tag: message is required")
	}

	targetHash, err := r.ResolveName(target)
	if err != nil {
		return "", errors.WrapIff(err, "create annotated tag %q", name)
	}
	targetType, _, err := r.Store.ReadRaw(targetHash)
	if err != nil {
		return "", errors.WrapIff(err, "create annotated tag: read target %s", targetHash)
	}
	tagger, err := r.Signature(now())
	if err != nil {
		return "", errors.WrapIf(err, "create annotated tag")
	}

	kv := object.NewKVLM()
	if err := errors.Combine(
		kv.Add("object", string(targetHash)),
		kv.Add("type", string(targetType)),
		kv.Add("tag", name),
		kv.Add("tagger", tagger),
	); err != nil {
		return "", errors.WrapIf(err, "create annotated tag")
	}
	kv.Message = message
	tagHash, err := r.Store.Write(object.NewTag(kv))
	if err != nil {
		return "", errors.WrapIf(err, "create annotated tag: write tag object")
	}

	if err := r.UpdateRef(path.Join("refs/tags", name), tagHash, ""); err != nil {
		if errors.Is(err, ErrRefCASMismatch) {
			return "", errors.Errorf("create annotated tag: tag %q already exists", name)
		}
		return "", errors.WrapIf(err, "create annotated tag")
	}
	return tagHash, nil
}

// ListTags lists tag names sorted alphabetically.
func (r *Repo) ListTags() ([]string, error) {
	refs, err := r.GetAllReferences("refs/tags")
	if err != nil {
		return nil, errors.WrapIf(err, "list tags")
	}

	names := make([]string, 0, len(refs))
	for full := range refs {
		names = append(names, strings.TrimPrefix(full, "refs/tags/"))
	}
	sort.Strings(names)
	return names, nil
}

func validateTagName(name string) error {
	if name == "" {
		return errors.WithDetails(ErrInvalidRefName, "reason", "tag name is required")
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return errors.WithDetails(ErrInvalidRefName, "name", name)
	}
	return validateRefPath(name)
}
