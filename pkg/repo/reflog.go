package repo

import (
	"bufio"
	"bytes"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"emperror.dev/errors"

	"github.com/odvcencio/tig/pkg/object"
	"github.com/odvcencio/tig/pkg/storage"
)

const zeroHash = "0000000000000000000000000000000000000000"

// ReflogEntry is one recorded update of a reference.
type ReflogEntry struct {
	Ref       string
	OldHash   object.Hash
	NewHash   object.Hash
	Timestamp int64
	Reason    string
}

// now is replaced in tests.
var now = time.Now

func (r *Repo) appendReflog(ref string, oldHash, newHash object.Hash, reason string) error {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	if strings.TrimSpace(reason) == "" {
		reason = "update"
	}

	logPath := r.gitPath("logs", ref)
	if err := storage.MkdirAll(r.Backend, path.Dir(logPath)); err != nil {
		return errors.WrapIf(err, "reflog mkdir")
	}

	old := string(oldHash)
	if strings.TrimSpace(old) == "" {
		old = zeroHash
	}
	newVal := string(newHash)
	if strings.TrimSpace(newVal) == "" {
		newVal = zeroHash
	}
	line := fmt.Sprintf("%s %s %d %s\n", old, newVal, now().Unix(), reason)

	existing, err := r.Backend.Get(logPath)
	if err != nil && !errors.Is(err, storage.ErrNotExist) {
		return errors.WrapIf(err, "reflog read")
	}
	if err := r.Backend.Set(logPath, append(existing, line...), true); err != nil {
		return errors.WrapIf(err, "reflog write")
	}
	return nil
}

// ReadReflog returns the recorded updates of ref, newest first. An empty ref
// or "HEAD" selects the branch HEAD points at, and a bare name selects
// refs/heads/<name>. A limit of zero or less returns every entry.
func (r *Repo) ReadReflog(ref string, limit int) ([]ReflogEntry, error) {
	refName, err := r.resolveReflogRefName(ref)
	if err != nil {
		return nil, err
	}

	data, err := r.Backend.Get(r.gitPath("logs", refName))
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.WrapIf(err, "read reflog")
	}

	var entries []ReflogEntry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 4)
		if len(parts) < 4 {
			continue
		}
		ts, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, ReflogEntry{
			Ref:       refName,
			OldHash:   object.Hash(parts[0]),
			NewHash:   object.Hash(parts[1]),
			Timestamp: ts,
			Reason:    parts[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapIf(err, "read reflog")
	}

	// Return newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (r *Repo) resolveReflogRefName(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == "HEAD" {
		head, err := r.Head()
		if err == nil && strings.HasPrefix(head, "refs/") {
			return head, nil
		}
		return "HEAD", nil
	}
	if strings.HasPrefix(ref, "refs/") {
		return ref, validateRefPath(ref)
	}
	return "refs/heads/" + ref, validateRefPath("refs/heads/" + ref)
}
