// Package index reads and writes the binary staging area ("DIRC" version 2).
//
// The file starts with a 12-byte header:
//
//	4 bytes  signature "DIRC"
//	4 bytes  version (2)
//	4 bytes  number of entries
//
// followed by the entries. Each entry is a 62-byte fixed block (timestamps,
// stat fields, mode, size, raw digest, flags), the path name, a NUL and zero
// padding up to a multiple of 8 bytes counted from the start of the entry.
// No extensions or trailing checksum are written or expected.
package index

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"sort"

	"emperror.dev/errors"

	"github.com/odvcencio/tig/pkg/object"
)

const (
	Signature = "DIRC"
	Version   = 2

	// MaxNameLength is the largest length the flags field can record.
	// Longer names store MaxNameLength and are found by their terminator.
	MaxNameLength = 0xFFF

	headerSize     = 12
	entryFixedSize = 62
)

// Mode types stored in the high 4 bits of the mode field.
const (
	ModeRegular uint8 = 0b1000
	ModeSymlink uint8 = 0b1010
	ModeGitlink uint8 = 0b1110
)

const (
	flagAssumeValid = 1 << 15
	flagExtended    = 1 << 14
	flagStageShift  = 12
	flagStageMask   = 0b11 << flagStageShift
	flagNameMask    = 0xFFF
)

// Timestamp is a seconds/nanoseconds pair as stored in an entry.
type Timestamp struct {
	Seconds     uint32
	Nanoseconds uint32
}

// Entry is one staged file.
type Entry struct {
	CTime       Timestamp
	MTime       Timestamp
	Dev         uint32
	Ino         uint32
	ModeType    uint8
	ModePerms   uint16 // low 12 bits
	UID         uint32
	GID         uint32
	Size        uint32
	Hash        object.Hash
	AssumeValid bool
	Stage       uint8 // 0-3
	Name        string
}

// Mode returns the packed 16-bit mode field.
func (e Entry) Mode() uint16 {
	return uint16(e.ModeType)<<12 | e.ModePerms&0o7777
}

// Index is the decoded staging area.
type Index struct {
	Version uint32
	Entries []Entry
}

// New returns an empty version 2 index.
func New() *Index {
	return &Index{Version: Version}
}

// Sort orders entries by name, then stage.
func (idx *Index) Sort() {
	sort.SliceStable(idx.Entries, func(i, j int) bool {
		a, b := idx.Entries[i], idx.Entries[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Stage < b.Stage
	})
}

// Find returns the position of the stage-0 entry named name.
func (idx *Index) Find(name string) (int, bool) {
	for i, e := range idx.Entries {
		if e.Name == name && e.Stage == 0 {
			return i, true
		}
	}
	return -1, false
}

// Decode parses an index buffer. Entries are returned in stored order.
func Decode(data []byte) (*Index, error) {
	if len(data) < headerSize {
		return nil, formatErrorf(0, "short header (%d bytes)", len(data))
	}
	if string(data[:4]) != Signature {
		return nil, formatErrorf(0, "invalid signature %q", data[:4])
	}
	version := binary.BigEndian.Uint32(data[4:8])
	if version != Version {
		return nil, formatErrorf(4, "unsupported version %d", version)
	}
	count := binary.BigEndian.Uint32(data[8:12])

	idx := &Index{Version: version}
	if count > 0 {
		idx.Entries = make([]Entry, 0, min(int(count), len(data)/entryFixedSize))
	}
	pos := headerSize
	for i := uint32(0); i < count; i++ {
		e, next, err := decodeEntry(data, pos)
		if err != nil {
			return nil, errors.WrapIff(err, "entry %d", i)
		}
		idx.Entries = append(idx.Entries, e)
		pos = next
	}
	return idx, nil
}

func decodeEntry(data []byte, start int) (Entry, int, error) {
	if len(data)-start < entryFixedSize {
		return Entry{}, 0, formatErrorf(start, "truncated entry")
	}
	b := data[start : start+entryFixedSize]
	be := binary.BigEndian

	var e Entry
	e.CTime = Timestamp{be.Uint32(b[0:4]), be.Uint32(b[4:8])}
	e.MTime = Timestamp{be.Uint32(b[8:12]), be.Uint32(b[12:16])}
	e.Dev = be.Uint32(b[16:20])
	e.Ino = be.Uint32(b[20:24])
	if reserved := be.Uint16(b[24:26]); reserved != 0 {
		return Entry{}, 0, formatErrorf(start+24, "reserved mode bits set (%#x)", reserved)
	}
	mode := be.Uint16(b[26:28])
	e.ModeType = uint8(mode >> 12)
	switch e.ModeType {
	case ModeRegular, ModeSymlink, ModeGitlink:
	default:
		return Entry{}, 0, formatErrorf(start+26, "invalid mode type %#b", e.ModeType)
	}
	e.ModePerms = mode & 0o7777
	e.UID = be.Uint32(b[28:32])
	e.GID = be.Uint32(b[32:36])
	e.Size = be.Uint32(b[36:40])
	e.Hash = object.Hash(hex.EncodeToString(b[40:60]))

	flags := be.Uint16(b[60:62])
	if flags&flagExtended != 0 {
		return Entry{}, 0, formatErrorf(start+60, "extended flag not supported")
	}
	e.AssumeValid = flags&flagAssumeValid != 0
	e.Stage = uint8((flags & flagStageMask) >> flagStageShift)
	nameLen := int(flags & flagNameMask)

	nameStart := start + entryFixedSize
	var nameEnd int
	if nameLen < MaxNameLength {
		nameEnd = nameStart + nameLen
		if nameEnd >= len(data) {
			return Entry{}, 0, formatErrorf(nameStart, "truncated name")
		}
		if data[nameEnd] != 0 {
			return Entry{}, 0, formatErrorf(nameEnd, "name not NUL-terminated")
		}
	} else {
		scanFrom := nameStart + MaxNameLength
		if scanFrom > len(data) {
			return Entry{}, 0, formatErrorf(nameStart, "truncated long name")
		}
		nul := bytes.IndexByte(data[scanFrom:], 0)
		if nul < 0 {
			return Entry{}, 0, formatErrorf(nameStart, "long name not NUL-terminated")
		}
		nameEnd = scanFrom + nul
	}
	e.Name = string(data[nameStart:nameEnd])

	next := start + paddedLength(nameEnd+1-start)
	if next > len(data) {
		return Entry{}, 0, formatErrorf(nameEnd, "truncated padding")
	}
	return e, next, nil
}

// paddedLength rounds an entry length up to the next multiple of 8.
func paddedLength(n int) int {
	return (n + 7) &^ 7
}

// Encode serializes idx. Entries are written in slice order; callers that
// want a canonical index call Sort first.
func Encode(idx *Index) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(Signature)
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[0:4], Version)
	binary.BigEndian.PutUint32(hdr[4:8], uint32(len(idx.Entries)))
	buf.Write(hdr[:])

	for i, e := range idx.Entries {
		if err := encodeEntry(&buf, e); err != nil {
			return nil, errors.WrapIff(err, "entry %d (%s)", i, e.Name)
		}
	}
	return buf.Bytes(), nil
}

func encodeEntry(buf *bytes.Buffer, e Entry) error {
	switch e.ModeType {
	case ModeRegular, ModeSymlink, ModeGitlink:
	default:
		return errors.Errorf("invalid mode type %#b", e.ModeType)
	}
	if e.Stage > 3 {
		return errors.Errorf("invalid stage %d", e.Stage)
	}
	if e.Name == "" || bytes.IndexByte([]byte(e.Name), 0) >= 0 {
		return errors.Errorf("invalid name %q", e.Name)
	}
	raw, err := hex.DecodeString(string(e.Hash))
	if err != nil || len(raw) != object.HashSize {
		return errors.WithDetails(object.ErrInvalidHash, "hash", string(e.Hash))
	}

	var b [entryFixedSize]byte
	be := binary.BigEndian
	be.PutUint32(b[0:4], e.CTime.Seconds)
	be.PutUint32(b[4:8], e.CTime.Nanoseconds)
	be.PutUint32(b[8:12], e.MTime.Seconds)
	be.PutUint32(b[12:16], e.MTime.Nanoseconds)
	be.PutUint32(b[16:20], e.Dev)
	be.PutUint32(b[20:24], e.Ino)
	be.PutUint16(b[26:28], e.Mode())
	be.PutUint32(b[28:32], e.UID)
	be.PutUint32(b[32:36], e.GID)
	be.PutUint32(b[36:40], e.Size)
	copy(b[40:60], raw)

	flags := uint16(min(len(e.Name), MaxNameLength))
	flags |= uint16(e.Stage) << flagStageShift
	if e.AssumeValid {
		flags |= flagAssumeValid
	}
	be.PutUint16(b[60:62], flags)

	buf.Write(b[:])
	buf.WriteString(e.Name)
	n := entryFixedSize + len(e.Name)
	buf.Write(make([]byte, paddedLength(n+1)-n))
	return nil
}
