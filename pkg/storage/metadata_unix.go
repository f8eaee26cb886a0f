//go:build unix

package storage

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

func statMetadata(name string) (Metadata, error) {
	info, err := os.Lstat(name)
	if err != nil {
		return Metadata{}, err
	}
	var st unix.Stat_t
	if err := unix.Lstat(name, &st); err != nil {
		return Metadata{}, &os.PathError{Op: "lstat", Path: name, Err: err}
	}
	return Metadata{
		CTime: time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec)),
		MTime: time.Unix(int64(st.Mtim.Sec), int64(st.Mtim.Nsec)),
		Dev:   uint32(st.Dev),
		Ino:   uint32(st.Ino),
		UID:   uint32(st.Uid),
		GID:   uint32(st.Gid),
		Mode:  info.Mode(),
		Size:  info.Size(),
	}, nil
}
