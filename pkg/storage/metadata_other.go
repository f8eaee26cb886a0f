//go:build !unix

package storage

import "os"

// statMetadata falls back to what os.FileInfo exposes portably; device,
// inode and ownership stay zero.
func statMetadata(name string) (Metadata, error) {
	info, err := os.Lstat(name)
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{
		CTime: info.ModTime(),
		MTime: info.ModTime(),
		Mode:  info.Mode(),
		Size:  info.Size(),
	}, nil
}
