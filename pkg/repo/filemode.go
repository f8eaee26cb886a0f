package repo

import (
	"io/fs"

	"github.com/odvcencio/tig/pkg/index"
	"github.com/odvcencio/tig/pkg/object"
)

// indexModeFromFileMode maps a worktree file mode to index mode bits.
func indexModeFromFileMode(mode fs.FileMode) (uint8, uint16) {
	if mode&fs.ModeSymlink != 0 {
		return index.ModeSymlink, 0
	}
	if mode&0o111 != 0 {
		return index.ModeRegular, 0o755
	}
	return index.ModeRegular, 0o644
}

// treeModeFromIndex maps an index entry to the mode of its tree entry.
func treeModeFromIndex(e index.Entry) string {
	switch e.ModeType {
	case index.ModeSymlink:
		return object.ModeSymlink
	case index.ModeGitlink:
		return object.ModeGitlink
	}
	if e.ModePerms&0o111 != 0 {
		return object.ModeExecutable
	}
	return object.ModeFile
}
