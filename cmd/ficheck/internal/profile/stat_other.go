//go:build !linux && !darwin && !freebsd

package profile

import (
	"io/fs"
	"os"

	"pkg.jsn.cam/ficheck/cmd/ficheck/pkg/data"
)

// lstat on platforms without a usable Stat_t layout only has what os.Lstat
// reports: no inode, link count or ownership, and ctime mirrors mtime.
func lstat(path string) (stat, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return stat{}, err
	}
	mtime := info.ModTime().Unix()
	return stat{
		mode:  rawMode(info.Mode()),
		size:  info.Size(),
		ctime: mtime,
		mtime: mtime,
	}, nil
}

func rawMode(m fs.FileMode) uint32 {
	raw := uint32(m.Perm())
	switch {
	case m.IsDir():
		raw |= data.ModeDir
	case m&fs.ModeSymlink != 0:
		raw |= data.ModeSymlink
	case m&fs.ModeNamedPipe != 0:
		raw |= data.ModeFifo
	case m&fs.ModeSocket != 0:
		raw |= data.ModeSocket
	case m&fs.ModeCharDevice != 0:
		raw |= data.ModeChar
	case m&fs.ModeDevice != 0:
		raw |= data.ModeBlock
	default:
		raw |= data.ModeRegular
	}
	if m&fs.ModeSetuid != 0 {
		raw |= data.PermSetuid
	}
	if m&fs.ModeSetgid != 0 {
		raw |= data.PermSetgid
	}
	if m&fs.ModeSticky != 0 {
		raw |= data.PermSticky
	}
	return raw
}
