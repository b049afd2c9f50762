//go:build linux

package profile

import (
	"errors"

	"golang.org/x/sys/unix"
)

// lstat prefers statx(2), which is the only way to get a birth time on Linux,
// and falls back to lstat(2) on kernels or sandboxes without it.
func lstat(path string) (stat, error) {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path,
		unix.AT_SYMLINK_NOFOLLOW|unix.AT_STATX_SYNC_AS_STAT,
		unix.STATX_BASIC_STATS|unix.STATX_BTIME, &stx)
	if errors.Is(err, unix.ENOSYS) || errors.Is(err, unix.EPERM) {
		return lstatFallback(path)
	}
	if err != nil {
		return stat{}, err
	}

	st := stat{
		mode:  uint32(stx.Mode),
		ino:   stx.Ino,
		nlink: uint64(stx.Nlink),
		uid:   stx.Uid,
		gid:   stx.Gid,
		size:  int64(stx.Size),
		ctime: stx.Ctime.Sec,
		mtime: stx.Mtime.Sec,
	}
	if stx.Mask&unix.STATX_BTIME != 0 {
		st.btime = stx.Btime.Sec
	}
	return st, nil
}

func lstatFallback(path string) (stat, error) {
	var s unix.Stat_t
	if err := unix.Lstat(path, &s); err != nil {
		return stat{}, err
	}
	return stat{
		mode:  uint32(s.Mode),
		ino:   uint64(s.Ino),
		nlink: uint64(s.Nlink),
		uid:   s.Uid,
		gid:   s.Gid,
		size:  s.Size,
		ctime: int64(s.Ctim.Sec),
		mtime: int64(s.Mtim.Sec),
	}, nil
}
