//go:build darwin || freebsd

package profile

import "golang.org/x/sys/unix"

func lstat(path string) (stat, error) {
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
		btime: int64(s.Btim.Sec),
	}, nil
}
