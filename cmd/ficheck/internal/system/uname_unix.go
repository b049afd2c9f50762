//go:build unix

package system

import "golang.org/x/sys/unix"

func fillUname(info *Info) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return
	}
	info.OS = unix.ByteSliceToString(u.Sysname[:])
	info.Release = unix.ByteSliceToString(u.Release[:])
	info.Version = unix.ByteSliceToString(u.Version[:])
	info.Machine = unix.ByteSliceToString(u.Machine[:])
}
