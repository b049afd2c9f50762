package data

// Type characters used in the first position of a permission string
const (
	TypeRegular = '-'
	TypeDir     = 'd'
	TypeSymlink = 'l'
	TypeFifo    = 'p'
	TypeChar    = 'c'
	TypeBlock   = 'b'
	TypeSocket  = 's'
)

// Raw st_mode bits, identical on every unix we run on
const (
	ModeTypeMask = 0o170000
	ModeSocket   = 0o140000
	ModeSymlink  = 0o120000
	ModeRegular  = 0o100000
	ModeBlock    = 0o060000
	ModeDir      = 0o040000
	ModeChar     = 0o020000
	ModeFifo     = 0o010000

	PermSetuid = 0o4000
	PermSetgid = 0o2000
	PermSticky = 0o1000
)

var rwx = [8]string{"---", "--x", "-w-", "-wx", "r--", "r-x", "rw-", "rwx"}

// TypeOf returns the ls-style type character for a raw st_mode
func TypeOf(mode uint32) byte {
	switch mode & ModeTypeMask {
	case ModeDir:
		return TypeDir
	case ModeChar:
		return TypeChar
	case ModeBlock:
		return TypeBlock
	case ModeRegular:
		return TypeRegular
	case ModeFifo:
		return TypeFifo
	case ModeSymlink:
		return TypeSymlink
	case ModeSocket:
		return TypeSocket
	default:
		return '?'
	}
}

// PermString renders a raw st_mode the way ls -l does, e.g. "-rwsr-xr-x" or "drwxrwxrwt"
func PermString(mode uint32) string {
	b := make([]byte, 0, 10)
	b = append(b, TypeOf(mode))
	b = appendTriplet(b, (mode>>6)&0o7, mode&PermSetuid != 0, 's')
	b = appendTriplet(b, (mode>>3)&0o7, mode&PermSetgid != 0, 's')
	b = appendTriplet(b, mode&0o7, mode&PermSticky != 0, 't')
	return string(b)
}

// appendTriplet renders one rwx triplet; special replaces the execute slot
// with marker (lowercase when executable, uppercase otherwise)
func appendTriplet(b []byte, bits uint32, special bool, marker byte) []byte {
	t := []byte(rwx[bits])
	if special {
		if bits&0o1 != 0 {
			t[2] = marker
		} else {
			t[2] = marker - ('a' - 'A')
		}
	}
	return append(b, t...)
}
