package data

import (
	"strconv"
	"time"
)

// Field identifies one of the compared entry fields, in on-disk order after the path
type Field int

const (
	FieldInode Field = iota
	FieldPerm
	FieldLinks
	FieldUID
	FieldGID
	FieldSize
	FieldCtime
	FieldMtime
	FieldBtime
	FieldDigest
)

// Fields lists every compared field in order
var Fields = []Field{
	FieldInode, FieldPerm, FieldLinks, FieldUID, FieldGID,
	FieldSize, FieldCtime, FieldMtime, FieldBtime, FieldDigest,
}

// TimeLayout is used wherever a timestamp is shown to a human
const TimeLayout = "2006-01-02 15:04:05"

// Label returns the name used for the field in reports
func (f Field) Label() string {
	switch f {
	case FieldInode:
		return "Inodes"
	case FieldPerm:
		return "Perms"
	case FieldLinks:
		return "Links"
	case FieldUID:
		return "Uid"
	case FieldGID:
		return "Gid"
	case FieldSize:
		return "Size"
	case FieldCtime:
		return "Ctime"
	case FieldMtime:
		return "Mtime"
	case FieldBtime:
		return "Btime"
	case FieldDigest:
		return "Hashes"
	default:
		return "Unknown"
	}
}

// IsTime reports whether the field holds a unix timestamp
func (f Field) IsTime() bool {
	return f == FieldCtime || f == FieldMtime || f == FieldBtime
}

// Value returns the on-disk form of the field for e
func (f Field) Value(e Entry) string {
	switch f {
	case FieldInode:
		return strconv.FormatUint(e.Inode, 10)
	case FieldPerm:
		return e.Perm
	case FieldLinks:
		return strconv.FormatUint(e.Links, 10)
	case FieldUID:
		return strconv.FormatUint(uint64(e.UID), 10)
	case FieldGID:
		return strconv.FormatUint(uint64(e.GID), 10)
	case FieldSize:
		return strconv.FormatInt(e.Size, 10)
	case FieldCtime:
		return strconv.FormatInt(e.Ctime, 10)
	case FieldMtime:
		return strconv.FormatInt(e.Mtime, 10)
	case FieldBtime:
		return strconv.FormatInt(e.Btime, 10)
	case FieldDigest:
		return e.Digest.String()
	default:
		return ""
	}
}

// Display returns the field of e formatted for a report: timestamps in local
// time at second resolution, symlink digests tagged as such
func (f Field) Display(e Entry) string {
	switch {
	case f.IsTime():
		return FormatUnix(f.unix(e))
	case f == FieldDigest && e.Digest.Kind == DigestSymlink:
		return "SYMLINK:" + e.Digest.Sum
	default:
		return f.Value(e)
	}
}

func (f Field) unix(e Entry) int64 {
	switch f {
	case FieldCtime:
		return e.Ctime
	case FieldMtime:
		return e.Mtime
	default:
		return e.Btime
	}
}

// FormatUnix renders a unix timestamp in local time
func FormatUnix(sec int64) string {
	return time.Unix(sec, 0).Format(TimeLayout)
}

// DiffFields returns the fields whose values differ between a and b, in order
func DiffFields(a, b Entry) []Field {
	var changed []Field
	for _, f := range Fields {
		if f == FieldDigest {
			if !a.Digest.Equal(b.Digest) {
				changed = append(changed, f)
			}
			continue
		}
		if f.Value(a) != f.Value(b) {
			changed = append(changed, f)
		}
	}
	return changed
}
