package data

import (
	"fmt"
	"log/slog"
)

// Entry is the fingerprint of a single filesystem object
type Entry struct {
	Path   string `json:"path"`
	Inode  uint64 `json:"inode"`
	Perm   string `json:"perm"`
	Links  uint64 `json:"links"`
	UID    uint32 `json:"uid"`
	GID    uint32 `json:"gid"`
	Size   int64  `json:"size"`
	Ctime  int64  `json:"ctime"`
	Mtime  int64  `json:"mtime"`
	Btime  int64  `json:"btime"` // 0 when the filesystem can't report it
	Digest Digest `json:"digest"`
}

// Type returns the type character of the entry's permission string
func (e Entry) Type() byte {
	if e.Perm == "" {
		return '?'
	}
	return e.Perm[0]
}

// IsDir reports whether the entry describes a directory
func (e Entry) IsDir() bool {
	return e.Type() == TypeDir
}

// IsSymlink reports whether the entry describes a symbolic link
func (e Entry) IsSymlink() bool {
	return e.Type() == TypeSymlink
}

// LogValue implements slog.LogValuer to provide structured logging
func (e Entry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", e.Path),
		slog.String("perm", e.Perm),
		slog.Int64("size", e.Size),
		slog.String("digest", e.Digest.String()),
	)
}

// RecordKind identifies the kind of a snapshot record
type RecordKind int

const (
	KindEntry RecordKind = iota
	KindBegin
	KindEnd
)

// String returns string representation of the record kind
func (k RecordKind) String() string {
	switch k {
	case KindEntry:
		return "entry"
	case KindBegin:
		return "begin"
	case KindEnd:
		return "end"
	default:
		return "unknown"
	}
}

// EntryFields is the number of fields of an entry record
const EntryFields = 11

// Record is one element of a snapshot stream: a directory marker or an entry
type Record struct {
	Kind  RecordKind
	Root  string // set for markers
	Entry Entry  // set for entries
}

// BeginRecord returns the marker that opens the group of root
func BeginRecord(root string) Record {
	return Record{Kind: KindBegin, Root: root}
}

// EndRecord returns the marker that closes the group of root
func EndRecord(root string) Record {
	return Record{Kind: KindEnd, Root: root}
}

// EntryRecord wraps an entry into a record
func EntryRecord(e Entry) Record {
	return Record{Kind: KindEntry, Entry: e}
}

// Key returns the merge key of the record: the path for entries, the root for markers
func (r Record) Key() string {
	if r.Kind == KindEntry {
		return r.Entry.Path
	}
	return r.Root
}

// Arity returns the number of fields the record occupies on disk
func (r Record) Arity() int {
	if r.Kind == KindEntry {
		return EntryFields
	}
	return 1
}

// String returns a short description of the record for debugging
func (r Record) String() string {
	if r.Kind == KindEntry {
		return fmt.Sprintf("entry(%s)", r.Entry.Path)
	}
	return fmt.Sprintf("%s(%s)", r.Kind, r.Root)
}
