package data

import (
	"encoding/hex"
	"fmt"
)

// DigestKind tags the variant held by a Digest
type DigestKind uint8

const (
	DigestNotComputed DigestKind = iota
	DigestContent
	DigestDirectory
	DigestDevice
	DigestSymlink
)

// String returns string representation of the digest kind
func (k DigestKind) String() string {
	switch k {
	case DigestContent:
		return "content"
	case DigestDirectory:
		return "directory"
	case DigestDevice:
		return "device"
	case DigestSymlink:
		return "symlink"
	default:
		return "not_computed"
	}
}

// Reason explains why a content digest was not computed. It is informational
// and never written to a snapshot.
type Reason uint8

const (
	ReasonUnknown Reason = iota
	ReasonEmpty
	ReasonOversize
	ReasonUnreadable
	ReasonUnsupported
)

// String returns string representation of the reason
func (r Reason) String() string {
	switch r {
	case ReasonEmpty:
		return "empty"
	case ReasonOversize:
		return "oversize"
	case ReasonUnreadable:
		return "unreadable"
	case ReasonUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Wire forms of the non-hash digests
const (
	NotComputedToken = "0"
	DirectoryToken   = "Dir"
	DeviceToken      = "Device"
)

// Digest is the content fingerprint of an entry
type Digest struct {
	Kind   DigestKind
	Sum    string // lowercase hex, set for content and symlink digests
	Reason Reason // set for not-computed digests
}

// ContentDigest wraps the hash of a regular file's content
func ContentDigest(sum []byte) Digest {
	return Digest{Kind: DigestContent, Sum: hex.EncodeToString(sum)}
}

// SymlinkDigest wraps the hash of a symlink's target text
func SymlinkDigest(sum []byte) Digest {
	return Digest{Kind: DigestSymlink, Sum: hex.EncodeToString(sum)}
}

// NotComputed returns a digest recording that hashing was skipped
func NotComputed(reason Reason) Digest {
	return Digest{Kind: DigestNotComputed, Reason: reason}
}

// DirectoryDigest is the digest of every directory
func DirectoryDigest() Digest {
	return Digest{Kind: DigestDirectory}
}

// DeviceDigest is the digest of block, character and fifo special files
func DeviceDigest() Digest {
	return Digest{Kind: DigestDevice}
}

// Equal compares two digests by kind and sum. The reason of a not-computed
// digest is ignored.
func (d Digest) Equal(o Digest) bool {
	return d.Kind == o.Kind && d.Sum == o.Sum
}

// String returns the wire form of the digest
func (d Digest) String() string {
	switch d.Kind {
	case DigestContent, DigestSymlink:
		return d.Sum
	case DigestDirectory:
		return DirectoryToken
	case DigestDevice:
		return DeviceToken
	default:
		return NotComputedToken
	}
}

// ParseDigest decodes the wire form of a digest. fileType is the type character
// of the entry's permission string and tells symlink hashes from content hashes.
func ParseDigest(s string, fileType byte) (Digest, error) {
	switch s {
	case NotComputedToken:
		return NotComputed(ReasonUnknown), nil
	case DirectoryToken:
		return DirectoryDigest(), nil
	case DeviceToken:
		return DeviceDigest(), nil
	}

	if _, err := hex.DecodeString(s); err != nil || s == "" {
		return Digest{}, fmt.Errorf("invalid digest %q", s)
	}

	if fileType == TypeSymlink {
		return Digest{Kind: DigestSymlink, Sum: s}, nil
	}
	return Digest{Kind: DigestContent, Sum: s}, nil
}
