// Package profile turns a filesystem path into a snapshot entry: metadata
// from lstat plus a content digest.
package profile

import (
	"io"
	"os"
	"sync"

	"pkg.jsn.cam/ficheck/cmd/ficheck/internal/digest"
	"pkg.jsn.cam/ficheck/cmd/ficheck/pkg/data"
)

// DefaultBufferSize is the block size content is streamed through the hash in
const DefaultBufferSize = 64 * 1024

// DefaultSizeCeiling is the largest file that gets hashed
const DefaultSizeCeiling int64 = 500_000_000

type Options struct {
	// SizeCeiling is the largest regular file whose content is hashed.
	// Zero or negative disables the ceiling.
	SizeCeiling int64
	Hash        digest.Func
	BufferSize  int
}

// Profiler is safe for concurrent use
type Profiler struct {
	ceiling int64
	hash    digest.Func
	buffers sync.Pool
}

// stat is the subset of lstat(2) / statx(2) output an entry needs
type stat struct {
	mode  uint32
	ino   uint64
	nlink uint64
	uid   uint32
	gid   uint32
	size  int64
	ctime int64
	mtime int64
	btime int64
}

func New(opts Options) *Profiler {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.Hash == nil {
		opts.Hash, _ = digest.New(digest.Default)
	}

	size := opts.BufferSize
	return &Profiler{
		ceiling: opts.SizeCeiling,
		hash:    opts.Hash,
		buffers: sync.Pool{
			New: func() any {
				buf := make([]byte, size)
				return &buf
			},
		},
	}
}

// Profile fingerprints path without following symlinks. It returns false when
// the path vanished or could not be stat'ed; callers skip such paths.
func (p *Profiler) Profile(path string) (data.Entry, bool) {
	st, err := lstat(path)
	if err != nil {
		return data.Entry{}, false
	}

	return data.Entry{
		Path:   path,
		Inode:  st.ino,
		Perm:   data.PermString(st.mode),
		Links:  st.nlink,
		UID:    st.uid,
		GID:    st.gid,
		Size:   st.size,
		Ctime:  st.ctime,
		Mtime:  st.mtime,
		Btime:  st.btime,
		Digest: p.digest(path, st),
	}, true
}

func (p *Profiler) digest(path string, st stat) data.Digest {
	if st.size == 0 {
		return data.NotComputed(data.ReasonEmpty)
	}

	switch st.mode & data.ModeTypeMask {
	case data.ModeDir:
		return data.DirectoryDigest()
	case data.ModeBlock, data.ModeChar, data.ModeFifo:
		return data.DeviceDigest()
	case data.ModeSymlink:
		target, err := os.Readlink(path)
		if err != nil {
			return data.NotComputed(data.ReasonUnreadable)
		}
		h := p.hash()
		h.Write([]byte(target))
		return data.SymlinkDigest(h.Sum(nil))
	case data.ModeRegular:
		if p.ceiling > 0 && st.size > p.ceiling {
			return data.NotComputed(data.ReasonOversize)
		}
		sum, err := p.hashFile(path)
		if err != nil {
			return data.NotComputed(data.ReasonUnreadable)
		}
		return data.ContentDigest(sum)
	default:
		return data.NotComputed(data.ReasonUnsupported)
	}
}

// hashFile streams the file through the hash one buffer at a time
func (p *Profiler) hashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bufp := p.buffers.Get().(*[]byte)
	defer p.buffers.Put(bufp)
	buf := *bufp

	h := p.hash()
	for {
		n, err := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	return h.Sum(nil), nil
}
