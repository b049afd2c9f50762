package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkg.jsn.cam/ficheck/cmd/ficheck/internal/diff"
	"pkg.jsn.cam/ficheck/cmd/ficheck/pkg/data"
)

func entry(path, sum string) data.Entry {
	return data.Entry{
		Path:   path,
		Inode:  42,
		Perm:   "-rw-r--r--",
		Links:  1,
		UID:    0,
		GID:    10,
		Size:   7,
		Ctime:  1700000000,
		Mtime:  1700000000,
		Digest: data.Digest{Kind: data.DigestContent, Sum: sum},
	}
}

func group(root string, entries ...data.Entry) []data.Record {
	records := []data.Record{data.BeginRecord(root)}
	for _, e := range entries {
		records = append(records, data.EntryRecord(e))
	}
	return append(records, data.EndRecord(root))
}

func render(t *testing.T, old, new []data.Record) (string, *Emitter) {
	t.Helper()
	var buf bytes.Buffer
	em := New(&buf, Options{Hostname: "box", ConfigPath: "/etc/ficheck/ficheck.toml"})
	diff.Run(diff.NewSliceCursor(old...), diff.NewSliceCursor(new...), em)
	require.NoError(t, em.Err())
	return buf.String(), em
}

func TestEmitter_Passed(t *testing.T) {
	snap := append(group("/etc", entry("/etc/hosts", "aa")), group("/usr/bin")...)
	out, em := render(t, snap, snap)

	assert.Equal(t, strings.Join([]string{
		"Configuration on box is /etc/ficheck/ficheck.toml",
		separator,
		"",
		"",
		"PROGRESS: Current directory: /etc",
		"STATUS:  passed...",
		"",
		"PROGRESS: Current directory: /usr/bin",
		"STATUS:  passed...",
		"",
	}, "\n"), out)
	assert.Zero(t, em.Total())
}

func TestEmitter_AdditionAndDeletion(t *testing.T) {
	b := entry("/data/b", "02")
	c := entry("/data/c", "03")
	c.Inode = 43
	c.Btime = 1700000000

	out, em := render(t,
		group("/data", entry("/data/a", "01"), b),
		group("/data", entry("/data/a", "01"), c),
	)

	header := indent + "Inode      Permissions  NLink    UID      GID      Size            Created On          "
	assert.Equal(t, strings.Join([]string{
		"Configuration on box is /etc/ficheck/ficheck.toml",
		separator,
		"",
		"",
		"PROGRESS: Current directory: /data",
		"STATUS: ",
		indent + "DELETION: [box] /data/b",
		header,
		indent + "42         -rw-r--r--   1        0        10       7               -                   ",
		"",
		indent + "ADDITION: [box] /data/c",
		header,
		indent + "43         -rw-r--r--   1        0        10       7               " + data.FormatUnix(1700000000) + " ",
		"",
		"",
	}, "\n"), out)
	assert.Equal(t, 2, em.Total())
}

func TestEmitter_Warning(t *testing.T) {
	old := entry("/etc/passwd", "aa")
	new := old
	new.Perm = "-rw-rw-rw-"
	new.Mtime = 1700000600
	new.Digest = data.Digest{Kind: data.DigestContent, Sum: "bb"}

	out, em := render(t, group("/etc", old), group("/etc", new))

	assert.Contains(t, out, indent+"WARNING: [box] /etc/passwd\n")
	assert.Contains(t, out, indent+"[Perms: -rw-r--r-- - -rw-rw-rw-, Mtime: "+
		data.FormatUnix(1700000000)+" - "+data.FormatUnix(1700000600)+", Hashes: aa - bb]\n")
	assert.Equal(t, 1, em.Total())
}

func TestEmitter_SymlinkDigestTagged(t *testing.T) {
	old := entry("/usr/bin/vi", "")
	old.Perm = "lrwxrwxrwx"
	old.Digest = data.Digest{Kind: data.DigestSymlink, Sum: "aa"}
	new := old
	new.Digest = data.Digest{Kind: data.DigestSymlink, Sum: "bb"}

	out, _ := render(t, group("/usr/bin", old), group("/usr/bin", new))
	assert.Contains(t, out, "[Hashes: SYMLINK:aa - SYMLINK:bb]")
}

type failingWriter struct{ n int }

func (f *failingWriter) Write(p []byte) (int, error) {
	f.n++
	if f.n > 1 {
		return 0, errors.New("disk full")
	}
	return len(p), nil
}

func TestEmitter_WriteError(t *testing.T) {
	fw := &failingWriter{}
	em := New(fw, Options{Hostname: "box"})
	em.GroupStart("/etc")
	em.GroupEnd("/etc", 0)

	assert.EqualError(t, em.Err(), "disk full")
	assert.Equal(t, 2, fw.n, "writes stop after the first failure")
}
