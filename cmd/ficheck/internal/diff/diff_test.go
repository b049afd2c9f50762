package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkg.jsn.cam/ficheck/cmd/ficheck/pkg/data"
)

type event struct {
	kind    string
	root    string
	path    string
	changes int
	fields  []data.Field
}

type recorder struct {
	events []event
}

func (r *recorder) GroupStart(root string) {
	r.events = append(r.events, event{kind: "start", root: root})
}

func (r *recorder) GroupEnd(root string, changes int) {
	r.events = append(r.events, event{kind: "end", root: root, changes: changes})
}

func (r *recorder) Change(c Change) {
	r.events = append(r.events, event{kind: c.Kind.String(), root: c.Root, path: c.Path(), fields: c.Fields})
}

func (r *recorder) changes() []event {
	var out []event
	for _, e := range r.events {
		if e.kind != "start" && e.kind != "end" {
			out = append(out, e)
		}
	}
	return out
}

func file(path, sum string) data.Entry {
	return data.Entry{
		Path:   path,
		Inode:  100,
		Perm:   "-rw-r--r--",
		Links:  1,
		Size:   int64(len(sum)),
		Ctime:  1700000000,
		Mtime:  1700000000,
		Digest: data.Digest{Kind: data.DigestContent, Sum: sum},
	}
}

func dir(path string) data.Entry {
	return data.Entry{
		Path:   path,
		Inode:  200,
		Perm:   "drwxr-xr-x",
		Links:  2,
		Size:   4096,
		Ctime:  1700000000,
		Mtime:  1700000000,
		Digest: data.DirectoryDigest(),
	}
}

func group(root string, entries ...data.Entry) []data.Record {
	records := []data.Record{data.BeginRecord(root)}
	for _, e := range entries {
		records = append(records, data.EntryRecord(e))
	}
	return append(records, data.EndRecord(root))
}

func concat(groups ...[]data.Record) []data.Record {
	var out []data.Record
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func run(old, new []data.Record) (Totals, *recorder) {
	rec := &recorder{}
	totals := Run(NewSliceCursor(old...), NewSliceCursor(new...), rec)
	return totals, rec
}

func TestRun_Identical(t *testing.T) {
	snap := concat(
		group("/etc", dir("/etc/ssl"), file("/etc/ssl/a", "aa"), file("/etc/ssl-b", "bb")),
		group("/usr/bin", file("/usr/bin/ls", "cc")),
		group("/empty"),
	)

	totals, rec := run(snap, snap)

	assert.True(t, totals.Passed())
	assert.Zero(t, totals.Changes)
	assert.Equal(t, 4, totals.Unchanged)
	assert.Equal(t, []GroupResult{
		{Root: "/etc"}, {Root: "/usr/bin"}, {Root: "/empty"},
	}, totals.Groups)
	for _, g := range totals.Groups {
		assert.True(t, g.Passed(), g.Root)
	}
	assert.Empty(t, rec.changes())
}

func TestRun_AddedAndRemoved(t *testing.T) {
	old := group("/data", file("/data/a", "01"), file("/data/b", "02"))
	new := group("/data", file("/data/a", "01"), file("/data/c", "03"))

	totals, rec := run(old, new)

	assert.Equal(t, 2, totals.Changes)
	assert.Equal(t, 1, totals.Added)
	assert.Equal(t, 1, totals.Removed)
	assert.Equal(t, []GroupResult{{Root: "/data", Changes: 2}}, totals.Groups)
	assert.False(t, totals.Groups[0].Passed())

	assert.Equal(t, []event{
		{kind: "start", root: "/data"},
		{kind: "removed", root: "/data", path: "/data/b"},
		{kind: "added", root: "/data", path: "/data/c"},
		{kind: "end", root: "/data", changes: 2},
	}, rec.events)
}

func TestRun_Rename(t *testing.T) {
	old := group("/srv", file("/srv/old-name", "ff"))
	new := group("/srv", file("/srv/new-name", "ff"))

	var changes []Change
	sink := &funcSink{change: func(c Change) { changes = append(changes, c) }}
	totals := Run(NewSliceCursor(old...), NewSliceCursor(new...), sink)

	assert.Equal(t, 2, totals.Changes)
	require.Len(t, changes, 2)
	assert.Equal(t, Added, changes[0].Kind)
	assert.Equal(t, "/srv/new-name", changes[0].Path())
	assert.Equal(t, Removed, changes[1].Kind)
	assert.Equal(t, "/srv/old-name", changes[1].Path())
	assert.True(t, changes[0].Entry().Digest.Equal(changes[1].Entry().Digest))
}

func TestRun_DirectoryExemption(t *testing.T) {
	before := dir("/etc/conf.d")

	touched := before
	touched.Ctime++
	touched.Mtime++

	totals, rec := run(group("/etc", before), group("/etc", touched))
	assert.Zero(t, totals.Changes, "ctime and mtime alone are ignored on directories")
	assert.Equal(t, 1, totals.Exempted)
	assert.Empty(t, rec.changes())

	// the rule is positional: any two fields qualify
	chowned := before
	chowned.UID = 1000
	chowned.GID = 1000
	totals, _ = run(group("/etc", before), group("/etc", chowned))
	assert.Zero(t, totals.Changes)

	reworked := touched
	reworked.Links = 3
	totals, rec = run(group("/etc", before), group("/etc", reworked))
	assert.Equal(t, 1, totals.Modified)
	assert.Equal(t, []event{{
		kind:   "modified",
		root:   "/etc",
		path:   "/etc/conf.d",
		fields: []data.Field{data.FieldLinks, data.FieldCtime, data.FieldMtime},
	}}, rec.changes())
}

func TestRun_FilesHaveNoExemption(t *testing.T) {
	before := file("/etc/passwd", "aa")
	after := before
	after.Ctime++
	after.Mtime++

	totals, rec := run(group("/etc", before), group("/etc", after))
	assert.Equal(t, 1, totals.Modified)
	assert.Equal(t, []data.Field{data.FieldCtime, data.FieldMtime}, rec.changes()[0].fields)
}

func TestRun_CeilingShrink(t *testing.T) {
	big := file("/var/log/huge", "")
	big.Size = 600_000_000
	big.Digest = data.NotComputed(data.ReasonOversize)

	small := big
	small.Size = 1024
	small.Digest = data.Digest{Kind: data.DigestContent, Sum: "abcdef"}

	totals, rec := run(group("/var/log", big), group("/var/log", small))
	assert.Equal(t, 1, totals.Modified)
	assert.Equal(t, []data.Field{data.FieldSize, data.FieldDigest}, rec.changes()[0].fields)
}

func TestRun_NotComputedNeverEqualsEmptyHash(t *testing.T) {
	old := file("/x/f", "")
	old.Size = 0
	old.Digest = data.NotComputed(data.ReasonEmpty)

	new := old
	new.Digest = data.Digest{Kind: data.DigestContent, Sum: "e3b0c44298fc1c149afbf4c8996fb924"}

	totals, _ := run(group("/x", old), group("/x", new))
	assert.Equal(t, 1, totals.Modified)
}

func TestRun_NotComputedReasonIgnored(t *testing.T) {
	old := file("/x/f", "")
	old.Digest = data.NotComputed(data.ReasonUnknown)
	new := old
	new.Digest = data.NotComputed(data.ReasonUnreadable)

	totals, _ := run(group("/x", old), group("/x", new))
	assert.Zero(t, totals.Changes)
}

func TestRun_DrainsExtraGroups(t *testing.T) {
	shared := group("/etc", file("/etc/hosts", "01"))
	extra := group("/opt", file("/opt/a", "02"), file("/opt/b", "03"))

	t.Run("new has an extra trailing group", func(t *testing.T) {
		totals, _ := run(shared, concat(shared, extra))
		assert.Equal(t, 2, totals.Added)
		assert.Equal(t, []GroupResult{
			{Root: "/etc"}, {Root: "/opt", Changes: 2},
		}, totals.Groups)
	})

	t.Run("old has an extra trailing group", func(t *testing.T) {
		totals, _ := run(concat(shared, extra), shared)
		assert.Equal(t, 2, totals.Removed)
		assert.Equal(t, []GroupResult{
			{Root: "/etc"}, {Root: "/opt", Changes: 2},
		}, totals.Groups)
	})
}

func TestRun_EntryFacingMarker(t *testing.T) {
	// old has a trailing entry where new already closes the group
	old := group("/etc", file("/etc/a", "01"), file("/etc/z", "02"))
	new := group("/etc", file("/etc/a", "01"))

	totals, rec := run(old, new)
	assert.Equal(t, 1, totals.Removed)
	assert.Equal(t, "/etc/z", rec.changes()[0].path)

	// and the other way around
	totals, rec = run(new, old)
	assert.Equal(t, 1, totals.Added)
	assert.Equal(t, "/etc/z", rec.changes()[0].path)
}

func TestRun_PreOrderKeys(t *testing.T) {
	// "/d/a-b" sorts after "/d/a/x" in walk order even though '-' < '/'
	old := group("/d", dir("/d/a"), file("/d/a/x", "01"), file("/d/a-b", "02"))
	new := group("/d", dir("/d/a"), file("/d/a/x", "01"), file("/d/a/y", "03"), file("/d/a-b", "02"))

	totals, rec := run(old, new)
	assert.Equal(t, 1, totals.Changes)
	assert.Equal(t, []event{{kind: "added", root: "/d", path: "/d/a/y"}}, rec.changes())
}

func TestRun_EntriesBeforeAnyMarker(t *testing.T) {
	old := []data.Record{data.EntryRecord(file("/a", "01"))}
	totals, rec := run(old, nil)

	assert.Equal(t, 1, totals.Removed)
	assert.Equal(t, []GroupResult{{Root: "", Changes: 1}}, totals.Groups)
	assert.Equal(t, "start", rec.events[0].kind)
}

func TestRun_Empty(t *testing.T) {
	totals := Run(NewSliceCursor(), NewSliceCursor(), nil)
	assert.Zero(t, totals.Changes)
	assert.Empty(t, totals.Groups)
}

type funcSink struct {
	change func(Change)
}

func (f *funcSink) GroupStart(string)    {}
func (f *funcSink) GroupEnd(string, int) {}
func (f *funcSink) Change(c Change)      { f.change(c) }
