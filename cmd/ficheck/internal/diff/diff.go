// Package diff merge-compares two sorted, grouped record streams.
package diff

import (
	"pkg.jsn.cam/ficheck/cmd/ficheck/pkg/data"
)

// Cursor produces the records of one snapshot in order
type Cursor interface {
	Next() (data.Record, bool)
}

// Sink receives the events of a diff pass
type Sink interface {
	GroupStart(root string)
	GroupEnd(root string, changes int)
	Change(c Change)
}

// ChangeKind classifies a change
type ChangeKind int

const (
	Added ChangeKind = iota
	Removed
	Modified
)

// String returns string representation of the change kind
func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Modified:
		return "modified"
	default:
		return "unknown"
	}
}

// Change is one difference between the old and new snapshot
type Change struct {
	Kind ChangeKind
	Root string
	// Old is unset for additions, New for removals
	Old    data.Entry
	New    data.Entry
	Fields []data.Field // differing fields of a modification
}

// Path returns the path the change is about
func (c Change) Path() string {
	return c.Entry().Path
}

// Entry returns the entry that describes the change: the new one for
// additions, the old one otherwise
func (c Change) Entry() data.Entry {
	if c.Kind == Added {
		return c.New
	}
	return c.Old
}

// GroupResult is the outcome of one directory group
type GroupResult struct {
	Root    string
	Changes int
}

// Passed reports whether the group had no changes
func (g GroupResult) Passed() bool {
	return g.Changes == 0
}

// Totals accumulates the result of a diff pass
type Totals struct {
	Changes  int
	Added    int
	Removed  int
	Modified int

	// Unchanged counts matched entries without reportable differences,
	// Exempted the directories among them that did differ in exactly two fields.
	Unchanged int
	Exempted  int

	Groups []GroupResult
}

// Passed reports whether no group had changes
func (t Totals) Passed() bool {
	return t.Changes == 0
}

type engine struct {
	sink   Sink
	totals Totals

	open  bool
	root  string
	count int
}

// Run merges old and new in a single pass and reports every difference to
// sink. Both cursors must yield entries ordered by data.ComparePaths within
// each group.
func Run(old, new Cursor, sink Sink) Totals {
	if sink == nil {
		sink = nopSink{}
	}
	e := &engine{sink: sink}

	o, oOK := old.Next()
	n, nOK := new.Next()

	for oOK && nOK {
		switch {
		case o.Kind == n.Kind && o.Key() == n.Key():
			switch o.Kind {
			case data.KindEntry:
				e.compare(o.Entry, n.Entry)
			case data.KindBegin:
				e.startGroup(n.Root)
			}
			o, oOK = old.Next()
			n, nOK = new.Next()

		case behind(o, n):
			e.change(Change{Kind: Removed, Old: o.Entry})
			o, oOK = old.Next()

		default:
			e.single(n, Added)
			n, nOK = new.Next()
		}
	}

	for ; oOK; o, oOK = old.Next() {
		e.single(o, Removed)
	}
	for ; nOK; n, nOK = new.Next() {
		e.single(n, Added)
	}

	e.closeGroup()
	return e.totals
}

// behind reports whether the old record has no counterpart in the new stream.
// Only entries can fall behind: an entry facing a marker, or an entry whose
// path sorts before the new entry's path.
func behind(o, n data.Record) bool {
	if o.Kind != data.KindEntry {
		return false
	}
	return n.Kind != data.KindEntry || data.ComparePaths(o.Entry.Path, n.Entry.Path) < 0
}

// single handles a record present on one side only
func (e *engine) single(r data.Record, kind ChangeKind) {
	switch r.Kind {
	case data.KindBegin:
		e.startGroup(r.Root)
	case data.KindEnd:
	default:
		c := Change{Kind: kind}
		if kind == Added {
			c.New = r.Entry
		} else {
			c.Old = r.Entry
		}
		e.change(c)
	}
}

func (e *engine) compare(old, new data.Entry) {
	fields := data.DiffFields(old, new)
	switch {
	case len(fields) == 0:
		e.totals.Unchanged++
	case old.IsDir() && len(fields) == 2:
		e.totals.Unchanged++
		e.totals.Exempted++
	default:
		e.change(Change{Kind: Modified, Old: old, New: new, Fields: fields})
	}
}

func (e *engine) change(c Change) {
	if !e.open {
		e.startGroup("")
	}
	c.Root = e.root
	e.count++

	e.totals.Changes++
	switch c.Kind {
	case Added:
		e.totals.Added++
	case Removed:
		e.totals.Removed++
	case Modified:
		e.totals.Modified++
	}

	e.sink.Change(c)
}

func (e *engine) startGroup(root string) {
	e.closeGroup()
	e.open = true
	e.root = root
	e.count = 0
	e.sink.GroupStart(root)
}

func (e *engine) closeGroup() {
	if !e.open {
		return
	}
	e.totals.Groups = append(e.totals.Groups, GroupResult{Root: e.root, Changes: e.count})
	e.sink.GroupEnd(e.root, e.count)
	e.open = false
}

type nopSink struct{}

func (nopSink) GroupStart(string)    {}
func (nopSink) GroupEnd(string, int) {}
func (nopSink) Change(Change)        {}
