// Package report renders the events of a diff pass as a plain-text change report.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"pkg.jsn.cam/ficheck/cmd/ficheck/internal/diff"
	"pkg.jsn.cam/ficheck/cmd/ficheck/pkg/data"
)

const (
	indent    = "        "
	separator = "============================================================"
	rowFormat = indent + "%-10s %-12s %-8s %-8s %-8s %-15s %-20s\n"
)

type Options struct {
	Hostname   string
	ConfigPath string
}

// Emitter writes one block per directory group. It satisfies diff.Sink.
type Emitter struct {
	w     io.Writer
	host  string
	total int
	err   error
}

// New writes the report preamble to w and returns an emitter for the groups
func New(w io.Writer, opts Options) *Emitter {
	e := &Emitter{w: w, host: opts.Hostname}
	e.printf("Configuration on %s is %s\n", opts.Hostname, opts.ConfigPath)
	e.printf("%s\n\n", separator)
	return e
}

// Total returns the number of changes reported across all groups
func (e *Emitter) Total() int { return e.total }

// Err returns the first error hit while writing
func (e *Emitter) Err() error { return e.err }

func (e *Emitter) GroupStart(root string) {
	e.printf("\nPROGRESS: Current directory: %s\n", root)
	e.printf("STATUS: ")
}

func (e *Emitter) GroupEnd(_ string, changes int) {
	e.total += changes
	if changes == 0 {
		e.printf(" passed...\n")
		return
	}
	e.printf("\n")
}

func (e *Emitter) Change(c diff.Change) {
	switch c.Kind {
	case diff.Modified:
		e.printf("\n%sWARNING: [%s] %s\n", indent, e.host, c.Path())
		e.printf("%s[%s]\n", indent, describeFields(c))
	case diff.Added:
		e.entryBlock("ADDITION", c.New)
	case diff.Removed:
		e.entryBlock("DELETION", c.Old)
	}
}

func (e *Emitter) entryBlock(label string, entry data.Entry) {
	e.printf("\n%s%s: [%s] %s\n", indent, label, e.host, entry.Path)
	e.printf(rowFormat, "Inode", "Permissions", "NLink", "UID", "GID", "Size", "Created On")
	e.printf(rowFormat,
		strconv.FormatUint(entry.Inode, 10),
		entry.Perm,
		strconv.FormatUint(entry.Links, 10),
		strconv.FormatUint(uint64(entry.UID), 10),
		strconv.FormatUint(uint64(entry.GID), 10),
		strconv.FormatInt(entry.Size, 10),
		createdOn(entry),
	)
}

// describeFields renders "Name: old - new" for every differing field
func describeFields(c diff.Change) string {
	parts := make([]string, 0, len(c.Fields))
	for _, f := range c.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s - %s", f.Label(), f.Display(c.Old), f.Display(c.New)))
	}
	return strings.Join(parts, ", ")
}

func createdOn(e data.Entry) string {
	if e.Btime == 0 {
		return "-"
	}
	return data.FormatUnix(e.Btime)
}

func (e *Emitter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
