// Package walker enumerates the configured roots in a deterministic order and
// feeds every surviving path through the profiler into a sink.
package walker

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"pkg.jsn.cam/ficheck/cmd/ficheck/pkg/data"
)

// Profiler fingerprints a single path
type Profiler interface {
	Profile(path string) (data.Entry, bool)
}

// Sink receives the record stream of a walk, one group per root
type Sink interface {
	Begin(root string) error
	Entry(e data.Entry) error
	End(root string) error
}

// Observer is told about every emitted entry
type Observer interface {
	ObserveEntry(e data.Entry)
}

type Options struct {
	Profiler   Profiler
	Exclusions []string
	// Workers bounds how many children of one directory are profiled at once.
	// Emission order does not depend on it.
	Workers  int
	Observer Observer
	Logger   *slog.Logger
}

type Walker struct {
	profiler Profiler
	excluded map[string]struct{}
	workers  int
	observer Observer
	lg       *slog.Logger
}

type profiled struct {
	entry data.Entry
	ok    bool
}

func New(opts Options) *Walker {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	excluded := make(map[string]struct{}, len(opts.Exclusions))
	for _, p := range opts.Exclusions {
		excluded[filepath.Clean(p)] = struct{}{}
	}

	return &Walker{
		profiler: opts.Profiler,
		excluded: excluded,
		workers:  opts.Workers,
		observer: opts.Observer,
		lg:       opts.Logger.With("comp", "walker"),
	}
}

// Walk emits Begin, the sorted entries and End for every root in order.
// The filesystem root is flattened: its subdirectories are recorded but not
// descended into.
func (w *Walker) Walk(ctx context.Context, roots []string, sink Sink) error {
	for _, root := range roots {
		w.lg.Debug("walking root", "root", root)

		if err := sink.Begin(root); err != nil {
			return err
		}
		if err := w.walkDir(ctx, root, root == "/", sink); err != nil {
			return err
		}
		if err := sink.End(root); err != nil {
			return err
		}
	}
	return nil
}

// walkDir emits the children of dir in name order, descending into each
// directory right after its own entry so the stream stays in pre-order
func (w *Walker) walkDir(ctx context.Context, dir string, flatten bool, sink Sink) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// os.ReadDir returns the children sorted by name
	children, err := os.ReadDir(dir)
	if err != nil {
		w.lg.Debug("can't read directory", "path", dir, "err", err)
	}

	paths := make([]string, 0, len(children))
	for _, child := range children {
		path := filepath.Join(dir, child.Name())
		if w.isExcluded(path) {
			w.lg.Debug("excluded", "path", path)
			continue
		}
		paths = append(paths, path)
	}

	for _, p := range w.profileAll(paths) {
		if !p.ok {
			continue
		}
		if w.observer != nil {
			w.observer.ObserveEntry(p.entry)
		}
		if err := sink.Entry(p.entry); err != nil {
			return err
		}
		if p.entry.IsDir() && !flatten {
			if err := w.walkDir(ctx, p.entry.Path, false, sink); err != nil {
				return err
			}
		}
	}
	return nil
}

// profileAll profiles paths concurrently and returns the results in input order
func (w *Walker) profileAll(paths []string) []profiled {
	out := make([]profiled, len(paths))
	if w.workers == 1 || len(paths) < 2 {
		for i, path := range paths {
			out[i].entry, out[i].ok = w.profiler.Profile(path)
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(w.workers)
	for i, path := range paths {
		g.Go(func() error {
			out[i].entry, out[i].ok = w.profiler.Profile(path)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (w *Walker) isExcluded(path string) bool {
	_, ok := w.excluded[path]
	return ok
}
