// Package monitor runs one integrity check: capture a new snapshot, compare it
// with the baseline, then promote or discard it.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"

	"pkg.jsn.cam/ficheck/cmd/ficheck/internal/diff"
	"pkg.jsn.cam/ficheck/cmd/ficheck/internal/digest"
	"pkg.jsn.cam/ficheck/cmd/ficheck/internal/metrics"
	"pkg.jsn.cam/ficheck/cmd/ficheck/internal/profile"
	"pkg.jsn.cam/ficheck/cmd/ficheck/internal/report"
	"pkg.jsn.cam/ficheck/cmd/ficheck/internal/snapshot"
	"pkg.jsn.cam/ficheck/cmd/ficheck/internal/system"
	"pkg.jsn.cam/ficheck/cmd/ficheck/internal/walker"
)

// Default locations
const (
	DefaultBaselinePath = "/var/lib/ficheck/ficheck.db"
	DefaultNewPath      = "/run/ficheck.db.new"
	DefaultReportPath   = "/run/ficheck.txt"
)

// ErrNoBaseline is returned when a report is requested but there is no
// baseline and the run is not allowed to create one
var ErrNoBaseline = errors.New("no baseline to compare against")

type Options struct {
	Roots      []string
	Exclusions []string
	ConfigPath string

	SizeCeiling int64
	Hash        string
	Workers     int

	Update bool
	Report bool

	BaselinePath string
	NewPath      string
	ReportPath   string
	MetricsPath  string

	// Hostname overrides the detected host name in headers and the report
	Hostname string
	Logger   *slog.Logger
}

type Result struct {
	Totals diff.Totals
	// Entries is the number of entries in the new snapshot
	Entries int
	// Compared is false when there was no baseline to compare against
	Compared bool
	// ReportPath is the report written by the run, empty without a report
	ReportPath string
	Promoted   bool
	Duration   time.Duration
}

func (o *Options) setDefaults() {
	if o.Hash == "" {
		o.Hash = digest.Default
	}
	if o.BaselinePath == "" {
		o.BaselinePath = DefaultBaselinePath
	}
	if o.NewPath == "" {
		o.NewPath = DefaultNewPath
	}
	if o.ReportPath == "" {
		o.ReportPath = DefaultReportPath
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Run performs one check. The new snapshot is promoted only when Update is
// set and the run succeeded; otherwise it is removed.
func Run(ctx context.Context, opts Options) (res Result, err error) {
	opts.setDefaults()
	start := time.Now()
	lg := opts.Logger.With("comp", "monitor")

	hashFn, err := digest.New(opts.Hash)
	if err != nil {
		return res, err
	}

	haveBaseline, err := snapshot.Exists(opts.BaselinePath)
	if err != nil {
		return res, fmt.Errorf("can't stat baseline: %w", err)
	}
	if opts.Report && !haveBaseline && !opts.Update {
		return res, fmt.Errorf("%w: %s", ErrNoBaseline, opts.BaselinePath)
	}
	if !haveBaseline {
		lg.Info("no baseline yet, skipping comparison", "baseline", opts.BaselinePath)
	}

	info := system.Gather(opts.Hash)
	if opts.Hostname != "" {
		info.Hostname = opts.Hostname
	}

	m := metrics.New()

	// Capture the new snapshot
	w, err := snapshot.Create(opts.NewPath, info.Header())
	if err != nil {
		return res, err
	}
	defer func() {
		if err != nil {
			if derr := snapshot.Discard(opts.NewPath); derr != nil {
				err = multierror.Append(err, derr)
			}
		}
	}()

	walk := walker.New(walker.Options{
		Profiler: profile.New(profile.Options{
			SizeCeiling: opts.SizeCeiling,
			Hash:        hashFn,
		}),
		Exclusions: opts.Exclusions,
		Workers:    opts.Workers,
		Observer:   m,
		Logger:     opts.Logger,
	})
	walkErr := walk.Walk(ctx, opts.Roots, w)
	if err := multierror.Append(walkErr, w.Close()).ErrorOrNil(); err != nil {
		return res, fmt.Errorf("can't capture snapshot: %w", err)
	}
	res.Entries = w.Entries()
	lg.Debug("captured snapshot", "path", opts.NewPath, "entries", res.Entries)

	// Compare against the baseline
	if opts.Report && haveBaseline {
		res.Totals, err = compare(opts, info.Hostname, m)
		if err != nil {
			return res, err
		}
		res.Compared = true
		res.ReportPath = opts.ReportPath
		lg.Debug("compared snapshots",
			"changes", res.Totals.Changes,
			"added", res.Totals.Added,
			"removed", res.Totals.Removed,
			"modified", res.Totals.Modified)
	}

	if opts.Update {
		if err := snapshot.Promote(opts.NewPath, opts.BaselinePath); err != nil {
			return res, err
		}
		res.Promoted = true
		lg.Debug("promoted snapshot", "baseline", opts.BaselinePath)
	} else if err := snapshot.Discard(opts.NewPath); err != nil {
		return res, err
	}

	res.Duration = time.Since(start)
	m.ObserveTotals(res.Totals)
	m.ObserveRun(res.Duration, time.Now())
	if opts.MetricsPath != "" {
		if err := m.WriteFile(opts.MetricsPath); err != nil {
			lg.Error("can't write metrics", "path", opts.MetricsPath, "err", err)
		}
	}

	return res, nil
}

// compare diffs the baseline against the new snapshot into the report file
func compare(opts Options, hostname string, m *metrics.Metrics) (diff.Totals, error) {
	old, err := snapshot.Open(opts.BaselinePath)
	if err != nil {
		return diff.Totals{}, err
	}
	defer old.Close()

	cur, err := snapshot.Open(opts.NewPath)
	if err != nil {
		return diff.Totals{}, err
	}
	defer cur.Close()

	out, err := os.Create(opts.ReportPath)
	if err != nil {
		return diff.Totals{}, fmt.Errorf("failed to create report file: %w", err)
	}

	em := report.New(out, report.Options{Hostname: hostname, ConfigPath: opts.ConfigPath})
	totals := diff.Run(old, cur, em)
	m.ObserveSkipped(old.Skipped() + cur.Skipped())

	var result *multierror.Error
	for _, e := range []error{old.Err(), cur.Err(), em.Err(), out.Close()} {
		if e != nil {
			result = multierror.Append(result, e)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return totals, fmt.Errorf("can't compare snapshots: %w", err)
	}
	return totals, nil
}
