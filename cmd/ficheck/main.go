// Command ficheck records a fingerprint of every file under the configured
// directories and reports what changed since the last accepted baseline.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/posener/complete"

	"pkg.jsn.cam/ficheck/cmd/ficheck/internal/config"
	"pkg.jsn.cam/ficheck/cmd/ficheck/internal/digest"
	"pkg.jsn.cam/ficheck/cmd/ficheck/internal/monitor"
	"pkg.jsn.cam/ficheck/cmd/ficheck/internal/profile"
	"pkg.jsn.cam/ficheck/internal"
)

// Exit codes
const (
	exitClean   = 0
	exitChanges = 1
	exitFatal   = 2
	exitConfig  = 255
)

var (
	configPath   = flag.String("config", config.DefaultPath, "configuration file")
	sizeCeiling  = flag.Int64("size", profile.DefaultSizeCeiling, "max size of file to hash in bytes (0 = unlimited)")
	update       = flag.Bool("update", false, "replace the baseline with the new snapshot")
	produceRep   = flag.Bool("report", false, "compare with the baseline and produce a report")
	showVersion  = flag.Bool("version", false, "print version number")
	baselinePath = flag.String("baseline", monitor.DefaultBaselinePath, "baseline snapshot")
	newPath      = flag.String("new", monitor.DefaultNewPath, "where the new snapshot is written")
	reportPath   = flag.String("report-file", monitor.DefaultReportPath, "where the report is written")
	hashName     = flag.String("hash", digest.Default, "content hash algorithm")
	workers      = flag.Int("workers", 0, "files profiled concurrently per directory (0 = number of CPUs)")
	metricsPath  = flag.String("metrics-file", "", "write Prometheus metrics to this file after the run")
)

func main() {
	files := complete.PredictFiles("*")
	cmp := complete.New("ficheck", complete.Command{
		Flags: complete.Flags{
			"-config":       files,
			"-size":         complete.PredictAnything,
			"-update":       complete.PredictNothing,
			"-report":       complete.PredictNothing,
			"-baseline":     files,
			"-new":          files,
			"-report-file":  files,
			"-hash":         complete.PredictSet(digest.Names()...),
			"-workers":      complete.PredictAnything,
			"-metrics-file": files,
			"-env-file":     files,
			"-version":      complete.PredictNothing,
			"-licenses":     complete.PredictNothing,
			"-v":            complete.PredictNothing,
		},
	})
	cmp.AddFlags(nil)

	internal.HandleStartup("FICHECK_")
	if cmp.Complete() {
		return
	}

	os.Exit(run())
}

func run() int {
	if *showVersion {
		fmt.Println(internal.VersionString("ficheck"))
		return exitClean
	}

	lg := slog.Default().With("config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		lg.Error("can't load config", "err", err)
		return exitConfig
	}
	lg.Debug("loaded config", "directories", cfg.Directories, "exclusions", cfg.Exclusions)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := monitor.Run(ctx, monitor.Options{
		Roots:        cfg.Directories,
		Exclusions:   cfg.Exclusions,
		ConfigPath:   cfg.Path,
		SizeCeiling:  *sizeCeiling,
		Hash:         *hashName,
		Workers:      *workers,
		Update:       *update,
		Report:       *produceRep,
		BaselinePath: *baselinePath,
		NewPath:      *newPath,
		ReportPath:   *reportPath,
		MetricsPath:  *metricsPath,
		Logger:       lg,
	})
	if err != nil {
		if errors.Is(err, monitor.ErrNoBaseline) {
			lg.Error("no baseline, run with -update first", "baseline", *baselinePath)
		} else {
			lg.Error("run failed", "err", err)
		}
		return exitFatal
	}

	code, err := finish(res, os.Stdout)
	if err != nil {
		lg.Error("can't deliver report", "path", res.ReportPath, "err", err)
		return exitFatal
	}
	if !color.NoColor {
		summarize(os.Stderr, res)
	}
	return code
}

// finish prints the report when there were changes and removes it either way
func finish(res monitor.Result, stdout io.Writer) (int, error) {
	if !res.Compared {
		return exitClean, nil
	}

	code := exitClean
	if res.Totals.Changes > 0 {
		content, err := os.ReadFile(res.ReportPath)
		if err != nil {
			return exitFatal, err
		}
		if _, err := stdout.Write(content); err != nil {
			return exitFatal, err
		}
		code = exitChanges
	}

	if err := os.Remove(res.ReportPath); err != nil {
		return exitFatal, err
	}
	return code, nil
}

func summarize(w io.Writer, res monitor.Result) {
	switch {
	case !res.Compared:
		color.New(color.FgCyan).Fprintf(w, "ficheck: recorded %d entries", res.Entries)
		if res.Promoted {
			fmt.Fprint(w, " as the new baseline")
		}
		fmt.Fprintln(w)
	case res.Totals.Changes == 0:
		color.New(color.FgGreen, color.Bold).Fprintf(w, "ficheck: all %d directories passed (%d entries, %s)\n",
			len(res.Totals.Groups), res.Entries, res.Duration.Round(time.Millisecond))
	default:
		color.New(color.FgRed, color.Bold).Fprintf(w, "ficheck: %d changes", res.Totals.Changes)
		fmt.Fprintf(w, " (%d added, %d removed, %d modified) in %s\n",
			res.Totals.Added, res.Totals.Removed, res.Totals.Modified, res.Duration.Round(time.Millisecond))
	}
}
