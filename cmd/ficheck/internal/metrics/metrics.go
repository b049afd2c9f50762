// Package metrics records the counters of one run and writes them in the
// Prometheus text format, for the node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pkg.jsn.cam/ficheck/cmd/ficheck/internal/diff"
	"pkg.jsn.cam/ficheck/cmd/ficheck/pkg/data"
)

const namespace = "ficheck"

// Metrics holds the collectors of a single run. It satisfies walker.Observer.
type Metrics struct {
	reg *prometheus.Registry

	// entries tracks the profiled entries by digest kind and skip reason
	entries *prometheus.CounterVec

	// bytesHashed tracks the content read through the digest function
	bytesHashed prometheus.Counter

	// changes tracks the reported changes by kind
	changes *prometheus.CounterVec

	groups       prometheus.Gauge
	groupsPassed prometheus.Gauge

	// skippedLines tracks malformed snapshot lines ignored while comparing
	skippedLines prometheus.Counter

	duration prometheus.Gauge
	lastRun  prometheus.Gauge
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		reg: reg,
		entries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_total",
			Help:      "The total number of profiled filesystem entries",
		}, []string{"digest", "reason"}),
		bytesHashed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hashed_bytes_total",
			Help:      "The total number of bytes read to compute content digests",
		}),
		changes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "changes_total",
			Help:      "The total number of changes against the baseline",
		}, []string{"kind"}),
		groups: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "groups",
			Help:      "The number of compared directory groups",
		}),
		groupsPassed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "groups_passed",
			Help:      "The number of directory groups without changes",
		}),
		skippedLines: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_lines_total",
			Help:      "The total number of malformed snapshot lines ignored",
		}),
		duration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "The duration of the last run",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "The unix time the last run finished",
		}),
	}
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) ObserveEntry(e data.Entry) {
	reason := "none"
	if e.Digest.Kind == data.DigestNotComputed {
		reason = e.Digest.Reason.String()
	}
	m.entries.WithLabelValues(e.Digest.Kind.String(), reason).Inc()

	if e.Digest.Kind == data.DigestContent {
		m.bytesHashed.Add(float64(e.Size))
	}
}

// ObserveTotals records the outcome of a diff pass
func (m *Metrics) ObserveTotals(t diff.Totals) {
	m.changes.WithLabelValues(diff.Added.String()).Add(float64(t.Added))
	m.changes.WithLabelValues(diff.Removed.String()).Add(float64(t.Removed))
	m.changes.WithLabelValues(diff.Modified.String()).Add(float64(t.Modified))

	passed := 0
	for _, g := range t.Groups {
		if g.Passed() {
			passed++
		}
	}
	m.groups.Set(float64(len(t.Groups)))
	m.groupsPassed.Set(float64(passed))
}

// ObserveSkipped records malformed snapshot lines
func (m *Metrics) ObserveSkipped(n int) {
	m.skippedLines.Add(float64(n))
}

// ObserveRun records how long the run took and when it finished
func (m *Metrics) ObserveRun(d time.Duration, finished time.Time) {
	m.duration.Set(d.Seconds())
	m.lastRun.Set(float64(finished.Unix()))
}

// WriteFile writes every metric to path atomically
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
