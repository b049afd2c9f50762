// Package ficheck is a batch file integrity monitor.
//
// The command lives in cmd/ficheck; this package only carries the version
// stamped into snapshots and reports.
package ficheck

// Version is overridden at link time with -ldflags "-X pkg.jsn.cam/ficheck.Version=...".
var Version = "devel"
