package flagenv

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSet() (*flag.FlagSet, *string, *int) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	report := fs.String("report-file", "default.txt", "")
	workers := fs.Int("workers", 0, "")
	return fs, report, workers
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "FICHECK_REPORT_FILE", EnvName("FICHECK_", "report-file"))
	assert.Equal(t, "X_V", EnvName("X_", "v"))
}

func TestParseSet(t *testing.T) {
	t.Setenv("TEST_REPORT_FILE", "/tmp/from-env.txt")
	t.Setenv("TEST_WORKERS", "4")

	fs, report, workers := newSet()
	require.NoError(t, fs.Parse(nil))
	require.NoError(t, ParseSet("TEST_", fs))

	assert.Equal(t, "/tmp/from-env.txt", *report)
	assert.Equal(t, 4, *workers)
}

func TestCommandLineWins(t *testing.T) {
	t.Setenv("TEST_WORKERS", "4")

	fs, _, workers := newSet()
	require.NoError(t, fs.Parse([]string{"-workers", "2"}))
	require.NoError(t, ParseSet("TEST_", fs))

	assert.Equal(t, 2, *workers)
}

func TestInvalidValue(t *testing.T) {
	t.Setenv("TEST_WORKERS", "many")

	fs, _, _ := newSet()
	require.NoError(t, fs.Parse(nil))
	err := ParseSet("TEST_", fs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEST_WORKERS")
}
