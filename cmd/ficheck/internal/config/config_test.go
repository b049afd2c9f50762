package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, "ficheck.toml", `
directories = ["/etc", "/usr/bin/", "/etc"]
exclusions  = ["/etc/mtab", "/proc"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, []string{"/etc", "/usr/bin"}, cfg.Directories)
	assert.Equal(t, []string{"/etc/mtab", "/proc", "/sys"}, cfg.Exclusions)
}

func TestLoad_Legacy(t *testing.T) {
	path := writeConfig(t, "ficheck.cfg", `
# directories to watch
Directory = /etc
directory=/usr/sbin
Exclusion = /etc/adjtime
Unrelated = value
no equals sign here
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/etc", "/usr/sbin"}, cfg.Directories)
	assert.Equal(t, []string{"/etc/adjtime", "/proc", "/sys"}, cfg.Exclusions)
}

func TestLoad_RelativePaths(t *testing.T) {
	path := writeConfig(t, "ficheck.toml", `directories = ["data/../srv", "  ", "./srv"]`)

	cfg, err := Load(path)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(wd, "srv")}, cfg.Directories)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("no directories", func(t *testing.T) {
		_, err := Load(writeConfig(t, "empty.toml", `exclusions = ["/tmp"]`))
		assert.ErrorIs(t, err, ErrNoDirectories)
	})

	t.Run("only comments", func(t *testing.T) {
		_, err := Load(writeConfig(t, "comments.cfg", "# nothing to see\n"))
		assert.ErrorIs(t, err, ErrNoDirectories)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := Load(writeConfig(t, "typo.toml", `directories = ["/etc"]
exclusion = ["/etc/mtab"]`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exclusion")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := Load(writeConfig(t, "garbage.toml", "[[[\n"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}

func TestParseLegacy(t *testing.T) {
	cfg, err := ParseLegacy(strings.NewReader("DIRECTORY = /opt/app = weird\n#Directory = /skipped\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/opt/app = weird"}, cfg.Directories)
	assert.Empty(t, cfg.Exclusions)
}
