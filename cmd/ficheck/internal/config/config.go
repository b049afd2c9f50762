// Package config loads the list of roots to monitor and the paths to skip.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultPath is where the config is looked up when no -config flag is given
const DefaultPath = "/etc/ficheck/ficheck.toml"

var (
	ErrNotFound      = errors.New("config file not found")
	ErrNoDirectories = errors.New("no directories configured")
)

// AlwaysExcluded are pseudo filesystems that are never walked
var AlwaysExcluded = []string{"/proc", "/sys"}

// Config represents the monitor configuration
type Config struct {
	Path        string   `toml:"-"`
	Directories []string `toml:"directories"`
	Exclusions  []string `toml:"exclusions"`
}

// Load reads the config file at path. TOML is tried first, then the legacy
// "Directory = /path" line format.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}

	var cfg Config
	md, err := DecodeFile(path, &cfg)
	if err != nil {
		legacy, lerr := ParseLegacyFile(path)
		if lerr != nil || len(legacy.Directories) == 0 {
			return nil, fmt.Errorf("can't decode config %s: %w", path, err)
		}
		cfg = *legacy
	} else if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}

	cfg.Path = path
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DecodeFile decodes the TOML file at path into v
func DecodeFile(path string, v any) (toml.MetaData, error) {
	fp, err := os.Open(path)
	if err != nil {
		return toml.MetaData{}, err
	}
	defer fp.Close()
	return toml.NewDecoder(fp).Decode(v)
}

// ParseLegacyFile reads a legacy config file, see ParseLegacy
func ParseLegacyFile(path string) (*Config, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return ParseLegacy(fp)
}

// ParseLegacy parses "Directory = /path" and "Exclusion = /path" lines. Keys
// are case insensitive; blank lines, comments and other keys are ignored.
func ParseLegacy(r io.Reader) (*Config, error) {
	var cfg Config

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "directory":
			cfg.Directories = append(cfg.Directories, value)
		case "exclusion":
			cfg.Exclusions = append(cfg.Exclusions, value)
		}
	}

	return &cfg, sc.Err()
}

// normalize makes every path absolute and clean, drops duplicates and adds
// the pseudo filesystems to the exclusions
func (c *Config) normalize() error {
	dirs, err := normalizePaths(c.Directories)
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		return fmt.Errorf("%w in %s", ErrNoDirectories, c.Path)
	}

	excl, err := normalizePaths(append(c.Exclusions, AlwaysExcluded...))
	if err != nil {
		return err
	}

	c.Directories, c.Exclusions = dirs, excl
	return nil
}

func normalizePaths(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	normalized := make([]string, 0, len(raw))
	for _, p := range raw {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		abs, err := filepath.Abs(trimmed)
		if err != nil {
			return nil, fmt.Errorf("resolve path %q: %w", trimmed, err)
		}
		abs = filepath.Clean(abs)
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		normalized = append(normalized, abs)
	}
	return normalized, nil
}
