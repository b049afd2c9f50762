// Package digest selects the hash function used to fingerprint file content.
package digest

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Func creates a fresh hash for one file
type Func func() hash.Hash

const (
	SHA256 = "sha256"
	XXHash = "xxhash"
)

// Default is the algorithm used when none is configured
const Default = SHA256

var algorithms = map[string]Func{
	SHA256: sha256.New,
	XXHash: func() hash.Hash { return xxhash.New() },
}

// New returns the hash constructor registered under name
func New(name string) (Func, error) {
	fn, ok := algorithms[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown hash algorithm %q (want one of %s)",
			name, strings.Join(Names(), ", "))
	}
	return fn, nil
}

// Names lists the supported algorithms
func Names() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
