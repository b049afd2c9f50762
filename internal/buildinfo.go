package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime/debug"

	"pkg.jsn.cam/ficheck"
)

// VersionString is what -version prints
func VersionString(name string) string {
	return fmt.Sprintf("%s v%s", name, ficheck.Version)
}

// PrintBuildInfo writes the module build information and version as JSON
func PrintBuildInfo(w io.Writer) error {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return errors.New("no build info available")
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		BuildInfo *debug.BuildInfo `json:"build_info"`
		Version   string           `json:"version"`
	}{bi, ficheck.Version})
}
