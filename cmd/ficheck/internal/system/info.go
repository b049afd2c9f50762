// Package system describes the host a snapshot was taken on.
package system

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Info contains metadata about the system when a snapshot was taken. It is
// written into the snapshot header and never compared.
type Info struct {
	Hostname string    `json:"hostname"`
	OS       string    `json:"os"`
	Release  string    `json:"release"`
	Version  string    `json:"version"`
	Machine  string    `json:"machine"`
	Distro   string    `json:"distro"`
	Digest   string    `json:"digest"`
	Created  time.Time `json:"created"`
}

// osRelease is read for the distribution name
var osRelease = "/etc/os-release"

// Gather collects the host metadata. digest names the hash algorithm of the run.
func Gather(digest string) Info {
	hostname, _ := os.Hostname()

	info := Info{
		Hostname: hostname,
		OS:       runtime.GOOS,
		Machine:  runtime.GOARCH,
		Distro:   detectDistro(),
		Digest:   digest,
		Created:  time.Now().UTC(),
	}
	fillUname(&info)

	return info
}

// Header renders the snapshot header lines
func (i Info) Header() []string {
	return []string{
		fmt.Sprintf("- - Host     %s", i.Hostname),
		fmt.Sprintf("- - OS       %s %s", i.OS, i.Release),
		fmt.Sprintf("- - Creation %s", i.Created.Format(time.RFC3339)),
		fmt.Sprintf("- - Uname    %s %s %s %s %s", i.OS, i.Hostname, i.Release, i.Version, i.Machine),
		fmt.Sprintf("- - Distro   %s", i.Distro),
		fmt.Sprintf("- - Digest   %s", i.Digest),
	}
}

// detectDistro attempts to detect the Linux distribution
func detectDistro() string {
	// os-release is a list of shell-style assignments
	if env, err := godotenv.Read(osRelease); err == nil {
		if name := env["PRETTY_NAME"]; name != "" {
			return name
		}
		if name := env["NAME"]; name != "" {
			return name
		}
	}

	// Try other common files
	distroFiles := []struct{ file, name string }{
		{"/etc/redhat-release", "Red Hat"},
		{"/etc/debian_version", "Debian"},
		{"/etc/alpine-release", "Alpine Linux"},
		{"/etc/arch-release", "Arch Linux"},
	}
	for _, d := range distroFiles {
		data, err := os.ReadFile(d.file)
		if err != nil {
			continue
		}
		if content := strings.TrimSpace(string(data)); content != "" {
			return d.name + " (" + content + ")"
		}
		return d.name
	}

	// Fallback based on OS
	switch runtime.GOOS {
	case "linux":
		return "Linux (unknown distribution)"
	case "darwin":
		return "macOS"
	case "freebsd":
		return "FreeBSD"
	default:
		return runtime.GOOS
	}
}
