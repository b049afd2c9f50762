// Package flagenv fills flags that were not given on the command line from
// environment variables.
package flagenv

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// EnvName returns the variable consulted for the flag name, e.g.
// EnvName("FICHECK_", "report-file") is "FICHECK_REPORT_FILE"
func EnvName(prefix, name string) string {
	return prefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// ParseSet sets every flag of fs that was not explicitly set from the
// matching environment variable, if there is one. fs must already be parsed.
func ParseSet(prefix string, fs *flag.FlagSet) error {
	explicit := make(map[string]struct{})
	fs.Visit(func(f *flag.Flag) {
		explicit[f.Name] = struct{}{}
	})

	var err error
	fs.VisitAll(func(f *flag.Flag) {
		if err != nil {
			return
		}
		if _, ok := explicit[f.Name]; ok {
			return
		}
		name := EnvName(prefix, f.Name)
		value, ok := os.LookupEnv(name)
		if !ok {
			return
		}
		if serr := fs.Set(f.Name, value); serr != nil {
			err = fmt.Errorf("invalid value %q for %s: %w", value, name, serr)
		}
	})
	return err
}

// ParseWithPrefix parses the command line and then applies the environment
// to flag.CommandLine. It exits on a bad value.
func ParseWithPrefix(prefix string) {
	if !flag.Parsed() {
		flag.Parse()
	}
	if err := ParseSet(prefix, flag.CommandLine); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
