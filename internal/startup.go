// Package internal holds the startup plumbing shared by the commands.
package internal

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"pkg.jsn.cam/ficheck/flagenv"
)

var (
	envFile   = flag.String("env-file", "", "file to load environment variables from before applying them to flags")
	licenses  = flag.Bool("licenses", false, "show software licenses and exit")
	buildinfo = flag.Bool("buildinfo", false, "print build information as JSON and exit")
	verbose   = flag.Bool("v", false, "enable debug logging")
)

// HandleStartup parses the command line, then fills every flag not given on
// it from the environment (FLAG_NAME with prefix prepended), optionally after
// loading -env-file. Logging is set up on stderr. -licenses and -buildinfo
// print and exit.
func HandleStartup(prefix string) {
	flag.Parse()

	if *envFile != "" {
		// variables already in the environment win over the file
		if err := godotenv.Load(*envFile); err != nil {
			fmt.Fprintf(os.Stderr, "can't load env file %s: %v\n", *envFile, err)
			os.Exit(2)
		}
	}

	if err := flagenv.ParseSet(prefix, flag.CommandLine); err != nil {
		fmt.Fprintf(os.Stderr, "can't apply environment: %v\n", err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	if *licenses {
		PrintLicenses(os.Stdout)
		os.Exit(0)
	}

	if *buildinfo {
		if err := PrintBuildInfo(os.Stdout); err != nil {
			slog.Error("can't print build info", "err", err)
			os.Exit(2)
		}
		os.Exit(0)
	}
}
