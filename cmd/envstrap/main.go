// Package main is the entry point for the envstrap CLI.
//
// envstrap prepares a host or container for a uv-managed Python project.
// All functionality lives in internal/cli; main only injects the build
// metadata and runs the root command.
//
// Build-time variables (version, commit, date) are injected via ldflags.
// During development they default to "dev", "none" and "unknown".
package main

import (
	"github.com/shinji-kodama/envstrap/internal/cli"
)

// version, commit and date are set at build time via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	// Execute handles error formatting and exit codes.
	cli.Execute(cli.NewRootCommand())
}
