// Package cli implements the cobra-based CLI commands for envstrap.
//
// The root command runs a full provisioning pass. The plan and status
// subcommands stop after planning and after probing respectively. Flags
// that shape the plan are persistent, so every subcommand accepts them.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/envstrap/internal/model"
)

// Global flag variables shared across all subcommands.
// They are bound to persistent flags on the root command, which makes them
// available to plan and status as well.
var (
	// jsonOutput switches the final report (status table or plan) to JSON
	// on stdout. Progress lines and prompts then go to stderr, and errors
	// are printed as JSON objects.
	jsonOutput bool

	// verbose lowers the diagnostics logger to debug level.
	verbose bool

	// logger is the diagnostics logger. It writes to stderr so that it
	// never interleaves with machine-readable stdout.
	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "envstrap"})
)

// Version, Commit and Date are set at build time via ldflags.
// They are injected from the main package.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates the root command with all subcommands registered.
//
// Unlike a pure command group, the root command does work of its own: run
// without a subcommand it provisions the project. The plan-shaping flags
// live on the root as persistent flags so that "envstrap plan --full"
// shows exactly what "envstrap --full" would do.
func NewRootCommand() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "envstrap",
		Short: "Bootstrap the toolchain of a Python research project",
		Long: `envstrap prepares a workstation or container for a uv-managed Python
project: it detects whether it runs inside a container, checks the installed
tool versions, installs what is missing and syncs the project dependencies.

Python and uv are always ensured. Chart rendering (Node.js) and document
export (Pandoc, XeLaTeX) are optional features: request them with
--with-charts / --with-docs, use --full for everything, or --interactive
to be asked.

Examples:
  envstrap
  envstrap --full
  envstrap -i --group viz
  envstrap plan --format yaml
  envstrap status --json`,

		// The provisioning run takes no positional arguments; the project
		// is always the one containing the working directory.
		Args: cobra.NoArgs,

		// SilenceUsage keeps cobra from printing usage for runtime errors;
		// only flag errors show it (see SetFlagErrorFunc below).
		SilenceUsage: true,

		// SilenceErrors leaves error output to the handler passed to
		// fang in Execute, which honors --json.
		SilenceErrors: true,

		// PersistentPreRun runs before every subcommand too, after flags
		// are parsed.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvision(cmd.Context(), flags, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	// Persistent flags are inherited by plan and status.
	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&jsonOutput, "json", false, "Output results and errors in JSON format")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	flags.register(pf)

	// Unknown or malformed flags print usage and exit with the usage code.
	// Cobra routes every flag parse error through this function.
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
		return model.WrapCLIError(model.ExitUsage, "invalid flags", err)
	})

	// Subcommands share the root's flag values.
	rootCmd.AddCommand(NewPlanCommand(flags))
	rootCmd.AddCommand(NewStatusCommand(flags))

	return rootCmd
}

// Execute runs the root command through fang, which also provides the
// --version flag, and maps errors to exit codes.
// CLIError values carry their own code; any other error exits with 1.
func Execute(rootCmd *cobra.Command) {
	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(versionString()),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			printError(w, err)
		}),
	)
	if err == nil {
		return
	}

	// The error was already printed by the handler; only the exit code
	// is left to decide.
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		os.Exit(int(cliErr.Code))
	}
	os.Exit(int(model.ExitGeneralError))
}

// versionString formats the --version output. Development builds have no
// commit or date worth showing.
func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date)
}

// printError writes an error in text or JSON, depending on --json.
func printError(w io.Writer, err error) {
	message := err.Error()
	var detail error
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		message = cliErr.Message
		detail = cliErr.Err
	}

	if jsonOutput {
		errObj := map[string]any{"message": message}
		if detail != nil {
			errObj["detail"] = detail.Error()
		}
		data, _ := json.MarshalIndent(map[string]any{"error": errObj}, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if detail != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", message, detail)
	} else {
		fmt.Fprintf(w, "Error: %s\n", message)
	}
}

// VerboseLog logs a debug line; it is shown only with --verbose.
func VerboseLog(format string, args ...any) {
	logger.Debugf(format, args...)
}
