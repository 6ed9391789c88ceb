package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/envstrap/internal/report"
)

// NewStatusCommand creates the "status" subcommand.
func NewStatusCommand(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show installed tool versions",
		Long: `Detect the execution context and probe every managed tool, then print
the status table. Nothing is installed and no questions are asked.

Examples:
  envstrap status
  envstrap status --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), root, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runStatus(ctx context.Context, root *rootFlags, stdout, stderr io.Writer) error {
	out := stdout
	if jsonOutput {
		out = stderr
	}
	printer := report.NewPrinter(out)

	s, err := prepare(root, printer)
	if err != nil {
		return err
	}
	return verify(ctx, s, s.env, printer, stdout)
}
