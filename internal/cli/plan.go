package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/envstrap/internal/model"
	"github.com/shinji-kodama/envstrap/internal/report"
)

// planFlags holds the flags specific to the plan command.
type planFlags struct {
	format string
}

// NewPlanCommand creates the "plan" subcommand. It probes and plans like
// the root command but executes nothing.
func NewPlanCommand(root *rootFlags) *cobra.Command {
	flags := &planFlags{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what a provisioning run would do",
		Long: `Detect the execution context, probe the installed tools and print the
installation plan without executing it. Interactive mode still asks its
questions, so the printed plan reflects the answers.

Examples:
  envstrap plan
  envstrap plan --full --format yaml
  envstrap plan --with-charts --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.Context(), root, flags, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", string(report.FormatText), "Output format: text, json, yaml")

	return cmd
}

func runPlan(ctx context.Context, root *rootFlags, flags *planFlags, stdin io.Reader, stdout, stderr io.Writer) error {
	format, err := report.ParseFormat(flags.format)
	if err != nil {
		return model.WrapCLIError(model.ExitUsage, "invalid --format value", err)
	}
	if jsonOutput {
		format = report.FormatJSON
	}

	// Prompts and warnings must not mix with machine-readable output.
	out := stdout
	if format != report.FormatText {
		out = stderr
	}
	printer := report.NewPrinter(out)

	s, err := prepare(root, printer)
	if err != nil {
		return err
	}

	statuses := s.prober(s.env).ProbeAll(ctx)
	p, err := s.decide(s.input(statuses), stdin, out)
	if err != nil {
		return err
	}

	if format == report.FormatText {
		printer.Plan(p)
		return nil
	}
	if err := report.Encode(stdout, p, format); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to write plan", err)
	}
	return nil
}
