// Package cli - provision.go implements the root command's provisioning
// pass.
//
// The pass has five stages: probe the tools, plan (asking questions in
// interactive mode), execute the plan, record the group selection and
// verify the result. Execution stops at the first failed mandatory action,
// but verification still runs so the user sees what state the host is in.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/shinji-kodama/envstrap/internal/docker"
	"github.com/shinji-kodama/envstrap/internal/executor"
	"github.com/shinji-kodama/envstrap/internal/model"
	"github.com/shinji-kodama/envstrap/internal/report"
)

// newRunner creates the runner that executes action scripts. Tests
// replace it to run plans without touching the host.
var newRunner = func(stdin io.Reader, stdout, stderr io.Writer) executor.Runner {
	return executor.NewShellRunner(stdin, stdout, stderr)
}

// runProvision executes the full pass: probe, plan, execute, verify.
//
// Human-readable progress goes to stdout, or to stderr with --json so that
// stdout carries only the final status report.
func runProvision(ctx context.Context, flags *rootFlags, stdin io.Reader, stdout, stderr io.Writer) error {
	out := stdout
	if jsonOutput {
		out = stderr
	}
	printer := report.NewPrinter(out)

	s, err := prepare(flags, printer)
	if err != nil {
		return err
	}

	// Step 1: Show the previous selection. It is a hint only and never
	// feeds a decision.
	record := s.project.NewRecord(s.cfg.Paths.CacheDir)
	if prev, ok, err := record.Read(); err != nil {
		VerboseLog("previous selection unreadable: %v", err)
	} else if ok {
		printer.Info("previous run selected groups: %s", groupList(prev))
	}

	// Step 2: Probe and plan. A containerized run without a marker stops
	// here with ExitProjectNotFound.
	statuses := s.prober(s.env).ProbeAll(ctx)
	in := s.input(statuses)

	p, err := s.decide(in, stdin, out)
	if err != nil {
		return err
	}
	printer.Plan(p)

	// Step 3: Execute. System package commands get sudo unless the
	// process already runs as root.
	ex := executor.New(newRunner(stdin, out, stderr), printer, executor.Options{
		Scripts:         s.scripts(),
		Sudo:            os.Geteuid() != 0,
		ProjectDir:      s.project.Root,
		BootstrapBinDir: s.cfg.Paths.BootstrapBin,
		NodeUpgrade:     s.thresholds.NodeUpgrade,
		Reprobe:         s.reprobe,
		Logger:          logger,
	})
	res, execErr := ex.Execute(ctx, p, s.env)

	// A cancelled context leaves nothing worth verifying.
	if execErr != nil && errors.Is(execErr, context.Canceled) {
		return execErr
	}

	// Step 4: Record the selection, but only when every mandatory action
	// succeeded; a failed sync did not install the selected groups.
	if execErr == nil && in.MarkerPresent {
		if err := record.Write(p.Groups); err != nil {
			printer.Warn("could not record group selection: %v", err)
		} else {
			VerboseLog("group selection recorded in %s", record.Path())
		}
	}

	// Step 5: Verify with the environment the actions left behind, so a
	// freshly bootstrapped uv is found. Verification never changes the
	// exit code; execErr does.
	if err := verify(ctx, s, res.Env, printer, stdout); err != nil {
		return err
	}

	if len(res.Failures) > 0 {
		printer.Warn("%d optional action(s) failed; see above", len(res.Failures))
	}
	return execErr
}

// verify re-probes every tool and prints the status report. The engine row
// is only meaningful on bare metal, where the user may want to switch to
// the containerized workflow.
func verify(ctx context.Context, s *session, env executor.Env, printer *report.Printer, stdout io.Writer) error {
	prober := s.prober(env)
	statuses := prober.ProbeAll(ctx)
	r := report.NewStatusReport(s.context, s.os, statuses, prober.Tools())
	if !s.context.Containerized {
		r.Engine = docker.ProbeEngine(ctx)
	}

	if jsonOutput {
		if err := report.Encode(stdout, r, report.FormatJSON); err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to write status report", err)
		}
		return nil
	}
	printer.StatusTable(r)
	return nil
}

// groupList formats a selection for the hint line.
func groupList(sel model.GroupSelection) string {
	if sel.Len() == 0 {
		return "(none)"
	}
	return strings.Join(sel.Sorted(), ", ")
}
