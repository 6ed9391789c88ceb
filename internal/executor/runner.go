package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Command is one rendered action.
type Command struct {
	// Script is POSIX shell source.
	Script string

	// Dir is the working directory. Empty means the runner's default.
	Dir string

	// Env is the complete environment for the script.
	Env Env
}

// Runner executes commands. The returned error is non-nil when the script
// could not be run or exited non-zero.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ShellRunner runs scripts in an embedded POSIX shell interpreter.
// External programs the script calls (apt-get, curl, uv) are started as
// real processes with the command's environment.
type ShellRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewShellRunner creates a ShellRunner with the given streams.
func NewShellRunner(stdin io.Reader, stdout, stderr io.Writer) *ShellRunner {
	return &ShellRunner{Stdin: stdin, Stdout: stdout, Stderr: stderr}
}

// Run parses and runs cmd.Script.
func (r *ShellRunner) Run(ctx context.Context, cmd Command) error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(cmd.Script), "action")
	if err != nil {
		return fmt.Errorf("failed to parse script: %w", err)
	}

	opts := []interp.RunnerOption{
		interp.StdIO(r.Stdin, r.Stdout, r.Stderr),
		interp.Env(expand.ListEnviron(cmd.Env.List()...)),
	}
	if cmd.Dir != "" {
		opts = append(opts, interp.Dir(cmd.Dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create shell interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return fmt.Errorf("exited with status %d", uint8(exitStatus))
		}
		return err
	}
	return nil
}
