// Package executor runs an installation plan.
//
// Actions run strictly in order, one at a time. A fatal action that fails
// aborts the run; a best-effort action that fails produces a warning and
// the run continues. Nothing is retried or rolled back: rerunning the tool
// re-probes and schedules only what is still needed.
package executor

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/shinji-kodama/envstrap/internal/model"
	"github.com/shinji-kodama/envstrap/internal/probe"
)

// Reporter receives progress lines. report.Printer implements it.
type Reporter interface {
	Step(format string, args ...any)
	OK(format string, args ...any)
	Warn(format string, args ...any)
	Fail(format string, args ...any)
}

// ReprobeFunc re-resolves a tool's status with the current environment.
type ReprobeFunc func(ctx context.Context, env Env, tool model.ToolID) model.ToolStatus

// Options configures an Executor.
type Options struct {
	// Scripts renders actions into shell scripts.
	Scripts Scripts

	// Sudo prefixes system package commands with sudo.
	Sudo bool

	// ProjectDir is the working directory for the dependency sync.
	ProjectDir string

	// BootstrapBinDir is where the uv installer puts its binary. It is
	// added to the search path once uv has been installed.
	BootstrapBinDir string

	// NodeUpgrade is the Node.js version expected after an install or
	// upgrade. Empty disables the post-install check.
	NodeUpgrade string

	// Reprobe re-checks Node.js after an install. Nil disables the check.
	Reprobe ReprobeFunc

	// Logger receives debug output. Nil discards it.
	Logger *log.Logger
}

// Failure records a best-effort action that did not succeed.
type Failure struct {
	Action model.Action
	Err    error
}

// Result summarizes a completed run.
type Result struct {
	// Completed lists the actions that succeeded, in order.
	Completed []model.Action

	// Failures lists best-effort actions that failed.
	Failures []Failure

	// Env is the environment after all actions, including any search path
	// extensions. Post-run verification should probe with it.
	Env Env
}

// Executor runs plans.
type Executor struct {
	runner Runner
	out    Reporter
	opts   Options
}

// New creates an Executor.
func New(runner Runner, out Reporter, opts Options) *Executor {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	return &Executor{runner: runner, out: out, opts: opts}
}

// Execute runs every executable action of p in order, starting from env.
// A failing fatal action stops the run and returns a CLIError with
// ExitMandatoryActionFailed; the partial Result is still returned.
func (e *Executor) Execute(ctx context.Context, p *model.Plan, env Env) (Result, error) {
	res := Result{Env: env}

	for _, a := range p.Executable() {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		script, err := e.opts.Scripts.Render(a, e.opts.Sudo)
		if err != nil {
			return res, model.WrapCLIError(model.ExitGeneralError, fmt.Sprintf("cannot render %s", a), err)
		}

		cmd := Command{Script: script, Env: res.Env}
		if a.Kind == model.ActionSync {
			cmd.Dir = e.opts.ProjectDir
		}

		e.out.Step("%s", a)
		e.opts.Logger.Debug("running action", "action", a.String(), "script", script, "dir", cmd.Dir)

		if err := e.runner.Run(ctx, cmd); err != nil {
			if a.Fatal {
				e.out.Fail("%s failed: %v", a, err)
				return res, model.WrapCLIError(model.ExitMandatoryActionFailed, fmt.Sprintf("%s failed", a), err)
			}
			e.out.Warn("%s failed: %v (continuing)", a, err)
			res.Failures = append(res.Failures, Failure{Action: a, Err: err})
			continue
		}

		e.out.OK("%s", a)
		res.Completed = append(res.Completed, a)

		switch a.Tool {
		case model.ToolUV:
			if e.opts.BootstrapBinDir != "" {
				res.Env = res.Env.WithPath(e.opts.BootstrapBinDir)
				e.opts.Logger.Debug("search path extended", "dir", e.opts.BootstrapBinDir)
			}
		case model.ToolNode:
			e.checkNode(ctx, res.Env)
		}
	}

	return res, nil
}

// checkNode re-probes Node.js after an install. Distribution packages can
// shadow the vendor package, leaving an old version first on the path;
// that is reported but does not stop the run.
func (e *Executor) checkNode(ctx context.Context, env Env) {
	if e.opts.Reprobe == nil || e.opts.NodeUpgrade == "" {
		return
	}
	st := e.opts.Reprobe(ctx, env, model.ToolNode)
	switch {
	case !st.Present:
		e.out.Fail("Node.js not found after install")
	case !probe.AtLeast(st.VersionString, e.opts.NodeUpgrade):
		e.out.Fail("Node.js %s is still below %s after install (%s)", st.VersionString, e.opts.NodeUpgrade, st.Path)
	default:
		e.opts.Logger.Debug("node re-probed", "version", st.VersionString, "path", st.Path)
	}
}
