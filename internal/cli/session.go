// Package cli - session.go builds the per-run state shared by the root,
// plan and status commands.
//
// Every command goes through the same preparation: locate the project,
// load the configuration, resolve the flags, detect the execution context
// and derive the probe thresholds. Doing it once, in one place, keeps the
// three commands consistent about what they probe and how they plan.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"

	"github.com/shinji-kodama/envstrap/internal/config"
	"github.com/shinji-kodama/envstrap/internal/detect"
	"github.com/shinji-kodama/envstrap/internal/executor"
	"github.com/shinji-kodama/envstrap/internal/model"
	"github.com/shinji-kodama/envstrap/internal/plan"
	"github.com/shinji-kodama/envstrap/internal/probe"
	"github.com/shinji-kodama/envstrap/internal/project"
	"github.com/shinji-kodama/envstrap/internal/prompt"
	"github.com/shinji-kodama/envstrap/internal/report"
)

// Process-level seams. Production code uses the real terminal check and
// the real host; tests replace them to run without a TTY or a container.
var (
	// stdinIsTerminal reports whether prompts can be answered
	// interactively. It only matters for a configured interactive mode.
	stdinIsTerminal = func() bool {
		fd := os.Stdin.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}

	// newDetector creates the execution context detector.
	newDetector = detect.NewDetector
)

// session is the state every command derives once from flags, config,
// detection and the project tree. Nothing in it changes after prepare.
type session struct {
	// cfg is the validated configuration.
	cfg *config.Config

	// project is the project rooted at the git top-level (or the working
	// directory outside a repository).
	project *project.Project

	// context is the detected execution context, already adjusted for
	// --local.
	context model.ExecutionContext

	// os is the host distribution, used to pick the interpreter source.
	os model.OSRelease

	// env is the starting environment for probes and actions: the process
	// environment with the configured extra directories on PATH.
	env executor.Env

	// mode and intent are the resolved install policy and explicit flags.
	mode   model.InstallMode
	intent model.Intent

	// groups are the known optional dependency groups.
	groups []string

	// minimums are the per-tool probe thresholds. The Node.js entry may be
	// raised by the project's package.json.
	minimums map[model.ToolID]string

	// thresholds are the planner's extra version boundaries.
	thresholds plan.Thresholds

	// interpreters are versioned Python binaries the configured install
	// packages provide; the probe looks for them before python3.
	interpreters []string
}

// prepare resolves the project, loads the configuration and detects the
// execution context. Non-fatal findings are reported on out; errors are
// CLIErrors carrying the exit code the root command should use.
func prepare(flags *rootFlags, out *report.Printer) (*session, error) {
	// Step 1: Locate the project root.
	wd, err := os.Getwd()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to determine working directory", err)
	}
	root := project.FindRoot(wd)
	VerboseLog("project root: %s", root)

	// Step 2: Load the configuration. The project root is searched for
	// envstrap.yaml unless --config names a file.
	cfg, used, err := config.Load(config.LoadOptions{
		ConfigFile:  flags.configFile,
		ProjectRoot: root,
		Fs:          afero.NewOsFs(),
	})
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "failed to load configuration", err)
	}
	if used != "" {
		VerboseLog("config file: %s", used)
	}

	// Step 3: Resolve the flags. Flag errors are usage errors.
	mode, warning, err := flags.resolveMode(cfg.Mode, stdinIsTerminal())
	if err != nil {
		return nil, err
	}
	if warning != "" {
		out.Warn("%s", warning)
	}

	intent, err := flags.intent()
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:          cfg,
		project:      project.New(afero.NewOsFs(), root, cfg.Project.Marker),
		mode:         mode,
		intent:       intent,
		interpreters: probe.InterpreterBinaries(cfg.Sources.PythonPackages),
	}

	// Step 4: Detect the execution context. --local keeps the evidence
	// for the report but plans as on bare metal.
	d := newDetector()
	s.context = d.Context()
	if flags.local {
		s.context = s.context.WithOverride()
	}
	s.os = d.OSRelease()
	VerboseLog("context: %s %v, os: %s %s", s.context, s.context.Evidence, s.os.ID, s.os.VersionID)

	s.env = executor.NewEnv(os.Environ(), cfg.Paths.ExtraPath...)
	VerboseLog("search path: %s", s.env.Get("PATH"))

	// Step 5: Derive thresholds. A package.json engine constraint can
	// only raise the Node.js baseline, never lower it.
	s.thresholds = plan.Thresholds{
		NodeBaseline:      cfg.Thresholds.NodeBaseline,
		NodeUpgrade:       cfg.Thresholds.NodeUpgrade,
		UbuntuDefaultRepo: cfg.Thresholds.UbuntuDefaultRepo,
	}
	engine, err := s.project.NodeEngine()
	if err != nil {
		out.Warn("ignoring %s: %v", project.PackageJSON, err)
	}
	s.thresholds.NodeBaseline = project.RaiseBaseline(s.thresholds.NodeBaseline, engine)
	if s.thresholds.NodeBaseline != cfg.Thresholds.NodeBaseline {
		VerboseLog("node baseline raised to %s by %s", s.thresholds.NodeBaseline, project.PackageJSON)
	}

	s.minimums = cfg.Minimums()
	s.minimums[model.ToolNode] = s.thresholds.NodeBaseline

	// Step 6: Collect the known groups. The marker wins; the configured
	// list is the fallback when it declares none or cannot be parsed.
	groups, err := s.project.OptionalGroups()
	if err != nil {
		out.Warn("%v; using configured groups", err)
	}
	if len(groups) == 0 {
		groups = cfg.Project.Groups
	}
	s.groups = groups

	return s, nil
}

// prober creates a prober that searches env's PATH. Each probe pass gets
// its own prober so that a PATH extended during execution is honored.
func (s *session) prober(env executor.Env) *probe.Prober {
	return probe.NewProber(
		probe.NewExecCommander(s.project.Root, env.List()),
		probe.DefaultSpecs(s.minimums, s.interpreters),
	)
}

// input assembles the planner input for the probed statuses.
func (s *session) input(statuses model.StatusSet) plan.Input {
	return plan.Input{
		Context:       s.context,
		Statuses:      statuses,
		OS:            s.os,
		Mode:          s.mode,
		Intent:        s.intent,
		KnownGroups:   s.groups,
		MarkerPresent: s.project.MarkerPresent(),
		Thresholds:    s.thresholds,
	}
}

// decide asks the open questions, if any, and builds the plan. Answers are
// read from stdin one line each; input that ends early answers "no".
func (s *session) decide(in plan.Input, stdin io.Reader, out io.Writer) (*model.Plan, error) {
	if err := plan.CheckMarker(in); err != nil {
		return nil, err
	}

	answers := plan.Answers{}
	if questions := plan.Questions(in); len(questions) > 0 {
		var asker prompt.Asker = prompt.NewLineAsker(stdin, out)
		a, err := asker.Ask(questions)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError, "failed to read answers", err)
		}
		answers = a
	}
	return plan.Build(in, answers), nil
}

// reprobe re-checks a single tool with the given environment. The executor
// calls it after a Node.js install.
func (s *session) reprobe(ctx context.Context, env executor.Env, tool model.ToolID) model.ToolStatus {
	return s.prober(env).Probe(ctx, tool)
}

// scripts converts the configured sources into install scripts.
func (s *session) scripts() executor.Scripts {
	src := s.cfg.Sources
	sc := executor.DefaultScripts()
	sc.PythonPackages = src.PythonPackages
	sc.AlternatePythonRepo = src.AlternatePythonRepo
	sc.UVInstallURL = src.UVInstallURL
	sc.NodeSetupURL = src.NodeSetupURL
	sc.PandocPackages = src.PandocPackages
	sc.XeLaTeXPackages = src.XeLaTeXPackages
	return sc
}
