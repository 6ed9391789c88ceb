package probe

import (
	"context"
	"regexp"
	"strings"

	"github.com/shinji-kodama/envstrap/internal/model"
)

// ToolSpec describes how to query one tool's version.
type ToolSpec struct {
	// Tool identifies the tool.
	Tool model.ToolID

	// Binaries are candidate executable names, tried in order.
	// The first one found on the search path wins.
	Binaries []string

	// Args is the version query (e.g. ["--version"]).
	Args []string

	// Minimum is the version threshold for MeetsMinimum.
	Minimum string
}

// DefaultSpecs returns the probe specification for every managed tool,
// with minimums taken from the given map. Tools missing from the map get
// an empty minimum (any parseable version satisfies it).
//
// interpreters are versioned Python binaries (e.g. "python3.12") looked up
// before the generic names. An interpreter installed from an alternate
// repository does not replace the distribution's python3, so it has to be
// searched for by its own name.
func DefaultSpecs(minimums map[model.ToolID]string, interpreters []string) []ToolSpec {
	python := append(append([]string(nil), interpreters...), "python3", "python")
	return []ToolSpec{
		{Tool: model.ToolPython, Binaries: dedupe(python), Args: []string{"--version"}, Minimum: minimums[model.ToolPython]},
		{Tool: model.ToolUV, Binaries: []string{"uv"}, Args: []string{"--version"}, Minimum: minimums[model.ToolUV]},
		{Tool: model.ToolNode, Binaries: []string{"node", "nodejs"}, Args: []string{"--version"}, Minimum: minimums[model.ToolNode]},
		{Tool: model.ToolPandoc, Binaries: []string{"pandoc"}, Args: []string{"--version"}, Minimum: minimums[model.ToolPandoc]},
		{Tool: model.ToolXeLaTeX, Binaries: []string{"xelatex"}, Args: []string{"--version"}, Minimum: minimums[model.ToolXeLaTeX]},
	}
}

// interpreterPackage matches package names that are also binary names,
// such as "python3.12" (but not "python3.12-venv").
var interpreterPackage = regexp.MustCompile(`^python\d+(\.\d+)*$`)

// InterpreterBinaries returns the interpreter binaries the given install
// packages provide, in package order.
func InterpreterBinaries(packages []string) []string {
	var out []string
	for _, pkg := range packages {
		if interpreterPackage.MatchString(pkg) {
			out = append(out, pkg)
		}
	}
	return out
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// Prober resolves ToolStatus values.
type Prober struct {
	cmd   Commander
	specs map[model.ToolID]ToolSpec
	order []model.ToolID
}

// NewProber creates a Prober for the given specs.
func NewProber(cmd Commander, specs []ToolSpec) *Prober {
	p := &Prober{
		cmd:   cmd,
		specs: make(map[model.ToolID]ToolSpec, len(specs)),
		order: make([]model.ToolID, 0, len(specs)),
	}
	for _, s := range specs {
		p.specs[s.Tool] = s
		p.order = append(p.order, s.Tool)
	}
	return p
}

// Probe resolves the status of a single tool. It never returns an error:
// a tool that cannot be found or queried is simply reported as absent or
// as failing its minimum.
func (p *Prober) Probe(ctx context.Context, tool model.ToolID) model.ToolStatus {
	spec, ok := p.specs[tool]
	if !ok {
		return model.ToolStatus{Tool: tool}
	}

	status := model.ToolStatus{Tool: tool, Minimum: spec.Minimum}

	path := ""
	for _, name := range spec.Binaries {
		if found, err := p.cmd.LookPath(name); err == nil {
			path = found
			break
		}
	}
	if path == "" {
		return status
	}
	status.Present = true
	status.Path = path

	// A failing version query still proves the binary exists; whatever
	// output it produced is scanned for a version.
	out, _ := p.cmd.Output(ctx, path, spec.Args...)

	if v, found := Extract(out); found {
		status.VersionString = v
		status.MeetsMinimum = AtLeast(v, spec.Minimum)
	} else {
		status.VersionString = firstLine(out)
	}
	return status
}

// ProbeAll resolves every configured tool, in the order given to NewProber.
func (p *Prober) ProbeAll(ctx context.Context) model.StatusSet {
	set := make(model.StatusSet, len(p.order))
	for _, tool := range p.order {
		set[tool] = p.Probe(ctx, tool)
	}
	return set
}

// Tools returns the probed tools in probe order.
func (p *Prober) Tools() []model.ToolID {
	out := make([]model.ToolID, len(p.order))
	copy(out, p.order)
	return out
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}
