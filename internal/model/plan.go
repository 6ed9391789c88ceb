package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ActionKind is what the executor does for a planned step.
type ActionKind string

const (
	// ActionInstall installs a tool that is missing or below its baseline.
	ActionInstall ActionKind = "install"

	// ActionUpgrade replaces a working but outdated tool.
	ActionUpgrade ActionKind = "upgrade"

	// ActionSkip records a decision not to touch a tool, with its reason.
	// Skip actions are reported but never executed.
	ActionSkip ActionKind = "skip"

	// ActionSync runs the project dependency sync with the selected groups.
	ActionSync ActionKind = "sync"
)

// String returns the string representation of ActionKind.
func (k ActionKind) String() string {
	return string(k)
}

// Source names where an install or upgrade comes from.
type Source string

const (
	// SourceDefaultRepo is the distribution's primary package repository.
	SourceDefaultRepo Source = "default-repository"

	// SourceAlternate is a secondary package source (e.g. a PPA) used when
	// the primary repository lacks the required version.
	SourceAlternate Source = "alternate-source"

	// SourceBootstrap is a fetch-and-run install script.
	SourceBootstrap Source = "bootstrap-script"

	// SourceVendorRepo is a vendor-maintained package repository
	// (NodeSource for Node.js).
	SourceVendorRepo Source = "vendor-repository"

	// SourceProject is the project's own dependency manifest.
	SourceProject Source = "project"
)

// IsSystemPackage reports whether installing from this source touches the
// system package manager.
func (s Source) IsSystemPackage() bool {
	switch s {
	case SourceDefaultRepo, SourceAlternate, SourceVendorRepo:
		return true
	default:
		return false
	}
}

// Action is a single step of an installation plan.
type Action struct {
	// Kind is what to do.
	Kind ActionKind `json:"kind" yaml:"kind"`

	// Tool is the tool the action concerns. Empty for sync actions.
	Tool ToolID `json:"tool,omitempty" yaml:"tool,omitempty"`

	// Source is where the install/upgrade comes from. Empty for skips.
	Source Source `json:"source,omitempty" yaml:"source,omitempty"`

	// Reason is a short human-readable justification shown in reports.
	Reason string `json:"reason" yaml:"reason"`

	// Fatal marks actions whose failure aborts the run with a non-zero
	// exit code. Best-effort actions only produce a warning.
	Fatal bool `json:"fatal,omitempty" yaml:"fatal,omitempty"`

	// RequiresShellReinit is set when the user must open a new shell (or
	// source their profile) for the installed tool to appear on PATH.
	RequiresShellReinit bool `json:"requiresShellReinit,omitempty" yaml:"requiresShellReinit,omitempty"`

	// Groups lists optional dependency groups for sync actions.
	Groups []string `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// IsExecutable reports whether the executor has anything to run.
func (a Action) IsExecutable() bool {
	return a.Kind != ActionSkip
}

// String returns a one-line description, e.g. "install python (default-repository)".
func (a Action) String() string {
	switch a.Kind {
	case ActionSync:
		if len(a.Groups) == 0 {
			return "sync project dependencies"
		}
		return fmt.Sprintf("sync project dependencies (groups: %s)", strings.Join(a.Groups, ", "))
	case ActionSkip:
		return fmt.Sprintf("skip %s", a.Tool)
	default:
		if a.Source == "" {
			return fmt.Sprintf("%s %s", a.Kind, a.Tool)
		}
		return fmt.Sprintf("%s %s (%s)", a.Kind, a.Tool, a.Source)
	}
}

// Plan is the ordered set of actions derived from the probed state,
// the install mode, the explicit flags and the interactive answers.
type Plan struct {
	// Context is the execution context the plan was built for.
	Context ExecutionContext `json:"context" yaml:"context"`

	// Mode is the install mode the plan was built for.
	Mode InstallMode `json:"mode" yaml:"mode"`

	// Actions are executed in order; skip actions are reported only.
	Actions []Action `json:"actions" yaml:"actions"`

	// Groups is the optional dependency group selection.
	Groups GroupSelection `json:"groups" yaml:"groups"`

	// Warnings are non-fatal observations made while planning
	// (e.g. "Node.js 20 is below the recommended 22").
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Executable returns the actions the executor must run, in order.
func (p *Plan) Executable() []Action {
	out := make([]Action, 0, len(p.Actions))
	for _, a := range p.Actions {
		if a.IsExecutable() {
			out = append(out, a)
		}
	}
	return out
}

// RequiresShellReinit reports whether any action asks for a new shell.
func (p *Plan) RequiresShellReinit() bool {
	for _, a := range p.Actions {
		if a.RequiresShellReinit {
			return true
		}
	}
	return false
}

// GroupSelection is a set of optional dependency group names.
// A group appears at most once; iteration order is always sorted.
// The zero value is an empty, usable set.
type GroupSelection struct {
	names map[string]struct{}
}

// NewGroupSelection builds a selection from names, dropping duplicates
// and blank entries.
func NewGroupSelection(names ...string) GroupSelection {
	var g GroupSelection
	for _, n := range names {
		g = g.With(n)
	}
	return g
}

// With returns a selection that also contains name. The receiver is not
// modified, so selections can be threaded through pure functions safely.
func (g GroupSelection) With(name string) GroupSelection {
	name = strings.TrimSpace(name)
	if name == "" || g.Has(name) {
		return g
	}
	next := make(map[string]struct{}, len(g.names)+1)
	for n := range g.names {
		next[n] = struct{}{}
	}
	next[name] = struct{}{}
	return GroupSelection{names: next}
}

// Has reports whether name is selected.
func (g GroupSelection) Has(name string) bool {
	_, ok := g.names[name]
	return ok
}

// Len returns the number of selected groups.
func (g GroupSelection) Len() int {
	return len(g.names)
}

// Sorted returns the selected names in lexical order. Never nil.
func (g GroupSelection) Sorted() []string {
	out := make([]string, 0, len(g.names))
	for n := range g.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the selection as a sorted JSON array.
func (g GroupSelection) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Sorted())
}

// MarshalYAML encodes the selection as a sorted YAML sequence.
func (g GroupSelection) MarshalYAML() (interface{}, error) {
	return g.Sorted(), nil
}
