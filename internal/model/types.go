package model

import (
	"fmt"
	"strings"
)

// ToolID identifies one externally installed tool that the provisioner
// inspects. The set is closed; see AllTools.
type ToolID string

const (
	// ToolPython is the Python interpreter.
	ToolPython ToolID = "python"

	// ToolUV is the project dependency manager (uv).
	ToolUV ToolID = "uv"

	// ToolNode is the Node.js runtime used for chart rendering.
	ToolNode ToolID = "node"

	// ToolPandoc is the document converter used for report export.
	ToolPandoc ToolID = "pandoc"

	// ToolXeLaTeX is the typesetting engine Pandoc drives for PDF output.
	ToolXeLaTeX ToolID = "xelatex"
)

// AllTools lists every tool in probe and plan order.
var AllTools = []ToolID{ToolPython, ToolUV, ToolNode, ToolPandoc, ToolXeLaTeX}

// String returns the string representation of ToolID.
func (t ToolID) String() string {
	return string(t)
}

// DisplayName returns the human-readable tool name used in the status table.
func (t ToolID) DisplayName() string {
	switch t {
	case ToolPython:
		return "Python"
	case ToolUV:
		return "uv"
	case ToolNode:
		return "Node.js"
	case ToolPandoc:
		return "Pandoc"
	case ToolXeLaTeX:
		return "XeLaTeX"
	default:
		return string(t)
	}
}

// IsMandatory reports whether the project cannot run without the tool.
// Only mandatory tools are installed without an explicit request.
func (t ToolID) IsMandatory() bool {
	return t == ToolPython || t == ToolUV
}

// ExecutionContext records whether the provisioner runs inside a container.
// It is derived once from environment probes and never mutated afterwards.
type ExecutionContext struct {
	// Containerized is true when at least one container marker was found
	// and no override forced bare-metal behavior.
	Containerized bool `json:"containerized" yaml:"containerized"`

	// Evidence lists the probes that matched (e.g. "/.dockerenv").
	// Empty on bare-metal hosts.
	Evidence []string `json:"evidence,omitempty" yaml:"evidence,omitempty"`

	// Overridden is true when --local forced bare-metal behavior despite
	// container evidence.
	Overridden bool `json:"overridden,omitempty" yaml:"overridden,omitempty"`
}

// String returns "containerized" or "bare-metal".
func (c ExecutionContext) String() string {
	if c.Containerized {
		return "containerized"
	}
	return "bare-metal"
}

// WithOverride returns a copy forced to bare-metal behavior.
// The evidence is kept so the report can still show what was detected.
func (c ExecutionContext) WithOverride() ExecutionContext {
	if !c.Containerized {
		return c
	}
	return ExecutionContext{
		Containerized: false,
		Evidence:      c.Evidence,
		Overridden:    true,
	}
}

// OSRelease is the subset of /etc/os-release the planner needs.
type OSRelease struct {
	// ID is the lower-case distribution identifier (e.g. "ubuntu").
	ID string `json:"id" yaml:"id"`

	// VersionID is the distribution version (e.g. "24.04").
	// "0" when unknown.
	VersionID string `json:"versionId" yaml:"versionId"`
}

// IsUbuntu reports whether the host runs Ubuntu.
func (o OSRelease) IsUbuntu() bool {
	return o.ID == "ubuntu"
}

// Classification is the post-run verdict for a single tool.
type Classification string

const (
	// ClassSatisfied means the tool is present and meets its minimum version.
	ClassSatisfied Classification = "satisfied"

	// ClassDegraded means the tool is present but below its minimum version,
	// or its version could not be parsed.
	ClassDegraded Classification = "degraded"

	// ClassMissing means the tool could not be found.
	ClassMissing Classification = "missing"
)

// String returns the string representation of Classification.
func (c Classification) String() string {
	return string(c)
}

// ToolStatus is the presence and version-sufficiency record for one tool.
// It is computed by probing the host and never stored.
type ToolStatus struct {
	// Tool identifies which tool this record describes.
	Tool ToolID `json:"tool" yaml:"tool"`

	// Present is true when the tool's binary was found on the search path.
	Present bool `json:"present" yaml:"present"`

	// Path is the resolved binary path. Empty when absent.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// VersionString is the extracted version (e.g. "3.12.3"), or the raw
	// first line of output when no version could be extracted.
	VersionString string `json:"version,omitempty" yaml:"version,omitempty"`

	// Minimum is the threshold the version was compared against.
	Minimum string `json:"minimum,omitempty" yaml:"minimum,omitempty"`

	// MeetsMinimum is true when the tool is present and its version is at
	// or above Minimum. Absent tools and unparseable versions never meet it.
	MeetsMinimum bool `json:"meetsMinimum" yaml:"meetsMinimum"`
}

// Classify derives the verification verdict from the status fields.
func (s ToolStatus) Classify() Classification {
	switch {
	case !s.Present:
		return ClassMissing
	case !s.MeetsMinimum:
		return ClassDegraded
	default:
		return ClassSatisfied
	}
}

// StatusSet maps each probed tool to its status.
type StatusSet map[ToolID]ToolStatus

// Get returns the status for a tool. Tools that were never probed are
// reported as absent, which keeps callers free of existence checks.
func (s StatusSet) Get(id ToolID) ToolStatus {
	if st, ok := s[id]; ok {
		return st
	}
	return ToolStatus{Tool: id}
}

// InstallMode is the overall policy governing optional features.
// It is set once from flags and never mutated after parsing.
type InstallMode string

const (
	// ModeMinimal installs mandatory tools only (the default).
	ModeMinimal InstallMode = "minimal"

	// ModeFull installs every optional feature and group.
	ModeFull InstallMode = "full"

	// ModeInteractive asks before each optional feature and group that no
	// explicit flag decided.
	ModeInteractive InstallMode = "interactive"
)

// String returns the string representation of InstallMode.
func (m InstallMode) String() string {
	return string(m)
}

// IsValid checks whether the InstallMode value is one of the predefined modes.
func (m InstallMode) IsValid() bool {
	switch m {
	case ModeMinimal, ModeFull, ModeInteractive:
		return true
	default:
		return false
	}
}

// ParseInstallMode converts a string to an InstallMode.
func ParseInstallMode(s string) (InstallMode, error) {
	mode := InstallMode(strings.ToLower(strings.TrimSpace(s)))
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid install mode: %q (valid: minimal, full, interactive)", s)
	}
	return mode, nil
}

// Feature is an optional capability backed by one or more tools.
type Feature string

const (
	// FeatureDocs is document export (Pandoc + XeLaTeX).
	FeatureDocs Feature = "docs"

	// FeatureCharts is chart rendering (Node.js runtime).
	FeatureCharts Feature = "charts"
)

// String returns the string representation of Feature.
func (f Feature) String() string {
	return string(f)
}

// ParseFeature converts a string to a Feature.
func ParseFeature(s string) (Feature, error) {
	f := Feature(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FeatureDocs, FeatureCharts:
		return f, nil
	default:
		return "", fmt.Errorf("invalid feature: %q (valid: docs, charts)", s)
	}
}

// Intent holds the explicit user flags that feed the planner.
// A zero Intent means "no explicit preference" for every decision.
type Intent struct {
	// Docs is set by --with-docs.
	Docs bool `json:"docs,omitempty" yaml:"docs,omitempty"`

	// Charts is set by --with-charts.
	Charts bool `json:"charts,omitempty" yaml:"charts,omitempty"`

	// Force lists features whose installation is scheduled regardless of
	// current tool status (--force).
	Force []Feature `json:"force,omitempty" yaml:"force,omitempty"`

	// Groups lists optional dependency groups named with --group.
	Groups []string `json:"groups,omitempty" yaml:"groups,omitempty"`
}

// Requested reports whether the feature was requested explicitly, either
// through its --with flag or through --force.
func (i Intent) Requested(f Feature) bool {
	switch f {
	case FeatureDocs:
		if i.Docs {
			return true
		}
	case FeatureCharts:
		if i.Charts {
			return true
		}
	}
	return i.Forced(f)
}

// Forced reports whether --force named the feature.
func (i Intent) Forced(f Feature) bool {
	for _, forced := range i.Force {
		if forced == f {
			return true
		}
	}
	return false
}
