package plan

import (
	"github.com/shinji-kodama/envstrap/internal/model"
	"github.com/shinji-kodama/envstrap/internal/probe"
)

// Thresholds are the version boundaries the policy compares against.
// Per-tool minimums live on the probed ToolStatus values; these are the
// extra boundaries that do not map to a single MeetsMinimum flag.
type Thresholds struct {
	// NodeBaseline is the lowest Node.js version considered usable.
	NodeBaseline string

	// NodeUpgrade is the recommended Node.js version. Versions between the
	// baseline and this produce a warning, or an upgrade when charts are
	// requested.
	NodeUpgrade string

	// UbuntuDefaultRepo is the first Ubuntu release whose default
	// repository ships a sufficient Python.
	UbuntuDefaultRepo string
}

// DefaultThresholds returns the built-in boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{
		NodeBaseline:      "18",
		NodeUpgrade:       "22",
		UbuntuDefaultRepo: "24.04",
	}
}

// Input is everything the planner needs. It is built once per run from
// detection, probing, flags and the project manifest.
type Input struct {
	Context       model.ExecutionContext
	Statuses      model.StatusSet
	OS            model.OSRelease
	Mode          model.InstallMode
	Intent        model.Intent
	KnownGroups   []string
	MarkerPresent bool
	Thresholds    Thresholds
}

// nodeState places the Node.js status relative to the two thresholds.
type nodeState int

const (
	nodeMissing nodeState = iota // absent or below baseline
	nodeOutdated                 // usable but below the upgrade threshold
	nodeCurrent
)

func (in Input) nodeState() nodeState {
	st := in.Statuses.Get(model.ToolNode)
	switch {
	case !st.Present || !probe.AtLeast(st.VersionString, in.Thresholds.NodeBaseline):
		return nodeMissing
	case !probe.AtLeast(st.VersionString, in.Thresholds.NodeUpgrade):
		return nodeOutdated
	default:
		return nodeCurrent
	}
}

// docsSatisfied reports whether both document export tools meet their
// minimums.
func (in Input) docsSatisfied() bool {
	return in.Statuses.Get(model.ToolPandoc).MeetsMinimum &&
		in.Statuses.Get(model.ToolXeLaTeX).MeetsMinimum
}
