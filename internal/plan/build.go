package plan

import (
	"fmt"

	"github.com/shinji-kodama/envstrap/internal/model"
)

// CheckMarker rejects inputs that cannot be provisioned at all: inside a
// container the project marker is the only thing left to act on, so its
// absence means the tool was started in the wrong directory.
func CheckMarker(in Input) error {
	if in.Context.Containerized && !in.MarkerPresent {
		return model.NewCLIError(model.ExitProjectNotFound,
			"project marker not found; run from the project root inside the container")
	}
	return nil
}

// Build computes the installation plan for in. The answers resolve the
// Questions reported for the same input; unanswered questions read as "no".
//
// Build is deterministic: equal inputs always yield equal plans, and nothing
// outside its arguments is read.
func Build(in Input, answers Answers) *model.Plan {
	b := &builder{
		in:      in,
		answers: answers,
		plan: &model.Plan{
			Context: in.Context,
			Mode:    in.Mode,
			Actions: []model.Action{},
			Groups:  SelectGroups(in, answers),
		},
	}

	if in.Context.Containerized {
		b.containerized()
	} else {
		b.mandatory()
		b.node()
		b.docs()
	}
	b.sync()

	return b.plan
}

type builder struct {
	in      Input
	answers Answers
	plan    *model.Plan
}

func (b *builder) add(a model.Action) {
	b.plan.Actions = append(b.plan.Actions, a)
}

func (b *builder) warn(format string, args ...any) {
	b.plan.Warnings = append(b.plan.Warnings, fmt.Sprintf(format, args...))
}

// forced reports whether f is scheduled regardless of status.
// Full mode forces every optional feature.
func (b *builder) forced(f model.Feature) bool {
	return b.in.Mode == model.ModeFull || b.in.Intent.Forced(f)
}

// wanted reports whether an optional feature that needs work should be
// installed. Explicit flags win over prompts.
func (b *builder) wanted(f model.Feature, question string) bool {
	if b.in.Intent.Requested(f) || b.in.Mode == model.ModeFull {
		return true
	}
	return b.in.Mode == model.ModeInteractive && b.answers.Yes(question)
}

// containerized reports every tool that would need work as a skip.
// System packages belong in the container image, not in a running container.
func (b *builder) containerized() {
	for _, tool := range model.AllTools {
		st := b.in.Statuses.Get(tool)
		f, optional := featureOf(tool)
		switch {
		case st.Classify() != model.ClassSatisfied:
			b.add(model.Action{
				Kind:   model.ActionSkip,
				Tool:   tool,
				Reason: fmt.Sprintf("containerized: %s is %s; provide it in the container image", tool.DisplayName(), st.Classify()),
			})
		case optional && b.forced(f):
			b.add(model.Action{
				Kind:   model.ActionSkip,
				Tool:   tool,
				Reason: "containerized: forced installation ignored",
			})
		}
	}
}

// mandatory schedules an install for every mandatory tool that does not
// meet its minimum. These are the only installs made without a request.
func (b *builder) mandatory() {
	for _, tool := range model.AllTools {
		if !tool.IsMandatory() {
			continue
		}
		st := b.in.Statuses.Get(tool)
		if st.MeetsMinimum {
			continue
		}

		a := model.Action{
			Kind:   model.ActionInstall,
			Tool:   tool,
			Reason: shortfall(st),
			Fatal:  true,
		}
		switch tool {
		case model.ToolPython:
			a.Source = SelectInterpreterSource(b.in.OS, b.in.Thresholds.UbuntuDefaultRepo)
		case model.ToolUV:
			// The installer writes to a directory the current shell may
			// not have on its PATH yet.
			a.Source = model.SourceBootstrap
			a.RequiresShellReinit = true
		}
		b.add(a)
	}
}

func (b *builder) node() {
	st := b.in.Statuses.Get(model.ToolNode)
	th := b.in.Thresholds

	nodeAction := func(reason string) model.Action {
		return model.Action{
			Kind:   kindFor(st),
			Tool:   model.ToolNode,
			Source: model.SourceVendorRepo,
			Reason: reason,
		}
	}

	if b.forced(model.FeatureCharts) {
		b.add(nodeAction(b.forcedReason()))
		return
	}

	switch b.in.nodeState() {
	case nodeCurrent:
		return

	case nodeOutdated:
		if b.in.Intent.Requested(model.FeatureCharts) {
			b.add(nodeAction(fmt.Sprintf("chart rendering requested; %s is below %s", st.VersionString, th.NodeUpgrade)))
			return
		}
		b.warn("Node.js %s is below the recommended %s; rerun with --with-charts to upgrade", st.VersionString, th.NodeUpgrade)

	case nodeMissing:
		if b.wanted(model.FeatureCharts, NodeQuestion) {
			b.add(nodeAction(shortfallAgainst(st, th.NodeBaseline)))
			return
		}
		b.add(model.Action{
			Kind:   model.ActionSkip,
			Tool:   model.ToolNode,
			Reason: "chart rendering not requested",
		})
		if b.in.Mode == model.ModeInteractive {
			b.warn("Node.js installation declined; chart rendering will be unavailable")
		}
	}
}

func (b *builder) docs() {
	tools := []model.ToolID{model.ToolPandoc, model.ToolXeLaTeX}

	docsAction := func(st model.ToolStatus, reason string) model.Action {
		return model.Action{
			Kind:   kindFor(st),
			Tool:   st.Tool,
			Source: model.SourceDefaultRepo,
			Reason: reason,
		}
	}

	if b.forced(model.FeatureDocs) {
		for _, tool := range tools {
			b.add(docsAction(b.in.Statuses.Get(tool), b.forcedReason()))
		}
		return
	}

	if b.in.docsSatisfied() {
		return
	}

	want := b.wanted(model.FeatureDocs, DocsQuestion)
	for _, tool := range tools {
		st := b.in.Statuses.Get(tool)
		if st.MeetsMinimum {
			continue
		}
		if want {
			b.add(docsAction(st, shortfall(st)))
			continue
		}
		b.add(model.Action{
			Kind:   model.ActionSkip,
			Tool:   tool,
			Reason: "document export not requested",
		})
	}
	if !want && b.in.Mode == model.ModeInteractive {
		b.warn("document export tools declined; PDF export will be unavailable")
	}
}

func (b *builder) sync() {
	if !b.in.MarkerPresent {
		b.warn("no project marker found; dependency sync skipped")
		return
	}
	b.add(model.Action{
		Kind:   model.ActionSync,
		Source: model.SourceProject,
		Reason: "project marker present",
		Fatal:  true,
		Groups: b.plan.Groups.Sorted(),
	})
}

func (b *builder) forcedReason() string {
	if b.in.Mode == model.ModeFull {
		return "full installation"
	}
	return "forced"
}

// featureOf maps an optional tool to the feature it backs.
func featureOf(tool model.ToolID) (model.Feature, bool) {
	switch tool {
	case model.ToolNode:
		return model.FeatureCharts, true
	case model.ToolPandoc, model.ToolXeLaTeX:
		return model.FeatureDocs, true
	default:
		return "", false
	}
}

// kindFor picks install for absent tools and upgrade for present ones.
func kindFor(st model.ToolStatus) model.ActionKind {
	if st.Present {
		return model.ActionUpgrade
	}
	return model.ActionInstall
}

func shortfall(st model.ToolStatus) string {
	return shortfallAgainst(st, st.Minimum)
}

func shortfallAgainst(st model.ToolStatus, minimum string) string {
	switch {
	case !st.Present:
		return "not installed"
	case minimum == "":
		return fmt.Sprintf("version %q could not be parsed", st.VersionString)
	default:
		return fmt.Sprintf("version %s is below %s", st.VersionString, minimum)
	}
}
