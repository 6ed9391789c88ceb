package plan

import (
	"fmt"
	"strings"

	"github.com/shinji-kodama/envstrap/internal/model"
)

// Question IDs for the optional features.
const (
	NodeQuestion = "tool:node"
	DocsQuestion = "tool:docs"

	groupQuestionPrefix = "group:"
)

// GroupQuestion returns the question ID for an optional dependency group.
func GroupQuestion(name string) string {
	return groupQuestionPrefix + name
}

// Question is a yes/no decision the planner needs from the user.
type Question struct {
	// ID is the key the answer is stored under.
	ID string

	// Prompt is the text shown to the user, without the [y/N] suffix.
	Prompt string
}

// Answers maps question IDs to the user's replies.
// A missing entry reads as "no".
type Answers map[string]bool

// Yes reports whether the question was answered affirmatively.
func (a Answers) Yes(id string) bool {
	return a[id]
}

// Questions returns the decisions that are still open for in, in the order
// they should be asked. Only interactive mode asks anything, and nothing is
// asked about a feature an explicit flag already decided.
func Questions(in Input) []Question {
	if in.Mode != model.ModeInteractive {
		return nil
	}

	var qs []Question

	// Nothing is installed inside a container, so there is nothing to ask
	// about tools there.
	if !in.Context.Containerized {
		if in.nodeState() == nodeMissing && !in.Intent.Requested(model.FeatureCharts) {
			qs = append(qs, Question{
				ID:     NodeQuestion,
				Prompt: nodePrompt(in),
			})
		}
		if !in.docsSatisfied() && !in.Intent.Requested(model.FeatureDocs) {
			qs = append(qs, Question{
				ID:     DocsQuestion,
				Prompt: "Document export needs Pandoc and XeLaTeX. Install them?",
			})
		}
	}

	if in.MarkerPresent {
		flagged := model.NewGroupSelection(in.Intent.Groups...)
		for _, g := range uniqueSorted(in.KnownGroups) {
			if flagged.Has(g) {
				continue
			}
			qs = append(qs, Question{
				ID:     GroupQuestion(g),
				Prompt: fmt.Sprintf("Enable optional dependency group %q?", g),
			})
		}
	}

	return qs
}

func nodePrompt(in Input) string {
	st := in.Statuses.Get(model.ToolNode)
	if !st.Present {
		return "Chart rendering needs Node.js, which is not installed. Install it?"
	}
	return fmt.Sprintf("Chart rendering needs Node.js %s or newer (found %s). Install it?",
		in.Thresholds.NodeBaseline, strings.TrimSpace(st.VersionString))
}

func uniqueSorted(names []string) []string {
	return model.NewGroupSelection(names...).Sorted()
}
