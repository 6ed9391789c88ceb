package report

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/shinji-kodama/envstrap/internal/model"
)

// ToolRow is one line of the verification table.
type ToolRow struct {
	model.ToolStatus `yaml:",inline"`

	// Class is the verification verdict.
	Class model.Classification `json:"classification" yaml:"classification"`
}

// StatusReport is the post-run verification result.
type StatusReport struct {
	Context model.ExecutionContext `json:"context" yaml:"context"`
	OS      model.OSRelease        `json:"os" yaml:"os"`
	Tools   []ToolRow              `json:"tools" yaml:"tools"`

	// Engine is the container engine version, or "" when no engine is
	// reachable. Informational only.
	Engine string `json:"containerEngine,omitempty" yaml:"containerEngine,omitempty"`
}

// NewStatusReport classifies every tool in order.
func NewStatusReport(ctx model.ExecutionContext, rel model.OSRelease, statuses model.StatusSet, tools []model.ToolID) StatusReport {
	rows := make([]ToolRow, 0, len(tools))
	for _, t := range tools {
		st := statuses.Get(t)
		rows = append(rows, ToolRow{ToolStatus: st, Class: st.Classify()})
	}
	return StatusReport{Context: ctx, OS: rel, Tools: rows}
}

// Counts returns how many tools fall in each class.
func (r StatusReport) Counts() map[model.Classification]int {
	out := map[model.Classification]int{}
	for _, row := range r.Tools {
		out[row.Class]++
	}
	return out
}

// StatusTable prints the verification table.
func (p *Printer) StatusTable(r StatusReport) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.dim).
		Headers("Tool", "Version", "Minimum", "Status")

	for _, row := range r.Tools {
		version := row.VersionString
		if !row.Present {
			version = "-"
		}
		t.Row(row.Tool.DisplayName(), version, orDash(row.Minimum), p.verdict(row.Class))
	}
	if r.Engine != "" {
		t.Row("Container engine", r.Engine, "-", "info")
	}

	p.Title("Environment status (" + r.Context.String() + ")")
	fmt.Fprintln(p.w, t.String())

	c := r.Counts()
	switch {
	case c[model.ClassMissing] > 0 || c[model.ClassDegraded] > 0:
		p.Warn("%d satisfied, %d degraded, %d missing",
			c[model.ClassSatisfied], c[model.ClassDegraded], c[model.ClassMissing])
	default:
		p.OK("all %d tools satisfied", c[model.ClassSatisfied])
	}
}

func (p *Printer) verdict(c model.Classification) string {
	switch c {
	case model.ClassSatisfied:
		return p.ok.Render(markOK + " " + c.String())
	case model.ClassDegraded:
		return p.warn.Render(markWarn + " " + c.String())
	default:
		return p.fail.Render(markFail + " " + c.String())
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
