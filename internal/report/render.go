package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/envstrap/internal/model"
)

// Format is an output format for machine-readable rendering.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %q (valid: text, json, yaml)", s)
	}
}

// Encode writes v as JSON or YAML.
func Encode(w io.Writer, v any, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("format %q is not machine-readable", f)
	}
}

// Plan prints a plan for humans.
func (p *Printer) Plan(pl *model.Plan) {
	p.Title("Installation plan")
	p.Info("context: %s%s", pl.Context, evidence(pl.Context))
	p.Info("mode:    %s", pl.Mode)

	groups := "(none)"
	if pl.Groups.Len() > 0 {
		groups = strings.Join(pl.Groups.Sorted(), ", ")
	}
	p.Info("groups:  %s", groups)

	if len(pl.Actions) == 0 {
		p.OK("nothing to do")
	}
	for _, a := range pl.Actions {
		switch {
		case !a.IsExecutable():
			p.Info("%s %s", p.dim.Render("skip"), p.dim.Render(fmt.Sprintf("%s: %s", a.Tool.DisplayName(), a.Reason)))
		case a.Fatal:
			p.Step("%s: %s (required)", a, a.Reason)
		default:
			p.Step("%s: %s", a, a.Reason)
		}
	}

	for _, w := range pl.Warnings {
		p.Warn("%s", w)
	}
	if pl.RequiresShellReinit() {
		p.Warn("open a new shell afterwards so newly installed tools are on PATH")
	}
}

func evidence(c model.ExecutionContext) string {
	if len(c.Evidence) == 0 {
		return ""
	}
	s := " (" + strings.Join(c.Evidence, ", ") + ")"
	if c.Overridden {
		s += ", overridden by --local"
	}
	return s
}
