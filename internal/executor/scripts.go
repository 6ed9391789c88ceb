package executor

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/shinji-kodama/envstrap/internal/model"
)

// Scripts holds the package names and URLs the rendered scripts use.
type Scripts struct {
	// PythonPackages are the apt packages providing the interpreter.
	PythonPackages []string

	// AlternatePythonRepo is the apt repository added when the default
	// repository is too old (e.g. "ppa:deadsnakes/ppa").
	AlternatePythonRepo string

	// UVInstallURL is the fetch-and-run installer for uv.
	UVInstallURL string

	// NodeSetupURL is the vendor repository setup script for Node.js.
	NodeSetupURL string

	// PandocPackages and XeLaTeXPackages are the apt packages for
	// document export.
	PandocPackages  []string
	XeLaTeXPackages []string

	// UV is the dependency manager binary used for the sync.
	UV string
}

// DefaultScripts returns the built-in package names and URLs.
func DefaultScripts() Scripts {
	return Scripts{
		PythonPackages:      []string{"python3.12", "python3.12-venv"},
		AlternatePythonRepo: "ppa:deadsnakes/ppa",
		UVInstallURL:        "https://astral.sh/uv/install.sh",
		NodeSetupURL:        "https://deb.nodesource.com/setup_22.x",
		PandocPackages:      []string{"pandoc"},
		XeLaTeXPackages:     []string{"texlive-xetex", "texlive-fonts-recommended", "texlive-latex-extra"},
		UV:                  "uv",
	}
}

// Render turns an action into a shell script. With sudo set, commands
// that touch the system package manager are prefixed with sudo; actions
// from other sources never are.
func (s Scripts) Render(a model.Action, sudo bool) (string, error) {
	sudo = sudo && a.Source.IsSystemPackage()
	su := ""
	if sudo {
		su = "sudo "
	}
	aptInstall := func(pkgs []string) (string, error) {
		quoted, err := quoteAll(pkgs)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%sapt-get install -y %s", su, strings.Join(quoted, " ")), nil
	}

	switch a.Kind {
	case model.ActionSync:
		args := []string{s.UV, "sync"}
		for _, g := range a.Groups {
			args = append(args, "--extra", g)
		}
		quoted, err := quoteAll(args)
		if err != nil {
			return "", err
		}
		return strings.Join(quoted, " "), nil

	case model.ActionInstall, model.ActionUpgrade:
		// handled below

	default:
		return "", fmt.Errorf("action %q has nothing to run", a.String())
	}

	switch a.Tool {
	case model.ToolPython:
		install, err := aptInstall(s.PythonPackages)
		if err != nil {
			return "", err
		}
		steps := []string{su + "apt-get update"}
		if a.Source == model.SourceAlternate {
			repo, err := syntax.Quote(s.AlternatePythonRepo, syntax.LangBash)
			if err != nil {
				return "", err
			}
			steps = append(steps,
				su+"apt-get install -y software-properties-common",
				su+"add-apt-repository -y "+repo,
				su+"apt-get update",
			)
		}
		return strings.Join(append(steps, install), " && "), nil

	case model.ToolUV:
		url, err := syntax.Quote(s.UVInstallURL, syntax.LangBash)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("curl -LsSf %s | sh", url), nil

	case model.ToolNode:
		url, err := syntax.Quote(s.NodeSetupURL, syntax.LangBash)
		if err != nil {
			return "", err
		}
		install, err := aptInstall([]string{"nodejs"})
		if err != nil {
			return "", err
		}
		// The setup script configures apt and must run as root itself.
		return fmt.Sprintf("curl -fsSL %s | %sbash - && %s", url, suE(sudo), install), nil

	case model.ToolPandoc:
		install, err := aptInstall(s.PandocPackages)
		if err != nil {
			return "", err
		}
		return su + "apt-get update && " + install, nil

	case model.ToolXeLaTeX:
		install, err := aptInstall(s.XeLaTeXPackages)
		if err != nil {
			return "", err
		}
		return su + "apt-get update && " + install, nil

	default:
		return "", fmt.Errorf("no install script for tool %q", a.Tool)
	}
}

func suE(sudo bool) string {
	if sudo {
		return "sudo -E "
	}
	return ""
}

func quoteAll(words []string) ([]string, error) {
	out := make([]string, 0, len(words))
	for _, w := range words {
		q, err := syntax.Quote(w, syntax.LangBash)
		if err != nil {
			return nil, fmt.Errorf("cannot quote %q: %w", w, err)
		}
		out = append(out, q)
	}
	return out, nil
}
