package cli

import (
	"github.com/spf13/pflag"

	"github.com/shinji-kodama/envstrap/internal/model"
)

// rootFlags holds the persistent flags that shape a plan.
type rootFlags struct {
	full        bool
	minimal     bool
	interactive bool

	withDocs   bool
	withCharts bool
	force      []string
	groups     []string

	// local forces bare-metal behavior inside a container.
	local bool

	// configFile overrides the envstrap.yaml lookup.
	configFile string
}

func (f *rootFlags) register(fs *pflag.FlagSet) {
	fs.BoolVar(&f.full, "full", false, "Install every optional feature and dependency group")
	fs.BoolVar(&f.minimal, "minimal", false, "Install mandatory tools only (default)")
	fs.BoolVarP(&f.interactive, "interactive", "i", false, "Ask before each optional feature and group")
	fs.BoolVar(&f.withDocs, "with-docs", false, "Install document export tools (Pandoc, XeLaTeX)")
	fs.BoolVar(&f.withCharts, "with-charts", false, "Install the chart rendering runtime (Node.js)")
	fs.StringArrayVar(&f.force, "force", nil, "Reinstall a feature regardless of status: docs, charts (repeatable)")
	fs.StringArrayVar(&f.groups, "group", nil, "Enable an optional dependency group (repeatable)")
	fs.BoolVar(&f.local, "local", false, "Behave as on bare metal even inside a container")
	fs.StringVar(&f.configFile, "config", "", "Config file (default is envstrap.yaml in the project root)")
}

// resolveMode picks the install mode from the mode flags, falling back to
// the configured mode.
//
// An explicit --interactive is always honored: answers may be piped in,
// and input that ends early answers the remaining questions "no". A
// configured interactive mode only applies on a terminal; otherwise it
// degrades to minimal and the returned warning says so.
func (f *rootFlags) resolveMode(configured string, stdinIsTTY bool) (model.InstallMode, string, error) {
	set := 0
	mode := model.InstallMode("")
	for m, on := range map[model.InstallMode]bool{
		model.ModeFull:        f.full,
		model.ModeMinimal:     f.minimal,
		model.ModeInteractive: f.interactive,
	} {
		if on {
			set++
			mode = m
		}
	}
	if set > 1 {
		return "", "", model.NewCLIError(model.ExitUsage, "--full, --minimal and --interactive are mutually exclusive")
	}
	if set == 1 {
		return mode, "", nil
	}

	mode, err := model.ParseInstallMode(configured)
	if err != nil {
		return "", "", model.WrapCLIError(model.ExitConfigError, "invalid configured mode", err)
	}
	if mode == model.ModeInteractive && !stdinIsTTY {
		return model.ModeMinimal, "stdin is not a terminal; using minimal mode instead of the configured interactive mode", nil
	}
	return mode, "", nil
}

// intent converts the feature and group flags.
func (f *rootFlags) intent() (model.Intent, error) {
	in := model.Intent{
		Docs:   f.withDocs,
		Charts: f.withCharts,
		Groups: append([]string(nil), f.groups...),
	}
	for _, s := range f.force {
		feat, err := model.ParseFeature(s)
		if err != nil {
			return model.Intent{}, model.WrapCLIError(model.ExitUsage, "invalid --force value", err)
		}
		if !in.Forced(feat) {
			in.Force = append(in.Force, feat)
		}
	}
	return in, nil
}
