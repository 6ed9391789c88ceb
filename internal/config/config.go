// Package config loads envstrap settings.
//
// Settings are layered, lowest precedence first: built-in defaults, the
// YAML config file (envstrap.yaml in the project root, or the file named
// with --config), ENVSTRAP_* environment variables, and finally command
// line flags, which the cli package applies on top of the loaded Config.
//
// Version values should be quoted in YAML ("3.10", not 3.10) so they are
// not read as floating point numbers.
package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/shinji-kodama/envstrap/internal/model"
	"github.com/shinji-kodama/envstrap/internal/probe"
)

const (
	// AppName is the application name.
	AppName = "envstrap"

	// ConfigFileName is the config file name without extension.
	ConfigFileName = "envstrap"

	// ConfigFileExt is the config file extension.
	ConfigFileExt = "yaml"

	// EnvPrefix prefixes every environment variable override,
	// e.g. ENVSTRAP_THRESHOLDS_NODE_UPGRADE.
	EnvPrefix = "ENVSTRAP"
)

// Config is the complete envstrap configuration.
type Config struct {
	// Mode is the install mode used when no mode flag is given.
	Mode string `json:"mode" yaml:"mode" mapstructure:"mode"`

	Thresholds ThresholdsConfig `json:"thresholds" yaml:"thresholds" mapstructure:"thresholds"`
	Paths      PathsConfig      `json:"paths" yaml:"paths" mapstructure:"paths"`
	Project    ProjectConfig    `json:"project" yaml:"project" mapstructure:"project"`
	Sources    SourcesConfig    `json:"sources" yaml:"sources" mapstructure:"sources"`
}

// ThresholdsConfig holds the version boundaries.
type ThresholdsConfig struct {
	Python            string `json:"python" yaml:"python" mapstructure:"python"`
	UV                string `json:"uv" yaml:"uv" mapstructure:"uv"`
	NodeBaseline      string `json:"node_baseline" yaml:"node_baseline" mapstructure:"node_baseline"`
	NodeUpgrade       string `json:"node_upgrade" yaml:"node_upgrade" mapstructure:"node_upgrade"`
	Pandoc            string `json:"pandoc" yaml:"pandoc" mapstructure:"pandoc"`
	XeLaTeX           string `json:"xelatex" yaml:"xelatex" mapstructure:"xelatex"`
	UbuntuDefaultRepo string `json:"ubuntu_default_repo" yaml:"ubuntu_default_repo" mapstructure:"ubuntu_default_repo"`
}

// PathsConfig holds search path and cache locations.
type PathsConfig struct {
	// ExtraPath is prepended to the inherited PATH for probes and actions.
	// A leading "~/" is resolved against HOME.
	ExtraPath []string `json:"extra_path" yaml:"extra_path" mapstructure:"extra_path"`

	// BootstrapBin is where the uv installer places its binary.
	BootstrapBin string `json:"bootstrap_bin" yaml:"bootstrap_bin" mapstructure:"bootstrap_bin"`

	// CacheDir holds the selection record. Relative paths are resolved
	// against the project root.
	CacheDir string `json:"cache_dir" yaml:"cache_dir" mapstructure:"cache_dir"`
}

// ProjectConfig describes the project layout.
type ProjectConfig struct {
	// Marker is the file identifying the project root.
	Marker string `json:"marker" yaml:"marker" mapstructure:"marker"`

	// Groups is the fallback list of optional dependency groups, used when
	// the marker declares none.
	Groups []string `json:"groups" yaml:"groups" mapstructure:"groups"`
}

// SourcesConfig holds package names and installer URLs.
type SourcesConfig struct {
	PythonPackages      []string `json:"python_packages" yaml:"python_packages" mapstructure:"python_packages"`
	AlternatePythonRepo string   `json:"alternate_python_repo" yaml:"alternate_python_repo" mapstructure:"alternate_python_repo"`
	UVInstallURL        string   `json:"uv_install_url" yaml:"uv_install_url" mapstructure:"uv_install_url"`
	NodeSetupURL        string   `json:"node_setup_url" yaml:"node_setup_url" mapstructure:"node_setup_url"`
	PandocPackages      []string `json:"pandoc_packages" yaml:"pandoc_packages" mapstructure:"pandoc_packages"`
	XeLaTeXPackages     []string `json:"xelatex_packages" yaml:"xelatex_packages" mapstructure:"xelatex_packages"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Mode: string(model.ModeMinimal),
		Thresholds: ThresholdsConfig{
			Python:            "3.12",
			UV:                "0.1",
			NodeBaseline:      "18",
			NodeUpgrade:       "22",
			Pandoc:            "2.0",
			XeLaTeX:           "3",
			UbuntuDefaultRepo: "24.04",
		},
		Paths: PathsConfig{
			ExtraPath:    []string{"~/.local/bin"},
			BootstrapBin: "~/.local/bin",
			CacheDir:     ".cache/envstrap",
		},
		Project: ProjectConfig{
			Marker: "pyproject.toml",
			Groups: []string{},
		},
		Sources: SourcesConfig{
			PythonPackages:      []string{"python3.12", "python3.12-venv"},
			AlternatePythonRepo: "ppa:deadsnakes/ppa",
			UVInstallURL:        "https://astral.sh/uv/install.sh",
			NodeSetupURL:        "https://deb.nodesource.com/setup_22.x",
			PandocPackages:      []string{"pandoc"},
			XeLaTeXPackages:     []string{"texlive-xetex", "texlive-fonts-recommended", "texlive-latex-extra"},
		},
	}
}

// LoadOptions controls where Load looks.
type LoadOptions struct {
	// ConfigFile is an explicit config file (--config). When set it must
	// exist, and the project root is not searched.
	ConfigFile string

	// ProjectRoot is searched for envstrap.yaml.
	ProjectRoot string

	// Fs is the filesystem to read from. Nil means the OS filesystem.
	Fs afero.Fs
}

// Load builds the configuration from defaults, the config file and the
// environment. It returns the path of the file that was read, or "" when
// only defaults and environment were used.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()
	if opts.Fs != nil {
		v.SetFs(opts.Fs)
	}

	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType(ConfigFileExt)
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	} else if opts.ProjectRoot != "" {
		v.SetConfigName(ConfigFileName)
		v.AddConfigPath(opts.ProjectRoot)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, "", fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return &cfg, v.ConfigFileUsed(), nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("mode", d.Mode)
	v.SetDefault("thresholds.python", d.Thresholds.Python)
	v.SetDefault("thresholds.uv", d.Thresholds.UV)
	v.SetDefault("thresholds.node_baseline", d.Thresholds.NodeBaseline)
	v.SetDefault("thresholds.node_upgrade", d.Thresholds.NodeUpgrade)
	v.SetDefault("thresholds.pandoc", d.Thresholds.Pandoc)
	v.SetDefault("thresholds.xelatex", d.Thresholds.XeLaTeX)
	v.SetDefault("thresholds.ubuntu_default_repo", d.Thresholds.UbuntuDefaultRepo)
	v.SetDefault("paths.extra_path", d.Paths.ExtraPath)
	v.SetDefault("paths.bootstrap_bin", d.Paths.BootstrapBin)
	v.SetDefault("paths.cache_dir", d.Paths.CacheDir)
	v.SetDefault("project.marker", d.Project.Marker)
	v.SetDefault("project.groups", d.Project.Groups)
	v.SetDefault("sources.python_packages", d.Sources.PythonPackages)
	v.SetDefault("sources.alternate_python_repo", d.Sources.AlternatePythonRepo)
	v.SetDefault("sources.uv_install_url", d.Sources.UVInstallURL)
	v.SetDefault("sources.node_setup_url", d.Sources.NodeSetupURL)
	v.SetDefault("sources.pandoc_packages", d.Sources.PandocPackages)
	v.SetDefault("sources.xelatex_packages", d.Sources.XeLaTeXPackages)
}

// Validate checks values that the type system cannot.
func (c *Config) Validate() error {
	if _, err := model.ParseInstallMode(c.Mode); err != nil {
		return fmt.Errorf("mode: %w", err)
	}

	versions := map[string]string{
		"thresholds.python":              c.Thresholds.Python,
		"thresholds.uv":                  c.Thresholds.UV,
		"thresholds.node_baseline":       c.Thresholds.NodeBaseline,
		"thresholds.node_upgrade":        c.Thresholds.NodeUpgrade,
		"thresholds.pandoc":              c.Thresholds.Pandoc,
		"thresholds.xelatex":             c.Thresholds.XeLaTeX,
		"thresholds.ubuntu_default_repo": c.Thresholds.UbuntuDefaultRepo,
	}
	for _, key := range slices.Sorted(maps.Keys(versions)) {
		if _, ok := probe.Extract(versions[key]); !ok {
			return fmt.Errorf("%s: %q is not a version", key, versions[key])
		}
	}

	if !probe.AtLeast(c.Thresholds.NodeUpgrade, c.Thresholds.NodeBaseline) {
		return fmt.Errorf("thresholds.node_upgrade (%s) must not be below thresholds.node_baseline (%s)",
			c.Thresholds.NodeUpgrade, c.Thresholds.NodeBaseline)
	}

	if strings.TrimSpace(c.Project.Marker) == "" {
		return errors.New("project.marker must not be empty")
	}
	return nil
}

// Minimums returns the per-tool probe minimums.
func (c *Config) Minimums() map[model.ToolID]string {
	return map[model.ToolID]string{
		model.ToolPython:  c.Thresholds.Python,
		model.ToolUV:      c.Thresholds.UV,
		model.ToolNode:    c.Thresholds.NodeBaseline,
		model.ToolPandoc:  c.Thresholds.Pandoc,
		model.ToolXeLaTeX: c.Thresholds.XeLaTeX,
	}
}
