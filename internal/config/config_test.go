package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/envstrap/internal/model"
)

func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return fs
}

// TestLoad_Defaults verifies that a project without a config file gets the
// built-in values.
func TestLoad_Defaults(t *testing.T) {
	cfg, used, err := Load(LoadOptions{ProjectRoot: "/work/project", Fs: memFs(t, nil)})

	require.NoError(t, err)
	assert.Empty(t, used)

	want := DefaultConfig()
	assert.Equal(t, want.Mode, cfg.Mode)
	assert.Equal(t, want.Thresholds, cfg.Thresholds)
	assert.Equal(t, want.Paths, cfg.Paths)
	assert.Equal(t, want.Project.Marker, cfg.Project.Marker)
	assert.Empty(t, cfg.Project.Groups)
	assert.Equal(t, want.Sources, cfg.Sources)
}

// TestLoad_ProjectFile verifies that envstrap.yaml in the project root
// overrides the defaults it names and leaves the rest alone.
func TestLoad_ProjectFile(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/work/project/envstrap.yaml": `
mode: full
thresholds:
  node_upgrade: 24
  python: "3.13"
project:
  groups: [viz, docs]
paths:
  extra_path:
    - /opt/tools/bin
`,
	})

	cfg, used, err := Load(LoadOptions{ProjectRoot: "/work/project", Fs: fs})

	require.NoError(t, err)
	assert.Equal(t, "/work/project/envstrap.yaml", used)
	assert.Equal(t, "full", cfg.Mode)
	assert.Equal(t, "24", cfg.Thresholds.NodeUpgrade)
	assert.Equal(t, "3.13", cfg.Thresholds.Python)
	assert.Equal(t, "18", cfg.Thresholds.NodeBaseline)
	assert.Equal(t, []string{"viz", "docs"}, cfg.Project.Groups)
	assert.Equal(t, []string{"/opt/tools/bin"}, cfg.Paths.ExtraPath)
	assert.Equal(t, "pyproject.toml", cfg.Project.Marker)
}

// TestLoad_ExplicitFile verifies --config handling.
func TestLoad_ExplicitFile(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/etc/envstrap/ci.yaml":       "mode: interactive\n",
		"/work/project/envstrap.yaml": "mode: full\n",
	})

	cfg, used, err := Load(LoadOptions{ConfigFile: "/etc/envstrap/ci.yaml", ProjectRoot: "/work/project", Fs: fs})
	require.NoError(t, err)
	assert.Equal(t, "/etc/envstrap/ci.yaml", used)
	assert.Equal(t, "interactive", cfg.Mode)

	_, _, err = Load(LoadOptions{ConfigFile: "/missing.yaml", Fs: fs})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/missing.yaml")
}

// TestLoad_Environment verifies that ENVSTRAP_* variables override the file.
func TestLoad_Environment(t *testing.T) {
	t.Setenv("ENVSTRAP_THRESHOLDS_NODE_UPGRADE", "23")
	t.Setenv("ENVSTRAP_MODE", "minimal")
	fs := memFs(t, map[string]string{"/work/project/envstrap.yaml": "mode: full\n"})

	cfg, _, err := Load(LoadOptions{ProjectRoot: "/work/project", Fs: fs})

	require.NoError(t, err)
	assert.Equal(t, "23", cfg.Thresholds.NodeUpgrade)
	assert.Equal(t, "minimal", cfg.Mode)
}

// TestLoad_Invalid verifies that bad values are rejected at load time.
func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"bad mode", "mode: everything\n", "invalid install mode"},
		{"bad version", "thresholds:\n  pandoc: latest\n", "thresholds.pandoc"},
		{"inverted node thresholds", "thresholds:\n  node_baseline: \"22\"\n  node_upgrade: \"20\"\n", "node_upgrade"},
		{"empty marker", "project:\n  marker: \"\"\n", "project.marker"},
		{"malformed yaml", "mode: [\n", "failed to read config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := memFs(t, map[string]string{"/p/envstrap.yaml": tt.content})
			_, _, err := Load(LoadOptions{ProjectRoot: "/p", Fs: fs})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

// TestMinimums verifies the probe minimum mapping.
func TestMinimums(t *testing.T) {
	m := DefaultConfig().Minimums()
	assert.Equal(t, "3.12", m[model.ToolPython])
	assert.Equal(t, "18", m[model.ToolNode])
	assert.Len(t, m, len(model.AllTools))
}
