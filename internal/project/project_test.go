package project

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/envstrap/internal/model"
)

const root = "/work/project"

func newProject(t *testing.T, files map[string]string) *Project {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(root, name), []byte(content), 0o644))
	}
	return New(fs, root, "")
}

const samplePyproject = `
[project]
name = "research"
version = "0.1.0"
dependencies = ["numpy"]

[project.optional-dependencies]
viz = ["matplotlib"]
docs = ["pypandoc"]
ml = ["torch"]
`

// TestMarkerPresent verifies marker detection.
func TestMarkerPresent(t *testing.T) {
	assert.True(t, newProject(t, map[string]string{"pyproject.toml": samplePyproject}).MarkerPresent())
	assert.False(t, newProject(t, nil).MarkerPresent())
	assert.Equal(t, "/work/project/pyproject.toml", newProject(t, nil).MarkerPath())
}

// TestOptionalGroups verifies group discovery from pyproject.toml.
func TestOptionalGroups(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		want    []string
		wantErr bool
	}{
		{
			name:  "declared groups, sorted",
			files: map[string]string{"pyproject.toml": samplePyproject},
			want:  []string{"docs", "ml", "viz"},
		},
		{
			name:  "no optional dependencies",
			files: map[string]string{"pyproject.toml": "[project]\nname = \"x\"\n"},
			want:  []string{},
		},
		{
			name: "no marker",
			want: nil,
		},
		{
			name:    "malformed toml",
			files:   map[string]string{"pyproject.toml": "[project\n"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newProject(t, tt.files).OptionalGroups()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "pyproject.toml")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestNodeEngine verifies engine hints, including JSONC input.
func TestNodeEngine(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{"range", `{"engines": {"node": ">=20.0.0"}}`, "20.0.0", false},
		{"caret", `{"engines": {"node": "^22"}}`, "22", false},
		{"jsonc", "{\n  // charts need a recent runtime\n  \"engines\": {\"node\": \">=20\",},\n}", "20", false},
		{"alternatives take the lowest", `{"engines": {"node": "^22 || ^20"}}`, "20", false},
		{"alternatives in any order", `{"engines": {"node": "18.x || >=20.5.0 || 16.20"}}`, "16.20", false},
		{"alternative without version", `{"engines": {"node": "* || ^20"}}`, "20", false},
		{"no engines", `{"name": "charts"}`, "", false},
		{"malformed", `{"engines": `, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newProject(t, map[string]string{"package.json": tt.content}).NodeEngine()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := newProject(t, nil).NodeEngine()
	require.NoError(t, err)
	assert.Empty(t, got)
}

// TestRaiseBaseline verifies that engine hints only tighten the baseline.
func TestRaiseBaseline(t *testing.T) {
	assert.Equal(t, "20.0.0", RaiseBaseline("18", "20.0.0"))
	assert.Equal(t, "18", RaiseBaseline("18", "16"))
	assert.Equal(t, "18", RaiseBaseline("18", "18"))
	assert.Equal(t, "18", RaiseBaseline("18", ""))
}

// TestRecord_RoundTrip verifies sorted, deduplicated, one-per-line output.
func TestRecord_RoundTrip(t *testing.T) {
	p := newProject(t, nil)
	rec := p.NewRecord("")

	_, found, err := rec.Read()
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, rec.Write(model.NewGroupSelection("viz", "docs", "viz")))

	data, err := afero.ReadFile(p.fs, "/work/project/.cache/envstrap/optional-groups")
	require.NoError(t, err)
	assert.Equal(t, "docs\nviz\n", string(data))

	sel, found, err := rec.Read()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"docs", "viz"}, sel.Sorted())
}

// TestRecord_Empty verifies that an empty selection still leaves a record.
func TestRecord_Empty(t *testing.T) {
	rec := newProject(t, nil).NewRecord("")

	require.NoError(t, rec.Write(model.GroupSelection{}))

	sel, found, err := rec.Read()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 0, sel.Len())
}

// TestRecord_Path verifies cache directory resolution.
func TestRecord_Path(t *testing.T) {
	p := newProject(t, nil)
	assert.Equal(t, "/work/project/.cache/envstrap/optional-groups", p.NewRecord("").Path())
	assert.Equal(t, "/work/project/tmp/optional-groups", p.NewRecord("tmp").Path())
	assert.Equal(t, "/var/cache/envstrap/optional-groups", p.NewRecord("/var/cache/envstrap").Path())
}

// TestFindRoot verifies git top-level discovery from a subdirectory, and the
// working-directory fallback outside a repository.
func TestFindRoot(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	repo := t.TempDir()
	cmd := exec.Command("git", "-C", repo, "init")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git init failed: %s", out)

	sub := filepath.Join(repo, "analysis", "notebooks")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	// Resolve symlinks so macOS /var -> /private/var does not break equality.
	wantRoot, err := filepath.EvalSymlinks(repo)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(FindRoot(sub))
	require.NoError(t, err)
	assert.Equal(t, wantRoot, gotRoot)

	outside := t.TempDir()
	assert.Equal(t, outside, FindRoot(outside))
}
