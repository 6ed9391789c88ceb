package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/envstrap/internal/model"
)

// fakeCommander resolves binaries from a map and returns canned output.
type fakeCommander struct {
	paths   map[string]string // binary name -> path
	outputs map[string]string // path -> output
	errs    map[string]error  // path -> error
	calls   []string
}

func (f *fakeCommander) LookPath(name string) (string, error) {
	if p, ok := f.paths[name]; ok {
		return p, nil
	}
	return "", errors.New("executable file not found")
}

func (f *fakeCommander) Output(_ context.Context, path string, _ ...string) (string, error) {
	f.calls = append(f.calls, path)
	return f.outputs[path], f.errs[path]
}

var testMinimums = map[model.ToolID]string{
	model.ToolPython: "3.12",
	model.ToolUV:     "0.1",
	model.ToolNode:   "18",
	model.ToolPandoc: "2.0",
}

// TestProbe_Present verifies a tool that is found and meets its minimum.
func TestProbe_Present(t *testing.T) {
	cmd := &fakeCommander{
		paths:   map[string]string{"python3": "/usr/bin/python3"},
		outputs: map[string]string{"/usr/bin/python3": "Python 3.12.3\n"},
	}
	p := NewProber(cmd, DefaultSpecs(testMinimums, nil))

	st := p.Probe(context.Background(), model.ToolPython)

	assert.True(t, st.Present)
	assert.Equal(t, "/usr/bin/python3", st.Path)
	assert.Equal(t, "3.12.3", st.VersionString)
	assert.Equal(t, "3.12", st.Minimum)
	assert.True(t, st.MeetsMinimum)
	assert.Equal(t, model.ClassSatisfied, st.Classify())
}

// TestProbe_Absent verifies that a missing binary is not an error and
// that no version query is attempted.
func TestProbe_Absent(t *testing.T) {
	cmd := &fakeCommander{}
	p := NewProber(cmd, DefaultSpecs(testMinimums, nil))

	st := p.Probe(context.Background(), model.ToolNode)

	assert.False(t, st.Present)
	assert.False(t, st.MeetsMinimum)
	assert.Empty(t, st.VersionString)
	assert.Empty(t, cmd.calls)
	assert.Equal(t, model.ClassMissing, st.Classify())
}

// TestProbe_BelowMinimum verifies the degraded classification.
func TestProbe_BelowMinimum(t *testing.T) {
	cmd := &fakeCommander{
		paths:   map[string]string{"python3": "/usr/bin/python3"},
		outputs: map[string]string{"/usr/bin/python3": "Python 3.10.12\n"},
	}
	st := NewProber(cmd, DefaultSpecs(testMinimums, nil)).Probe(context.Background(), model.ToolPython)

	assert.True(t, st.Present)
	assert.False(t, st.MeetsMinimum)
	assert.Equal(t, model.ClassDegraded, st.Classify())
}

// TestProbe_Unparseable verifies that garbage output keeps the raw line
// and fails the minimum rather than raising.
func TestProbe_Unparseable(t *testing.T) {
	cmd := &fakeCommander{
		paths:   map[string]string{"pandoc": "/usr/bin/pandoc"},
		outputs: map[string]string{"/usr/bin/pandoc": "pandoc (development build)\nmore\n"},
	}
	st := NewProber(cmd, DefaultSpecs(testMinimums, nil)).Probe(context.Background(), model.ToolPandoc)

	assert.True(t, st.Present)
	assert.False(t, st.MeetsMinimum)
	assert.Equal(t, "pandoc (development build)", st.VersionString)
}

// TestProbe_QueryFails verifies that a failing version query still counts
// as present and that partial output is scanned.
func TestProbe_QueryFails(t *testing.T) {
	cmd := &fakeCommander{
		paths:   map[string]string{"uv": "/home/dev/.local/bin/uv"},
		outputs: map[string]string{"/home/dev/.local/bin/uv": "uv 0.4.18\n"},
		errs:    map[string]error{"/home/dev/.local/bin/uv": errors.New("exit status 2")},
	}
	st := NewProber(cmd, DefaultSpecs(testMinimums, nil)).Probe(context.Background(), model.ToolUV)

	assert.True(t, st.Present)
	assert.True(t, st.MeetsMinimum)
	assert.Equal(t, "0.4.18", st.VersionString)
}

// TestProbe_FallbackBinary verifies that alternative binary names are tried.
func TestProbe_FallbackBinary(t *testing.T) {
	cmd := &fakeCommander{
		paths:   map[string]string{"nodejs": "/usr/bin/nodejs"},
		outputs: map[string]string{"/usr/bin/nodejs": "v18.19.1\n"},
	}
	st := NewProber(cmd, DefaultSpecs(testMinimums, nil)).Probe(context.Background(), model.ToolNode)

	assert.True(t, st.Present)
	assert.Equal(t, "/usr/bin/nodejs", st.Path)
	assert.True(t, st.MeetsMinimum)
}

// TestProbe_VersionedInterpreter verifies that an interpreter installed
// next to an older distribution python3 is the one observed.
func TestProbe_VersionedInterpreter(t *testing.T) {
	cmd := &fakeCommander{
		paths: map[string]string{
			"python3":    "/usr/bin/python3",
			"python3.12": "/usr/bin/python3.12",
		},
		outputs: map[string]string{
			"/usr/bin/python3":    "Python 3.10.12\n",
			"/usr/bin/python3.12": "Python 3.12.3\n",
		},
	}
	specs := DefaultSpecs(testMinimums, InterpreterBinaries([]string{"python3.12", "python3.12-venv"}))

	st := NewProber(cmd, specs).Probe(context.Background(), model.ToolPython)

	assert.Equal(t, "/usr/bin/python3.12", st.Path)
	assert.Equal(t, "3.12.3", st.VersionString)
	assert.Equal(t, model.ClassSatisfied, st.Classify())

	// Without the versioned binary the generic name is still found.
	delete(cmd.paths, "python3.12")
	st = NewProber(cmd, specs).Probe(context.Background(), model.ToolPython)
	assert.Equal(t, "/usr/bin/python3", st.Path)
	assert.Equal(t, model.ClassDegraded, st.Classify())
}

// TestInterpreterBinaries verifies which install packages name a binary.
func TestInterpreterBinaries(t *testing.T) {
	tests := []struct {
		name     string
		packages []string
		want     []string
	}{
		{name: "versioned interpreter", packages: []string{"python3.12", "python3.12-venv"}, want: []string{"python3.12"}},
		{name: "generic package", packages: []string{"python3", "python3-venv"}, want: []string{"python3"}},
		{name: "no interpreter", packages: []string{"libpython3.12"}, want: nil},
		{name: "empty", packages: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InterpreterBinaries(tt.packages))
		})
	}
}

// TestDefaultSpecs_PythonCandidates verifies candidate order and that the
// generic names are not repeated.
func TestDefaultSpecs_PythonCandidates(t *testing.T) {
	specs := DefaultSpecs(testMinimums, []string{"python3.12", "python3"})
	assert.Equal(t, model.ToolPython, specs[0].Tool)
	assert.Equal(t, []string{"python3.12", "python3", "python"}, specs[0].Binaries)

	specs = DefaultSpecs(testMinimums, nil)
	assert.Equal(t, []string{"python3", "python"}, specs[0].Binaries)
}

// TestProbe_UnknownTool verifies that an unconfigured tool reads as absent.
func TestProbe_UnknownTool(t *testing.T) {
	p := NewProber(&fakeCommander{}, nil)
	st := p.Probe(context.Background(), model.ToolXeLaTeX)
	assert.Equal(t, model.ToolXeLaTeX, st.Tool)
	assert.False(t, st.Present)
}

// TestProbeAll verifies that every configured tool gets an entry.
func TestProbeAll(t *testing.T) {
	cmd := &fakeCommander{
		paths:   map[string]string{"python3": "/usr/bin/python3"},
		outputs: map[string]string{"/usr/bin/python3": "Python 3.12.3"},
	}
	p := NewProber(cmd, DefaultSpecs(testMinimums, nil))

	set := p.ProbeAll(context.Background())

	require.Len(t, set, len(model.AllTools))
	assert.True(t, set.Get(model.ToolPython).Present)
	assert.False(t, set.Get(model.ToolXeLaTeX).Present)
	assert.Equal(t, model.AllTools, p.Tools())
}

// TestExecCommander_LookPathUsesExplicitPath verifies that lookups honor
// the commander's PATH rather than the process PATH.
func TestExecCommander_LookPathUsesExplicitPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture requires a POSIX system")
	}

	dir := t.TempDir()
	tool := filepath.Join(dir, "fake-tool")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\necho 'fake-tool 1.2.3'\n"), 0o755))

	withDir := NewExecCommander(dir, []string{"PATH=" + dir})
	path, err := withDir.LookPath("fake-tool")
	require.NoError(t, err)
	assert.Equal(t, tool, path)

	out, err := withDir.Output(context.Background(), path, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "1.2.3")

	without := NewExecCommander(dir, []string{"PATH=/nonexistent"})
	_, err = without.LookPath("fake-tool")
	assert.Error(t, err)
}
