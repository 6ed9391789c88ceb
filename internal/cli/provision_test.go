package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/envstrap/internal/detect"
	"github.com/shinji-kodama/envstrap/internal/executor"
	"github.com/shinji-kodama/envstrap/internal/model"
)

// scriptRunner records every script it is asked to run and fails the ones
// containing a configured substring.
type scriptRunner struct {
	failOn  string
	scripts []string
}

func (r *scriptRunner) Run(_ context.Context, cmd executor.Command) error {
	r.scripts = append(r.scripts, cmd.Script)
	if r.failOn != "" && strings.Contains(cmd.Script, r.failOn) {
		return errors.New("exited with status 1")
	}
	return nil
}

// useRunner routes action scripts to r for the duration of the test.
func useRunner(t *testing.T, r *scriptRunner) {
	t.Helper()
	orig := newRunner
	newRunner = func(io.Reader, io.Writer, io.Writer) executor.Runner { return r }
	t.Cleanup(func() { newRunner = orig })
}

// useHost makes context detection read fsys and an empty environment.
func useHost(t *testing.T, fsys afero.Fs) {
	t.Helper()
	orig := newDetector
	newDetector = func() *detect.Detector { return detect.NewDetectorWithFs(fsys, nil) }
	t.Cleanup(func() { newDetector = orig })
}

// containerHost returns a filesystem carrying the Docker marker file.
func containerHost(t *testing.T) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, detect.DockerEnvFile, nil, 0o644))
	return fsys
}

func recordPath(dir string) string {
	return filepath.Join(dir, ".cache", "envstrap", "optional-groups")
}

// TestProvision_RecordsSelection verifies that a successful run syncs the
// selected groups, records them sorted and deduplicated, and verifies.
func TestProvision_RecordsSelection(t *testing.T) {
	dir := setupProject(t)
	useHost(t, afero.NewMemMapFs())
	runner := &scriptRunner{}
	useRunner(t, runner)

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--minimal", "--group", "viz", "--group", "ml", "--group", "viz"})

	require.NoError(t, cmd.Execute(), stderr.String())

	require.NotEmpty(t, runner.scripts)
	assert.Equal(t, "uv sync --extra ml --extra viz", runner.scripts[len(runner.scripts)-1])

	data, err := os.ReadFile(recordPath(dir))
	require.NoError(t, err)
	assert.Equal(t, "ml\nviz\n", string(data))

	assert.Contains(t, stdout.String(), "Environment status")
}

// TestProvision_SyncFailure verifies that a failed sync exits with the
// mandatory-failure code, leaves the previous record untouched and still
// prints the verification table.
func TestProvision_SyncFailure(t *testing.T) {
	dir := setupProject(t)
	useHost(t, afero.NewMemMapFs())
	runner := &scriptRunner{failOn: "uv sync"}
	useRunner(t, runner)

	require.NoError(t, os.MkdirAll(filepath.Dir(recordPath(dir)), 0o755))
	require.NoError(t, os.WriteFile(recordPath(dir), []byte("ml\n"), 0o644))

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--minimal", "--group", "viz"})

	err := cmd.Execute()

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitMandatoryActionFailed, cliErr.Code)

	data, readErr := os.ReadFile(recordPath(dir))
	require.NoError(t, readErr)
	assert.Equal(t, "ml\n", string(data), "a failed run must not replace the record")

	assert.Contains(t, stdout.String(), "previous run selected groups: ml")
	assert.Contains(t, stdout.String(), "Environment status")
}

// TestProvision_NoRecordWithoutPriorRun verifies that a failed first run
// leaves no record behind.
func TestProvision_NoRecordWithoutPriorRun(t *testing.T) {
	dir := setupProject(t)
	useHost(t, afero.NewMemMapFs())
	useRunner(t, &scriptRunner{failOn: "uv sync"})

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--minimal"})

	require.Error(t, cmd.Execute())
	assert.NoFileExists(t, recordPath(dir))
}

// TestProvision_ContainerizedWithoutMarker verifies that a container run
// outside a project exits with ExitProjectNotFound before running anything.
func TestProvision_ContainerizedWithoutMarker(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	useHost(t, containerHost(t))
	runner := &scriptRunner{}
	useRunner(t, runner)

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitProjectNotFound, cliErr.Code)
	assert.Empty(t, runner.scripts)
	assert.NoFileExists(t, recordPath(dir))
}

// TestProvision_ContainerizedSyncsOnly verifies that inside a container
// the sync is the only action run, whatever the flags.
func TestProvision_ContainerizedSyncsOnly(t *testing.T) {
	setupProject(t)
	useHost(t, containerHost(t))
	runner := &scriptRunner{}
	useRunner(t, runner)

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--full"})

	require.NoError(t, cmd.Execute())
	require.Len(t, runner.scripts, 1)
	assert.Equal(t, "uv sync --extra ml --extra viz", runner.scripts[0])
}

// TestPlanCommand_PipedAnswers verifies that an explicit --interactive
// reads answers from a non-terminal stdin.
func TestPlanCommand_PipedAnswers(t *testing.T) {
	setupProject(t)
	useHost(t, afero.NewMemMapFs())

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetIn(strings.NewReader("y\ny\ny\ny\n"))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"plan", "--interactive", "--format", "json"})

	require.NoError(t, cmd.Execute(), stderr.String())

	var got struct {
		Mode   model.InstallMode `json:"mode"`
		Groups []string          `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got), stdout.String())
	assert.Equal(t, model.ModeInteractive, got.Mode)
	assert.Equal(t, []string{"ml", "viz"}, got.Groups)
	assert.Contains(t, stderr.String(), "[y/N]")
}
