//go:build integration

package detect

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

// TestContext_InsideUbuntuContainer starts a real Ubuntu container, copies
// the files the detector inspects out of it into an in-memory filesystem,
// and checks that the detector recognizes the container.
//
// Requires a reachable Docker daemon; skipped otherwise.
func TestContext_InsideUbuntuContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "ubuntu:24.04",
			Cmd:   []string{"sleep", "infinity"},
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Skipf("skipping: container engine not available: %v", err)
	}

	// /etc/os-release is a symlink on Ubuntu; copy its target instead.
	sources := map[string]string{
		DockerEnvFile:    DockerEnvFile,
		ContainerEnvFile: ContainerEnvFile,
		OSReleaseFile:    "/usr/lib/os-release",
	}

	fs := afero.NewMemMapFs()
	for dst, src := range sources {
		rc, copyErr := ctr.CopyFileFromContainer(ctx, src)
		if copyErr != nil {
			continue
		}
		data, readErr := io.ReadAll(rc)
		_ = rc.Close()
		require.NoError(t, readErr)
		require.NoError(t, afero.WriteFile(fs, dst, data, 0o644))
	}

	d := NewDetectorWithFs(fs, nil)

	got := d.Context()
	assert.True(t, got.Containerized)
	assert.Contains(t, got.Evidence, DockerEnvFile)

	rel := d.OSRelease()
	assert.True(t, rel.IsUbuntu())
	assert.Equal(t, "24.04", rel.VersionID)
}
