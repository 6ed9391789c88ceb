package detect

import (
	"bufio"
	"bytes"
	"os"
	"strings"

	"github.com/spf13/afero"

	"github.com/shinji-kodama/envstrap/internal/model"
)

// Marker files created by container runtimes at the root of the container
// filesystem. Their mere existence is sufficient evidence.
const (
	// DockerEnvFile is created by Docker in every container.
	DockerEnvFile = "/.dockerenv"

	// ContainerEnvFile is created by Podman (and Buildah) in every container.
	ContainerEnvFile = "/run/.containerenv"

	// InitCgroupFile lists the control groups of process 1.
	InitCgroupFile = "/proc/1/cgroup"

	// OSReleaseFile is the freedesktop os-release file.
	OSReleaseFile = "/etc/os-release"
)

// cgroupTokens are substrings of /proc/1/cgroup paths that only appear
// when PID 1 runs inside a container (cgroup v1 layouts).
var cgroupTokens = []string{"docker", "kubepods", "containerd", "lxc", "libpod", "podman"}

// Detector inspects the host filesystem and environment.
//
// Usage:
//
//	d := detect.NewDetector()
//	ctx := d.Context()
//	if ctx.Containerized { /* report only */ }
type Detector struct {
	fs     afero.Fs
	getenv func(string) string
}

// NewDetector creates a Detector backed by the real filesystem and process
// environment.
func NewDetector() *Detector {
	return NewDetectorWithFs(afero.NewOsFs(), os.Getenv)
}

// NewDetectorWithFs creates a Detector backed by the given filesystem and
// environment lookup. A nil getenv is treated as an empty environment.
func NewDetectorWithFs(fs afero.Fs, getenv func(string) string) *Detector {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	return &Detector{fs: fs, getenv: getenv}
}

// Context determines whether the process runs inside a container.
//
// Evidence is collected from every probe (rather than stopping at the first
// match) so the report can show exactly why a context was chosen. Absence of
// all markers means bare-metal; there is no error condition.
func (d *Detector) Context() model.ExecutionContext {
	var evidence []string

	for _, marker := range []string{DockerEnvFile, ContainerEnvFile} {
		if exists, _ := afero.Exists(d.fs, marker); exists {
			evidence = append(evidence, marker)
		}
	}

	if token, ok := d.cgroupEvidence(); ok {
		evidence = append(evidence, InitCgroupFile+" ("+token+")")
	}

	// systemd-nspawn, podman and LXC export "container" to PID 1's
	// environment, which is inherited by login shells in the container.
	if v := strings.TrimSpace(d.getenv("container")); v != "" {
		evidence = append(evidence, "$container="+v)
	}

	return model.ExecutionContext{
		Containerized: len(evidence) > 0,
		Evidence:      evidence,
	}
}

// cgroupEvidence scans /proc/1/cgroup for container runtime tokens and
// returns the first one found.
func (d *Detector) cgroupEvidence() (string, bool) {
	data, err := afero.ReadFile(d.fs, InitCgroupFile)
	if err != nil {
		return "", false
	}
	return ParseCgroup(data)
}

// ParseCgroup looks for container runtime tokens in the contents of a
// /proc/<pid>/cgroup file. Each line has the form
// "hierarchy-ID:controller-list:cgroup-path"; only the path is inspected.
func ParseCgroup(data []byte) (string, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), ":", 3)
		if len(parts) != 3 {
			continue
		}
		path := parts[2]
		for _, token := range cgroupTokens {
			if strings.Contains(path, token) {
				return token, true
			}
		}
	}
	return "", false
}
