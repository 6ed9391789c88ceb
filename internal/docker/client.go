package docker

import (
	"context"
	"fmt"
	"net"
	"os"
	"runtime"
	"time"

	"github.com/docker/docker/client"
)

// defaultRequestTimeout bounds every engine request. The engine row is
// informational, so an unresponsive daemon (Docker Desktop paused, a stale
// socket) must not hold up the status table for long.
const defaultRequestTimeout = 5 * time.Second

// Client wraps the Docker Engine SDK client with socket detection.
//
// Usage:
//
//	c, err := docker.NewClient()
//	if err != nil { /* no engine */ }
//	defer c.Close()
//	version, err := c.EngineVersion(ctx)
type Client struct {
	inner *client.Client
}

// NewClient creates a Docker client with automatic socket detection.
//
// The detection order is:
//  1. DOCKER_HOST environment variable (used as-is)
//  2. Platform-specific default socket paths:
//     - Linux: /var/run/docker.sock, then $XDG_RUNTIME_DIR/docker.sock (rootless)
//     - macOS: /var/run/docker.sock, then ~/.docker/run/docker.sock
//     - Windows: npipe:////./pipe/docker_engine
func NewClient() (*Client, error) {
	if dockerHost := os.Getenv("DOCKER_HOST"); dockerHost != "" {
		return newClientWithHost(dockerHost)
	}

	host, err := detectDockerHost()
	if err != nil {
		return nil, err
	}
	return newClientWithHost(host)
}

func newClientWithHost(host string) (*Client, error) {
	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client for host %q: %w", host, err)
	}
	return &Client{inner: c}, nil
}

// detectDockerHost returns the first Docker socket that exists for the
// current platform. Existence is checked, not connectivity; EngineVersion
// does that.
func detectDockerHost() (string, error) {
	switch runtime.GOOS {
	case "linux":
		paths := []string{"/var/run/docker.sock"}
		if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
			paths = append(paths, dir+"/docker.sock")
		}
		return detectUnixSocket(paths)

	case "darwin":
		paths := []string{"/var/run/docker.sock"}
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths, home+"/.docker/run/docker.sock")
		}
		return detectUnixSocket(paths)

	case "windows":
		// os.Stat does not work on named pipes, so probe with a short dial.
		pipePath := `//./pipe/docker_engine`
		conn, err := net.DialTimeout("pipe", pipePath, 1*time.Second)
		if err == nil {
			conn.Close()
			return "npipe://" + pipePath, nil
		}
		return "", fmt.Errorf("Docker named pipe not found at %s: %w", pipePath, err)

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// detectUnixSocket returns the host URI for the first path that exists.
// Paths are checked in order of preference.
func detectUnixSocket(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("Docker socket not found at any of: %v", paths)
}

// EngineVersion returns a one-line description of the engine, e.g.
// "27.3.1 (Docker Engine - Community)".
func (c *Client) EngineVersion(ctx context.Context) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, defaultRequestTimeout)
	defer cancel()

	v, err := c.inner.ServerVersion(reqCtx)
	if err != nil {
		return "", fmt.Errorf("failed to query Docker engine version: %w", err)
	}
	if v.Platform.Name == "" {
		return v.Version, nil
	}
	return fmt.Sprintf("%s (%s)", v.Version, v.Platform.Name), nil
}

// Close releases the client's resources. Safe to call more than once.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}

// ProbeEngine reports the engine version when a container engine is
// reachable, or "" when none is. It never fails: the engine is not a
// requirement, only a line in the status table.
func ProbeEngine(ctx context.Context) string {
	c, err := NewClient()
	if err != nil {
		return ""
	}
	defer c.Close()

	v, err := c.EngineVersion(ctx)
	if err != nil {
		return ""
	}
	return v
}
