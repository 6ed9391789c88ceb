package probe

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

// defaultQueryTimeout bounds a single version query. Some tools (xelatex
// on a cold font cache) are slow to start, but none should take this long.
const defaultQueryTimeout = 15 * time.Second

// Commander abstracts binary lookup and execution so probes can be tested
// without the real tools installed.
type Commander interface {
	// LookPath resolves a binary name to an absolute path.
	LookPath(name string) (string, error)

	// Output runs the binary and returns its combined stdout and stderr.
	Output(ctx context.Context, path string, args ...string) (string, error)
}

// ExecCommander runs real processes with an explicit environment.
type ExecCommander struct {
	// Dir is the working directory used for lookups of relative PATH
	// entries and as the process working directory.
	Dir string

	// Env is the complete environment ("KEY=value") for lookups and child
	// processes. Its PATH entry is the search path.
	Env []string

	// Timeout bounds each version query. Zero means defaultQueryTimeout.
	Timeout time.Duration
}

// NewExecCommander creates an ExecCommander for the given directory and
// environment. A nil env inherits the process environment.
func NewExecCommander(dir string, env []string) *ExecCommander {
	if env == nil {
		env = os.Environ()
	}
	return &ExecCommander{Dir: dir, Env: env}
}

// LookPath searches the PATH entry of c.Env, not the process PATH.
func (c *ExecCommander) LookPath(name string) (string, error) {
	return interp.LookPathDir(c.Dir, expand.ListEnviron(c.Env...), name)
}

// Output runs path with args and returns the combined output.
// Version queries print to either stream depending on the tool (older
// Python versions write to stderr), so both are captured.
func (c *ExecCommander) Output(ctx context.Context, path string, args ...string) (string, error) {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = defaultQueryTimeout
	}
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// #nosec G204 -- path comes from LookPath over a configured search path
	cmd := exec.CommandContext(queryCtx, path, args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env

	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s %s failed: %w", path, strings.Join(args, " "), err)
	}
	return string(out), nil
}
