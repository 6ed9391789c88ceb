package project

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// FindRoot returns the project root for dir: the top-level directory of the
// git working tree containing dir, or dir itself when git is unavailable or
// dir is not inside a repository.
//
// For a linked worktree this is the worktree root, not the main
// repository, which is what a per-worktree bootstrap needs.
func FindRoot(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	out, err := runGit(abs, "rev-parse", "--show-toplevel")
	if err != nil {
		return abs
	}
	if top := strings.TrimSpace(out); top != "" {
		return top
	}
	return abs
}

// runGit executes a git command in dir and returns its stdout.
//
// dir is passed with -C so the process working directory is never changed.
// On failure the error includes git's stderr for diagnostics.
func runGit(dir string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", dir}, args...)

	// #nosec G204 -- args are constructed internally, not from user input
	cmd := exec.Command("git", fullArgs...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("git %s failed", strings.Join(args, " "))
		if s := strings.TrimSpace(stderr.String()); s != "" {
			message = fmt.Sprintf("%s: %s", message, s)
		}
		return "", fmt.Errorf("%s: %w", message, err)
	}

	return stdout.String(), nil
}
