package executor

import (
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/expand"
)

// Env is the environment every action runs with. Search path extensions
// are explicit values carried here rather than mutations of the process
// environment, so each step sees exactly the PATH the previous steps
// produced.
//
// Env is immutable; WithPath returns a new value.
type Env struct {
	base  []string
	extra []string
}

// NewEnv creates an Env from an inherited environment ("KEY=value" pairs)
// and directories to put in front of its PATH.
func NewEnv(base []string, extraPath ...string) Env {
	e := Env{base: append([]string(nil), base...)}
	return e.WithPath(extraPath...)
}

// WithPath returns an Env with dirs added to the front of the search path.
// Directories already present are not added again. A leading "~/" is
// resolved against the environment's HOME.
func (e Env) WithPath(dirs ...string) Env {
	next := Env{
		base:  e.base,
		extra: append([]string(nil), e.extra...),
	}
	for _, d := range dirs {
		d = e.expandHome(strings.TrimSpace(d))
		if d == "" || next.hasDir(d) {
			continue
		}
		next.extra = append(next.extra, d)
	}
	return next
}

// Get returns the value of key, with PATH reflecting the extensions.
func (e Env) Get(key string) string {
	if key == "PATH" {
		return e.Path()
	}
	return expand.ListEnviron(e.base...).Get(key).String()
}

// Path returns the effective search path.
func (e Env) Path() string {
	dirs := append([]string(nil), e.extra...)
	if inherited := expand.ListEnviron(e.base...).Get("PATH").String(); inherited != "" {
		dirs = append(dirs, inherited)
	}
	return strings.Join(dirs, string(filepath.ListSeparator))
}

// List returns the environment as "KEY=value" pairs for a child process.
func (e Env) List() []string {
	out := make([]string, 0, len(e.base)+1)
	for _, kv := range e.base {
		if strings.HasPrefix(kv, "PATH=") {
			continue
		}
		out = append(out, kv)
	}
	return append(out, "PATH="+e.Path())
}

func (e Env) hasDir(dir string) bool {
	for _, d := range e.extra {
		if d == dir {
			return true
		}
	}
	return false
}

func (e Env) expandHome(dir string) string {
	if !strings.HasPrefix(dir, "~/") {
		return dir
	}
	home := expand.ListEnviron(e.base...).Get("HOME").String()
	if home == "" {
		return dir
	}
	return filepath.Join(home, dir[2:])
}
