// Package project reads what the provisioner needs from the project tree.
//
// A project is identified by its marker file (pyproject.toml). From it the
// package reads the optional dependency groups; from an optional
// package.json it reads the Node.js engine requirement. It also owns the
// selection record file under the project cache directory.
//
// All file access goes through an afero.Fs so tests run against an
// in-memory filesystem.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/tidwall/jsonc"

	"github.com/shinji-kodama/envstrap/internal/probe"
)

// DefaultMarker is the file that identifies the project root.
const DefaultMarker = "pyproject.toml"

// PackageJSON is the Node.js manifest that may pin an engine version.
const PackageJSON = "package.json"

// Project is a project directory.
type Project struct {
	// Root is the absolute project directory.
	Root string

	// Marker is the marker file name relative to Root.
	Marker string

	fs afero.Fs
}

// New creates a Project rooted at root. An empty marker means
// DefaultMarker.
func New(fsys afero.Fs, root, marker string) *Project {
	if marker == "" {
		marker = DefaultMarker
	}
	return &Project{Root: root, Marker: marker, fs: fsys}
}

// MarkerPath returns the absolute marker file path.
func (p *Project) MarkerPath() string {
	return filepath.Join(p.Root, p.Marker)
}

// MarkerPresent reports whether the marker file exists.
func (p *Project) MarkerPresent() bool {
	ok, err := afero.Exists(p.fs, p.MarkerPath())
	return err == nil && ok
}

// pyproject is the subset of pyproject.toml the provisioner reads.
type pyproject struct {
	Project struct {
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
}

// OptionalGroups returns the names declared under
// [project.optional-dependencies], sorted. A missing marker yields no
// groups and no error.
func (p *Project) OptionalGroups() ([]string, error) {
	data, err := afero.ReadFile(p.fs, p.MarkerPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", p.Marker, err)
	}

	var doc pyproject
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", p.Marker, err)
	}

	groups := make([]string, 0, len(doc.Project.OptionalDependencies))
	for name := range doc.Project.OptionalDependencies {
		groups = append(groups, name)
	}
	sort.Strings(groups)
	return groups, nil
}

// packageJSON is the subset of package.json the provisioner reads.
type packageJSON struct {
	Engines struct {
		Node string `json:"node"`
	} `json:"engines"`
}

// NodeEngine returns the lowest Node.js version allowed by the
// package.json "engines.node" constraint (">=20.0.0" yields "20.0.0").
// With alternatives the lowest one wins ("^22 || ^20" yields "20").
// It returns "" when there is no package.json or no usable constraint.
// Comments and trailing commas are tolerated.
func (p *Project) NodeEngine() (string, error) {
	data, err := afero.ReadFile(p.fs, filepath.Join(p.Root, PackageJSON))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read %s: %w", PackageJSON, err)
	}

	var pkg packageJSON
	if err := json.Unmarshal(jsonc.ToJSON(data), &pkg); err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", PackageJSON, err)
	}

	return lowestAlternative(pkg.Engines.Node), nil
}

// lowestAlternative returns the lowest version named by the "||"
// alternatives of a semver range, or "" when none names a version.
func lowestAlternative(constraint string) string {
	lowest := ""
	for _, alt := range strings.Split(constraint, "||") {
		v, ok := probe.Extract(alt)
		if !ok {
			continue
		}
		if lowest == "" || !probe.AtLeast(v, lowest) {
			lowest = v
		}
	}
	return lowest
}

// RaiseBaseline returns engine when it is above baseline, baseline
// otherwise. An engine hint can only tighten the requirement.
func RaiseBaseline(baseline, engine string) string {
	if engine == "" || probe.AtLeast(baseline, engine) {
		return baseline
	}
	return engine
}
