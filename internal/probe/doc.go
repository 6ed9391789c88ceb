// Package probe resolves the presence and version of the external tools the
// provisioner manages.
//
// Probing is deliberately forgiving: a missing binary, a failing version
// query or an unparseable version string all produce a ToolStatus that
// fails its minimum check, never an error. Version comparison is delegated
// to github.com/hashicorp/go-version; binary lookup walks an explicit search
// path (see Commander) instead of the process PATH, so a freshly installed
// tool in ~/.local/bin is visible without mutating the environment.
package probe
