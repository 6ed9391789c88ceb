// Package detect probes the host to determine the execution context
// (containerized vs bare-metal) and the operating system release.
//
// All probes are read-only and never fail: an unreadable marker simply
// contributes no evidence. Filesystem access goes through afero so that
// tests (and the container integration test) can substitute the root
// filesystem being inspected.
package detect
