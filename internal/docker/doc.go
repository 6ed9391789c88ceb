// Package docker probes the local container engine through the Docker
// Engine SDK.
//
// The provisioner never manages containers. It only reports, as an
// informational row of the status table, whether an engine is reachable
// and which version it runs, which tells a bare-metal user whether the
// containerized workflow is available to them.
package docker
