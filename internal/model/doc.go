// Package model defines the domain types and value objects for the
// envstrap CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (ExecutionContext, ToolStatus, Plan, GroupSelection, etc.)
// are transient and process-scoped: they are rebuilt by probing the host on
// every run. The only thing written to disk is the optional group record,
// which is owned by the project package.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
