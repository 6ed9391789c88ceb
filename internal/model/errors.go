package model

import "fmt"

// ExitCode defines standard CLI exit codes.
// These codes allow scripts and CI systems to programmatically determine
// the outcome of a provisioning run.
type ExitCode int

const (
	// ExitSuccess indicates the run completed. Optional tools that were not
	// installed because nobody asked for them still count as success.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitUsage indicates an unknown flag or an invalid flag combination.
	ExitUsage ExitCode = 2

	// ExitProjectNotFound indicates the project marker file is missing
	// while running inside a container.
	ExitProjectNotFound ExitCode = 3

	// ExitMandatoryActionFailed indicates a mandatory step (dependency sync,
	// interpreter or dependency manager install) failed.
	ExitMandatoryActionFailed ExitCode = 4

	// ExitConfigError indicates the configuration could not be loaded.
	ExitConfigError ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
