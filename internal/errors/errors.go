package apperrors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates a completed comparison.
	ExitErrorGeneric  = 1   // Indicates a failed run (subprocess, reachability, ...).
	ExitErrorConfig   = 2   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the run was interrupted (e.g., SIGINT).
)

// Sentinel errors matched with errors.Is against the structured types below.
var (
	// ErrSubprocessFailed matches every SubprocessError.
	ErrSubprocessFailed = errors.New("subprocess failed")
	// ErrServerUnreachable matches every UnreachableError.
	ErrServerUnreachable = errors.New("server unreachable")
	// ErrHandleStopped is returned when a server handle is stopped a second time.
	ErrHandleStopped = errors.New("server handle already stopped")
)

// ConfigError represents a user configuration error, such as invalid flags,
// environment values or config file entries. It indicates that the run
// cannot start due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// SubprocessError reports a shell command that could not be run or exited
// with a non-zero status. Output already streamed to the console is not
// repeated; only the tail of standard error is kept for the message.
type SubprocessError struct {
	// Command is the shell command line that failed.
	Command string
	// ExitCode is the process exit status, or -1 when it never started.
	ExitCode int
	// Stderr is the trailing part of the captured standard error.
	Stderr string
	// Err is the underlying error from os/exec.
	Err error
}

// Error returns a message naming the failed command and its exit status.
func (e *SubprocessError) Error() string {
	var b strings.Builder
	if e.ExitCode >= 0 {
		fmt.Fprintf(&b, "command %q exited with status %d", e.Command, e.ExitCode)
	} else {
		fmt.Fprintf(&b, "command %q failed: %v", e.Command, e.Err)
	}
	if tail := strings.TrimSpace(e.Stderr); tail != "" {
		b.WriteString(": ")
		b.WriteString(tail)
	}
	return b.String()
}

// Unwrap returns the underlying os/exec error.
func (e *SubprocessError) Unwrap() error { return e.Err }

// Is reports whether target is ErrSubprocessFailed.
func (e *SubprocessError) Is(target error) bool { return target == ErrSubprocessFailed }

// UnreachableError reports a server URL that never accepted a connection
// within the polling budget.
type UnreachableError struct {
	// URL is the address that was probed.
	URL string
	// Attempts is the number of probes made before giving up.
	Attempts int
}

// Error returns a message naming the unreachable URL.
func (e *UnreachableError) Error() string {
	return fmt.Sprintf("unable to reach server at %s after %d attempts", e.URL, e.Attempts)
}

// Is reports whether target is ErrServerUnreachable.
func (e *UnreachableError) Is(target error) bool { return target == ErrServerUnreachable }

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps a run error to the process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var cfgErr ConfigError
	switch {
	case errors.As(err, &cfgErr):
		return ExitErrorConfig
	case IsContextError(err):
		return ExitErrorCanceled
	default:
		return ExitErrorGeneric
	}
}
