// Package apperrors defines structured application error types,
// allowing for a clear distinction between error classes (configuration,
// subprocess, reachability) and for carrying the underlying cause.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// Structured types implement Unwrap() and Is() so callers can match them
// against the package sentinels with errors.Is() and errors.As().
package apperrors
