// Package logging provides a unified logging interface for the comparison
// runner. It abstracts the underlying logging implementation (zerolog by
// default), allowing consistent structured logging across components while
// supporting multiple backends.
package logging
