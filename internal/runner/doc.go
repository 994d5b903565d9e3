// Package runner executes shell commands for a comparison run.
//
// Foreground commands (checkouts, installs, builds, the comparison itself)
// go through Executor: their output is streamed to the console under a
// command header and captured for error reporting. Servers go through
// Starter: they run in their own process group and are stopped with
// Process.Terminate, which escalates from SIGTERM to SIGKILL.
package runner
