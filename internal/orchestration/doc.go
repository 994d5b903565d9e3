// Package orchestration drives an A/B comparison run: it normalizes the
// configuration, installs the benchmarking tool, builds both variants,
// serves them, runs the comparison and stops the servers. It decouples the
// run from presentation via the ProgressReporter interface.
package orchestration
