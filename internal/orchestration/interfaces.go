package orchestration

import (
	"context"
	"time"

	"github.com/agbru/abcompare/internal/options"
	"github.com/agbru/abcompare/internal/server"
	"github.com/agbru/abcompare/internal/sysmon"
)

// StateTiming records how a state ended.
type StateTiming struct {
	State    State
	Duration time.Duration
	Err      error
}

// Report is the outcome of a run. It serves as the shared domain type
// between orchestration and presentation layers.
type Report struct {
	// Config is the normalized configuration, nil if normalization failed.
	Config options.Config
	// CompareCommand is the comparison command line, empty if not reached.
	CompareCommand string
	// Timings lists the visited states in order.
	Timings []StateTiming
	// Host is the load sample taken before comparing.
	Host sysmon.Stats
	// Err is the run error, nil on success.
	Err error
}

// Normalizer fills in defaults for a partial configuration.
type Normalizer interface {
	Normalize(ctx context.Context, partial options.Config) (options.Config, error)
}

// VariantBuilder produces the dist directory of a variant.
type VariantBuilder interface {
	Build(ctx context.Context, cfg options.Config, v options.Variant) (string, error)
}

// ServerStarter launches a variant server and returns once it is reachable.
type ServerStarter interface {
	Start(ctx context.Context, v options.Variant, command, url string) (*server.Handle, error)
}

// HostSampler measures host load.
type HostSampler func(ctx context.Context) sysmon.Stats

// ProgressReporter defines the interface for displaying run progress.
// This interface decouples the orchestration layer from the presentation
// layer: implementations decide how states are rendered while the
// orchestrator only drives the sequence.
type ProgressReporter interface {
	// StateStarted is called when s begins.
	StateStarted(s State)
	// StateFinished is called when s ends, with the error that ended it.
	StateFinished(s State, d time.Duration, err error)
	// Warn reports a condition that does not stop the run.
	Warn(msg string)
	// RunFinished is called once with the final report.
	RunFinished(r Report)
}

// NullProgressReporter is a no-op implementation of ProgressReporter.
// Useful for quiet mode or testing.
type NullProgressReporter struct{}

func (NullProgressReporter) StateStarted(State)                       {}
func (NullProgressReporter) StateFinished(State, time.Duration, error) {}
func (NullProgressReporter) Warn(string)                              {}
func (NullProgressReporter) RunFinished(Report)                       {}
