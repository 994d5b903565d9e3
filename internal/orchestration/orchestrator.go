package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/abcompare/internal/logging"
	"github.com/agbru/abcompare/internal/metrics"
	"github.com/agbru/abcompare/internal/options"
	"github.com/agbru/abcompare/internal/runner"
	"github.com/agbru/abcompare/internal/server"
	"github.com/agbru/abcompare/internal/sysmon"
)

const (
	// DefaultToolPackage is the benchmarking tool installed before building.
	DefaultToolPackage = "tracerbench@3"
	// ToolBinary is the command name of the benchmarking tool.
	ToolBinary = "tracerbench"

	tracerName = "github.com/agbru/abcompare/internal/orchestration"
)

// Dependencies are the collaborators of an Orchestrator. Normalizer,
// Executor, Builder and Servers are required; the rest have defaults.
type Dependencies struct {
	Normalizer Normalizer
	Executor   runner.Executor
	Builder    VariantBuilder
	Servers    ServerStarter

	Reporter    ProgressReporter
	Metrics     *metrics.Recorder
	Logger      logging.Logger
	SampleHost  HostSampler
	Tracer      trace.Tracer
	ToolPackage string
}

// Orchestrator drives a comparison run through its states.
type Orchestrator struct {
	deps Dependencies
}

// New creates an Orchestrator, filling unset optional dependencies.
func New(deps Dependencies) *Orchestrator {
	if deps.Reporter == nil {
		deps.Reporter = NullProgressReporter{}
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewRecorder()
	}
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	if deps.SampleHost == nil {
		deps.SampleHost = func(ctx context.Context) sysmon.Stats {
			return sysmon.SampleContext(ctx, sysmon.DefaultSampleWindow)
		}
	}
	if deps.Tracer == nil {
		deps.Tracer = otel.Tracer(tracerName)
	}
	if deps.ToolPackage == "" {
		deps.ToolPackage = DefaultToolPackage
	}
	return &Orchestrator{deps: deps}
}

// InstallToolCommand returns the global install command for pkg.
func InstallToolCommand(useYarn bool, pkg string) string {
	if useYarn {
		return "yarn global add " + pkg
	}
	return "npm install -g " + pkg
}

// BuildCompareCommand returns the comparison command line for cfg.
func BuildCompareCommand(cfg options.Config) string {
	parts := []string{
		ToolBinary, "compare",
		"--experimentURL=" + cfg.String(options.ExperimentURL),
		"--controlURL=" + cfg.String(options.ControlURL),
		fmt.Sprintf("--regressionThreshold=%d", cfg.Int(options.RegressionThreshold)),
		"--fidelity=" + cfg.String(options.Fidelity),
	}
	if cfg.Bool(options.Headless) {
		parts = append(parts, "--headless")
	}
	if cfg.Bool(options.RuntimeStats) {
		parts = append(parts, "--runtimeStats")
	}
	if cfg.Bool(options.Report) {
		parts = append(parts, "--report")
	}
	return strings.Join(parts, " ")
}

// Run executes a full comparison for partial. Servers that were started
// are stopped exactly once whatever the outcome; errors from comparing and
// stopping are joined.
func (o *Orchestrator) Run(ctx context.Context, partial options.Config) (Report, error) {
	ctx, span := o.deps.Tracer.Start(ctx, "abcompare.run")
	defer span.End()

	r := &run{o: o}
	err := r.execute(ctx, partial)
	r.report.Err = err

	o.deps.Metrics.SetRunSuccess(err == nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.deps.Logger.Error("run failed", err)
	} else {
		o.deps.Logger.Info("run completed")
	}
	o.deps.Reporter.RunFinished(r.report)
	return r.report, err
}

// run holds the state of a single Run call.
type run struct {
	o       *Orchestrator
	report  Report
	handles []*server.Handle
}

func (r *run) execute(ctx context.Context, partial options.Config) error {
	deps := r.o.deps

	var cfg options.Config
	err := r.step(ctx, StateNormalizing, func(ctx context.Context) error {
		c, err := deps.Normalizer.Normalize(ctx, partial)
		if err != nil {
			return err
		}
		if err := options.Validate(c); err != nil {
			return err
		}
		cfg = c
		return nil
	})
	if err != nil {
		return err
	}
	r.report.Config = cfg
	r.report.CompareCommand = BuildCompareCommand(cfg)

	if err := r.step(ctx, StateInstallingTool, func(ctx context.Context) error {
		_, err := deps.Executor.Run(ctx, InstallToolCommand(cfg.Bool(options.UseYarn), deps.ToolPackage))
		return err
	}); err != nil {
		return err
	}

	for _, st := range []struct {
		state   State
		variant options.Variant
	}{
		{StateBuildingControl, options.Control},
		{StateBuildingExperiment, options.Experiment},
	} {
		if err := r.step(ctx, st.state, func(ctx context.Context) error {
			_, err := deps.Builder.Build(ctx, cfg, st.variant)
			return err
		}); err != nil {
			return err
		}
	}

	runErr := r.serveAndCompare(ctx, cfg)
	// Stopping must happen even after cancellation.
	stopErr := r.step(context.WithoutCancel(ctx), StateTerminatingServers, func(context.Context) error {
		return r.stopServers()
	})
	if err := errors.Join(runErr, stopErr); err != nil {
		return err
	}

	deps.Reporter.StateStarted(StateDone)
	return nil
}

func (r *run) serveAndCompare(ctx context.Context, cfg options.Config) error {
	deps := r.o.deps

	for _, st := range []struct {
		state   State
		variant options.Variant
	}{
		{StateStartingControlServer, options.Control},
		{StateStartingExperimentServer, options.Experiment},
	} {
		if err := r.step(ctx, st.state, func(ctx context.Context) error {
			v := st.variant
			h, err := deps.Servers.Start(ctx, v, cfg.String(v.ServeCommandKey()), cfg.String(v.URLKey()))
			if err != nil {
				return err
			}
			r.handles = append(r.handles, h)
			return nil
		}); err != nil {
			return err
		}
	}

	return r.step(ctx, StateComparing, func(ctx context.Context) error {
		r.checkHost(ctx)
		_, err := deps.Executor.Run(ctx, r.report.CompareCommand)
		return err
	})
}

func (r *run) checkHost(ctx context.Context) {
	deps := r.o.deps
	stats := deps.SampleHost(ctx)
	r.report.Host = stats
	deps.Metrics.ObserveHost(stats.CPUPercent, stats.MemPercent)
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Float64("host.cpu_percent", stats.CPUPercent),
		attribute.Float64("host.memory_percent", stats.MemPercent),
	)
	if stats.Busy(sysmon.BusyCPUPercent) {
		deps.Logger.Warn("host is busy, comparison results may be noisy",
			logging.Float64("cpu_percent", stats.CPUPercent))
		deps.Reporter.Warn(fmt.Sprintf("host CPU at %.0f%%, comparison results may be noisy", stats.CPUPercent))
	}
}

// stopServers stops every handle created, in reverse start order.
func (r *run) stopServers() error {
	var errs []error
	for i := len(r.handles) - 1; i >= 0; i-- {
		if err := r.handles[i].Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	r.handles = nil
	return errors.Join(errs...)
}

// step runs fn as state s: it is reported, traced, timed and logged.
func (r *run) step(ctx context.Context, s State, fn func(context.Context) error) error {
	deps := r.o.deps
	ctx, span := deps.Tracer.Start(ctx, s.String(), trace.WithAttributes(attribute.String("state", s.String())))
	defer span.End()

	deps.Reporter.StateStarted(s)
	deps.Logger.Debug("state started", logging.String("state", s.String()))
	start := time.Now()

	err := fn(ctx)

	d := time.Since(start)
	deps.Metrics.ObserveState(s.String(), d)
	r.report.Timings = append(r.report.Timings, StateTiming{State: s, Duration: d, Err: err})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		err = fmt.Errorf("%s: %w", s, err)
	}
	deps.Logger.Info("state finished", logging.String("state", s.String()), logging.Duration("duration", d))
	deps.Reporter.StateFinished(s, d, err)
	return err
}
