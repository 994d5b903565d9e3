package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/agbru/abcompare/internal/cli"
	"github.com/agbru/abcompare/internal/config"
	"github.com/agbru/abcompare/internal/logging"
	"github.com/agbru/abcompare/internal/metrics"
	"github.com/agbru/abcompare/internal/options"
	"github.com/agbru/abcompare/internal/orchestration"
	"github.com/agbru/abcompare/internal/reachability"
	"github.com/agbru/abcompare/internal/revision"
	"github.com/agbru/abcompare/internal/runner"
	"github.com/agbru/abcompare/internal/server"
	"github.com/agbru/abcompare/internal/variant"
)

// components are the collaborators wired for one invocation.
type components struct {
	shell      *runner.Shell
	normalizer *options.Normalizer
	recorder   *metrics.Recorder
}

// wire builds the shell, normalizer and recorder. Command output goes to
// console.
func (a *Application) wire(console io.Writer) (*components, error) {
	preset, err := a.Config.PresetDefaults()
	if err != nil {
		return nil, err
	}
	rec := metrics.NewRecorder()
	shell := &runner.Shell{
		Dir:         a.Config.WorkDir,
		Out:         console,
		GracePeriod: a.Config.GracePeriod,
		Logger:      a.logger,
		Observe:     func(_ runner.Result, err error) { rec.ObserveSubprocess(err) },
	}
	return &components{
		shell:      shell,
		normalizer: options.NewNormalizer(preset, revision.NewResolver(shell)),
		recorder:   rec,
	}, nil
}

// runCompare orchestrates a full comparison run.
func (a *Application) runCompare(ctx context.Context) error {
	ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	c, err := a.wire(a.Out)
	if err != nil {
		return err
	}
	preset, _ := a.Config.PresetDefaults()

	waiter := reachability.NewWaiter(preset.WaitInterval, preset.WaitAttempts, a.logger)
	lifecycle := server.NewLifecycle(c.shell, waiter, a.logger)
	if a.Config.Verbose {
		lifecycle.Output = a.Out
	}
	lifecycle.OnReady = func(v options.Variant, attempts int) {
		c.recorder.ObserveReachability(v.String(), attempts)
	}

	a.logger.Info("starting comparison",
		logging.String("preset", preset.Name),
		logging.String("workdir", a.Config.WorkDir),
		logging.Duration("wait_budget", preset.WaitBudget()))

	orch := orchestration.New(orchestration.Dependencies{
		Normalizer:  c.normalizer,
		Executor:    c.shell,
		Builder:     variant.NewBuilder(c.shell, a.logger),
		Servers:     lifecycle,
		Reporter:    cli.NewCLIProgressReporter(a.Out, !a.Config.Verbose),
		Metrics:     c.recorder,
		Logger:      a.logger,
		ToolPackage: a.Config.ToolPackage,
	})
	_, runErr := orch.Run(ctx, a.Config.Options)

	if a.Config.MetricsFile != "" {
		if err := c.recorder.WriteToTextfile(a.Config.MetricsFile); err != nil {
			a.logger.Error("writing metrics file", err, logging.String("path", a.Config.MetricsFile))
		} else {
			a.logger.Debug("metrics written", logging.String("path", a.Config.MetricsFile))
		}
	}
	return runErr
}

// runConfig prints the normalized configuration and the compare command.
// Git output goes to the error stream so out stays valid YAML.
func (a *Application) runConfig(ctx context.Context, out io.Writer) error {
	c, err := a.wire(a.ErrWriter)
	if err != nil {
		return err
	}
	cfg, err := c.normalizer.Normalize(ctx, a.Config.Options)
	if err != nil {
		return err
	}
	if err := options.Validate(cfg); err != nil {
		return err
	}
	if err := config.WriteYAML(out, cfg); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "# %s\n", orchestration.BuildCompareCommand(cfg))
	return err
}
