// Package server starts variant servers and owns them until they are
// stopped.
package server

import (
	"context"
	"fmt"
	"io"
	"sync"

	apperrors "github.com/agbru/abcompare/internal/errors"
	"github.com/agbru/abcompare/internal/logging"
	"github.com/agbru/abcompare/internal/options"
	"github.com/agbru/abcompare/internal/runner"
)

// Waiter blocks until a URL is reachable.
type Waiter interface {
	Wait(ctx context.Context, url string) (attempts int, err error)
}

// Lifecycle launches serve commands and waits for them to come up.
type Lifecycle struct {
	starter runner.Starter
	waiter  Waiter
	logger  logging.Logger
	// Output receives server output; nil discards it.
	Output io.Writer
	// OnReady, when set, is called with the number of probes a server took.
	OnReady func(v options.Variant, attempts int)
}

// NewLifecycle creates a Lifecycle.
func NewLifecycle(starter runner.Starter, waiter Waiter, logger logging.Logger) *Lifecycle {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Lifecycle{starter: starter, waiter: waiter, logger: logger}
}

// Start runs command in the background and returns a Handle once url is
// reachable. If the server never becomes reachable the process is
// terminated before the error is returned.
func (l *Lifecycle) Start(ctx context.Context, v options.Variant, command, url string) (*Handle, error) {
	proc, err := l.starter.Start(ctx, command, l.Output)
	if err != nil {
		return nil, fmt.Errorf("starting %s server: %w", v, err)
	}
	l.logger.Info("server launched",
		logging.String("variant", v.String()), logging.String("url", url), logging.Int("pid", proc.Pid()))

	attempts, err := l.waiter.Wait(ctx, url)
	if l.OnReady != nil {
		l.OnReady(v, attempts)
	}
	if err != nil {
		if termErr := proc.Terminate(); termErr != nil {
			l.logger.Error("terminating unreachable server", termErr, logging.String("variant", v.String()))
		}
		return nil, fmt.Errorf("waiting for %s server: %w", v, err)
	}
	l.logger.Info("server ready",
		logging.String("variant", v.String()), logging.String("url", url), logging.Int("attempts", attempts))
	return &Handle{Variant: v, URL: url, Attempts: attempts, proc: proc, logger: l.logger}, nil
}

// Handle owns a running server. Stop consumes it.
type Handle struct {
	Variant  options.Variant
	URL      string
	Attempts int

	proc   runner.Process
	logger logging.Logger

	mu      sync.Mutex
	stopped bool
}

// Stop terminates the server. Every call after the first returns
// apperrors.ErrHandleStopped without touching the process.
func (h *Handle) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return apperrors.ErrHandleStopped
	}
	h.stopped = true
	if err := h.proc.Terminate(); err != nil {
		return fmt.Errorf("stopping %s server: %w", h.Variant, err)
	}
	h.logger.Info("server stopped", logging.String("variant", h.Variant.String()))
	return nil
}
