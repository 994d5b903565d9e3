// Package reachability polls a server URL until it accepts connections.
package reachability

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	apperrors "github.com/agbru/abcompare/internal/errors"
	"github.com/agbru/abcompare/internal/logging"
)

const (
	// DefaultProbeTimeout bounds a single probe.
	DefaultProbeTimeout = time.Second
	// DefaultInterval is the pause between failed probes.
	DefaultInterval = 200 * time.Millisecond
	// DefaultMaxAttempts is the number of probes before giving up.
	DefaultMaxAttempts = 600
)

// Prober checks a URL once.
type Prober interface {
	// Probe returns nil when the server behind rawURL is reachable.
	Probe(ctx context.Context, rawURL string) error
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, rawURL string) error

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context, rawURL string) error { return f(ctx, rawURL) }

// TCPProber treats a URL as reachable when its host accepts a TCP
// connection. The connection is closed immediately.
type TCPProber struct {
	// Timeout bounds the dial; zero means DefaultProbeTimeout.
	Timeout time.Duration
}

// Probe implements Prober.
func (p TCPProber) Probe(ctx context.Context, rawURL string) error {
	addr, err := dialAddress(rawURL)
	if err != nil {
		return err
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return conn.Close()
}

// dialAddress returns host:port for rawURL, filling the port in from the
// scheme when the URL has none.
func dialAddress(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing %q: %w", rawURL, err)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("url %q has no host", rawURL)
	}
	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "https":
			port = "443"
		case "http", "":
			port = "80"
		default:
			return "", fmt.Errorf("url %q: no default port for scheme %q", rawURL, u.Scheme)
		}
	}
	return net.JoinHostPort(host, port), nil
}

// SleepContext pauses for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Waiter is a bounded polling loop.
type Waiter struct {
	Prober      Prober
	Interval    time.Duration
	MaxAttempts int
	// Sleep pauses between attempts; nil means SleepContext.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnAttempt, when set, is told the outcome of every probe.
	OnAttempt func(attempt int, err error)
	Logger    logging.Logger
}

// NewWaiter returns a Waiter using TCPProber.
func NewWaiter(interval time.Duration, maxAttempts int, logger logging.Logger) *Waiter {
	return &Waiter{
		Prober:      TCPProber{},
		Interval:    interval,
		MaxAttempts: maxAttempts,
		Logger:      logger,
	}
}

// Wait probes rawURL until it is reachable. It returns the number of
// attempts made. After MaxAttempts failed probes the error is an
// *apperrors.UnreachableError; no sleep follows the last probe.
func (w *Waiter) Wait(ctx context.Context, rawURL string) (int, error) {
	maxAttempts := w.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	sleep := w.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return attempt - 1, err
		}
		err := w.Prober.Probe(ctx, rawURL)
		if w.OnAttempt != nil {
			w.OnAttempt(attempt, err)
		}
		if err == nil {
			if w.Logger != nil {
				w.Logger.Debug("server reachable", logging.String("url", rawURL), logging.Int("attempts", attempt))
			}
			return attempt, nil
		}
		if attempt >= maxAttempts {
			return attempt, &apperrors.UnreachableError{URL: rawURL, Attempts: attempt}
		}
		if err := sleep(ctx, w.Interval); err != nil {
			return attempt, err
		}
	}
}
