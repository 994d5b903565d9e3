package reachability

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/abcompare/internal/errors"
)

var errRefused = errors.New("connection refused")

// scriptedProber fails until the configured attempt.
type scriptedProber struct {
	succeedAt int
	calls     int
}

func (p *scriptedProber) Probe(context.Context, string) error {
	p.calls++
	if p.succeedAt > 0 && p.calls >= p.succeedAt {
		return nil
	}
	return errRefused
}

type recordingSleep struct {
	calls []time.Duration
}

func (s *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return nil
}

func TestWait(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		succeedAt    int
		maxAttempts  int
		wantAttempts int
		wantSleeps   int
		wantErr      bool
	}{
		{name: "first probe succeeds", succeedAt: 1, maxAttempts: 5, wantAttempts: 1, wantSleeps: 0},
		{name: "succeeds on third", succeedAt: 3, maxAttempts: 5, wantAttempts: 3, wantSleeps: 2},
		{name: "succeeds on last", succeedAt: 5, maxAttempts: 5, wantAttempts: 5, wantSleeps: 4},
		{name: "never reachable", succeedAt: 0, maxAttempts: 5, wantAttempts: 5, wantSleeps: 4, wantErr: true},
		{name: "single attempt budget", succeedAt: 0, maxAttempts: 1, wantAttempts: 1, wantSleeps: 0, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			prober := &scriptedProber{succeedAt: tt.succeedAt}
			sleeper := &recordingSleep{}
			w := &Waiter{
				Prober:      prober,
				Interval:    200 * time.Millisecond,
				MaxAttempts: tt.maxAttempts,
				Sleep:       sleeper.sleep,
			}

			attempts, err := w.Wait(context.Background(), "http://localhost:4200")
			assert.Equal(t, tt.wantAttempts, attempts)
			assert.Equal(t, tt.wantAttempts, prober.calls)
			assert.Len(t, sleeper.calls, tt.wantSleeps)
			for _, d := range sleeper.calls {
				assert.Equal(t, 200*time.Millisecond, d)
			}

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrServerUnreachable)
			var unreachable *apperrors.UnreachableError
			require.ErrorAs(t, err, &unreachable)
			assert.Equal(t, tt.maxAttempts, unreachable.Attempts)
			assert.Equal(t, "http://localhost:4200", unreachable.URL)
		})
	}
}

func TestWait_ContextCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())

	w := &Waiter{
		Prober:      &scriptedProber{},
		MaxAttempts: 100,
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}
	attempts, err := w.Wait(ctx, "http://localhost:4200")
	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWait_OnAttempt(t *testing.T) {
	t.Parallel()
	var seen []int
	w := &Waiter{
		Prober:      &scriptedProber{succeedAt: 2},
		MaxAttempts: 3,
		Sleep:       (&recordingSleep{}).sleep,
		OnAttempt:   func(n int, _ error) { seen = append(seen, n) },
	}
	_, err := w.Wait(context.Background(), "http://localhost:4200")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, seen)
}

func TestDialAddress(t *testing.T) {
	t.Parallel()
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{url: "http://localhost:4200?tracerbench=true", want: "localhost:4200"},
		{url: "http://example.com", want: "example.com:80"},
		{url: "https://example.com/app", want: "example.com:443"},
		{url: "http://[::1]:8080", want: "[::1]:8080"},
		{url: "ftp://example.com", wantErr: true},
		{url: "http://", wantErr: true},
	}
	for _, tt := range tests {
		got, err := dialAddress(tt.url)
		if tt.wantErr {
			assert.Error(t, err, tt.url)
			continue
		}
		require.NoError(t, err, tt.url)
		assert.Equal(t, tt.want, got)
	}
}

func TestTCPProber(t *testing.T) {
	t.Parallel()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	p := TCPProber{Timeout: time.Second}
	assert.NoError(t, p.Probe(context.Background(), "http://"+addr+"?tracerbench=true"))

	require.NoError(t, ln.Close())
	assert.Error(t, p.Probe(context.Background(), "http://"+addr))
}

func TestSleepContext(t *testing.T) {
	t.Parallel()
	assert.NoError(t, SleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
}
