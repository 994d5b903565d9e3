//go:generate mockgen -source=runner.go -destination=mocks/mock_runner.go -package=mocks

package runner

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/abcompare/internal/errors"
	"github.com/agbru/abcompare/internal/format"
	"github.com/agbru/abcompare/internal/logging"
	"github.com/agbru/abcompare/internal/ui"
)

const (
	// DefaultGracePeriod is how long a terminated process group gets between
	// SIGTERM and SIGKILL.
	DefaultGracePeriod = 5 * time.Second
	// stderrTailLines bounds the stderr excerpt carried by a SubprocessError.
	stderrTailLines = 20
)

// Result is the outcome of a foreground command.
type Result struct {
	Command  string
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Executor runs a shell command to completion.
type Executor interface {
	// Run executes command and blocks until it exits. A non-zero exit is
	// reported as a *apperrors.SubprocessError.
	Run(ctx context.Context, command string) (Result, error)
}

// Process is a running background command.
type Process interface {
	// Pid returns the operating system process id of the shell.
	Pid() int
	// Done is closed once the process has exited and been reaped.
	Done() <-chan struct{}
	// Terminate stops the process group: SIGTERM, a grace period, then
	// SIGKILL. Terminating an exited process is not an error.
	Terminate() error
}

// Starter launches long-lived background commands.
type Starter interface {
	// Start launches command without waiting for it. Output of the process
	// is copied to out; a nil out discards it.
	Start(ctx context.Context, command string, out io.Writer) (Process, error)
}

// Shell runs commands through the user's shell. Foreground output is
// streamed to Out line by line, indented under a command header, while
// being captured into the Result.
type Shell struct {
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is appended to the inherited environment.
	Env []string
	// Out receives the streamed output of foreground commands.
	Out io.Writer
	// GracePeriod overrides DefaultGracePeriod when positive.
	GracePeriod time.Duration
	// Logger receives debug records for each command.
	Logger logging.Logger
	// Observe, when set, is called once per foreground command.
	Observe func(Result, error)
}

var (
	_ Executor = (*Shell)(nil)
	_ Starter  = (*Shell)(nil)
)

// NewShell creates a Shell streaming to out.
func NewShell(out io.Writer, logger logging.Logger) *Shell {
	return &Shell{Out: out, Logger: logger}
}

// Run implements Executor.
func (s *Shell) Run(ctx context.Context, command string) (Result, error) {
	start := time.Now()
	con := &console{w: s.out()}
	con.printHeader(command)

	res := Result{Command: command, ExitCode: -1}
	cmd := s.command(ctx, command)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return s.finish(res, start, &apperrors.SubprocessError{Command: command, ExitCode: -1, Err: err})
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return s.finish(res, start, &apperrors.SubprocessError{Command: command, ExitCode: -1, Err: err})
	}
	if err := cmd.Start(); err != nil {
		return s.finish(res, start, &apperrors.SubprocessError{Command: command, ExitCode: -1, Err: err})
	}

	var outBuf, errBuf bytes.Buffer
	var g errgroup.Group
	g.Go(func() error { return drain(stdout, &outBuf, con) })
	g.Go(func() error { return drain(stderr, &errBuf, con) })
	readErr := g.Wait()
	waitErr := cmd.Wait()

	res.Stdout = outBuf.String()
	res.Stderr = errBuf.String()
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	switch {
	case ctx.Err() != nil:
		return s.finish(res, start, &apperrors.SubprocessError{
			Command: command, ExitCode: -1, Stderr: format.TailLines(res.Stderr, stderrTailLines), Err: ctx.Err(),
		})
	case waitErr != nil:
		return s.finish(res, start, &apperrors.SubprocessError{
			Command: command, ExitCode: res.ExitCode, Stderr: format.TailLines(res.Stderr, stderrTailLines), Err: waitErr,
		})
	case readErr != nil:
		return s.finish(res, start, &apperrors.SubprocessError{
			Command: command, ExitCode: res.ExitCode, Err: fmt.Errorf("reading output: %w", readErr),
		})
	}
	return s.finish(res, start, nil)
}

func (s *Shell) finish(res Result, start time.Time, err error) (Result, error) {
	res.Duration = time.Since(start)
	if s.Logger != nil {
		fields := []logging.Field{
			logging.String("command", res.Command),
			logging.Int("exit_code", res.ExitCode),
			logging.Duration("duration", res.Duration),
		}
		if err != nil {
			s.Logger.Debug("command failed", append(fields, logging.Err(err))...)
		} else {
			s.Logger.Debug("command finished", fields...)
		}
	}
	if s.Observe != nil {
		s.Observe(res, err)
	}
	return res, err
}

// Start implements Starter. The process runs in its own process group so
// that Terminate reaches every child the shell spawned.
func (s *Shell) Start(ctx context.Context, command string, out io.Writer) (Process, error) {
	cmd := s.command(ctx, command)
	if out != nil {
		cmd.Stdout = out
		cmd.Stderr = out
	}
	if err := cmd.Start(); err != nil {
		return nil, &apperrors.SubprocessError{Command: command, ExitCode: -1, Err: err}
	}
	if s.Logger != nil {
		s.Logger.Debug("background command started",
			logging.String("command", command), logging.Int("pid", cmd.Process.Pid))
	}

	p := &background{cmd: cmd, grace: s.grace(), done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		close(p.done)
	}()
	return p, nil
}

func (s *Shell) command(ctx context.Context, command string) *exec.Cmd {
	cmd := shellCommand(ctx, command)
	cmd.Dir = s.Dir
	if len(s.Env) > 0 {
		cmd.Env = append(os.Environ(), s.Env...)
	}
	cmd.Cancel = func() error { return ignoreFinished(interruptGroup(cmd.Process)) }
	cmd.WaitDelay = s.grace()
	return cmd
}

func (s *Shell) grace() time.Duration {
	if s.GracePeriod > 0 {
		return s.GracePeriod
	}
	return DefaultGracePeriod
}

func (s *Shell) out() io.Writer {
	if s.Out == nil {
		return io.Discard
	}
	return s.Out
}

// background is a Process started by Shell.Start.
type background struct {
	cmd   *exec.Cmd
	grace time.Duration
	done  chan struct{}
	err   error

	once    sync.Once
	termErr error
}

func (p *background) Pid() int { return p.cmd.Process.Pid }

func (p *background) Done() <-chan struct{} { return p.done }

func (p *background) Terminate() error {
	p.once.Do(func() { p.termErr = p.terminate() })
	return p.termErr
}

func (p *background) terminate() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	if err := ignoreFinished(interruptGroup(p.cmd.Process)); err != nil {
		return fmt.Errorf("terminating pid %d: %w", p.Pid(), err)
	}
	timer := time.NewTimer(p.grace)
	defer timer.Stop()
	select {
	case <-p.done:
		return nil
	case <-timer.C:
	}
	if err := ignoreFinished(killGroup(p.cmd.Process)); err != nil {
		return fmt.Errorf("killing pid %d: %w", p.Pid(), err)
	}
	<-p.done
	return nil
}

func ignoreFinished(err error) error {
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

// console serializes lines from the stdout and stderr readers.
type console struct {
	mu sync.Mutex
	w  io.Writer
}

func (c *console) printHeader(command string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, ui.CommandHeader(command))
}

func (c *console) printLine(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, ui.OutputIndent+ui.Dim(strings.TrimRight(line, "\r\n")))
}

// drain copies r into capture line by line, echoing each line to con.
// bufio.Reader is used instead of a Scanner so long lines are not rejected.
func drain(r io.Reader, capture *bytes.Buffer, con *console) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			capture.WriteString(line)
			con.printLine(line)
		}
		if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
