package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/agbru/abcompare/internal/format"
	"github.com/agbru/abcompare/internal/orchestration"
	"github.com/agbru/abcompare/internal/ui"
)

// CLIProgressReporter renders run progress on a terminal: a banner per
// state, a spinner while a server comes up, and a summary at the end.
type CLIProgressReporter struct {
	out         io.Writer
	showSpinner bool

	mu   sync.Mutex
	spin Spinner
}

// Verify interface compliance.
var _ orchestration.ProgressReporter = (*CLIProgressReporter)(nil)

// NewCLIProgressReporter creates a reporter writing to out. The spinner is
// only shown when showSpinner is true, typically when out is a terminal and
// server output is not being streamed.
func NewCLIProgressReporter(out io.Writer, showSpinner bool) *CLIProgressReporter {
	return &CLIProgressReporter{out: out, showSpinner: showSpinner}
}

// StateStarted prints the state banner.
func (r *CLIProgressReporter) StateStarted(s orchestration.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s == orchestration.StateDone {
		return
	}
	fmt.Fprintf(r.out, "\n%s\n", ui.StateHeader(s.String()))
	if !r.showSpinner {
		return
	}
	switch s {
	case orchestration.StateStartingControlServer, orchestration.StateStartingExperimentServer:
		r.spin = newSpinner(r.out)
		r.spin.UpdateSuffix(" waiting for server")
		r.spin.Start()
	}
}

// StateFinished stops any spinner and prints the outcome of the state.
func (r *CLIProgressReporter) StateFinished(s orchestration.State, d time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.spin != nil {
		r.spin.Stop()
		r.spin = nil
	}
	if err != nil {
		fmt.Fprintln(r.out, ui.ErrorLine(fmt.Sprintf("%s failed after %s", s, format.FormatExecutionDuration(d))))
		return
	}
	fmt.Fprintln(r.out, ui.SuccessLine(fmt.Sprintf("%s done in %s", s, format.FormatExecutionDuration(d))))
}

// Warn prints a warning line.
func (r *CLIProgressReporter) Warn(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, ui.WarningLine(msg))
}

// RunFinished prints the state summary table and the global status.
func (r *CLIProgressReporter) RunFinished(rep orchestration.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	PresentSummary(rep, r.out)
}

// PresentSummary displays the state durations in a table followed by the
// global status. Padding is computed on plain text so styling does not
// break alignment.
func PresentSummary(rep orchestration.Report, out io.Writer) {
	fmt.Fprintf(out, "\n--- Run Summary ---\n")

	maxStateLen := len("State")
	maxDurationLen := len("Duration")
	durations := make([]string, len(rep.Timings))
	var total time.Duration
	for i, t := range rep.Timings {
		if n := len(t.State.String()); n > maxStateLen {
			maxStateLen = n
		}
		durations[i] = format.FormatExecutionDuration(t.Duration)
		if n := len(durations[i]); n > maxDurationLen {
			maxDurationLen = n
		}
		total += t.Duration
	}

	fmt.Fprintf(out, "%s%s   %s%s   %s\n",
		"State", padRight("", maxStateLen-len("State")),
		"Duration", padRight("", maxDurationLen-len("Duration")),
		"Status")
	for i, t := range rep.Timings {
		name := t.State.String()
		status := ui.SuccessLine("ok")
		if t.Err != nil {
			status = ui.ErrorLine("failed")
		}
		fmt.Fprintf(out, "%s%s   %s%s   %s\n",
			name, padRight("", maxStateLen-len(name)),
			ui.Accent(durations[i]), padRight("", maxDurationLen-len(durations[i])),
			status)
	}
	fmt.Fprintf(out, "Total: %s\n", format.FormatExecutionDuration(total))

	if rep.CompareCommand != "" {
		fmt.Fprintf(out, "Compare command: %s\n", ui.Dim(rep.CompareCommand))
	}
	if rep.Err != nil {
		fmt.Fprintf(out, "\nGlobal Status: %s\n", ui.ErrorLine(firstLine(rep.Err.Error())))
		return
	}
	fmt.Fprintf(out, "\nGlobal Status: %s\n", ui.SuccessLine("comparison completed"))
}

// padRight returns a string of spaces with the given length.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + strings.Repeat(" ", length)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
