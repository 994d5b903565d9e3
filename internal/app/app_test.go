package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/abcompare/internal/errors"
)

func execute(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	a := New(&out, &errOut, WithRunID("test-run"))
	code = a.Execute(context.Background(), append([]string{"--no-color"}, args...))
	return code, out.String(), errOut.String()
}

func TestExecute_Version(t *testing.T) {
	code, out, _ := execute(t, "version")
	assert.Equal(t, apperrors.ExitSuccess, code)
	assert.True(t, strings.HasPrefix(out, "abcompare dev "), "got %q", out)
}

func TestExecute_Help(t *testing.T) {
	code, out, _ := execute(t, "--help")
	assert.Equal(t, apperrors.ExitSuccess, code)
	for _, want := range []string{"abcompare", "--control-sha", "--preset", "config", "version"} {
		assert.Contains(t, out, want)
	}
}

func TestExecute_Config(t *testing.T) {
	code, out, errOut := execute(t, "config",
		"--control-sha=abc12345",
		"--experiment-sha=def67890",
		"--regression-threshold=25",
	)
	require.Equal(t, apperrors.ExitSuccess, code, "stderr: %s", errOut)

	assert.Contains(t, out, "control-sha: abc12345")
	assert.Contains(t, out, "experiment-sha: def67890")
	assert.Contains(t, out, "regression-threshold: 25")
	assert.Contains(t, out, "# tracerbench compare --experimentURL=http://localhost:4201?tracerbench=true")
	assert.Contains(t, out, "--regressionThreshold=25 --fidelity=low --headless --report")
}

func TestExecute_InteractivePreset(t *testing.T) {
	code, out, errOut := execute(t, "config", "--preset=interactive",
		"--control-sha=abc12345", "--experiment-sha=def67890")
	require.Equal(t, apperrors.ExitSuccess, code, "stderr: %s", errOut)
	assert.Contains(t, out, "--fidelity=high --report")
	assert.NotContains(t, out, "--headless")
}

func TestExecute_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"--frobnicate"}},
		{name: "malformed int", args: []string{"--regression-threshold=many"}},
		{name: "unknown preset", args: []string{"--preset=nightly"}},
		{name: "invalid fidelity", args: []string{"config", "--control-sha=abc12345", "--experiment-sha=def67890", "--fidelity=ultra"}},
		{name: "same urls", args: []string{"config", "--control-sha=abc12345", "--experiment-sha=def67890",
			"--control-url=http://localhost:4200", "--experiment-url=http://localhost:4200"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := execute(t, tt.args...)
			assert.Equal(t, apperrors.ExitErrorConfig, code)
			assert.Empty(t, out)
			assert.Contains(t, errOut, "✘ ")
		})
	}
}
