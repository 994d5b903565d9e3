package e2e

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// buildBinary compiles cmd/abcompare into a temporary directory.
func buildBinary(t *testing.T) string {
	t.Helper()
	binName := "abcompare"
	if runtime.GOOS == "windows" {
		binName = "abcompare.exe"
	}
	binPath := filepath.Join(t.TempDir(), binName)

	// go test runs from test/e2e; the build needs the module root.
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/abcompare")
	cmd.Dir = "../.."
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to build abcompare: %v", err)
	}
	return binPath
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// TestCLI_E2E verifies the built binary functions correctly
func TestCLI_E2E(t *testing.T) {
	binPath := buildBinary(t)

	tests := []struct {
		name     string
		args     []string
		wantOut  string // substring match (case-insensitive)
		wantCode int
	}{
		{
			name:     "Help",
			args:     []string{"--help"},
			wantOut:  "usage",
			wantCode: 0,
		},
		{
			name:     "Version",
			args:     []string{"version"},
			wantOut:  "abcompare dev",
			wantCode: 0,
		},
		{
			name:     "Config",
			args:     []string{"config", "--control-sha=abc12345", "--experiment-sha=def67890"},
			wantOut:  "# tracerbench compare",
			wantCode: 0,
		},
		{
			name:     "Unknown Flag",
			args:     []string{"--frobnicate"},
			wantOut:  "unknown flag",
			wantCode: 2,
		},
		{
			name:     "Invalid Fidelity",
			args:     []string{"config", "--control-sha=abc12345", "--experiment-sha=def67890", "--fidelity=ultra"},
			wantOut:  "fidelity",
			wantCode: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := exec.Command(binPath, tt.args...)
			cmd.Env = append(os.Environ(), "NO_COLOR=1")
			output, err := cmd.CombinedOutput()
			outStr := string(output)

			if got := exitCode(err); got != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nOutput: %s", got, tt.wantCode, outStr)
			}
			if !strings.Contains(strings.ToLower(outStr), strings.ToLower(tt.wantOut)) {
				t.Errorf("Output missing expected string.\nExpected: %q\nGot:\n%s", tt.wantOut, outStr)
			}
		})
	}
}

// fakeTools writes npm and tracerbench stand-ins to a directory and returns
// it. tracerbench exits with compareExit after echoing its arguments.
func fakeTools(t *testing.T, compareExit int) string {
	t.Helper()
	dir := t.TempDir()
	scripts := map[string]string{
		"npm":         "#!/bin/sh\nexit 0\n",
		"tracerbench": fmt.Sprintf("#!/bin/sh\necho \"tracerbench $*\"\nexit %d\n", compareExit),
	}
	for name, body := range scripts {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// listen opens a local listener standing in for a served variant.
func listen(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ln.Close() })
	return "http://" + ln.Addr().String()
}

func TestCLI_E2E_FullRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stand-ins need a POSIX shell")
	}
	binPath := buildBinary(t)

	tests := []struct {
		name        string
		compareExit int
		wantCode    int
		wantOut     []string
	}{
		{
			name:        "Success",
			compareExit: 0,
			wantCode:    0,
			wantOut:     []string{"tracerbench compare --experimentURL=", "Run Summary", "Global Status"},
		},
		{
			name:        "Compare Fails",
			compareExit: 3,
			wantCode:    1,
			wantOut:     []string{"Run Summary", "exited with status 3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tools := fakeTools(t, tt.compareExit)
			cmd := exec.Command(binPath,
				"--workdir", t.TempDir(),
				"--control-sha=abc12345",
				"--experiment-sha=def67890",
				"--build-control=false",
				"--build-experiment=false",
				"--use-yarn=false",
				"--control-serve-command=sleep 30",
				"--experiment-serve-command=sleep 30",
				"--control-url="+listen(t),
				"--experiment-url="+listen(t),
				"--grace-period=1s",
			)
			cmd.Env = append(os.Environ(),
				"NO_COLOR=1",
				"PATH="+tools+string(os.PathListSeparator)+os.Getenv("PATH"),
			)
			output, err := cmd.CombinedOutput()
			outStr := string(output)

			if got := exitCode(err); got != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nOutput: %s", got, tt.wantCode, outStr)
			}
			for _, want := range tt.wantOut {
				if !strings.Contains(outStr, want) {
					t.Errorf("Output missing %q\nGot:\n%s", want, outStr)
				}
			}
		})
	}
}
