//go:build !unix

package runner

import (
	"context"
	"os"
	"os/exec"
	"runtime"
)

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "/bin/sh", "-c", command)
}

// Without process groups the best available is killing the shell itself.
func interruptGroup(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Kill()
}

func killGroup(p *os.Process) error { return interruptGroup(p) }
