// Package variant prepares the build output of one side of a comparison.
package variant

import (
	"context"
	"fmt"

	"github.com/agbru/abcompare/internal/logging"
	"github.com/agbru/abcompare/internal/options"
	"github.com/agbru/abcompare/internal/runner"
)

// Builder checks out, installs and builds a variant.
type Builder struct {
	exec   runner.Executor
	logger logging.Logger
}

// NewBuilder creates a Builder running commands through exec.
func NewBuilder(exec runner.Executor, logger logging.Logger) *Builder {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Builder{exec: exec, logger: logger}
}

// InstallCommand returns the dependency install command.
func InstallCommand(useYarn bool) string {
	if useYarn {
		return "yarn install"
	}
	return "npm install"
}

// Commands returns the commands Build runs for v, in order. It is empty
// when the variant's build flag is off.
func Commands(cfg options.Config, v options.Variant) []string {
	if !cfg.Bool(v.BuildFlagKey()) {
		return nil
	}
	return []string{
		"git checkout " + cfg.String(v.SHAKey()),
		InstallCommand(cfg.Bool(options.UseYarn)),
		cfg.String(v.BuildCommandKey()),
	}
}

// Build produces the dist directory of v and returns its path. When the
// variant is not to be built the configured dist is returned as is.
func (b *Builder) Build(ctx context.Context, cfg options.Config, v options.Variant) (string, error) {
	dist := cfg.String(v.DistKey())
	cmds := Commands(cfg, v)
	if len(cmds) == 0 {
		b.logger.Info("reusing existing build", logging.String("variant", v.String()), logging.String("dist", dist))
		return dist, nil
	}
	for _, c := range cmds {
		if _, err := b.exec.Run(ctx, c); err != nil {
			return "", fmt.Errorf("building %s: %w", v, err)
		}
	}
	b.logger.Info("variant built", logging.String("variant", v.String()), logging.String("dist", dist))
	return dist, nil
}
