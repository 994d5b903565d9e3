// Package revision turns git refs into short commit identifiers.
package revision

import (
	"context"
	"fmt"
	"strings"

	"github.com/agbru/abcompare/internal/options"
	"github.com/agbru/abcompare/internal/runner"
)

// ShortLength is the number of hex digits requested from git.
const ShortLength = 8

// Resolver resolves refs with git rev-parse in the working directory of its
// Executor.
type Resolver struct {
	exec runner.Executor
}

var _ options.RevisionResolver = (*Resolver)(nil)

// NewResolver creates a Resolver running git through exec.
func NewResolver(exec runner.Executor) *Resolver {
	return &Resolver{exec: exec}
}

// Command returns the git command used to resolve ref.
func Command(ref string) string {
	return fmt.Sprintf("git rev-parse --short=%d %s", ShortLength, ref)
}

// Resolve returns the short identifier of ref.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	res, err := r.exec.Run(ctx, Command(ref))
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", ref, err)
	}
	sha := strings.TrimSpace(res.Stdout)
	if sha == "" {
		return "", fmt.Errorf("resolving %q: git printed no revision", ref)
	}
	return sha, nil
}
