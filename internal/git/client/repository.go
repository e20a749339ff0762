package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gitdesk/internal/git/runner"
)

// Init creates path if needed, runs git init in it and returns a façade.
func Init(ctx context.Context, r runner.Runner, path string, opts ...Option) (*Repo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: repository path is required", ErrInvalidArgument)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve repository path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create repository directory: %w", err)
	}
	c := New(abs, r, opts...)
	if _, err := c.run(ctx, "init"); err != nil {
		return nil, err
	}
	c.log.Info("repository initialised", "path", abs)
	return c, nil
}

// Clone clones opts.URL into opts.Path and returns a façade for it.
// The parent directory is created when missing; git refuses a non-empty
// target on its own.
func Clone(ctx context.Context, r runner.Runner, opts CloneOptions, repoOpts ...Option) (*Repo, error) {
	if strings.TrimSpace(opts.URL) == "" || strings.TrimSpace(opts.Path) == "" {
		return nil, fmt.Errorf("%w: clone url and path are required", ErrInvalidArgument)
	}
	if r == nil {
		r = runner.NewExecRunner("")
	}
	abs, err := filepath.Abs(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve clone path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, fmt.Errorf("create clone parent: %w", err)
	}
	args := []string{"clone"}
	if b := strings.TrimSpace(opts.Branch); b != "" {
		args = append(args, "--branch", b)
	}
	if opts.Recursive {
		args = append(args, "--recursive")
	}
	args = append(args, "--", opts.URL, abs)
	if _, err := r.Run(ctx, filepath.Dir(abs), args...); err != nil {
		return nil, err
	}
	return New(abs, r, repoOpts...), nil
}
