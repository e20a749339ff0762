// Package client is the git command façade: one method per git capability,
// bound to a single repository root, with typed options in and normalized
// structs out. Everything except tag resolution and repository detection is
// delegated to the git binary through a runner.Runner.
package client

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gitdesk/internal/git/runner"
	"gitdesk/internal/logging"
)

var (
	// ErrNotRepository reports a path without git metadata at its root.
	ErrNotRepository = errors.New("not a git repository")

	// ErrDetachedHead reports an operation that needs a current branch.
	ErrDetachedHead = errors.New("HEAD is detached")

	// ErrInvalidArgument reports a missing or malformed option.
	ErrInvalidArgument = errors.New("invalid argument")
)

// DefaultRemote is used by push/pull/fetch when no remote is given.
const DefaultRemote = "origin"

// Repo runs git commands against one repository root.
type Repo struct {
	root          string
	r             runner.Runner
	log           logging.Logger
	defaultRemote string
	config        []string
}

// Option configures a Repo.
type Option func(*Repo)

// WithLogger sets the logger used for command tracing.
func WithLogger(l logging.Logger) Option {
	return func(c *Repo) {
		if l != nil {
			c.log = l
		}
	}
}

// WithIdentity makes commits, merges and tags use the given author
// identity instead of whatever git config resolves.
func WithIdentity(name, email string) Option {
	return func(c *Repo) {
		if n := strings.TrimSpace(name); n != "" {
			c.config = append(c.config, "-c", "user.name="+n)
		}
		if e := strings.TrimSpace(email); e != "" {
			c.config = append(c.config, "-c", "user.email="+e)
		}
	}
}

// WithDefaultRemote overrides DefaultRemote for this repo.
func WithDefaultRemote(name string) Option {
	return func(c *Repo) {
		if n := strings.TrimSpace(name); n != "" {
			c.defaultRemote = n
		}
	}
}

// New binds a façade to root without checking it.
func New(root string, r runner.Runner, opts ...Option) *Repo {
	if r == nil {
		r = runner.NewExecRunner("")
	}
	c := &Repo{root: filepath.Clean(root), r: r, log: logging.Nop(), defaultRemote: DefaultRemote}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open binds a façade to root and fails with ErrNotRepository unless root
// itself holds git metadata.
func Open(ctx context.Context, root string, r runner.Runner, opts ...Option) (*Repo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("%w: repository path is required", ErrInvalidArgument)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve repository path: %w", err)
	}
	if !IsRepoPath(abs) {
		return nil, fmt.Errorf("%w: %s", ErrNotRepository, abs)
	}
	return New(abs, r, opts...), nil
}

// Root returns the repository root the façade is bound to.
func (c *Repo) Root() string { return c.root }

// IsRepo reports whether the root still holds git metadata.
func (c *Repo) IsRepo(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	return IsRepoPath(c.root)
}

// Info describes the repository for the UI header.
func (c *Repo) Info(ctx context.Context) (RepoInfo, error) {
	info := RepoInfo{Path: c.root, Name: filepath.Base(c.root)}
	if !c.IsRepo(ctx) {
		return info, nil
	}
	info.IsRepo = true
	ref, err := c.CurrentRef(ctx)
	if err == nil {
		info.CurrentBranch = ref
	}
	remotes, err := c.Remotes(ctx)
	if err != nil {
		return RepoInfo{}, err
	}
	info.Remotes = remotes
	return info, nil
}

// CurrentRef returns the current branch name, or the HEAD commit hash when
// detached.
func (c *Repo) CurrentRef(ctx context.Context) (string, error) {
	if b, err := c.currentBranch(ctx); err == nil {
		return b, nil
	}
	out, err := c.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// currentBranch returns the checked-out branch, including an unborn one.
func (c *Repo) currentBranch(ctx context.Context) (string, error) {
	out, err := c.run(ctx, "symbolic-ref", "--short", "-q", "HEAD")
	if err != nil {
		return "", ErrDetachedHead
	}
	b := strings.TrimSpace(out)
	if b == "" {
		return "", ErrDetachedHead
	}
	return b, nil
}

// RepoRoot returns the repository toplevel for a path inside a work tree.
func RepoRoot(ctx context.Context, r runner.Runner, path string) (string, error) {
	if r == nil {
		r = runner.NewExecRunner("")
	}
	out, err := r.Run(ctx, path, "rev-parse", "--show-toplevel")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v", ErrNotRepository, err)
	}
	return filepath.FromSlash(strings.TrimSpace(out)), nil
}

func (c *Repo) run(ctx context.Context, args ...string) (string, error) {
	full := args
	if len(c.config) > 0 {
		full = append(append([]string{}, c.config...), args...)
	}
	out, err := c.r.Run(ctx, c.root, full...)
	if err != nil {
		c.log.Debug("git command failed", "root", c.root, "op", firstArg(args), "error", err)
		return "", err
	}
	return out, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// pathspec appends "--" and files to args when files is non-empty.
func pathspec(args []string, files []string) []string {
	clean := make([]string, 0, len(files))
	for _, f := range files {
		if strings.TrimSpace(f) != "" {
			clean = append(clean, f)
		}
	}
	if len(clean) == 0 {
		return args
	}
	return append(append(args, "--"), clean...)
}
