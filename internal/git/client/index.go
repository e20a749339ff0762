package client

import (
	"context"
	"fmt"
	"strings"
)

// Add stages files.
func (c *Repo) Add(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("%w: no files to stage", ErrInvalidArgument)
	}
	_, err := c.run(ctx, pathspec([]string{"add"}, files)...)
	return err
}

// AddAll stages every change in the work tree, including deletions.
func (c *Repo) AddAll(ctx context.Context) error {
	_, err := c.run(ctx, "add", "--all")
	return err
}

// Reset unstages files, or the whole index when files is empty.
func (c *Repo) Reset(ctx context.Context, files []string) error {
	if !c.hasHead(ctx) {
		// nothing committed yet: unstaging means dropping index entries
		args := pathspec([]string{"rm", "--cached", "-r", "--quiet"}, files)
		if len(files) == 0 {
			args = append(args, "--", ".")
		}
		_, err := c.run(ctx, args...)
		return err
	}
	_, err := c.run(ctx, pathspec([]string{"reset", "--quiet", "HEAD"}, files)...)
	return err
}

// Discard throws away work tree changes to files, or to every tracked file
// when files is empty. Untracked files are left alone.
func (c *Repo) Discard(ctx context.Context, files []string) error {
	if len(files) == 0 {
		files = []string{"."}
	}
	_, err := c.run(ctx, pathspec([]string{"checkout"}, files)...)
	return err
}

// Commit records the index and returns the new HEAD hash. The message is
// passed through untouched; git rejects an empty one.
func (c *Repo) Commit(ctx context.Context, opts CommitOptions) (string, error) {
	args := []string{"commit", "-m", opts.Message}
	if opts.AllowEmpty {
		args = append(args, "--allow-empty")
	}
	if opts.Amend {
		args = append(args, "--amend")
	}
	if _, err := c.run(ctx, args...); err != nil {
		return "", err
	}
	out, err := c.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("resolve new commit: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (c *Repo) hasHead(ctx context.Context) bool {
	_, err := c.run(ctx, "rev-parse", "--verify", "--quiet", "HEAD")
	return err == nil
}

// CommitCount returns the number of commits reachable from HEAD.
func (c *Repo) CommitCount(ctx context.Context) (int, error) {
	if !c.hasHead(ctx) {
		return 0, nil
	}
	out, err := c.run(ctx, "rev-list", "--count", "HEAD")
	if err != nil {
		return 0, err
	}
	var n int
	if _, err := fmt.Sscanf(strings.TrimSpace(out), "%d", &n); err != nil {
		return 0, fmt.Errorf("parse commit count: %w", err)
	}
	return n, nil
}
