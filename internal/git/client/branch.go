package client

import (
	"context"
	"fmt"
	"strings"
)

const branchFormat = "%(HEAD)%1f%(refname)%1f%(objectname)"

// Branches lists local and remote-tracking branches. Remote names keep the
// remote prefix (origin/main); symbolic remote HEADs are skipped.
func (c *Repo) Branches(ctx context.Context) ([]Branch, error) {
	out, err := c.run(ctx, "for-each-ref", "--format="+branchFormat, "refs/heads", "refs/remotes")
	if err != nil {
		return nil, err
	}
	return parseBranches(out), nil
}

func parseBranches(out string) []Branch {
	branches := []Branch{}
	for _, line := range strings.Split(out, "\n") {
		parts := strings.Split(line, "\x1f")
		if len(parts) != 3 {
			continue
		}
		ref := parts[1]
		b := Branch{Current: parts[0] == "*", CommitHash: parts[2]}
		switch {
		case strings.HasPrefix(ref, "refs/heads/"):
			b.Name = strings.TrimPrefix(ref, "refs/heads/")
		case strings.HasPrefix(ref, "refs/remotes/"):
			if strings.HasSuffix(ref, "/HEAD") {
				continue
			}
			b.Name = strings.TrimPrefix(ref, "refs/remotes/")
			b.IsRemote = true
		default:
			continue
		}
		branches = append(branches, b)
	}
	return branches
}

// CreateBranch creates name at HEAD and optionally switches to it.
func (c *Repo) CreateBranch(ctx context.Context, name string, checkout bool) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: branch name is required", ErrInvalidArgument)
	}
	if checkout {
		_, err := c.run(ctx, "checkout", "-b", name)
		return err
	}
	_, err := c.run(ctx, "branch", name)
	return err
}

// Checkout switches to branch.
func (c *Repo) Checkout(ctx context.Context, branch string) error {
	branch = strings.TrimSpace(branch)
	if branch == "" {
		return fmt.Errorf("%w: branch name is required", ErrInvalidArgument)
	}
	_, err := c.run(ctx, "checkout", branch, "--")
	return err
}

// DeleteBranch deletes a local branch; force drops unmerged work.
func (c *Repo) DeleteBranch(ctx context.Context, name string, force bool) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: branch name is required", ErrInvalidArgument)
	}
	flag := "-d"
	if force {
		flag = "-D"
	}
	_, err := c.run(ctx, "branch", flag, name)
	return err
}

// Merge merges opts.Branch into the current branch. Conflicts are reported
// as the git error and left in the work tree.
func (c *Repo) Merge(ctx context.Context, opts MergeOptions) error {
	branch := strings.TrimSpace(opts.Branch)
	if branch == "" {
		return fmt.Errorf("%w: branch name is required", ErrInvalidArgument)
	}
	args := []string{"merge", "--no-edit"}
	if opts.NoFastForward {
		args = append(args, "--no-ff")
	}
	args = append(args, branch)
	_, err := c.run(ctx, args...)
	return err
}
