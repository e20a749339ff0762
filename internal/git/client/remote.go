package client

import (
	"context"
	"fmt"
	"strings"
)

// Remotes lists configured remotes in git's order.
func (c *Repo) Remotes(ctx context.Context) ([]Remote, error) {
	out, err := c.run(ctx, "remote", "-v")
	if err != nil {
		return nil, err
	}
	return parseRemotes(out), nil
}

// parseRemotes reads `git remote -v` lines: "<name>\t<url> (fetch|push)".
func parseRemotes(out string) []Remote {
	remotes := []Remote{}
	index := map[string]int{}
	for _, line := range strings.Split(out, "\n") {
		name, rest, ok := strings.Cut(strings.TrimSpace(line), "\t")
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) < 2 {
			continue
		}
		i, seen := index[name]
		if !seen {
			i = len(remotes)
			index[name] = i
			remotes = append(remotes, Remote{Name: name})
		}
		switch fields[len(fields)-1] {
		case "(fetch)":
			remotes[i].FetchURL = fields[0]
		case "(push)":
			remotes[i].PushURL = fields[0]
		}
	}
	return remotes
}

func (c *Repo) AddRemote(ctx context.Context, name, url string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(url) == "" {
		return fmt.Errorf("%w: remote name and url are required", ErrInvalidArgument)
	}
	_, err := c.run(ctx, "remote", "add", "--", name, url)
	return err
}

func (c *Repo) RemoveRemote(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: remote name is required", ErrInvalidArgument)
	}
	_, err := c.run(ctx, "remote", "remove", name)
	return err
}

// Fetch updates remote-tracking refs from remote, or from every remote when
// remote is empty.
func (c *Repo) Fetch(ctx context.Context, remote string) error {
	args := []string{"fetch", "--prune"}
	if r := strings.TrimSpace(remote); r != "" {
		args = append(args, r)
	} else {
		args = append(args, "--all")
	}
	_, err := c.run(ctx, args...)
	return err
}

// Push publishes commits; see PushOptions for target resolution.
func (c *Repo) Push(ctx context.Context, opts PushOptions) error {
	args := []string{"push"}
	if opts.Force {
		args = append(args, "--force")
	}
	if opts.SetUpstream {
		args = append(args, "--set-upstream")
	}
	target, err := c.resolveTarget(ctx, opts.Remote, opts.Branch, opts.SetUpstream, true)
	if err != nil {
		return err
	}
	_, err = c.run(ctx, append(args, target...)...)
	return err
}

// Pull integrates remote changes; see PullOptions for target resolution.
func (c *Repo) Pull(ctx context.Context, opts PullOptions) error {
	args := []string{"pull"}
	if opts.Rebase {
		args = append(args, "--rebase")
	}
	target, err := c.resolveTarget(ctx, opts.Remote, opts.Branch, false, false)
	if err != nil {
		return err
	}
	_, err = c.run(ctx, append(args, target...)...)
	return err
}

// resolveTarget returns the positional <remote> [<branch>] arguments for
// push/pull. A nil result means "let git follow the upstream".
func (c *Repo) resolveTarget(ctx context.Context, remote, branch string, setUpstream, push bool) ([]string, error) {
	remote = strings.TrimSpace(remote)
	branch = strings.TrimSpace(branch)
	if branch != "" {
		if remote == "" {
			remote = c.defaultRemote
		}
		return []string{remote, branch}, nil
	}

	current, err := c.currentBranch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: choose a branch explicitly", ErrDetachedHead)
	}
	if !setUpstream {
		if up, ok := c.upstream(ctx); ok && (remote == "" || strings.HasPrefix(up, remote+"/")) {
			return nil, nil
		}
	}
	if remote == "" {
		remote = c.defaultRemote
	}
	if push {
		return []string{remote, "HEAD"}, nil
	}
	return []string{remote, current}, nil
}

// upstream returns the short upstream name (origin/main) of the current
// branch, if configured.
func (c *Repo) upstream(ctx context.Context) (string, bool) {
	out, err := c.run(ctx, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{upstream}")
	if err != nil {
		return "", false
	}
	up := strings.TrimSpace(out)
	return up, up != ""
}
