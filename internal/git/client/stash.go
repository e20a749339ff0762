package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const stashFormat = "%gd%x1f%gs%x1f%cI"

// Stash shelves tracked changes, optionally under message.
func (c *Repo) Stash(ctx context.Context, message string) error {
	args := []string{"stash", "push"}
	if m := strings.TrimSpace(message); m != "" {
		args = append(args, "-m", m)
	}
	_, err := c.run(ctx, args...)
	return err
}

// StashPop re-applies and drops the newest stash entry.
func (c *Repo) StashPop(ctx context.Context) error {
	_, err := c.run(ctx, "stash", "pop")
	return err
}

// StashList returns stash entries, newest first.
func (c *Repo) StashList(ctx context.Context) ([]StashEntry, error) {
	out, err := c.run(ctx, "stash", "list", "--format="+stashFormat)
	if err != nil {
		return nil, err
	}
	return parseStashList(out)
}

func parseStashList(out string) ([]StashEntry, error) {
	entries := []StashEntry{}
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		f := strings.Split(line, "\x1f")
		if len(f) != 3 {
			return nil, fmt.Errorf("unexpected stash line %q", line)
		}
		entry := StashEntry{Ref: f[0], Message: f[1]}
		if lb, rb := strings.IndexByte(f[0], '{'), strings.IndexByte(f[0], '}'); lb >= 0 && rb > lb {
			entry.Index, _ = strconv.Atoi(f[0][lb+1 : rb])
		}
		if t, err := time.Parse(time.RFC3339, f[2]); err == nil {
			entry.Date = t
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
