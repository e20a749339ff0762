package client

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// DefaultLogLimit caps Log when LogOptions.MaxCount is zero.
const DefaultLogLimit = 100

// Fields: hash, short hash, subject, author date (strict ISO), author name,
// author email, ref names. Unit separator between fields, record separator
// after each commit.
const logFormat = "%H%x1f%h%x1f%s%x1f%aI%x1f%an%x1f%ae%x1f%D%x1e"

// Log returns commit history, newest first. An unborn branch has no
// history and yields an empty list.
func (c *Repo) Log(ctx context.Context, opts LogOptions) ([]Commit, error) {
	if opts.From == "" && opts.To == "" && !c.hasHead(ctx) {
		return []Commit{}, nil
	}
	limit := opts.MaxCount
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	args := []string{"log", fmt.Sprintf("--max-count=%d", limit), "--format=" + logFormat}
	switch {
	case opts.From != "" && opts.To != "":
		args = append(args, opts.From+".."+opts.To)
	case opts.To != "":
		args = append(args, opts.To)
	case opts.From != "":
		args = append(args, opts.From+"..HEAD")
	}
	if opts.File != "" {
		args = append(args, "--", opts.File)
	}
	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return parseLog(out)
}

func parseLog(out string) ([]Commit, error) {
	commits := []Commit{}
	for _, record := range strings.Split(out, "\x1e") {
		record = strings.TrimLeft(record, "\r\n")
		if record == "" {
			continue
		}
		f := strings.Split(record, "\x1f")
		if len(f) != 7 {
			return nil, fmt.Errorf("unexpected log record with %d fields", len(f))
		}
		date, err := time.Parse(time.RFC3339, f[3])
		if err != nil {
			return nil, fmt.Errorf("parse commit date %q: %w", f[3], err)
		}
		commits = append(commits, Commit{
			Hash:      f[0],
			ShortHash: f[1],
			Message:   f[2],
			Date:      date,
			Author:    f[4],
			Email:     f[5],
			Refs:      strings.TrimSpace(f[6]),
		})
	}
	return commits, nil
}

// Diff returns the raw unified diff of the work tree against the index, or
// of the index against HEAD when opts.Staged is set.
func (c *Repo) Diff(ctx context.Context, opts DiffOptions) (string, error) {
	args := []string{"diff"}
	if opts.Staged {
		args = append(args, "--cached")
	}
	if f := strings.TrimSpace(opts.File); f != "" {
		args = append(args, "--", f)
	}
	return c.run(ctx, args...)
}
