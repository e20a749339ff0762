package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gitdesk/internal/git/client"
)

func absPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	return abs, nil
}

// openRepo resolves path (or any directory inside a work tree) to its root.
func openRepo(ctx context.Context, path string) (*client.Repo, error) {
	abs, err := absPath(path)
	if err != nil {
		return nil, err
	}
	root, err := client.RepoRoot(ctx, nil, abs)
	if err != nil {
		return nil, err
	}
	return client.Open(ctx, root, nil)
}

func pathArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

func newStatusCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "status [path]",
		Short:   "Show branch and working tree status",
		Aliases: []string{"st"},
		GroupID: GroupInspect,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), g.commandTimeout())
			defer cancel()
			repo, err := openRepo(ctx, pathArg(args))
			if err != nil {
				return err
			}
			st, err := repo.Status(ctx)
			if err != nil {
				return err
			}
			if g.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			printStatus(cmd.OutOrStdout(), st)
			return nil
		},
	}
}

func printStatus(w io.Writer, st client.Status) {
	switch {
	case st.Detached:
		printf(w, "HEAD detached at %s\n", shortHash(st.HeadCommit))
	case st.Tracking != "":
		printf(w, "On branch %s (tracking %s, ahead %d, behind %d)\n", st.Current, st.Tracking, st.Ahead, st.Behind)
	default:
		printf(w, "On branch %s\n", st.Current)
	}
	if st.Clean {
		printf(w, "nothing to commit, working tree clean\n")
		return
	}
	section := func(title string, files []string) {
		if len(files) == 0 {
			return
		}
		printf(w, "%s:\n", title)
		for _, f := range files {
			printf(w, "  %s\n", f)
		}
	}
	section("Staged", st.Staged)
	section("Unstaged", st.Unstaged)
	section("Untracked", st.Untracked)
	section("Conflicted", st.Conflicted)
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}

func newTagsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "tags [path]",
		Short:   "List tags with the commits they point at",
		GroupID: GroupInspect,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), g.commandTimeout())
			defer cancel()
			repo, err := openRepo(ctx, pathArg(args))
			if err != nil {
				return err
			}
			tags, err := repo.Tags(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if g.jsonOutput {
				return writeJSON(out, tags)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, t := range tags {
				kind := "lightweight"
				if t.Annotated {
					kind = "annotated"
				}
				printf(tw, "%s\t%s\t%s\t%s\n", t.Name, shortHash(t.CommitHash), kind, firstLine(t.Message))
			}
			return tw.Flush()
		},
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
