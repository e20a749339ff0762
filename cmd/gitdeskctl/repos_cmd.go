package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"gitdesk/internal/registry"
)

func newReposCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "repos",
		Short:   "Manage registered repositories",
		Aliases: []string{"r"},
		GroupID: GroupRegistry,
		Example: `  gitdeskctl repos list               # List all repos
  gitdeskctl repos list -q api        # Fuzzy-filter by name
  gitdeskctl repos add ~/src/project  # Register a repo
  gitdeskctl repos fav ~/src/project  # Toggle favorite
  gitdeskctl repos rm ~/src/project   # Unregister a repo`,
	}
	cmd.AddCommand(newReposListCmd(g))
	cmd.AddCommand(newReposAddCmd(g))
	cmd.AddCommand(newReposRemoveCmd(g))
	cmd.AddCommand(newReposFavCmd(g))
	return cmd
}

func newReposListCmd(g *globals) *cobra.Command {
	var q registry.ListQuery
	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List registered repositories",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := g.registry()
			if err != nil {
				return err
			}
			repos, err := reg.List(q)
			if err != nil {
				return fmt.Errorf("list repositories: %w", err)
			}
			out := cmd.OutOrStdout()
			if g.jsonOutput {
				return writeJSON(out, repos)
			}
			if len(repos) == 0 {
				printf(out, "No repositories registered\n")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			printf(tw, "NAME\tPATH\tFAVORITE\tLAST OPENED\n")
			for _, r := range repos {
				fav := ""
				if r.IsFavorite {
					fav = "*"
				}
				last := "-"
				if r.LastOpened != nil {
					last = r.LastOpened.Local().Format(time.DateTime)
				}
				printf(tw, "%s\t%s\t%s\t%s\n", r.Name, r.Path, fav, last)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&q.Query, "query", "q", "", "fuzzy-match repository names")
	cmd.Flags().BoolVarP(&q.FavoritesOnly, "favorites", "f", false, "only favorites")
	return cmd
}

func newReposAddCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>",
		Short: "Register a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := absPath(args[0])
			if err != nil {
				return err
			}
			reg, err := g.registry()
			if err != nil {
				return err
			}
			repo, err := reg.Add(path)
			if err != nil {
				return fmt.Errorf("add repository: %w", err)
			}
			if g.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), repo)
			}
			printf(cmd.OutOrStdout(), "Registered %s (%s)\n", repo.Name, repo.Path)
			return nil
		},
	}
}

func newReposRemoveCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <path>",
		Short:   "Unregister a repository (files are not touched)",
		Aliases: []string{"remove"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := absPath(args[0])
			if err != nil {
				return err
			}
			reg, err := g.registry()
			if err != nil {
				return err
			}
			if err := reg.Remove(path); err != nil {
				return fmt.Errorf("remove repository: %w", err)
			}
			printf(cmd.OutOrStdout(), "Removed %s\n", path)
			return nil
		},
	}
}

func newReposFavCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "fav <path>",
		Short: "Toggle the favorite flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := absPath(args[0])
			if err != nil {
				return err
			}
			reg, err := g.registry()
			if err != nil {
				return err
			}
			repo, err := reg.ToggleFavorite(path)
			if err != nil {
				return fmt.Errorf("toggle favorite: %w", err)
			}
			if g.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), repo)
			}
			state := "no longer a favorite"
			if repo.IsFavorite {
				state = "now a favorite"
			}
			printf(cmd.OutOrStdout(), "%s is %s\n", repo.Name, state)
			return nil
		},
	}
}
