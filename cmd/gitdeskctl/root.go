package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"gitdesk/internal/config"
	"gitdesk/internal/registry"
	"gitdesk/internal/storage"
)

// Command group IDs for organizing help output
const (
	GroupRegistry = "registry"
	GroupInspect  = "inspect"
)

type globals struct {
	dataDir    string
	jsonOutput bool
}

func (g *globals) resolveDataDir() (string, error) {
	if g.dataDir != "" {
		return g.dataDir, nil
	}
	return storage.DataDir()
}

func (g *globals) registry() (*registry.Registry, error) {
	dir, err := g.resolveDataDir()
	if err != nil {
		return nil, err
	}
	return registry.New(filepath.Join(dir, storage.RegistryFile), nil), nil
}

func (g *globals) settings() (config.Settings, error) {
	dir, err := g.resolveDataDir()
	if err != nil {
		return config.Settings{}, err
	}
	return config.Load(filepath.Join(dir, storage.SettingsFile))
}

func (g *globals) commandTimeout() time.Duration {
	s, err := g.settings()
	if err != nil {
		return config.DefaultCommandTimeout
	}
	return s.CommandTimeout.Std()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd() *cobra.Command {
	g := &globals{}
	cmd := &cobra.Command{
		Use:   "gitdeskctl",
		Short: "Inspect GitDesk repositories from the command line",
		Long: `gitdeskctl reads and edits the repository registry used by the GitDesk
desktop app and prints status and tags for a repository.`,
		Version:                    version,
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2,
	}
	cmd.PersistentFlags().StringVar(&g.dataDir, "data-dir", "", "data directory (default: GITDESK_DATA_DIR or the per-user app directory)")
	cmd.PersistentFlags().BoolVar(&g.jsonOutput, "json", false, "print JSON")

	cmd.AddGroup(
		&cobra.Group{ID: GroupRegistry, Title: "Registry Commands:"},
		&cobra.Group{ID: GroupInspect, Title: "Inspection Commands:"},
	)
	cmd.AddCommand(newReposCmd(g))
	cmd.AddCommand(newStatusCmd(g))
	cmd.AddCommand(newTagsCmd(g))
	return cmd
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
