package bridge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gitdesk/internal/config"
	"gitdesk/internal/git/client"
	"gitdesk/internal/logging"
	"gitdesk/internal/registry"
	"gitdesk/internal/session"
)

const autoStashMessage = "gitdesk: auto-stash before pull"

// DirectoryPicker shows a native directory dialog. An empty path with a
// nil error means the user cancelled.
type DirectoryPicker interface {
	SelectDirectory(defaultDirectory string) (string, error)
}

// PullResult reports what Pull did besides pulling.
type PullResult struct {
	AutoStashed bool `json:"autoStashed"`
}

// CommitResult carries the hash of the commit just created.
type CommitResult struct {
	Hash string `json:"hash"`
}

// GitAPI exposes sessions and the git façade.
type GitAPI struct {
	core
	reg      *registry.Registry
	settings session.SettingsSource
	picker   DirectoryPicker
}

// GitDeps groups the collaborators of GitAPI.
type GitDeps struct {
	Sessions *session.Manager
	Registry *registry.Registry
	Settings session.SettingsSource
	Journal  Recorder
	Picker   DirectoryPicker
	Context  func() context.Context
	Logger   logging.Logger
}

func NewGitAPI(d GitDeps) *GitAPI {
	return &GitAPI{
		core:     newCore(d.Sessions, d.Journal, d.Context, d.Logger),
		reg:      d.Registry,
		settings: d.Settings,
		picker:   d.Picker,
	}
}

func (g *GitAPI) currentSettings() config.Settings {
	if g.settings == nil {
		return config.Defaults()
	}
	return g.settings.Get()
}

// remember registers root and bumps its last-opened time. Registry failures
// do not fail the open; they are logged.
func (g *GitAPI) remember(root string) {
	if g.reg == nil {
		return
	}
	if _, err := g.reg.Add(root); err != nil {
		g.log.Warn("register repository failed", "path", root, "error", err)
		return
	}
	if _, err := g.reg.UpdateLastOpened(root); err != nil {
		g.log.Warn("update last opened failed", "path", root, "error", err)
	}
}

// Sessions

// SelectRepo asks for a directory and opens it. Data is nil when the user
// cancels the dialog.
func (g *GitAPI) SelectRepo() Response {
	if g.picker == nil {
		return failure(errors.New("directory dialog unavailable"))
	}
	path, err := g.picker.SelectDirectory("")
	if err != nil {
		return failure(err)
	}
	if strings.TrimSpace(path) == "" {
		return success(nil)
	}
	return g.Open(path)
}

func (g *GitAPI) Open(path string) Response {
	return g.run(call{op: "open", repoPath: path, record: true}, func(ctx context.Context) (any, error) {
		if err := requireValue("path", strings.TrimSpace(path), "required"); err != nil {
			return nil, err
		}
		if g.sessions == nil {
			return nil, session.ErrNoSession
		}
		s, err := g.sessions.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		g.remember(s.Path)
		return s, nil
	})
}

func (g *GitAPI) Init(path string) Response {
	return g.run(call{op: "init", repoPath: path, record: true}, func(ctx context.Context) (any, error) {
		if err := requireValue("path", strings.TrimSpace(path), "required"); err != nil {
			return nil, err
		}
		if g.sessions == nil {
			return nil, session.ErrNoSession
		}
		repo, err := client.Init(ctx, g.sessions.Runner(), path, g.sessions.RepoOptions()...)
		if err != nil {
			return nil, err
		}
		s := g.sessions.Adopt(repo)
		g.remember(s.Path)
		return s, nil
	})
}

func (g *GitAPI) Clone(opts client.CloneOptions) Response {
	return g.run(call{op: "clone", repoPath: opts.Path, kind: session.Network, record: true}, func(ctx context.Context) (any, error) {
		if err := validateRequest(opts); err != nil {
			return nil, err
		}
		if g.sessions == nil {
			return nil, session.ErrNoSession
		}
		repo, err := client.Clone(ctx, g.sessions.Runner(), opts, g.sessions.RepoOptions()...)
		if err != nil {
			return nil, err
		}
		s := g.sessions.Adopt(repo)
		g.remember(s.Path)
		return s, nil
	})
}

func (g *GitAPI) Close(sessionID string) Response {
	return g.run(call{op: "close", sessionID: sessionID}, func(context.Context) (any, error) {
		if g.sessions == nil {
			return nil, session.ErrNoSession
		}
		return nil, g.sessions.Close(sessionID)
	})
}

func (g *GitAPI) Sessions() Response {
	if g.sessions == nil {
		return success([]session.Session{})
	}
	return success(g.sessions.List())
}

// Inspection

func (g *GitAPI) Info(sessionID string) Response {
	return g.runRepo(call{op: "info", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return repo.Info(ctx)
	})
}

func (g *GitAPI) Status(sessionID string) Response {
	return g.runRepo(call{op: "status", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return repo.Status(ctx)
	})
}

func (g *GitAPI) DiffStats(sessionID string) Response {
	return g.runRepo(call{op: "diffStats", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return repo.DiffStats(ctx)
	})
}

func (g *GitAPI) Log(sessionID string, opts client.LogOptions) Response {
	return g.runRepo(call{op: "log", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		if err := validateRequest(opts); err != nil {
			return nil, err
		}
		if opts.MaxCount == 0 {
			opts.MaxCount = g.currentSettings().MaxCommitHistory
		}
		return repo.Log(ctx, opts)
	})
}

func (g *GitAPI) Diff(sessionID string, opts client.DiffOptions) Response {
	return g.runRepo(call{op: "diff", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return repo.Diff(ctx, opts)
	})
}

// Index and commits

func (g *GitAPI) Add(sessionID string, files []string) Response {
	return g.runRepo(call{op: "add", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return nil, repo.Add(ctx, cleanPaths(files))
	})
}

func (g *GitAPI) AddAll(sessionID string) Response {
	return g.runRepo(call{op: "addAll", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return nil, repo.AddAll(ctx)
	})
}

func (g *GitAPI) Reset(sessionID string, files []string) Response {
	return g.runRepo(call{op: "reset", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return nil, repo.Reset(ctx, cleanPaths(files))
	})
}

func (g *GitAPI) Discard(sessionID string, files []string) Response {
	return g.runRepo(call{op: "discard", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return nil, repo.Discard(ctx, cleanPaths(files))
	})
}

// Commit passes the message through unchecked; git rejects an empty one.
func (g *GitAPI) Commit(sessionID string, opts client.CommitOptions) Response {
	return g.runRepo(call{op: "commit", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		hash, err := repo.Commit(ctx, opts)
		if err != nil {
			return nil, err
		}
		return CommitResult{Hash: hash}, nil
	})
}

// Remotes

func (g *GitAPI) Remotes(sessionID string) Response {
	return g.runRepo(call{op: "remotes", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return repo.Remotes(ctx)
	})
}

func (g *GitAPI) AddRemote(sessionID, name, url string) Response {
	return g.runRepo(call{op: "addRemote", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return nil, repo.AddRemote(ctx, name, url)
	})
}

func (g *GitAPI) RemoveRemote(sessionID, name string) Response {
	return g.runRepo(call{op: "removeRemote", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return nil, repo.RemoveRemote(ctx, name)
	})
}

func (g *GitAPI) Fetch(sessionID, remote string) Response {
	return g.runRepo(call{op: "fetch", sessionID: sessionID, kind: session.Network, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return nil, repo.Fetch(ctx, remote)
	})
}

func (g *GitAPI) Push(sessionID string, opts client.PushOptions) Response {
	return g.runRepo(call{op: "push", sessionID: sessionID, kind: session.Network, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		if err := validateRequest(opts); err != nil {
			return nil, err
		}
		return nil, repo.Push(ctx, opts)
	})
}

// Pull stashes tracked changes first when autoStashBeforePull is on and
// re-applies them afterwards, whether or not the pull succeeded.
func (g *GitAPI) Pull(sessionID string, opts client.PullOptions) Response {
	return g.runRepo(call{op: "pull", sessionID: sessionID, kind: session.Network, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		if err := validateRequest(opts); err != nil {
			return nil, err
		}
		if !g.currentSettings().AutoStashBeforePull {
			return PullResult{}, repo.Pull(ctx, opts)
		}
		st, err := repo.Status(ctx)
		if err != nil {
			return nil, err
		}
		if len(st.Staged) == 0 && len(st.Unstaged) == 0 {
			return PullResult{}, repo.Pull(ctx, opts)
		}
		if err := repo.Stash(ctx, autoStashMessage); err != nil {
			return nil, fmt.Errorf("auto-stash before pull: %w", err)
		}
		pullErr := repo.Pull(ctx, opts)

		// the pull may have used up the deadline; restoring gets its own
		popCtx, cancel := g.sessions.WithTimeout(context.WithoutCancel(ctx), session.Local)
		defer cancel()
		popErr := repo.StashPop(popCtx)
		if pullErr != nil {
			if popErr != nil {
				g.log.Error("restore auto-stash failed", "sessionId", sessionID, "error", popErr)
			}
			return nil, pullErr
		}
		if popErr != nil {
			return nil, fmt.Errorf("pulled, but re-applying stashed changes failed (they remain in the stash): %w", popErr)
		}
		return PullResult{AutoStashed: true}, nil
	})
}

// Branches

func (g *GitAPI) Branches(sessionID string) Response {
	return g.runRepo(call{op: "branches", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return repo.Branches(ctx)
	})
}

func (g *GitAPI) CreateBranch(sessionID, name string, checkout bool) Response {
	return g.runRepo(call{op: "createBranch", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return nil, repo.CreateBranch(ctx, name, checkout)
	})
}

func (g *GitAPI) Checkout(sessionID, branch string) Response {
	return g.runRepo(call{op: "checkout", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return nil, repo.Checkout(ctx, branch)
	})
}

func (g *GitAPI) DeleteBranch(sessionID, name string, force bool) Response {
	return g.runRepo(call{op: "deleteBranch", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return nil, repo.DeleteBranch(ctx, name, force)
	})
}

func (g *GitAPI) Merge(sessionID string, opts client.MergeOptions) Response {
	return g.runRepo(call{op: "merge", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		if err := validateRequest(opts); err != nil {
			return nil, err
		}
		return nil, repo.Merge(ctx, opts)
	})
}

// Tags

func (g *GitAPI) Tags(sessionID string) Response {
	return g.runRepo(call{op: "tags", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return repo.Tags(ctx)
	})
}

func (g *GitAPI) CreateTag(sessionID, name, message string) Response {
	return g.runRepo(call{op: "createTag", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return nil, repo.CreateTag(ctx, name, message)
	})
}

func (g *GitAPI) DeleteTag(sessionID, name string) Response {
	return g.runRepo(call{op: "deleteTag", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return nil, repo.DeleteTag(ctx, name)
	})
}

// Stash

func (g *GitAPI) Stash(sessionID, message string) Response {
	return g.runRepo(call{op: "stash", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return nil, repo.Stash(ctx, message)
	})
}

func (g *GitAPI) StashPop(sessionID string) Response {
	return g.runRepo(call{op: "stashPop", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return nil, repo.StashPop(ctx)
	})
}

func (g *GitAPI) StashList(sessionID string) Response {
	return g.runRepo(call{op: "stashList", sessionID: sessionID, record: true}, func(ctx context.Context, repo *client.Repo) (any, error) {
		return repo.StashList(ctx)
	})
}

// TestSSH probes SSH authentication. Empty host and key fall back to the
// configured ones.
func (g *GitAPI) TestSSH(opts client.SSHOptions) Response {
	return g.run(call{op: "testSSH", kind: session.Network, record: true}, func(ctx context.Context) (any, error) {
		s := g.currentSettings()
		if strings.TrimSpace(opts.Host) == "" {
			opts.Host = s.SSHHost
		}
		if strings.TrimSpace(opts.KeyPath) == "" {
			opts.KeyPath = s.ExpandedSSHKeyPath()
		}
		return client.TestSSH(ctx, opts)
	})
}
