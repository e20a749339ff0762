// Package session tracks the repositories the UI currently has open. Each
// session owns one client.Repo and is addressed by a UUID.
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gitdesk/internal/config"
	"gitdesk/internal/git/client"
	"gitdesk/internal/git/runner"
	"gitdesk/internal/logging"
)

// ErrNoSession reports an unknown or already closed session id.
var ErrNoSession = errors.New("no such session")

// Session describes one open repository.
type Session struct {
	ID       string    `json:"id"`
	Path     string    `json:"path"`
	Name     string    `json:"name"`
	OpenedAt time.Time `json:"openedAt" ts_type:"string"`
}

// Kind selects which configured deadline applies to a call.
type Kind int

const (
	Local Kind = iota
	Network
)

// SettingsSource supplies the current settings.
type SettingsSource interface {
	Get() config.Settings
}

// Watcher is notified when sessions open and close.
type Watcher interface {
	Ensure(sessionID, root string)
	Remove(sessionID string)
}

type entry struct {
	info Session
	repo *client.Repo
}

// Manager owns every open session.
type Manager struct {
	runner   runner.Runner
	settings SettingsSource
	log      logging.Logger
	watcher  Watcher
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*entry
}

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

func WithWatcher(w Watcher) Option {
	return func(m *Manager) { m.watcher = w }
}

func WithRunner(r runner.Runner) Option {
	return func(m *Manager) {
		if r != nil {
			m.runner = r
		}
	}
}

// NewManager returns an empty manager. A nil settings source means
// config.Defaults().
func NewManager(settings SettingsSource, opts ...Option) *Manager {
	m := &Manager{
		runner:   runner.NewExecRunner(""),
		settings: settings,
		log:      logging.Nop(),
		now:      time.Now,
		sessions: map[string]*entry{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) currentSettings() config.Settings {
	if m.settings == nil {
		return config.Defaults()
	}
	return m.settings.Get()
}

// Runner returns the runner shared by all sessions.
func (m *Manager) Runner() runner.Runner { return m.runner }

// RepoOptions returns the client options derived from the current settings.
func (m *Manager) RepoOptions() []client.Option {
	s := m.currentSettings()
	return []client.Option{
		client.WithLogger(m.log),
		client.WithIdentity(s.GitUserName, s.GitUserEmail),
		client.WithDefaultRemote(s.DefaultRemote),
	}
}

// WithTimeout derives a context carrying the configured deadline for kind.
func (m *Manager) WithTimeout(ctx context.Context, kind Kind) (context.Context, context.CancelFunc) {
	s := m.currentSettings()
	d := s.CommandTimeout.Std()
	if kind == Network {
		d = s.NetworkTimeout.Std()
	}
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// Open starts a session on the work tree containing path; a subdirectory
// opens its toplevel. An already open root returns its existing session.
func (m *Manager) Open(ctx context.Context, path string) (Session, error) {
	root, err := m.toplevel(ctx, path)
	if err != nil {
		return Session{}, err
	}
	repo, err := client.Open(ctx, root, m.runner, m.RepoOptions()...)
	if err != nil {
		return Session{}, err
	}
	return m.Adopt(repo), nil
}

// toplevel maps path to its work tree root. git reports the root with
// symlinks resolved; the caller's spelling is kept when it names the same
// directory, so one root always yields one session.
func (m *Manager) toplevel(ctx context.Context, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve repository path: %w", err)
	}
	top, err := client.RepoRoot(ctx, m.runner, abs)
	if err != nil {
		return "", err
	}
	realTop, err := filepath.EvalSymlinks(top)
	if err != nil {
		return top, nil
	}
	realAbs, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return top, nil
	}
	rel, err := filepath.Rel(realTop, realAbs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return top, nil
	}
	candidate := abs
	for rel != "." {
		candidate = filepath.Dir(candidate)
		rel = filepath.Dir(rel)
	}
	if got, err := filepath.EvalSymlinks(candidate); err == nil && got == realTop {
		return candidate, nil
	}
	return top, nil
}

// Adopt registers an already constructed façade (from Init or Clone).
func (m *Manager) Adopt(repo *client.Repo) Session {
	root := filepath.Clean(repo.Root())
	m.mu.Lock()
	for _, e := range m.sessions {
		if e.info.Path == root {
			info := e.info
			m.mu.Unlock()
			return info
		}
	}
	info := Session{
		ID:       uuid.NewString(),
		Path:     root,
		Name:     filepath.Base(root),
		OpenedAt: m.now().UTC(),
	}
	m.sessions[info.ID] = &entry{info: info, repo: repo}
	m.mu.Unlock()

	if m.watcher != nil {
		m.watcher.Ensure(info.ID, root)
	}
	m.log.Info("session opened", "sessionId", info.ID, "path", root)
	return info
}

// Get returns the façade and descriptor for id.
func (m *Manager) Get(id string) (*client.Repo, Session, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, Session{}, fmt.Errorf("%w: %q", ErrNoSession, id)
	}
	return e.repo, e.info, nil
}

// Close ends a session and stops its watcher.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoSession, id)
	}
	if m.watcher != nil {
		m.watcher.Remove(id)
	}
	m.log.Info("session closed", "sessionId", id, "path", e.info.Path)
	return nil
}

// CloseAll ends every session.
func (m *Manager) CloseAll() {
	for _, s := range m.List() {
		_ = m.Close(s.ID)
	}
}

// List returns open sessions, oldest first.
func (m *Manager) List() []Session {
	m.mu.RLock()
	out := make([]Session, 0, len(m.sessions))
	for _, e := range m.sessions {
		out = append(out, e.info)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].Path < out[j].Path
		}
		return out[i].OpenedAt.Before(out[j].OpenedAt)
	})
	return out
}
