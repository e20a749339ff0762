package session

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gitdesk/internal/config"
	"gitdesk/internal/git/client"
)

type fakeWatcher struct {
	mu      sync.Mutex
	watched map[string]string
}

func (f *fakeWatcher) Ensure(id, root string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.watched == nil {
		f.watched = map[string]string{}
	}
	f.watched[id] = root
}

func (f *fakeWatcher) Remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.watched, id)
}

type staticSettings config.Settings

func (s staticSettings) Get() config.Settings { return config.Settings(s) }

func newRepoDir(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available in PATH")
	}
	dir := filepath.Join(t.TempDir(), "work")
	if _, err := client.Init(context.Background(), nil, dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	return dir
}

func TestOpenGetClose(t *testing.T) {
	dir := newRepoDir(t)
	w := &fakeWatcher{}
	m := NewManager(nil, WithWatcher(w))

	s, err := m.Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if s.ID == "" || s.Path != dir || s.Name != "work" {
		t.Fatalf("unexpected session: %+v", s)
	}
	if w.watched[s.ID] != dir {
		t.Fatalf("expected watcher for session, got %v", w.watched)
	}

	again, err := m.Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if again.ID != s.ID {
		t.Fatalf("reopening the same root should reuse the session")
	}

	repo, info, err := m.Get(s.ID)
	if err != nil || repo.Root() != dir || info.ID != s.ID {
		t.Fatalf("get: repo=%v info=%+v err=%v", repo, info, err)
	}

	if err := m.Close(s.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok := w.watched[s.ID]; ok {
		t.Fatalf("watcher not removed on close")
	}
	if _, _, err := m.Get(s.ID); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after close, got %v", err)
	}
	if err := m.Close(s.ID); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession on double close, got %v", err)
	}
}

func TestOpenRejectsNonRepository(t *testing.T) {
	m := NewManager(nil)
	_, err := m.Open(context.Background(), t.TempDir())
	if !errors.Is(err, client.ErrNotRepository) {
		t.Fatalf("expected ErrNotRepository, got %v", err)
	}
	if len(m.List()) != 0 {
		t.Fatalf("failed open must not create a session")
	}
}

func TestOpenSubdirectoryUsesToplevel(t *testing.T) {
	dir := newRepoDir(t)
	sub := filepath.Join(dir, "pkg", "inner")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	w := &fakeWatcher{}
	m := NewManager(nil, WithWatcher(w))

	s, err := m.Open(context.Background(), sub)
	if err != nil {
		t.Fatalf("open subdirectory: %v", err)
	}
	if s.Path != dir || s.Name != "work" {
		t.Fatalf("expected session on %s, got %+v", dir, s)
	}
	if w.watched[s.ID] != dir {
		t.Fatalf("watcher bound to %q, want %q", w.watched[s.ID], dir)
	}
	again, err := m.Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("open root: %v", err)
	}
	if again.ID != s.ID || len(m.List()) != 1 {
		t.Fatalf("root and subdirectory opened separate sessions: %+v %+v", s, again)
	}
}

func TestListAndCloseAll(t *testing.T) {
	first := newRepoDir(t)
	second := newRepoDir(t)
	m := NewManager(nil)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	a, err := m.Open(context.Background(), first)
	if err != nil {
		t.Fatalf("open first: %v", err)
	}
	b, err := m.Open(context.Background(), second)
	if err != nil {
		t.Fatalf("open second: %v", err)
	}
	list := m.List()
	if len(list) != 2 || list[0].ID != a.ID || list[1].ID != b.ID {
		t.Fatalf("unexpected list order: %+v", list)
	}
	m.CloseAll()
	if len(m.List()) != 0 {
		t.Fatalf("expected no sessions after CloseAll")
	}
}

func TestWithTimeoutUsesSettings(t *testing.T) {
	s := config.Defaults()
	s.CommandTimeout = config.Duration(2 * time.Second)
	s.NetworkTimeout = config.Duration(time.Hour)
	m := NewManager(staticSettings(s))

	ctx, cancel := m.WithTimeout(context.Background(), Local)
	defer cancel()
	deadline, ok := ctx.Deadline()
	if !ok || time.Until(deadline) > 2*time.Second {
		t.Fatalf("expected local deadline within 2s, got %v", time.Until(deadline))
	}

	nctx, ncancel := m.WithTimeout(context.Background(), Network)
	defer ncancel()
	nd, ok := nctx.Deadline()
	if !ok || time.Until(nd) < 59*time.Minute {
		t.Fatalf("expected network deadline near 1h, got %v", time.Until(nd))
	}
}

func TestSessionUsesConfiguredIdentity(t *testing.T) {
	dir := newRepoDir(t)
	s := config.Defaults()
	s.GitUserName = "Configured Person"
	s.GitUserEmail = "configured@example.com"
	m := NewManager(staticSettings(s))

	sess, err := m.Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	repo, _, _ := m.Get(sess.ID)
	ctx := context.Background()
	if _, err := repo.Commit(ctx, client.CommitOptions{Message: "empty", AllowEmpty: true}); err != nil {
		t.Fatalf("commit: %v", err)
	}
	commits, err := repo.Log(ctx, client.LogOptions{MaxCount: 1})
	if err != nil || len(commits) != 1 {
		t.Fatalf("log: %v %v", commits, err)
	}
	if commits[0].Author != "Configured Person" || commits[0].Email != "configured@example.com" {
		t.Fatalf("unexpected author: %+v", commits[0])
	}
}
