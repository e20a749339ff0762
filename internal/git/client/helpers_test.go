package client

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available in PATH")
	}
}

// newTestRepo initialises an empty repository with a fixed identity.
func newTestRepo(t *testing.T) (*Repo, string) {
	t.Helper()
	requireGit(t)
	dir := filepath.Join(t.TempDir(), "repo")
	c, err := Init(context.Background(), nil, dir, WithIdentity("Test User", "test@example.com"))
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	return c, dir
}

// gitIn runs git in dir and returns trimmed stdout.
func gitIn(t *testing.T, dir string, args ...string) string {
	t.Helper()
	full := append([]string{"-c", "user.name=Test User", "-c", "user.email=test@example.com"}, args...)
	cmd := exec.Command("git", full...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, string(out))
	}
	return strings.TrimSpace(string(out))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// commitFile writes name and commits it, returning the new HEAD.
func commitFile(t *testing.T, dir, name, content, msg string) string {
	t.Helper()
	writeFile(t, dir, name, content)
	gitIn(t, dir, "add", name)
	gitIn(t, dir, "commit", "-m", msg)
	return gitIn(t, dir, "rev-parse", "HEAD")
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
