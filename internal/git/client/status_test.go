package client

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestParseStatusV2(t *testing.T) {
	out := "# branch.oid 1234567890abcdef1234567890abcdef12345678\n" +
		"# branch.head main\n" +
		"# branch.upstream origin/main\n" +
		"# branch.ab +2 -1\n" +
		"1 M. N... 100644 100644 100644 aaa bbb staged.txt\n" +
		"1 .M N... 100644 100644 100644 aaa bbb dir/with space.txt\n" +
		"1 .D N... 100644 100644 000000 aaa bbb gone.txt\n" +
		"2 R. N... 100644 100644 100644 aaa bbb R100 new.txt\told.txt\n" +
		"u UU N... 100644 100644 100644 100644 aaa bbb ccc both.txt\n" +
		"? \"quoted\\tname\"\n" +
		"? fresh.txt\n"

	st, err := parseStatusV2(out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if st.Current != "main" || st.Tracking != "origin/main" || st.Ahead != 2 || st.Behind != 1 {
		t.Fatalf("unexpected branch info: %+v", st)
	}
	if !contains(st.Staged, "staged.txt") || !contains(st.Staged, "new.txt") {
		t.Fatalf("unexpected staged: %v", st.Staged)
	}
	if !contains(st.Modified, "dir/with space.txt") {
		t.Fatalf("unexpected modified: %v", st.Modified)
	}
	if !contains(st.Deleted, "gone.txt") || contains(st.Modified, "gone.txt") {
		t.Fatalf("unexpected deleted: %v", st.Deleted)
	}
	if len(st.Renamed) != 1 || st.Renamed[0].From != "old.txt" || st.Renamed[0].To != "new.txt" {
		t.Fatalf("unexpected renamed: %+v", st.Renamed)
	}
	if len(st.Conflicted) != 1 || st.Conflicted[0] != "both.txt" {
		t.Fatalf("unexpected conflicted: %v", st.Conflicted)
	}
	if !contains(st.Untracked, "quoted\tname") || !contains(st.Untracked, "fresh.txt") {
		t.Fatalf("unexpected untracked: %v", st.Untracked)
	}
	if st.Clean {
		t.Fatalf("dirty tree reported clean")
	}
}

func TestParseStatusV2Detached(t *testing.T) {
	st, err := parseStatusV2("# branch.oid abc\n# branch.head (detached)\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !st.Detached || st.Current != "" || st.HeadCommit != "abc" || !st.Clean {
		t.Fatalf("unexpected status: %+v", st)
	}
}

func TestStatusEmptyRepository(t *testing.T) {
	c, _ := newTestRepo(t)
	st, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !st.Clean {
		t.Fatalf("expected clean status, got %+v", st)
	}
	if len(st.Staged)+len(st.Unstaged)+len(st.Untracked) != 0 {
		t.Fatalf("expected empty lists, got %+v", st)
	}
	if st.Current == "" || st.HeadCommit != "" {
		t.Fatalf("expected unborn branch, got %+v", st)
	}
}

func TestStatusClassifiesChanges(t *testing.T) {
	c, dir := newTestRepo(t)
	commitFile(t, dir, "a.txt", "one\n", "init")
	commitFile(t, dir, "d.txt", "bye\n", "second")

	writeFile(t, dir, "a.txt", "one\ntwo\n")
	writeFile(t, dir, "b.txt", "new\n")
	gitIn(t, dir, "add", "b.txt")
	writeFile(t, dir, "c.txt", "untracked\n")
	if err := os.Remove(filepath.Join(dir, "d.txt")); err != nil {
		t.Fatalf("remove: %v", err)
	}

	st, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Clean {
		t.Fatalf("expected dirty status")
	}
	if !contains(st.Staged, "b.txt") || contains(st.Staged, "a.txt") {
		t.Fatalf("unexpected staged: %v", st.Staged)
	}
	if !contains(st.Modified, "a.txt") || !contains(st.Unstaged, "a.txt") {
		t.Fatalf("unexpected modified: %v", st.Modified)
	}
	if !contains(st.Untracked, "c.txt") {
		t.Fatalf("unexpected untracked: %v", st.Untracked)
	}
	if !contains(st.Deleted, "d.txt") {
		t.Fatalf("unexpected deleted: %v", st.Deleted)
	}
}

func TestDiffStats(t *testing.T) {
	c, dir := newTestRepo(t)
	commitFile(t, dir, "a.txt", "one\n", "init")
	writeFile(t, dir, "a.txt", "one\ntwo\n")
	writeFile(t, dir, "b.txt", "new\n")
	gitIn(t, dir, "add", "b.txt")

	stats, err := c.DiffStats(context.Background())
	if err != nil {
		t.Fatalf("DiffStats: %v", err)
	}
	byPath := map[string]FileDiffStat{}
	for _, st := range stats {
		byPath[st.Path] = st
	}
	if a := byPath["a.txt"]; a.Added != 1 || a.Status != "M" {
		t.Fatalf("unexpected a.txt stat: %+v", a)
	}
	if b := byPath["b.txt"]; b.Added != 1 || b.Status != "A" {
		t.Fatalf("unexpected b.txt stat: %+v", b)
	}
}
