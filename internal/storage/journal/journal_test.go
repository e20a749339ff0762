package journal

import (
	"context"
	"strings"
	"testing"
	"time"

	"gitdesk/internal/storage/migrate"
	"gitdesk/internal/storage/sqlite"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	db, err := sqlite.OpenMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	if err != nil {
		t.Fatalf("open in-memory database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := migrate.Up(db); err != nil {
		t.Fatalf("migrate database: %v", err)
	}
	return NewRepository(db)
}

func TestRecordAndRecent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first, err := repo.Record(ctx, Entry{SessionID: "s1", RepoPath: "/tmp/a", Operation: "status", OK: true, DurationMs: 12})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if first.ID == 0 || first.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", first)
	}
	if _, err := repo.Record(ctx, Entry{
		SessionID:    "s1",
		RepoPath:     "/tmp/a",
		Operation:    "push",
		ErrorCode:    "GIT_FAILED",
		ErrorMessage: "git push: rejected",
	}); err != nil {
		t.Fatalf("record failure: %v", err)
	}

	recent, err := repo.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	failed := recent[0]
	if failed.Operation != "push" || failed.OK || failed.ErrorCode != "GIT_FAILED" || failed.ErrorMessage == "" {
		t.Fatalf("unexpected newest entry: %+v", failed)
	}
	if recent[1].ID != first.ID || !recent[1].OK || recent[1].DurationMs != 12 {
		t.Fatalf("unexpected oldest entry: %+v", recent[1])
	}
}

func TestRecordRequiresOperation(t *testing.T) {
	repo := newTestRepository(t)
	if _, err := repo.Record(context.Background(), Entry{RepoPath: "/tmp/a"}); err == nil {
		t.Fatalf("expected error for entry without operation")
	}
}

func TestForRepositoryFiltersAndLimits(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := repo.Record(ctx, Entry{RepoPath: "/tmp/a", Operation: "log", OK: true}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if _, err := repo.Record(ctx, Entry{RepoPath: "/tmp/b", Operation: "status", OK: true}); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := repo.ForRepository(ctx, "/tmp/a", 2)
	if err != nil {
		t.Fatalf("for repository: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(entries))
	}
	for _, e := range entries {
		if e.RepoPath != "/tmp/a" {
			t.Fatalf("unexpected repo path: %+v", e)
		}
	}

	none, err := repo.ForRepository(ctx, "/tmp/missing", 0)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty result, got %v err=%v", none, err)
	}
}

func TestPrune(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	old := time.Now().Add(-48 * time.Hour).UTC()
	if _, err := repo.Record(ctx, Entry{Operation: "fetch", OK: true, CreatedAt: old}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := repo.Record(ctx, Entry{Operation: "fetch", OK: true}); err != nil {
		t.Fatalf("record: %v", err)
	}
	n, err := repo.Prune(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 pruned entry, got %d", n)
	}
	rest, _ := repo.Recent(ctx, 0)
	if len(rest) != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", len(rest))
	}
}

