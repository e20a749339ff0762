package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gitdesk/internal/storage"
	"gitdesk/internal/storage/journal"
)

func TestNewAppCreatesStores(t *testing.T) {
	dir := t.TempDir()
	app, err := NewApp(dir)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if app.Context() != nil {
		t.Fatalf("context must be nil before startup")
	}
	// emitting before startup is a no-op
	app.emit("repo:changed")

	if _, err := app.journal.Record(context.Background(), journal.Entry{Operation: "status", OK: true}); err != nil {
		t.Fatalf("record: %v", err)
	}
	app.shutdown(context.Background())

	for _, name := range []string{storage.JournalFile, storage.LogFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}
