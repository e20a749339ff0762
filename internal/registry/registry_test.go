package registry

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	file := filepath.Join(t.TempDir(), "repositories.json")
	return New(file, nil), file
}

func readPersisted(t *testing.T, file string) fileV1 {
	t.Helper()
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read registry file: %v", err)
	}
	var f fileV1
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("decode registry file: %v", err)
	}
	return f
}

func TestAddIsIdempotent(t *testing.T) {
	reg, _ := newTestRegistry(t)

	first, err := reg.Add("/work/alpha")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if first.Name != "alpha" {
		t.Fatalf("expected name alpha, got %q", first.Name)
	}
	if first.LastOpened == nil {
		t.Fatalf("expected lastOpened to be set")
	}
	if first.IsFavorite {
		t.Fatalf("new record must not be a favorite")
	}

	second, err := reg.Add("/work/alpha")
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if second.Path != first.Path || !second.LastOpened.Equal(*first.LastOpened) {
		t.Fatalf("expected identical record, got %+v vs %+v", second, first)
	}

	all, err := reg.GetAll()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 record, got %d", len(all))
	}
}

func TestAddRejectsEmptyPath(t *testing.T) {
	reg, _ := newTestRegistry(t)
	if _, err := reg.Add("   "); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}
}

func TestAddDoesNotRequireGitMetadata(t *testing.T) {
	reg, _ := newTestRegistry(t)
	repo, err := reg.Add("/missing/repo")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if repo.Name != "repo" {
		t.Fatalf("unexpected name %q", repo.Name)
	}
}

func TestRemove(t *testing.T) {
	reg, file := newTestRegistry(t)

	if err := reg.Remove("/nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := reg.Add("/a"); err != nil {
		t.Fatalf("add /a: %v", err)
	}
	if _, err := reg.Add("/b"); err != nil {
		t.Fatalf("add /b: %v", err)
	}
	if err := reg.Remove("/a"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	persisted := readPersisted(t, file)
	if len(persisted.Repositories) != 1 || persisted.Repositories[0].Path != "/b" {
		t.Fatalf("unexpected persisted records: %+v", persisted.Repositories)
	}
}

func TestToggleFavorite(t *testing.T) {
	reg, _ := newTestRegistry(t)
	if _, err := reg.Add("/a"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := reg.Add("/b"); err != nil {
		t.Fatalf("add: %v", err)
	}

	toggled, err := reg.ToggleFavorite("/a")
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.IsFavorite {
		t.Fatalf("expected favorite after first toggle")
	}
	other, err := reg.Get("/b")
	if err != nil {
		t.Fatalf("get /b: %v", err)
	}
	if other.IsFavorite {
		t.Fatalf("toggle leaked into another record")
	}

	toggled, err = reg.ToggleFavorite("/a")
	if err != nil {
		t.Fatalf("toggle again: %v", err)
	}
	if toggled.IsFavorite {
		t.Fatalf("expected favorite cleared after second toggle")
	}

	if _, err := reg.ToggleFavorite("/missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateNeverChangesPath(t *testing.T) {
	reg, _ := newTestRegistry(t)
	if _, err := reg.Add("/a"); err != nil {
		t.Fatalf("add: %v", err)
	}
	name := "renamed"
	fav := true
	updated, err := reg.Update("/a", Patch{Name: &name, IsFavorite: &fav})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Path != "/a" || updated.Name != "renamed" || !updated.IsFavorite {
		t.Fatalf("unexpected record: %+v", updated)
	}
	if _, err := reg.Update("/zzz", Patch{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateLastOpened(t *testing.T) {
	reg, _ := newTestRegistry(t)
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	reg.now = func() time.Time { return start }
	if _, err := reg.Add("/a"); err != nil {
		t.Fatalf("add: %v", err)
	}
	later := start.Add(time.Hour)
	reg.now = func() time.Time { return later }
	repo, err := reg.UpdateLastOpened("/a")
	if err != nil {
		t.Fatalf("update last opened: %v", err)
	}
	if !repo.LastOpened.Equal(later) {
		t.Fatalf("expected %v, got %v", later, repo.LastOpened)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	reg, file := newTestRegistry(t)
	if _, err := reg.Add("/a"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := reg.ToggleFavorite("/a"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	persisted := readPersisted(t, file)
	if persisted.Version != SchemaVersion {
		t.Fatalf("expected version %d, got %d", SchemaVersion, persisted.Version)
	}

	reloaded := New(file, nil)
	repo, err := reloaded.Get("/a")
	if err != nil {
		t.Fatalf("get after reload: %v", err)
	}
	if !repo.IsFavorite {
		t.Fatalf("favorite flag lost on reload")
	}

	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(file), ".repositories-*.tmp"))
	if len(matches) != 0 {
		t.Fatalf("temp files left behind: %v", matches)
	}
}

func TestLoadsLegacyLayouts(t *testing.T) {
	cases := map[string]string{
		"array":   `[{"path":"/legacy","name":"legacy","isFavorite":true}]`,
		"wrapped": `{"repositories":[{"path":"/legacy","name":"legacy","isFavorite":true,"branch":"main"}]}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "repositories.json")
			if err := os.WriteFile(file, []byte(payload), 0o644); err != nil {
				t.Fatalf("seed: %v", err)
			}
			reg := New(file, nil)
			repo, err := reg.Get("/legacy")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !repo.IsFavorite {
				t.Fatalf("expected favorite from legacy file")
			}
			if _, err := reg.Add("/new"); err != nil {
				t.Fatalf("add: %v", err)
			}
			if got := readPersisted(t, file); got.Version != SchemaVersion || len(got.Repositories) != 2 {
				t.Fatalf("expected upgraded file with 2 records, got %+v", got)
			}
		})
	}
}

func TestUnparsableFileIsEmpty(t *testing.T) {
	file := filepath.Join(t.TempDir(), "repositories.json")
	if err := os.WriteFile(file, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	reg := New(file, nil)
	all, err := reg.GetAll()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty registry, got %d", len(all))
	}
}

func TestWriteFailureRollsBack(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	reg := New(filepath.Join(dir, "repositories.json"), nil)
	if _, err := reg.GetAll(); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	// Replace the data directory with a plain file so writes fail.
	if err := os.WriteFile(dir, nil, 0o644); err != nil {
		t.Fatalf("seed blocker: %v", err)
	}

	_, err := reg.Add("/a")
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %v", err)
	}
	all, err := reg.GetAll()
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("failed add must not stay in memory, got %+v", all)
	}
}

func TestListOrderingAndFilters(t *testing.T) {
	reg, _ := newTestRegistry(t)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range []string{"/src/api", "/src/web", "/src/tools"} {
		at := base.Add(time.Duration(i) * time.Hour)
		reg.now = func() time.Time { return at }
		if _, err := reg.Add(p); err != nil {
			t.Fatalf("add %s: %v", p, err)
		}
	}
	if _, err := reg.ToggleFavorite("/src/api"); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	list, err := reg.List(ListQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := []string{list[0].Path, list[1].Path, list[2].Path}
	want := []string{"/src/api", "/src/tools", "/src/web"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch: got %v want %v", got, want)
		}
	}

	favs, err := reg.List(ListQuery{FavoritesOnly: true})
	if err != nil {
		t.Fatalf("list favorites: %v", err)
	}
	if len(favs) != 1 || favs[0].Path != "/src/api" {
		t.Fatalf("unexpected favorites: %+v", favs)
	}

	found, err := reg.List(ListQuery{Query: "tls"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].Name != "tools" {
		t.Fatalf("unexpected search result: %+v", found)
	}
}
