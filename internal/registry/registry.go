// Package registry keeps the list of repositories known to the user,
// independent of their git state, in repositories.json.
package registry

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gitdesk/internal/logging"
)

// Repository is a registered local repository.
type Repository struct {
	Path       string     `json:"path"`
	Name       string     `json:"name"`
	LastOpened *time.Time `json:"lastOpened,omitempty" ts_type:"string"`
	IsFavorite bool       `json:"isFavorite"`
}

// Patch carries the fields Update may change. Nil fields are left alone.
// Patch has no Path field: a record keeps its path for life.
type Patch struct {
	Name       *string    `json:"name,omitempty"`
	LastOpened *time.Time `json:"lastOpened,omitempty" ts_type:"string"`
	IsFavorite *bool      `json:"isFavorite,omitempty"`
}

// Registry is a map of path to record backed by a JSON file. The file is
// loaded on first access and rewritten in full after every mutation.
type Registry struct {
	file string
	log  logging.Logger
	now  func() time.Time

	mu     sync.Mutex
	loaded bool
	repos  map[string]Repository
}

// New returns a registry persisted at file.
func New(file string, logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Registry{file: file, log: logger, now: time.Now}
}

// File returns the backing file path.
func (r *Registry) File() string { return r.file }

// NormalizePath cleans p the way registry keys are stored.
func NormalizePath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", ErrInvalidPath
	}
	return filepath.Clean(p), nil
}

// GetAll returns every record. Order is not significant.
func (r *Registry) GetAll() ([]Repository, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}
	out := make([]Repository, 0, len(r.repos))
	for _, repo := range r.repos {
		out = append(out, repo)
	}
	return out, nil
}

// Get returns the record for path.
func (r *Registry) Get(path string) (Repository, error) {
	key, err := NormalizePath(path)
	if err != nil {
		return Repository{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoaded(); err != nil {
		return Repository{}, err
	}
	repo, ok := r.repos[key]
	if !ok {
		return Repository{}, ErrNotFound
	}
	return repo, nil
}

// Add registers path. Adding a known path returns the stored record
// unchanged. The path is not checked for git metadata.
func (r *Registry) Add(path string) (Repository, error) {
	key, err := NormalizePath(path)
	if err != nil {
		return Repository{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoaded(); err != nil {
		return Repository{}, err
	}
	if existing, ok := r.repos[key]; ok {
		return existing, nil
	}
	now := r.now().UTC()
	repo := Repository{
		Path:       key,
		Name:       filepath.Base(key),
		LastOpened: &now,
	}
	r.repos[key] = repo
	if err := r.persist(); err != nil {
		delete(r.repos, key)
		return Repository{}, err
	}
	r.log.Info("repository registered", "path", key)
	return repo, nil
}

// Remove drops path from the registry. Files on disk are not touched.
func (r *Registry) Remove(path string) error {
	key, err := NormalizePath(path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.ensureLoaded(); err != nil {
		return err
	}
	prev, ok := r.repos[key]
	if !ok {
		return ErrNotFound
	}
	delete(r.repos, key)
	if err := r.persist(); err != nil {
		r.repos[key] = prev
		return err
	}
	r.log.Info("repository unregistered", "path", key)
	return nil
}

// Update merges patch into the record for path.
func (r *Registry) Update(path string, patch Patch) (Repository, error) {
	key, err := NormalizePath(path)
	if err != nil {
		return Repository{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mutate(key, func(repo *Repository) {
		if patch.Name != nil {
			repo.Name = *patch.Name
		}
		if patch.LastOpened != nil {
			t := patch.LastOpened.UTC()
			repo.LastOpened = &t
		}
		if patch.IsFavorite != nil {
			repo.IsFavorite = *patch.IsFavorite
		}
	})
}

// ToggleFavorite flips the favorite flag of path.
func (r *Registry) ToggleFavorite(path string) (Repository, error) {
	key, err := NormalizePath(path)
	if err != nil {
		return Repository{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mutate(key, func(repo *Repository) { repo.IsFavorite = !repo.IsFavorite })
}

// UpdateLastOpened stamps path with the current time.
func (r *Registry) UpdateLastOpened(path string) (Repository, error) {
	now := r.now()
	return r.Update(path, Patch{LastOpened: &now})
}

// mutate applies fn to the record for key and persists. Caller holds mu.
func (r *Registry) mutate(key string, fn func(*Repository)) (Repository, error) {
	if err := r.ensureLoaded(); err != nil {
		return Repository{}, err
	}
	prev, ok := r.repos[key]
	if !ok {
		return Repository{}, ErrNotFound
	}
	next := prev
	fn(&next)
	next.Path = prev.Path
	r.repos[key] = next
	if err := r.persist(); err != nil {
		r.repos[key] = prev
		return Repository{}, err
	}
	return next, nil
}

// ensureLoaded reads the backing file once. Caller holds mu.
func (r *Registry) ensureLoaded() error {
	if r.loaded {
		return nil
	}
	records, err := readFile(r.file)
	if err != nil {
		var ioErr *IOError
		if errors.As(err, &ioErr) {
			return err
		}
		r.log.Warn("registry file unreadable, starting empty", "path", r.file, "error", err)
		records = nil
	}
	r.repos = make(map[string]Repository, len(records))
	for _, rec := range records {
		key, err := NormalizePath(rec.Path)
		if err != nil {
			continue
		}
		rec.Path = key
		if rec.Name == "" {
			rec.Name = filepath.Base(key)
		}
		r.repos[key] = rec
	}
	r.loaded = true
	return nil
}

// persist rewrites the backing file. Caller holds mu.
func (r *Registry) persist() error {
	records := make([]Repository, 0, len(r.repos))
	for _, repo := range r.repos {
		records = append(records, repo)
	}
	if err := writeFile(r.file, records); err != nil {
		r.log.Error("persist registry failed", "path", r.file, "error", err)
		return err
	}
	return nil
}
