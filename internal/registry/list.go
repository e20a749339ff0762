package registry

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// ListQuery narrows List results.
type ListQuery struct {
	// Query fuzzy-matches against repository names.
	Query         string `json:"query,omitempty"`
	FavoritesOnly bool   `json:"favoritesOnly,omitempty"`
}

type nameSource []Repository

func (s nameSource) String(i int) string { return s[i].Name }
func (s nameSource) Len() int            { return len(s) }

// List returns records matching q, favorites first, then most recently
// opened, then by name.
func (r *Registry) List(q ListQuery) ([]Repository, error) {
	all, err := r.GetAll()
	if err != nil {
		return nil, err
	}
	candidates := all[:0:0]
	for _, repo := range all {
		if q.FavoritesOnly && !repo.IsFavorite {
			continue
		}
		candidates = append(candidates, repo)
	}
	if query := strings.TrimSpace(q.Query); query != "" {
		matches := fuzzy.FindFrom(query, nameSource(candidates))
		filtered := make([]Repository, 0, len(matches))
		for _, m := range matches {
			filtered = append(filtered, candidates[m.Index])
		}
		candidates = filtered
	}
	sortForDisplay(candidates)
	return candidates, nil
}

func sortForDisplay(repos []Repository) {
	sort.SliceStable(repos, func(i, j int) bool {
		a, b := repos[i], repos[j]
		if a.IsFavorite != b.IsFavorite {
			return a.IsFavorite
		}
		at, bt := a.LastOpened, b.LastOpened
		switch {
		case at != nil && bt != nil && !at.Equal(*bt):
			return at.After(*bt)
		case at != nil && bt == nil:
			return true
		case at == nil && bt != nil:
			return false
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Path < b.Path
	})
}
