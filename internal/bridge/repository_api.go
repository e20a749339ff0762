package bridge

import (
	"context"
	"strings"

	"gitdesk/internal/logging"
	"gitdesk/internal/registry"
)

// RepositoryAPI exposes the repository registry.
type RepositoryAPI struct {
	core
	reg *registry.Registry
}

func NewRepositoryAPI(reg *registry.Registry, journal Recorder, logger logging.Logger) *RepositoryAPI {
	return &RepositoryAPI{core: newCore(nil, journal, nil, logger), reg: reg}
}

func (a *RepositoryAPI) GetAll() Response {
	return a.run(call{op: "registry.getAll"}, func(context.Context) (any, error) {
		return a.reg.GetAll()
	})
}

func (a *RepositoryAPI) List(q registry.ListQuery) Response {
	return a.run(call{op: "registry.list"}, func(context.Context) (any, error) {
		return a.reg.List(q)
	})
}

func (a *RepositoryAPI) Add(path string) Response {
	return a.run(call{op: "registry.add", repoPath: path, record: true}, func(context.Context) (any, error) {
		return a.reg.Add(path)
	})
}

func (a *RepositoryAPI) Remove(path string) Response {
	return a.run(call{op: "registry.remove", repoPath: path, record: true}, func(context.Context) (any, error) {
		return nil, a.reg.Remove(path)
	})
}

func (a *RepositoryAPI) Update(path string, patch registry.Patch) Response {
	return a.run(call{op: "registry.update", repoPath: path, record: true}, func(context.Context) (any, error) {
		if patch.Name != nil {
			if err := requireValue("name", strings.TrimSpace(*patch.Name), "required"); err != nil {
				return nil, err
			}
		}
		return a.reg.Update(path, patch)
	})
}

func (a *RepositoryAPI) ToggleFavorite(path string) Response {
	return a.run(call{op: "registry.toggleFavorite", repoPath: path, record: true}, func(context.Context) (any, error) {
		return a.reg.ToggleFavorite(path)
	})
}

func (a *RepositoryAPI) UpdateLastOpened(path string) Response {
	return a.run(call{op: "registry.updateLastOpened", repoPath: path}, func(context.Context) (any, error) {
		return a.reg.UpdateLastOpened(path)
	})
}
