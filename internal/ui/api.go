// Package ui exposes native dialogs to the frontend.
package ui

import (
	"context"
	"errors"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"gitdesk/internal/logging"
)

var errNoContext = errors.New("application context not initialised")

type API struct {
	ctxFn func() context.Context
	log   logging.Logger
}

func NewAPI(ctxProvider func() context.Context, logger logging.Logger) *API {
	if logger == nil {
		logger = logging.Nop()
	}
	return &API{ctxFn: ctxProvider, log: logger}
}

// FileFilter restricts SelectFile to matching names, e.g. "*.pub;*.pem".
type FileFilter struct {
	DisplayName string `json:"displayName"`
	Pattern     string `json:"pattern"`
}

func (a *API) context() (context.Context, error) {
	if a.ctxFn == nil {
		return nil, errNoContext
	}
	ctx := a.ctxFn()
	if ctx == nil {
		return nil, errNoContext
	}
	return ctx, nil
}

// SelectDirectory opens a directory picker. An empty result means the user
// cancelled.
func (a *API) SelectDirectory(defaultDirectory string) (string, error) {
	ctx, err := a.context()
	if err != nil {
		return "", err
	}
	options := wailsruntime.OpenDialogOptions{
		Title:                "Select a repository directory",
		CanCreateDirectories: true,
	}
	if defaultDirectory != "" {
		options.DefaultDirectory = defaultDirectory
	}
	path, err := wailsruntime.OpenDirectoryDialog(ctx, options)
	if err != nil {
		a.log.Warn("directory dialog failed", "error", err)
	}
	return path, err
}

// SelectFile opens a file picker, used for choosing an SSH key.
func (a *API) SelectFile(title, defaultDirectory string, filters []FileFilter) (string, error) {
	ctx, err := a.context()
	if err != nil {
		return "", err
	}
	if title == "" {
		title = "Select a file"
	}
	options := wailsruntime.OpenDialogOptions{
		Title:            title,
		DefaultDirectory: defaultDirectory,
		ShowHiddenFiles:  true,
	}
	for _, f := range filters {
		options.Filters = append(options.Filters, wailsruntime.FileFilter{DisplayName: f.DisplayName, Pattern: f.Pattern})
	}
	path, err := wailsruntime.OpenFileDialog(ctx, options)
	if err != nil {
		a.log.Warn("file dialog failed", "error", err)
	}
	return path, err
}
