package main

import (
	"embed"
	"log"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"

	"gitdesk/internal/bridge"
	"gitdesk/internal/logging"
	"gitdesk/internal/storage"
	"gitdesk/internal/ui"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	dataDir, err := storage.DataDir()
	if err != nil {
		log.Fatalf("data dir: %v", err)
	}
	app, err := NewApp(dataDir)
	if err != nil {
		log.Fatalf("init app: %v", err)
	}

	// Domain APIs
	apiLog := logging.With(app.log, "component", "bridge")
	uiAPI := ui.NewAPI(app.Context, apiLog)
	gitAPI := bridge.NewGitAPI(bridge.GitDeps{
		Sessions: app.sessions,
		Registry: app.registry,
		Settings: app.settings,
		Journal:  app.journal,
		Picker:   uiAPI,
		Context:  app.Context,
		Logger:   apiLog,
	})
	repositoryAPI := bridge.NewRepositoryAPI(app.registry, app.journal, apiLog)
	settingsAPI := bridge.NewSettingsAPI(app.settings, app.journal, apiLog)
	activityAPI := bridge.NewActivityAPI(app.journal, apiLog)

	err = wails.Run(&options.App{
		Title:     "GitDesk",
		Width:     1280,
		Height:    800,
		MinWidth:  960,
		MinHeight: 600,
		Linux: &linux.Options{
			WebviewGpuPolicy: linux.WebviewGpuPolicyOnDemand,
		},
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 255, G: 255, B: 255, A: 1},
		OnStartup:        app.startup,
		OnShutdown:       app.shutdown,
		Bind:             []interface{}{gitAPI, repositoryAPI, settingsAPI, activityAPI, uiAPI},
	})

	if err != nil {
		println("Error:", err.Error())
	}
}
