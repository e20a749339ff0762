package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"gitdesk/internal/bridge"
	"gitdesk/internal/config"
	"gitdesk/internal/logging"
	"gitdesk/internal/registry"
	"gitdesk/internal/session"
	"gitdesk/internal/storage"
	"gitdesk/internal/storage/journal"
	"gitdesk/internal/storage/migrate"
	"gitdesk/internal/storage/sqlite"
	"gitdesk/internal/watchers"
)

// journalRetention bounds how long operation history is kept.
const journalRetention = 90 * 24 * time.Hour

// App owns the long-lived services behind the bound APIs.
type App struct {
	ctxMu sync.RWMutex
	ctx   context.Context

	dataDir   string
	log       logging.Logger
	logCloser io.Closer

	db       *sql.DB
	registry *registry.Registry
	settings *config.Store
	journal  *journal.Repository
	watchers *watchers.Service
	sessions *session.Manager
}

// NewApp opens every store under dataDir. A journal that cannot be opened
// on disk is replaced by an in-memory one so the app still starts.
func NewApp(dataDir string) (*App, error) {
	a := &App{dataDir: dataDir}

	level := slog.LevelInfo
	if os.Getenv("GITDESK_DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger, closer, err := logging.OpenFile(dataDir, storage.LogFile, level)
	if err != nil {
		logger = logging.NewText(os.Stderr, level)
		logger.Warn("log file unavailable, logging to stderr", "error", err)
	}
	a.log, a.logCloser = logger, closer

	a.settings = config.NewStore(filepath.Join(dataDir, storage.SettingsFile), logging.With(logger, "component", "settings"))
	a.registry = registry.New(filepath.Join(dataDir, storage.RegistryFile), logging.With(logger, "component", "registry"))

	db, err := openJournal(filepath.Join(dataDir, storage.JournalFile))
	if err != nil {
		logger.Error("journal unavailable, history will not persist", "error", err)
		if db, err = sqlite.OpenMemory("gitdesk-journal"); err != nil {
			return nil, err
		}
		if err := migrate.Up(db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	a.db = db
	a.journal = journal.NewRepository(db)
	if n, err := a.journal.Prune(context.Background(), time.Now().Add(-journalRetention)); err != nil {
		logger.Warn("journal prune failed", "error", err)
	} else if n > 0 {
		logger.Info("journal pruned", "entries", n)
	}

	a.watchers = watchers.New(bridge.ChangeEmitter(a.emit))
	a.watchers.SetLogger(logging.With(logger, "component", "watchers"))
	a.sessions = session.NewManager(a.settings,
		session.WithLogger(logging.With(logger, "component", "session")),
		session.WithWatcher(a.watchers),
	)
	logger.Info("gitdesk started", "dataDir", dataDir)
	return a, nil
}

func openJournal(path string) (*sql.DB, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, err
	}
	if err := migrate.Up(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return db, nil
}

// Context returns the Wails runtime context once startup has run.
func (a *App) Context() context.Context {
	a.ctxMu.RLock()
	defer a.ctxMu.RUnlock()
	return a.ctx
}

func (a *App) emit(event string, data ...any) {
	ctx := a.Context()
	if ctx == nil {
		return
	}
	wailsruntime.EventsEmit(ctx, event, data...)
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctxMu.Lock()
	a.ctx = ctx
	a.ctxMu.Unlock()
}

func (a *App) shutdown(context.Context) {
	a.sessions.CloseAll()
	a.watchers.Stop()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("close journal", "error", err)
		}
	}
	a.log.Info("gitdesk stopped")
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}
