// Package watchers turns filesystem activity under an open repository into
// debounced "repository changed" notifications, one watcher per session.
package watchers

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"gitdesk/internal/logging"
)

// Emitter receives the session id and repository root after a burst of
// changes has settled.
type Emitter func(sessionID, root string)

type entry struct {
	root    string
	watcher *fsnotify.Watcher
}

// Service watches repository work trees per session.
type Service struct {
	mu           sync.Mutex
	watchers     map[string]entry
	notifyTimers map[string]*time.Timer
	onChange     Emitter
	logger       logging.Logger
	debounce     time.Duration
}

func New(emitter Emitter) *Service {
	return &Service{
		watchers:     map[string]entry{},
		notifyTimers: map[string]*time.Timer{},
		onChange:     emitter,
		logger:       logging.Nop(),
		debounce:     200 * time.Millisecond,
	}
}

func (s *Service) SetEmitter(fn Emitter) { s.mu.Lock(); s.onChange = fn; s.mu.Unlock() }

func (s *Service) SetLogger(l logging.Logger) {
	s.mu.Lock()
	if l != nil {
		s.logger = l
	}
	s.mu.Unlock()
}

func (s *Service) SetDebounce(d time.Duration) {
	s.mu.Lock()
	if d > 0 {
		s.debounce = d
	}
	s.mu.Unlock()
}

// Ensure starts watching root for sessionID. Calling it again for a session
// that is already watched is a no-op.
func (s *Service) Ensure(sessionID, root string) {
	root = strings.TrimSpace(root)
	if sessionID == "" || root == "" {
		return
	}
	s.mu.Lock()
	if _, ok := s.watchers[sessionID]; ok {
		s.mu.Unlock()
		return
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log := s.logger
		s.mu.Unlock()
		log.Error("watcher create failed", "sessionId", sessionID, "error", err)
		return
	}
	s.watchers[sessionID] = entry{root: root, watcher: watcher}
	log := s.logger
	s.mu.Unlock()

	if err := addRecursive(watcher, root); err != nil {
		log.Warn("watcher setup error", "sessionId", sessionID, "path", root, "error", err)
	}
	addGitMetadata(watcher, root)
	go s.observe(sessionID, root, watcher)
}

// Watching reports whether sessionID has an active watcher.
func (s *Service) Watching(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.watchers[sessionID]
	return ok
}

func (s *Service) Remove(sessionID string) {
	s.mu.Lock()
	if t, ok := s.notifyTimers[sessionID]; ok {
		t.Stop()
		delete(s.notifyTimers, sessionID)
	}
	e, ok := s.watchers[sessionID]
	if ok {
		delete(s.watchers, sessionID)
	}
	s.mu.Unlock()
	if ok {
		_ = e.watcher.Close()
	}
}

func (s *Service) Stop() {
	s.mu.Lock()
	timers := make([]*time.Timer, 0, len(s.notifyTimers))
	for _, t := range s.notifyTimers {
		timers = append(timers, t)
	}
	ws := make([]*fsnotify.Watcher, 0, len(s.watchers))
	for _, e := range s.watchers {
		ws = append(ws, e.watcher)
	}
	s.notifyTimers = map[string]*time.Timer{}
	s.watchers = map[string]entry{}
	s.mu.Unlock()
	for _, t := range timers {
		if t != nil {
			t.Stop()
		}
	}
	for _, w := range ws {
		if w != nil {
			_ = w.Close()
		}
	}
}

func addRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && ignoredDirs[d.Name()] {
			return filepath.SkipDir
		}
		_ = w.Add(path)
		return nil
	})
}

// addGitMetadata watches the files that move when HEAD, the index or refs
// change; the object store is left alone.
func addGitMetadata(w *fsnotify.Watcher, root string) {
	gitDir := filepath.Join(root, ".git")
	if info, err := os.Stat(gitDir); err != nil || !info.IsDir() {
		return
	}
	_ = w.Add(gitDir)
	_ = filepath.WalkDir(filepath.Join(gitDir, "refs"), func(path string, d os.DirEntry, err error) error {
		if err == nil && d.IsDir() {
			_ = w.Add(path)
		}
		return nil
	})
}

func (s *Service) observe(sessionID, root string, w *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if isIgnored(root, ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addRecursive(w, ev.Name)
				}
			}
			s.schedule(sessionID, root)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.mu.Lock()
			log := s.logger
			s.mu.Unlock()
			log.Warn("watcher error", "sessionId", sessionID, "error", err)
		}
	}
}

var ignoredDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
	".cache":       true,
}

// gitSignals are the entries directly under .git whose change matters.
var gitSignals = map[string]bool{
	"HEAD":        true,
	"index":       true,
	"ORIG_HEAD":   true,
	"MERGE_HEAD":  true,
	"FETCH_HEAD":  true,
	"packed-refs": true,
	"refs":        true,
}

func isIgnored(root, path string) bool {
	if path == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return true
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if parts[0] == ".git" {
		if len(parts) == 1 {
			return true
		}
		if strings.HasSuffix(path, ".lock") {
			return true
		}
		return !gitSignals[parts[1]]
	}
	for _, p := range parts {
		if ignoredDirs[p] {
			return true
		}
	}
	return false
}

func (s *Service) schedule(sessionID, root string) {
	s.mu.Lock()
	if t, ok := s.notifyTimers[sessionID]; ok {
		t.Stop()
	}
	var t *time.Timer
	delay := s.debounce
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}
	t = time.AfterFunc(delay, func() {
		s.mu.Lock()
		emit := s.onChange
		if cur, ok := s.notifyTimers[sessionID]; ok && cur == t {
			delete(s.notifyTimers, sessionID)
		}
		s.mu.Unlock()
		if emit != nil {
			emit(sessionID, root)
		}
	})
	s.notifyTimers[sessionID] = t
	s.mu.Unlock()
}
