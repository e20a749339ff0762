package bridge

import "gitdesk/internal/watchers"

// EventRepoChanged is emitted after the files of an open repository change.
const EventRepoChanged = "repo:changed"

// RepoChanged is the payload of EventRepoChanged.
type RepoChanged struct {
	SessionID string `json:"sessionId"`
	Path      string `json:"path"`
}

// ChangeEmitter adapts a Wails-style emit function to the watcher callback.
func ChangeEmitter(emit func(event string, data ...any)) watchers.Emitter {
	return func(sessionID, root string) {
		if emit == nil {
			return
		}
		emit(EventRepoChanged, RepoChanged{SessionID: sessionID, Path: root})
	}
}
