package bridge

import (
	"context"

	"gitdesk/internal/config"
	"gitdesk/internal/logging"
)

// SettingsAPI reads and writes settings.yaml. Updated identity and remote
// defaults apply to sessions opened afterwards; timeouts apply at once.
type SettingsAPI struct {
	core
	store *config.Store
}

func NewSettingsAPI(store *config.Store, journal Recorder, logger logging.Logger) *SettingsAPI {
	return &SettingsAPI{core: newCore(nil, journal, nil, logger), store: store}
}

func (a *SettingsAPI) Get() Response {
	return success(a.store.Get())
}

func (a *SettingsAPI) Update(next config.Settings) Response {
	return a.run(call{op: "settings.update", record: true}, func(context.Context) (any, error) {
		return a.store.Update(next)
	})
}
