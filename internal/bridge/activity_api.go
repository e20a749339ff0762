package bridge

import (
	"context"
	"errors"
	"time"

	"gitdesk/internal/logging"
	"gitdesk/internal/storage/journal"
)

// JournalReader is the read side of the operation journal.
type JournalReader interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
	ForRepository(ctx context.Context, path string, limit int) ([]journal.Entry, error)
}

// ActivityAPI lists recorded operations.
type ActivityAPI struct {
	core
	reader JournalReader
}

func NewActivityAPI(reader JournalReader, logger logging.Logger) *ActivityAPI {
	return &ActivityAPI{core: newCore(nil, nil, nil, logger), reader: reader}
}

const activityReadTimeout = 5 * time.Second

func (a *ActivityAPI) Recent(limit int) Response {
	return a.run(call{op: "activity.recent"}, func(ctx context.Context) (any, error) {
		if a.reader == nil {
			return nil, errors.New("activity journal unavailable")
		}
		if err := requireValue("limit", limit, "gte=0,lte=1000"); err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(ctx, activityReadTimeout)
		defer cancel()
		return a.reader.Recent(ctx, limit)
	})
}

func (a *ActivityAPI) ForRepository(path string, limit int) Response {
	return a.run(call{op: "activity.forRepository", repoPath: path}, func(ctx context.Context) (any, error) {
		if a.reader == nil {
			return nil, errors.New("activity journal unavailable")
		}
		if err := requireValue("limit", limit, "gte=0,lte=1000"); err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(ctx, activityReadTimeout)
		defer cancel()
		return a.reader.ForRepository(ctx, path, limit)
	})
}
