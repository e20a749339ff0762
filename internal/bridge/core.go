package bridge

import (
	"context"
	"time"

	"gitdesk/internal/git/client"
	"gitdesk/internal/logging"
	"gitdesk/internal/session"
	"gitdesk/internal/storage/journal"
)

// Recorder persists one entry per operation.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) (journal.Entry, error)
}

var _ Recorder = (*journal.Repository)(nil)

const journalWriteTimeout = 2 * time.Second

// call describes one bound invocation for logging and the journal.
type call struct {
	op        string
	sessionID string
	repoPath  string
	kind      session.Kind
	record    bool
}

// core is shared by every API: context source, logger, journal and timing.
type core struct {
	ctxFn    func() context.Context
	log      logging.Logger
	journal  Recorder
	sessions *session.Manager
	now      func() time.Time
}

func newCore(sessions *session.Manager, journal Recorder, ctxFn func() context.Context, logger logging.Logger) core {
	if logger == nil {
		logger = logging.Nop()
	}
	return core{ctxFn: ctxFn, log: logger, journal: journal, sessions: sessions, now: time.Now}
}

func (c core) baseContext() context.Context {
	if c.ctxFn != nil {
		if ctx := c.ctxFn(); ctx != nil {
			return ctx
		}
	}
	return context.Background()
}

// run executes fn under the deadline for cl.kind and converts the outcome
// into a Response.
func (c core) run(cl call, fn func(ctx context.Context) (any, error)) Response {
	start := c.now()
	ctx, cancel := c.withTimeout(cl.kind)
	defer cancel()
	data, err := fn(ctx)
	return c.finish(cl, start, data, err)
}

// runRepo resolves cl.sessionID before running fn against its façade.
func (c core) runRepo(cl call, fn func(ctx context.Context, repo *client.Repo) (any, error)) Response {
	start := c.now()
	if c.sessions == nil {
		return c.finish(cl, start, nil, session.ErrNoSession)
	}
	repo, info, err := c.sessions.Get(cl.sessionID)
	if err != nil {
		return c.finish(cl, start, nil, err)
	}
	cl.repoPath = info.Path
	ctx, cancel := c.withTimeout(cl.kind)
	defer cancel()
	data, err := fn(ctx, repo)
	return c.finish(cl, start, data, err)
}

func (c core) withTimeout(kind session.Kind) (context.Context, context.CancelFunc) {
	if c.sessions == nil {
		return context.WithCancel(c.baseContext())
	}
	return c.sessions.WithTimeout(c.baseContext(), kind)
}

func (c core) finish(cl call, start time.Time, data any, err error) Response {
	elapsed := c.now().Sub(start)
	resp := success(data)
	if err != nil {
		resp = failure(err)
		c.log.Warn("operation failed",
			"op", cl.op, "sessionId", cl.sessionID, "path", cl.repoPath,
			"code", resp.Code, "error", resp.Error, "durationMs", elapsed.Milliseconds())
	} else {
		c.log.Debug("operation completed",
			"op", cl.op, "sessionId", cl.sessionID, "path", cl.repoPath,
			"durationMs", elapsed.Milliseconds())
	}
	if cl.record {
		c.recordEntry(cl, resp, elapsed)
	}
	return resp
}

func (c core) recordEntry(cl call, resp Response, elapsed time.Duration) {
	if c.journal == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), journalWriteTimeout)
	defer cancel()
	_, err := c.journal.Record(ctx, journal.Entry{
		SessionID:    cl.sessionID,
		RepoPath:     cl.repoPath,
		Operation:    cl.op,
		OK:           resp.OK(),
		ErrorCode:    string(resp.Code),
		ErrorMessage: resp.Error,
		DurationMs:   elapsed.Milliseconds(),
	})
	if err != nil {
		c.log.Warn("journal write failed", "op", cl.op, "error", err)
	}
}
