package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
)

// Dispatch runs job in its own goroutine and returns a channel closed once it has
// finished. The job receives a background context that keeps the caller's logger
// (tagged with the job name) but not its cancellation, so a webhook request ending
// does not interrupt the packaging run it triggered. Errors and panics are logged.
func Dispatch(ctx context.Context, name string, job func(ctx context.Context) error) <-chan struct{} {
	logger := ctxlog.From(ctx).With("job", name)
	jobCtx := ctxlog.With(context.Background(), logger)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in async job",
					"recover", r,
					"stack", string(debug.Stack()),
				)
			}
		}()

		logger.Debug("async job started")
		if err := job(jobCtx); err != nil {
			logger.Error("async job failed", "error", err)
			return
		}
		logger.Debug("async job finished")
	}()

	return done
}
