package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Job is one recurring maintenance task.
type Job struct {
	Name string
	// Spec is a robfig/cron expression, e.g. "@every 10m" or "*/5 * * * *".
	Spec string
	Run  func(ctx context.Context)
}

// Start registers jobs on a new cron instance and starts it. Jobs receive ctx,
// which callers cancel on shutdown alongside Stop. A run still in progress
// makes the next tick skip. Recover sits inside the skip wrapper so a
// panicking run is logged and releases its slot for the next tick.
func Start(ctx context.Context, jobs ...Job) (*cron.Cron, error) {
	logger := slogLogger{slog.Default().With("component", "scheduler")}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.SkipIfStillRunning(logger), cron.Recover(logger)),
	)

	for _, j := range jobs {
		job := j
		if job.Run == nil {
			return nil, fmt.Errorf("scheduler: job %q has no Run func", job.Name)
		}
		if _, err := c.AddFunc(job.Spec, func() { job.Run(ctx) }); err != nil {
			return nil, fmt.Errorf("scheduler: invalid spec %q for job %q: %w", job.Spec, job.Name, err)
		}
		slog.Info("scheduler: added job", "job", job.Name, "spec", job.Spec)
	}

	c.Start()
	return c, nil
}

// slogLogger adapts slog to cron.Logger.
type slogLogger struct {
	l *slog.Logger
}

func (s slogLogger) Info(msg string, keysAndValues ...interface{}) {
	s.l.Debug(msg, keysAndValues...)
}

func (s slogLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	s.l.Error(msg, append(keysAndValues, "error", err)...)
}
