// Package maintenance runs periodic background tasks as Go tickers and the
// post-sync view refresh.
package maintenance

import (
	"context"
	"log/slog"
	"time"
)

// Task is one periodic job. A zero Interval disables it.
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Start launches a ticker per enabled task. Blocks until ctx is cancelled.
// Intended to be called with `go`.
func Start(ctx context.Context, tasks []Task, logger *slog.Logger) {
	started := 0
	for _, task := range tasks {
		if task.Interval <= 0 || task.Run == nil {
			continue
		}
		t := time.NewTicker(task.Interval)
		defer t.Stop()
		go runLoop(ctx, t.C, task, logger)
		started++
		logger.Info("Maintenance ticker started", "task", task.Name, "interval", task.Interval)
	}
	if started == 0 {
		return
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, task Task, logger *slog.Logger) {
	for {
		select {
		case <-ch:
			start := time.Now()
			if err := task.Run(ctx); err != nil {
				logger.Warn("Maintenance task failed", "task", task.Name, "error", err)
				continue
			}
			logger.Debug("Maintenance task done", "task", task.Name,
				"duration", time.Since(start).Round(time.Millisecond))
		case <-ctx.Done():
			return
		}
	}
}
