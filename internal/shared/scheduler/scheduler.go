package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mpusnik/auctionhub/internal/shared/logger"
)

var log = logger.GetLogger()

// Task is one unit of recurring work, typically a lifecycle sweep.
type Task func(ctx context.Context)

// Scheduler runs a named task on a fixed interval until its context is
// cancelled. The task also runs once at startup so a restart does not leave
// expired items unsettled for a full interval.
type Scheduler struct {
	name     string
	interval time.Duration
	task     Task
}

func New(name string, interval time.Duration, task Task) *Scheduler {
	return &Scheduler{
		name:     name,
		interval: interval,
		task:     task,
	}
}

// Run blocks servicing the ticker. Start it on its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	log.Info("Scheduler started",
		zap.String("task", s.name),
		zap.Duration("interval", s.interval),
	)

	s.task(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Scheduler stopped", zap.String("task", s.name))
			return
		case <-ticker.C:
			s.task(ctx)
		}
	}
}
