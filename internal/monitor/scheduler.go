package monitor

import (
	"context"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
)

// Task is one cooperatively scheduled, timer-driven job. Run is invoked
// synchronously on each tick; a long-running tick simply delays the next
// one, which is what bounds retry frequency during recovery.
type Task struct {
	Name       string
	Interval   time.Duration
	RunOnStart bool
	Run        func(ctx context.Context)
}

// Scheduler drives a fixed set of tasks on independent tickers until its
// context is cancelled. Cancellation stops the scheduling of new ticks;
// an in-flight tick finishes on its own terms.
type Scheduler struct {
	logger *slog.Logger
	tasks  []Task
}

// NewScheduler creates an empty scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Scheduler{logger: logger}
}

// Add registers a task. Must be called before Start.
func (s *Scheduler) Add(task Task) {
	s.tasks = append(s.tasks, task)
}

// Start runs every task's ticker loop concurrently and blocks until ctx is
// cancelled and all in-flight ticks have returned.
func (s *Scheduler) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, task := range s.tasks {
		task := task
		s.logger.Info("scheduled task", "name", task.Name, "interval", task.Interval)
		g.Go(func() error {
			s.runTask(ctx, task)
			return nil
		})
	}

	return g.Wait()
}

func (s *Scheduler) runTask(ctx context.Context, task Task) {
	if task.RunOnStart {
		task.Run(ctx)
	}

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			task.Run(ctx)
		case <-ctx.Done():
			s.logger.Info("stopping task", "name", task.Name)
			return
		}
	}
}
