package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/storymill/worksync/internal/config"
	"github.com/storymill/worksync/internal/logger"
	"github.com/storymill/worksync/internal/monitor"
	"github.com/storymill/worksync/internal/syncer"
)

// ProvideOrchestrator provides the recovery orchestrator.
func ProvideOrchestrator(i do.Injector) (*monitor.Orchestrator, error) {
	log := do.MustInvoke[*logger.Logger](i)
	indexHandle := do.MustInvoke[*IndexHandle](i)
	sync := do.MustInvoke[*syncer.Synchronizer](i)

	return monitor.NewOrchestrator(indexHandle.Index, sync, log.Logger), nil
}

// ProvideMonitor provides the health monitor.
func ProvideMonitor(i do.Injector) (*monitor.Monitor, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*IndexHandle](i)
	orchestrator := do.MustInvoke[*monitor.Orchestrator](i)

	return monitor.NewMonitor(storeHandle.Store, indexHandle.Index, orchestrator, monitor.MonitorOptions{
		Tolerance:   cfg.Monitor.Tolerance,
		MaxFailures: cfg.Monitor.MaxFailures,
		Logger:      log.Logger,
	}), nil
}

// ProvideProbe provides the performance probe.
func ProvideProbe(i do.Injector) (*monitor.Probe, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	indexHandle := do.MustInvoke[*IndexHandle](i)

	return monitor.NewProbe(indexHandle.Index, monitor.ProbeOptions{
		ThresholdPct: float64(cfg.Probe.ThresholdPct),
		MaxLatency:   cfg.Probe.MaxLatency,
		Logger:       log.Logger,
	}), nil
}

// SchedulerJob runs the scheduled health, verification, and probe tasks.
type SchedulerJob struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (j *SchedulerJob) Shutdown() error {
	j.cancel()
	<-j.done
	return nil
}

// ProvideSchedulerJob starts the task scheduler in the background. The
// health check runs immediately on startup; verification and the probe
// wait out their first interval.
func ProvideSchedulerJob(i do.Injector) (*SchedulerJob, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	mon := do.MustInvoke[*monitor.Monitor](i)
	probe := do.MustInvoke[*monitor.Probe](i)

	sched := monitor.NewScheduler(log.Logger)
	sched.Add(monitor.Task{
		Name:       "health-check",
		Interval:   cfg.Monitor.Interval,
		RunOnStart: true,
		Run:        mon.Tick,
	})
	// Verification re-runs the same drift check on a slower cadence so a
	// quiet archive still gets compared against its index at least hourly.
	sched.Add(monitor.Task{
		Name:     "verification",
		Interval: cfg.Monitor.VerifyInterval,
		Run:      mon.Tick,
	})
	sched.Add(monitor.Task{
		Name:     "performance-probe",
		Interval: cfg.Probe.Interval,
		Run:      probe.Tick,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := sched.Start(ctx); err != nil {
			log.Error("Scheduler stopped with error", "error", err)
		}
	}()

	log.Info("Scheduler started",
		"check_interval", cfg.Monitor.Interval,
		"verify_interval", cfg.Monitor.VerifyInterval,
		"probe_interval", cfg.Probe.Interval,
	)

	return &SchedulerJob{cancel: cancel, done: done}, nil
}
