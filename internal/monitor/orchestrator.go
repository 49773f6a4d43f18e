package monitor

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/storymill/worksync/internal/syncer"
)

// State is the recovery state machine's current position.
type State string

// Recovery states. The cycle is Healthy -> Degraded -> Recovering ->
// Healthy; Degraded re-enters itself on repeated failures below the
// threshold, and Recovering falls back to Degraded on a fatal resync
// error, to be retried on the next scheduled check.
const (
	StateHealthy    State = "healthy"
	StateDegraded   State = "degraded"
	StateRecovering State = "recovering"
)

// SchemaEnsurer idempotently guarantees the index exists. Satisfied by
// *search.Index.
type SchemaEnsurer interface {
	Ensure() error
}

// Resyncer performs a full index rebuild. Satisfied by
// *syncer.Synchronizer.
type Resyncer interface {
	FullResync(ctx context.Context) (*syncer.Report, error)
}

// Orchestrator owns the recovery state machine. Recovery runs in-process
// as a direct call into the schema manager and synchronizer - nothing is
// shelled out, so the whole repair path is testable as function
// composition.
type Orchestrator struct {
	schema SchemaEnsurer
	syncer Resyncer
	logger *slog.Logger

	// recoverMu is the recovery-in-progress guard. Held for the entire
	// resync so overlapping health ticks cannot start a second one.
	recoverMu sync.Mutex

	mu         sync.Mutex
	state      State
	lastSync   time.Time
	lastReport *syncer.Report
}

// NewOrchestrator creates an orchestrator in the healthy state.
func NewOrchestrator(schema SchemaEnsurer, resyncer Resyncer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Orchestrator{
		schema: schema,
		syncer: resyncer,
		logger: logger,
		state:  StateHealthy,
	}
}

// State returns the current recovery state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// LastSync returns the completion time of the last successful resync.
func (o *Orchestrator) LastSync() time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastSync
}

// LastReport returns the report of the last successful resync, or nil.
func (o *Orchestrator) LastReport() *syncer.Report {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastReport
}

// NoteUnhealthy records an unhealthy check: Healthy degrades, Degraded
// stays degraded, an in-flight recovery is untouched.
func (o *Orchestrator) NoteUnhealthy() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateHealthy {
		o.state = StateDegraded
		o.logger.Warn("entering degraded state")
	}
}

// NoteHealthy records a healthy check: a below-threshold degraded episode
// ends without recovery.
func (o *Orchestrator) NoteHealthy() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateDegraded {
		o.state = StateHealthy
		o.logger.Info("recovered to healthy without resync")
	}
}

// Recover runs one recovery attempt: ensure the index schema, then fully
// resync. Returns true only when the resync completed without a fatal
// error. A second trigger while a recovery is in flight is a no-op
// returning false. A fatal failure leaves the state degraded; the next
// scheduled health check retries, which bounds retry frequency to the
// monitor interval.
func (o *Orchestrator) Recover(ctx context.Context) bool {
	if !o.recoverMu.TryLock() {
		o.logger.Debug("recovery already in progress, skipping trigger")
		return false
	}
	defer o.recoverMu.Unlock()

	o.setState(StateRecovering)
	o.logger.Info("starting recovery")

	if err := o.schema.Ensure(); err != nil {
		o.logger.Error("index creation failed, staying degraded", "error", err)
		o.setState(StateDegraded)
		return false
	}

	report, err := o.syncer.FullResync(ctx)
	if err != nil {
		processed := 0
		if report != nil {
			processed = report.TotalProcessed
		}
		o.logger.Error("resync failed, staying degraded",
			"error", err,
			"processed_before_failure", processed,
		)
		o.setState(StateDegraded)
		return false
	}

	o.mu.Lock()
	o.state = StateHealthy
	o.lastSync = time.Now()
	o.lastReport = report
	o.mu.Unlock()

	o.logger.Info("recovery complete",
		"processed", report.TotalProcessed,
		"errors", report.TotalErrors,
		"duration", report.Duration,
	)
	return true
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}
