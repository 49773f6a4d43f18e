// Package monitor supervises consistency between the primary store and the
// search index: a scheduled health check classifies drift, a recovery
// orchestrator repairs it, and a performance probe samples index latency
// and resource use without feeding back into recovery.
package monitor

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/storymill/worksync/internal/search"
	"github.com/storymill/worksync/internal/store"
)

// Defaults for the health decision rule.
const (
	DefaultTolerance   = 10
	DefaultMaxFailures = 3
	DefaultInterval    = 30 * time.Second
)

// IndexProbe is the monitor's view of the search index. Satisfied by
// *search.Index.
type IndexProbe interface {
	Exists() bool
	Count() (uint64, error)
	Color() search.Color
}

// HealthState is one sampled decision about store/index consistency.
type HealthState struct {
	Healthy     bool
	StoreCount  int
	IndexCount  int
	IndexExists bool
	Color       search.Color
	CheckedAt   time.Time
}

// Monitor samples store and index state on a fixed schedule and tracks
// consecutive failures. All mutable counters live here, on one explicit
// object passed to the scheduler - never in package globals.
type Monitor struct {
	store        store.Store
	index        IndexProbe
	orchestrator *Orchestrator
	tolerance    int
	maxFailures  int
	logger       *slog.Logger

	mu                  sync.Mutex
	consecutiveFailures int
	lastState           HealthState
}

// MonitorOptions configures a Monitor.
type MonitorOptions struct {
	Tolerance   int // Acceptable |indexCount - storeCount|; defaults to DefaultTolerance
	MaxFailures int // Consecutive failures before recovery; defaults to DefaultMaxFailures
	Logger      *slog.Logger
}

// NewMonitor creates a health monitor bound to its recovery orchestrator.
func NewMonitor(st store.Store, index IndexProbe, orchestrator *Orchestrator, opts MonitorOptions) *Monitor {
	tolerance := opts.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	maxFailures := opts.MaxFailures
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	return &Monitor{
		store:        st,
		index:        index,
		orchestrator: orchestrator,
		tolerance:    tolerance,
		maxFailures:  maxFailures,
		logger:       logger,
	}
}

// Check samples both sides and applies the decision rule:
//
//	healthy = color in {green, yellow} AND index exists AND |drift| <= tolerance
//
// A connectivity failure returns the partial state alongside the error;
// the caller treats it as unhealthy.
func (m *Monitor) Check(ctx context.Context) (HealthState, error) {
	state := HealthState{
		IndexExists: m.index.Exists(),
		Color:       m.index.Color(),
		CheckedAt:   time.Now(),
	}

	storeCount, err := m.store.CountWorks(ctx)
	if err != nil {
		return state, err
	}
	state.StoreCount = storeCount

	if state.IndexExists {
		indexCount, err := m.index.Count()
		if err != nil {
			return state, err
		}
		state.IndexCount = int(indexCount)
	}

	drift := state.StoreCount - state.IndexCount
	if drift < 0 {
		drift = -drift
	}

	state.Healthy = (state.Color == search.ColorGreen || state.Color == search.ColorYellow) &&
		state.IndexExists &&
		drift <= m.tolerance

	return state, nil
}

// Tick runs one scheduled health check and drives the recovery
// orchestrator. On a healthy result the failure counter resets; on an
// unhealthy result (including a check that itself errored) it increments,
// and once it reaches the failure threshold the orchestrator is asked to
// recover. The orchestrator's own guard makes concurrent triggers no-ops,
// so an episode produces exactly one recovery at a time.
func (m *Monitor) Tick(ctx context.Context) {
	state, err := m.Check(ctx)
	if err != nil {
		m.logger.Warn("health check failed", "error", err)
		state.Healthy = false
	}

	m.mu.Lock()
	m.lastState = state
	if state.Healthy {
		m.consecutiveFailures = 0
		m.mu.Unlock()
		m.orchestrator.NoteHealthy()
		return
	}
	m.consecutiveFailures++
	failures := m.consecutiveFailures
	m.mu.Unlock()

	m.logger.Warn("index unhealthy",
		"store_count", state.StoreCount,
		"index_count", state.IndexCount,
		"index_exists", state.IndexExists,
		"color", state.Color,
		"consecutive_failures", failures,
	)

	m.orchestrator.NoteUnhealthy()

	if failures >= m.maxFailures {
		if m.orchestrator.Recover(ctx) {
			m.mu.Lock()
			m.consecutiveFailures = 0
			m.mu.Unlock()
		}
	}
}

// ConsecutiveFailures returns the current failure streak.
func (m *Monitor) ConsecutiveFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.consecutiveFailures
}

// LastState returns the most recent sampled health state.
func (m *Monitor) LastState() HealthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastState
}
