package monitor

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/storymill/worksync/internal/search"
)

// Probe defaults.
const (
	DefaultProbeInterval     = 5 * time.Minute
	DefaultProbeThresholdPct = 80.0
	DefaultProbeMaxLatency   = time.Second
	defaultProbeQuery        = "love"
)

// ProbeIndex is the probe's view of the search index. Satisfied by
// *search.Index.
type ProbeIndex interface {
	Count() (uint64, error)
	SizeOnDisk() int64
	Search(ctx context.Context, query string, limit int) ([]search.Hit, error)
}

// Probe periodically samples index size, process heap and GC CPU use, and
// the latency of one canned retrieval query. Purely observational: it logs
// warnings on threshold breaches and never feeds the recovery state
// machine.
type Probe struct {
	index        ProbeIndex
	logger       *slog.Logger
	thresholdPct float64
	maxLatency   time.Duration
	query        string
}

// ProbeOptions configures the probe.
type ProbeOptions struct {
	ThresholdPct float64       // Heap/CPU warn threshold; defaults to DefaultProbeThresholdPct
	MaxLatency   time.Duration // Query latency warn threshold; defaults to DefaultProbeMaxLatency
	Query        string        // Canned query text
	Logger       *slog.Logger
}

// NewProbe creates a performance probe.
func NewProbe(index ProbeIndex, opts ProbeOptions) *Probe {
	thresholdPct := opts.ThresholdPct
	if thresholdPct <= 0 {
		thresholdPct = DefaultProbeThresholdPct
	}
	maxLatency := opts.MaxLatency
	if maxLatency <= 0 {
		maxLatency = DefaultProbeMaxLatency
	}
	query := opts.Query
	if query == "" {
		query = defaultProbeQuery
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	return &Probe{
		index:        index,
		logger:       logger,
		thresholdPct: thresholdPct,
		maxLatency:   maxLatency,
		query:        query,
	}
}

// Tick takes one sample and logs it. Threshold breaches warn; nothing else
// happens - the probe has no say in recovery.
func (p *Probe) Tick(ctx context.Context) {
	docs, err := p.index.Count()
	if err != nil {
		p.logger.Warn("probe could not read index count", "error", err)
		return
	}
	size := p.index.SizeOnDisk()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	heapPct := 0.0
	if ms.HeapSys > 0 {
		heapPct = float64(ms.HeapAlloc) / float64(ms.HeapSys) * 100
	}
	gcCPUPct := ms.GCCPUFraction * 100

	start := time.Now()
	_, searchErr := p.index.Search(ctx, p.query, 1)
	latency := time.Since(start)

	p.logger.Info("performance sample",
		"documents", docs,
		"index_bytes", size,
		"heap_pct", heapPct,
		"gc_cpu_pct", gcCPUPct,
		"query_latency", latency,
	)

	if searchErr != nil {
		p.logger.Warn("canned query failed", "error", searchErr)
	}
	if heapPct > p.thresholdPct {
		p.logger.Warn("heap utilisation above threshold",
			"heap_pct", heapPct, "threshold_pct", p.thresholdPct)
	}
	if gcCPUPct > p.thresholdPct {
		p.logger.Warn("GC CPU fraction above threshold",
			"gc_cpu_pct", gcCPUPct, "threshold_pct", p.thresholdPct)
	}
	if latency > p.maxLatency {
		p.logger.Warn("query latency above threshold",
			"latency", latency, "threshold", p.maxLatency)
	}
}
