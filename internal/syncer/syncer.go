// Package syncer rebuilds the search index from the primary store. The
// full resync is the only write path into the index: it pages the store in
// id order, classifies tags, builds documents and bulk-upserts them page
// by page.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/storymill/worksync/internal/classify"
	"github.com/storymill/worksync/internal/search"
	"github.com/storymill/worksync/internal/store"
)

// DefaultPageSize is the number of works fetched and upserted per page.
const DefaultPageSize = 100

// Sink receives built documents. Satisfied by *search.Index.
type Sink interface {
	BulkUpsert(ctx context.Context, docs []*search.SearchDocument) ([]search.BulkFailure, error)
	Refresh() error
}

// Report summarizes one full resync. A resync that completes all pages is
// successful even with a nonzero error count; per-document failures are
// surfaced for logging, not treated as resync failure.
type Report struct {
	TotalProcessed int
	TotalErrors    int
	Failures       []search.BulkFailure
	Duration       time.Duration
}

// Options tunes the synchronizer.
type Options struct {
	PageSize int          // Defaults to DefaultPageSize
	PageRate float64      // Max bulk submissions per second; 0 disables pacing
	Logger   *slog.Logger // Uses stderr text handler if nil
}

// Synchronizer performs full resyncs of the index from the store. The page
// loop is sequential and blocking by design: this path runs only during
// degraded or recovering states, so bounded resource use and deterministic
// ordering win over throughput.
type Synchronizer struct {
	source     store.Store
	sink       Sink
	classifier *classify.Classifier
	limiter    *rate.Limiter
	pageSize   int
	logger     *slog.Logger
}

// New creates a synchronizer.
func New(source store.Store, sink Sink, classifier *classify.Classifier, opts Options) *Synchronizer {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	var limiter *rate.Limiter
	if opts.PageRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.PageRate), 1)
	}

	return &Synchronizer{
		source:     source,
		sink:       sink,
		classifier: classifier,
		limiter:    limiter,
		pageSize:   pageSize,
		logger:     logger,
	}
}

// FullResync pages the entire store into the index, upserting by work id so
// repeated runs over unchanged data converge to the same index state.
//
// Partial-failure policy: per-document bulk errors are recorded and counted
// but never abort the resync. A fatal error (store or index unreachable)
// aborts, returning the report accumulated so far alongside the error.
//
// Cancellation is cooperative: a cancelled context stops the loop between
// pages, never mid-bulk-submission, so every indexed page is reported.
func (s *Synchronizer) FullResync(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{}
	s.logger.Info("starting full resync", "page_size", s.pageSize)

	for offset := 0; ; offset += s.pageSize {
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				report.Duration = time.Since(start)
				return report, err
			}
		}

		page, err := s.source.PageWorks(ctx, offset, s.pageSize)
		if err != nil {
			report.Duration = time.Since(start)
			return report, fmt.Errorf("page works at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}

		docs := make([]*search.SearchDocument, 0, len(page))
		for _, row := range page {
			docs = append(docs, search.BuildDocument(row.Work, s.classifier.GroupTags(row.TagNames)))
		}

		failures, err := s.sink.BulkUpsert(ctx, docs)
		if err != nil {
			report.Duration = time.Since(start)
			return report, fmt.Errorf("bulk upsert at offset %d: %w", offset, err)
		}

		for _, f := range failures {
			s.logger.Warn("document failed to index", "id", f.ID, "reason", f.Reason)
		}

		report.TotalProcessed += len(page)
		report.TotalErrors += len(failures)
		report.Failures = append(report.Failures, failures...)
	}

	if err := s.sink.Refresh(); err != nil {
		report.Duration = time.Since(start)
		return report, fmt.Errorf("refresh index: %w", err)
	}

	report.Duration = time.Since(start)
	s.logger.Info("full resync complete",
		"processed", report.TotalProcessed,
		"errors", report.TotalErrors,
		"duration", report.Duration,
	)
	return report, nil
}
