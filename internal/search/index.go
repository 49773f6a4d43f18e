package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
)

// Color is a coarse index health signal modeled after cluster status
// colors: green is fully queryable, yellow is queryable but the last bulk
// submission reported per-document errors, red is unreachable or absent.
type Color string

// Index colors.
const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
)

// SchemaError reports a failed index creation. It is fatal to the current
// recovery attempt only; the next scheduled cycle retries.
type SchemaError struct {
	Path string
	Err  error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("create index at %s: %v", e.Path, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// BulkFailure records one document that failed within a bulk submission.
type BulkFailure struct {
	ID     string
	Reason string
}

// Index wraps a Bleve index with the operations the sync core needs:
// existence check, idempotent creation, count, bulk upsert, refresh and a
// canned search.
//
// Thread safety: all public methods are safe for concurrent use. The mutex
// guards the handle swap during Ensure.
type Index struct {
	path   string
	logger *slog.Logger

	mu               sync.RWMutex
	index            bleve.Index
	lastBulkFailures int
}

// Options configures the index wrapper.
type Options struct {
	DataPath string       // Directory holding the index
	Logger   *slog.Logger // Uses stderr text handler if nil
}

// indexDirName is the on-disk directory for the Bleve index.
const indexDirName = "works.bleve"

// NewIndex opens an existing index if one is present on disk. It never
// creates one: creation is the schema manager's job (Ensure), so a missing
// index surfaces as unhealthy instead of being silently papered over.
func NewIndex(opts Options) *Index {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	idx := &Index{
		path:   filepath.Join(opts.DataPath, indexDirName),
		logger: logger,
	}

	if _, err := os.Stat(idx.path); err == nil {
		existing, openErr := bleve.Open(idx.path)
		if openErr != nil {
			logger.Warn("failed to open existing index, will recreate on next recovery",
				"path", idx.path,
				"error", openErr,
			)
		} else {
			idx.index = existing
			logger.Info("opened existing search index", "path", idx.path)
		}
	}

	return idx
}

// Close releases the underlying index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil
	}
	err := s.index.Close()
	s.index = nil
	return err
}

// Exists reports whether a usable index is open. An on-disk directory that
// cannot be opened counts as absent so recovery recreates it.
func (s *Index) Exists() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index != nil
}

// Ensure idempotently guarantees the index exists with the required
// mapping. An already-open index is left untouched - the mapping is never
// altered in-process. Creation failure returns a *SchemaError.
func (s *Index) Ensure() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil {
		return nil
	}

	// A directory may exist from a previous run that failed to open.
	// Try once more, then fall back to recreating from scratch.
	if _, err := os.Stat(s.path); err == nil {
		if existing, openErr := bleve.Open(s.path); openErr == nil {
			s.index = existing
			s.logger.Info("reopened search index", "path", s.path)
			return nil
		}
		if err := os.RemoveAll(s.path); err != nil {
			return &SchemaError{Path: s.path, Err: err}
		}
		s.logger.Warn("removed unreadable index, recreating", "path", s.path)
	}

	created, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return &SchemaError{Path: s.path, Err: err}
	}
	s.index = created
	s.logger.Info("created search index", "path", s.path)
	return nil
}

// Count returns the number of indexed documents.
func (s *Index) Count() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return 0, fmt.Errorf("index not open")
	}
	return s.index.DocCount()
}

// BulkUpsert indexes a batch of documents keyed by work id, inserting or
// fully replacing each one. Per-document failures are returned for the
// caller to record; they never abort the batch. A non-nil error means the
// whole submission failed.
func (s *Index) BulkUpsert(ctx context.Context, docs []*SearchDocument) ([]BulkFailure, error) {
	// Write lock: the failure counter feeds Color and must not race it.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil, fmt.Errorf("index not open")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var failures []BulkFailure
	batch := s.index.NewBatch()
	for _, doc := range docs {
		if err := batch.Index(doc.ID, doc.ToMap()); err != nil {
			failures = append(failures, BulkFailure{ID: doc.ID, Reason: err.Error()})
		}
	}

	if err := s.index.Batch(batch); err != nil {
		return failures, fmt.Errorf("commit batch: %w", err)
	}

	s.lastBulkFailures = len(failures)
	return failures, nil
}

// Refresh verifies just-written documents are visible to reads. Bleve
// batches commit synchronously, so this reduces to a readability probe.
func (s *Index) Refresh() error {
	_, err := s.Count()
	return err
}

// Hit is one ranked search result.
type Hit struct {
	ID    string
	Score float64
}

// Search runs a match query against content_text. Used only by the
// performance probe's canned query and by verification sampling.
func (s *Index) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return nil, fmt.Errorf("index not open")
	}

	q := bleve.NewMatchQuery(query)
	q.SetField("content_text")
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	return hits, nil
}

// Color reports the coarse health color of the index.
func (s *Index) Color() Color {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return ColorRed
	}
	if _, err := s.index.DocCount(); err != nil {
		return ColorRed
	}
	if s.lastBulkFailures > 0 {
		return ColorYellow
	}
	return ColorGreen
}

// SizeOnDisk returns the total byte size of the index directory. Used by
// the performance probe; absence is reported as zero, not an error.
func (s *Index) SizeOnDisk() int64 {
	var total int64
	_ = filepath.Walk(s.path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr // best-effort sizing
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	return total
}
