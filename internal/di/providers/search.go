package providers

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/storymill/worksync/internal/config"
	"github.com/storymill/worksync/internal/logger"
	"github.com/storymill/worksync/internal/search"
)

// IndexHandle wraps the search index with shutdown capability.
type IndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *IndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideIndex provides the Bleve search index. The index is ensured on
// startup so a first run or a wiped data directory starts from a valid
// empty index rather than a missing one.
func ProvideIndex(i do.Injector) (*IndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Index.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}

	idx := search.NewIndex(search.Options{
		DataPath: cfg.Index.DataPath,
		Logger:   log.Logger,
	})

	if err := idx.Ensure(); err != nil {
		return nil, err
	}

	docCount, _ := idx.Count()
	log.Info("Search index ready", "path", cfg.Index.DataPath, "documents", docCount)

	return &IndexHandle{Index: idx}, nil
}
