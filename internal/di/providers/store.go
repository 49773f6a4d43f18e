package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/storymill/worksync/internal/config"
	"github.com/storymill/worksync/internal/logger"
	"github.com/storymill/worksync/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the primary SQLite store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(filepath.Dir(cfg.Store.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sqlite.Open(cfg.Store.DBPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Primary store opened", "path", cfg.Store.DBPath)

	return &StoreHandle{Store: db}, nil
}
