package providers

import (
	"github.com/samber/do/v2"

	"github.com/storymill/worksync/internal/config"
	"github.com/storymill/worksync/internal/logger"
	"github.com/storymill/worksync/internal/syncer"
)

// ProvideSynchronizer provides the batch synchronizer that rebuilds the
// index from the store.
func ProvideSynchronizer(i do.Injector) (*syncer.Synchronizer, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*IndexHandle](i)
	classifierHandle := do.MustInvoke[*ClassifierHandle](i)

	return syncer.New(storeHandle.Store, indexHandle.Index, classifierHandle.Classifier, syncer.Options{
		PageSize: cfg.Sync.PageSize,
		PageRate: float64(cfg.Sync.PageRate),
		Logger:   log.Logger,
	}), nil
}
