package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/storymill/worksync/internal/classify"
	"github.com/storymill/worksync/internal/config"
	"github.com/storymill/worksync/internal/logger"
)

// ClassifierHandle wraps the tag classifier with its override watcher for
// lifecycle management.
type ClassifierHandle struct {
	*classify.Classifier
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable.
func (h *ClassifierHandle) Shutdown() error {
	if h.cancel != nil {
		h.cancel()
		<-h.done
	}
	return nil
}

// ProvideClassifier provides the tag classifier, loading the optional
// override file and watching it for changes when configured.
func ProvideClassifier(i do.Injector) (*ClassifierHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	overrides := classify.NewOverrideTable()
	if err := overrides.LoadInto(cfg.Classify.OverridesPath); err != nil {
		return nil, err
	}
	if overrides.Len() > 0 {
		log.Info("Loaded classification overrides",
			"path", cfg.Classify.OverridesPath,
			"entries", overrides.Len(),
		)
	}

	handle := &ClassifierHandle{
		Classifier: classify.New(overrides),
	}

	if cfg.Classify.WatchOverrides && cfg.Classify.OverridesPath != "" {
		ctx, cancel := context.WithCancel(context.Background())
		handle.cancel = cancel
		handle.done = make(chan struct{})

		go func() {
			defer close(handle.done)
			if err := overrides.Watch(ctx, cfg.Classify.OverridesPath, log.Logger); err != nil {
				log.Warn("Override watcher stopped", "error", err)
			}
		}()

		log.Info("Watching classification overrides", "path", cfg.Classify.OverridesPath)
	}

	return handle, nil
}
