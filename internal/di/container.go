// Package di provides dependency injection configuration for the sync daemon.
package di

import (
	"github.com/samber/do/v2"

	"github.com/storymill/worksync/internal/config"
	"github.com/storymill/worksync/internal/di/providers"
	"github.com/storymill/worksync/internal/logger"
	"github.com/storymill/worksync/internal/monitor"
	"github.com/storymill/worksync/internal/syncer"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Data layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideIndex)

	// Classification
	do.Provide(injector, providers.ProvideClassifier)

	// Sync and recovery
	do.Provide(injector, providers.ProvideSynchronizer)
	do.Provide(injector, providers.ProvideOrchestrator)
	do.Provide(injector, providers.ProvideMonitor)
	do.Provide(injector, providers.ProvideProbe)

	// Scheduled tasks. Not invoked by Bootstrap: one-shot modes must not
	// start the background loops, so the daemon entry point invokes this
	// explicitly.
	do.Provide(injector, providers.ProvideSchedulerJob)

	return injector
}

// Bootstrap initializes all services except the background scheduler and
// returns handles for lifecycle management. This triggers lazy
// initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.IndexHandle](injector)
	_ = do.MustInvoke[*providers.ClassifierHandle](injector)
	_ = do.MustInvoke[*syncer.Synchronizer](injector)
	_ = do.MustInvoke[*monitor.Orchestrator](injector)
	_ = do.MustInvoke[*monitor.Monitor](injector)
	_ = do.MustInvoke[*monitor.Probe](injector)

	return nil
}
