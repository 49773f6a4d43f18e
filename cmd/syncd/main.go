// Package main provides the entry point for the search-index sync daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/storymill/worksync/internal/di"
	"github.com/storymill/worksync/internal/di/providers"
	"github.com/storymill/worksync/internal/logger"
	"github.com/storymill/worksync/internal/monitor"
	"github.com/storymill/worksync/internal/syncer"
)

// One-shot modes for operators. Both run the full container bootstrap but
// never start the background scheduler.
var (
	resyncOnce = flag.Bool("resync", false, "Run a full resync and exit")
	checkOnce  = flag.Bool("check", false, "Run a single health check and exit")
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap sync daemon: %v\n", err)
		os.Exit(1)
	}

	// Get logger for shutdown messages
	log := do.MustInvoke[*logger.Logger](injector)

	exitCode := 0
	switch {
	case *resyncOnce:
		exitCode = runResync(injector, log)
	case *checkOnce:
		exitCode = runCheck(injector, log)
	default:
		runDaemon(injector, log)
	}

	log.Info("Shutting down gracefully...")

	// Shutdown all services in reverse order
	// The DI container handles shutdown order automatically
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	// Store and index use wrapper types, so close them explicitly
	if storeHandle, err := do.Invoke[*providers.StoreHandle](injector); err == nil {
		if err := storeHandle.Shutdown(); err != nil {
			log.Error("Failed to close store", "error", err)
		}
	}

	if indexHandle, err := do.Invoke[*providers.IndexHandle](injector); err == nil {
		if err := indexHandle.Shutdown(); err != nil {
			log.Error("Failed to close search index", "error", err)
		}
	}

	log.Info("Sync daemon stopped")
	os.Exit(exitCode)
}

// runDaemon starts the scheduler and blocks until a shutdown signal.
func runDaemon(injector *do.RootScope, log *logger.Logger) {
	_ = do.MustInvoke[*providers.SchedulerJob](injector)
	log.Info("Sync daemon running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

// runResync performs a single full resync and reports the outcome.
func runResync(injector *do.RootScope, log *logger.Logger) int {
	sync := do.MustInvoke[*syncer.Synchronizer](injector)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := sync.FullResync(ctx)
	if err != nil {
		log.Error("Full resync failed", "error", err)
		return 1
	}

	log.Info("Full resync completed",
		"processed", report.TotalProcessed,
		"errors", report.TotalErrors,
		"duration", report.Duration,
	)
	if report.TotalErrors > 0 {
		return 1
	}
	return 0
}

// runCheck performs a single health check and reports the decision.
func runCheck(injector *do.RootScope, log *logger.Logger) int {
	mon := do.MustInvoke[*monitor.Monitor](injector)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	state, err := mon.Check(ctx)
	if err != nil {
		log.Error("Health check failed", "error", err)
		return 1
	}

	log.Info("Health check completed",
		"healthy", state.Healthy,
		"store_count", state.StoreCount,
		"index_count", state.IndexCount,
		"index_exists", state.IndexExists,
		"color", state.Color,
	)
	if !state.Healthy {
		return 1
	}
	return 0
}
