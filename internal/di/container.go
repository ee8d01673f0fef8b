// Package di provides dependency injection configuration for the Swatchbook server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/swatchbookapp/swatchbook-server/internal/config"
	"github.com/swatchbookapp/swatchbook-server/internal/di/providers"
	"github.com/swatchbookapp/swatchbook-server/internal/logger"
	"github.com/swatchbookapp/swatchbook-server/internal/media/images"
	"github.com/swatchbookapp/swatchbook-server/internal/service"
	"github.com/swatchbookapp/swatchbook-server/internal/session"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideSessionState)
	do.Provide(injector, providers.ProvideStore)

	// Media layer
	do.Provide(injector, providers.ProvideImageProcessor)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Business services
	do.Provide(injector, providers.ProvidePaintService)
	do.Provide(injector, providers.ProvidePaletteService)
	do.Provide(injector, providers.ProvideSnapshotService)

	// Workers
	do.Provide(injector, providers.ProvideOfflineWorker)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*session.State](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*images.Processor](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.SearchService](injector)

	// Business services
	_ = do.MustInvoke[*service.PaintService](injector)
	_ = do.MustInvoke[*service.PaletteService](injector)
	_ = do.MustInvoke[*service.SnapshotService](injector)

	// Workers
	_ = do.MustInvoke[*providers.OfflineWorkerHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Trigger search reindex if needed
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
