package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/swatchbookapp/swatchbook-server/internal/config"
	"github.com/swatchbookapp/swatchbook-server/internal/logger"
	"github.com/swatchbookapp/swatchbook-server/internal/offline"
)

// OfflineWorkerHandle wraps the offline gateway worker and its cache
// store with shutdown capability. Worker is nil when the gateway is
// disabled by configuration.
type OfflineWorkerHandle struct {
	Worker *offline.Worker
	cache  *offline.CacheStore
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *OfflineWorkerHandle) Shutdown() error {
	if h.cancel != nil {
		h.cancel()
	}
	if h.cache != nil {
		return h.cache.Close()
	}
	return nil
}

// ProvideOfflineWorker provides the cache-first asset gateway. The
// install/activate lifecycle runs in the background; until it
// completes the worker passes requests straight through to the
// upstream.
func ProvideOfflineWorker(i do.Injector) (*OfflineWorkerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Offline.Enabled {
		log.Info("Offline gateway disabled by configuration")
		return &OfflineWorkerHandle{}, nil
	}

	cache, err := offline.OpenCacheStore(filepath.Join(cfg.Storage.DataPath, "offline-cache"), log.Logger)
	if err != nil {
		return nil, err
	}

	fetcher, err := offline.NewOriginFetcher(cfg.Offline.UpstreamURL, log.Logger)
	if err != nil {
		cache.Close()
		return nil, err
	}

	manifest, err := offline.LoadManifest(cfg.Offline.ManifestPath)
	if err != nil {
		cache.Close()
		return nil, err
	}

	worker := offline.NewWorker(cache, fetcher, manifest, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := worker.Install(ctx); err != nil {
			log.Warn("Offline worker install failed, gateway stays in passthrough mode",
				"error", err,
				"upstream", cfg.Offline.UpstreamURL,
			)
			return
		}
		if err := worker.Activate(ctx); err != nil {
			log.Warn("Offline worker activation failed", "error", err)
		}
	}()

	log.Info("Offline gateway starting",
		"upstream", cfg.Offline.UpstreamURL,
		"bucket", worker.Bucket(),
	)

	return &OfflineWorkerHandle{
		Worker: worker,
		cache:  cache,
		cancel: cancel,
	}, nil
}
