package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/swatchbookapp/swatchbook-server/internal/api"
	"github.com/swatchbookapp/swatchbook-server/internal/config"
	"github.com/swatchbookapp/swatchbook-server/internal/logger"
	"github.com/swatchbookapp/swatchbook-server/internal/service"
	"github.com/swatchbookapp/swatchbook-server/internal/session"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	sessionState := do.MustInvoke[*session.State](i)
	offlineHandle := do.MustInvoke[*OfflineWorkerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Paint:    do.MustInvoke[*service.PaintService](i),
		Palette:  do.MustInvoke[*service.PaletteService](i),
		Snapshot: do.MustInvoke[*service.SnapshotService](i),
		Search:   do.MustInvoke[*service.SearchService](i),
	}

	// A nil *offline.Worker must not reach the router as a non-nil
	// http.Handler interface.
	var gateway http.Handler
	if offlineHandle.Worker != nil {
		gateway = offlineHandle.Worker
	}

	handler := api.NewServer(storeHandle.Store, services, sessionState, sseHandle.Manager, gateway, cfg.Server.UIOrigin, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "name", cfg.Server.Name)

	return &HTTPServerHandle{Server: srv}, nil
}
