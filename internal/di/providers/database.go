package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/swatchbookapp/swatchbook-server/internal/config"
	"github.com/swatchbookapp/swatchbook-server/internal/logger"
	"github.com/swatchbookapp/swatchbook-server/internal/session"
	"github.com/swatchbookapp/swatchbook-server/internal/sse"
	"github.com/swatchbookapp/swatchbook-server/internal/store"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// ProvideSessionState provides the in-memory session state snapshot.
func ProvideSessionState(i do.Injector) (*session.State, error) {
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	state := session.NewState(log.Logger)

	// Selection changes never touch the store, so they need their own
	// path to connected clients.
	state.BindEvents(sseHandle.Manager)

	return state, nil
}

// fanoutEmitter forwards store change events to every registered sink.
// The session state needs events to invalidate its snapshot; the SSE
// manager needs them to reach connected clients.
type fanoutEmitter struct {
	sinks []store.EventEmitter
}

// Emit implements store.EventEmitter.
func (f *fanoutEmitter) Emit(event any) {
	for _, sink := range f.sinks {
		sink.Emit(event)
	}
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the record database.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	sessionState := do.MustInvoke[*session.State](i)

	emitter := &fanoutEmitter{
		sinks: []store.EventEmitter{sseHandle.Manager, sessionState},
	}

	dbPath := filepath.Join(cfg.Storage.DataPath, "db")
	db, err := store.New(dbPath, log.Logger, emitter)
	if err != nil {
		return nil, err
	}

	// The session snapshot reads back through the store it receives
	// events from.
	sessionState.Bind(db)

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}
