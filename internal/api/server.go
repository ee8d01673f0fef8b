// Package api provides the HTTP API server and handlers for the Swatchbook
// application.
package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/swatchbookapp/swatchbook-server/internal/ratelimit"
	"github.com/swatchbookapp/swatchbook-server/internal/session"
	"github.com/swatchbookapp/swatchbook-server/internal/sse"
	"github.com/swatchbookapp/swatchbook-server/internal/store"
	"github.com/swatchbookapp/swatchbook-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store         *store.Store
	services      *Services
	session       *session.State
	validator     *validation.Validator
	sseManager    *sse.Manager
	sseHandler    *sse.Handler
	offline       http.Handler // gateway for non-API paths, nil when disabled
	importLimiter *ratelimit.KeyedRateLimiter
	router        *chi.Mux
	api           huma.API
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// offlineGateway may be nil, in which case unmatched paths get a plain 404.
func NewServer(st *store.Store, services *Services, sessionState *session.State, sseManager *sse.Manager, offlineGateway http.Handler, uiOrigin string, logger *slog.Logger) *Server {
	s := &Server{
		store:         st,
		services:      services,
		session:       sessionState,
		validator:     validation.New(),
		sseManager:    sseManager,
		sseHandler:    sse.NewHandler(sseManager, logger),
		offline:       offlineGateway,
		importLimiter: ratelimit.New(1, 3),
		router:        chi.NewRouter(),
		logger:        logger,
	}

	s.setupMiddleware(uiOrigin)

	humaConfig := huma.DefaultConfig("Swatchbook API", "1.0.0")
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(uiOrigin string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	if uiOrigin != "" {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{uiOrigin},
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	s.router.Use(s.limitImports)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerPaintRoutes()
	s.registerPaletteRoutes()
	s.registerBackupRoutes()
	s.registerSessionRoutes()

	// SSE streams outside huma: the change feed never terminates, so the
	// envelope machinery does not apply.
	s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)

	// Everything that is not the API falls through to the offline gateway,
	// which serves the UI cache-first.
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if s.offline != nil && !isAPIPath(r.URL.Path) {
			s.offline.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// limitImports throttles the import endpoint per client. A runaway client
// replaying snapshot uploads can otherwise keep the store in a write loop.
func (s *Server) limitImports(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/api/v1/import" {
			if !s.importLimiter.Allow(r.RemoteAddr) {
				s.logger.Warn("import rate limit hit", "remote", r.RemoteAddr)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"v":1,"success":false,"error":"too many import requests"}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isAPIPath(path string) bool {
	return path == "/health" || path == "/api" || strings.HasPrefix(path, "/api/")
}
