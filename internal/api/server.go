// Package api provides the HTTP API server and handlers for ShelfStash.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shelfstash/shelfstash-server/internal/backup"
	"github.com/shelfstash/shelfstash-server/internal/catalog"
	"github.com/shelfstash/shelfstash-server/internal/config"
	"github.com/shelfstash/shelfstash-server/internal/importer"
	"github.com/shelfstash/shelfstash-server/internal/media/images"
	"github.com/shelfstash/shelfstash-server/internal/store"
	"github.com/shelfstash/shelfstash-server/internal/validation"
)

// Version reported by the status endpoint and the OpenAPI document.
const Version = "1.0.0"

// Server holds dependencies for HTTP handlers.
type Server struct {
	engine    *catalog.Engine
	store     *store.Store
	backups   *backup.Service
	importer  *importer.Importer
	covers    *images.Storage
	validator *validation.Validator

	router *chi.Mux
	api    huma.API
	logger *slog.Logger

	// writeLimiter throttles the expensive bulk routes (import, restore,
	// backup creation) so a runaway script cannot thrash the disk.
	writeLimiter *RateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(engine *catalog.Engine, st *store.Store, backups *backup.Service, imp *importer.Importer, covers *images.Storage, cfg *config.Config, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	RegisterErrorHandler()

	s := &Server{
		engine:       engine,
		store:        st,
		backups:      backups,
		importer:     imp,
		covers:       covers,
		validator:    validation.New(),
		router:       router,
		logger:       logger,
		writeLimiter: NewRateLimiter(30, time.Minute, 10),
	}

	s.setupMiddleware(cfg)

	// humachi.New registers the OpenAPI routes on the router, so it must run
	// after the middleware stack is in place; chi forbids Use after routes.
	humaConfig := huma.DefaultConfig("ShelfStash API", Version)
	s.api = humachi.New(router, humaConfig)

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(cfg *config.Config) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes registers every route on the huma API or, for binary
// streaming, directly on the chi router.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)
	s.router.Get("/covers/{id}", s.handleServeCover)

	s.registerStatusRoutes()
	s.registerItemRoutes()
	s.registerTagRoutes()
	s.registerCoverRoutes()
	s.registerBackupRoutes()
	s.registerImportRoutes()
}

// === Shared DTOs ===

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message" doc:"Confirmation message"`
}

// MessageOutput wraps a message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}
