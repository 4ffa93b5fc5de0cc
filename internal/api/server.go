package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/eshaffer321/finpal-backend/internal/api/handlers"
	"github.com/eshaffer321/finpal-backend/internal/api/middleware"
	"github.com/eshaffer321/finpal-backend/internal/application/service"
	"github.com/eshaffer321/finpal-backend/internal/domain/money"
	"github.com/eshaffer321/finpal-backend/internal/domain/rules"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/config"
	"github.com/eshaffer321/finpal-backend/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port              int
	AllowedOrigins    []string
	BulkApplyTimeout  time.Duration
	ApplyRulesOnWrite bool
	Formatting        money.FormattingContext
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:              config.DefaultPort,
		AllowedOrigins:    []string{"http://localhost:3000", "http://localhost:5173"},
		BulkApplyTimeout:  config.DefaultBulkApplyTimeout,
		ApplyRulesOnWrite: true,
		Formatting:        money.DefaultFormatting(),
	}
}

// ConfigFrom builds the server config from application config.
func ConfigFrom(cfg *config.Config) Config {
	c := DefaultConfig()
	c.Port = cfg.Server.Port
	if len(cfg.Server.AllowedOrigins) > 0 {
		c.AllowedOrigins = cfg.Server.AllowedOrigins
	}
	c.BulkApplyTimeout = cfg.Rules.BulkApplyTimeout
	c.ApplyRulesOnWrite = cfg.Rules.ApplyRulesOnWrite()
	c.Formatting = money.FormattingContext{CurrencySymbol: cfg.Display.CurrencySymbol}
	return c
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	repo       storage.Repository

	transactions *service.TransactionService
	rules        *service.RuleService
	groups       *service.GroupService
	catalog      *service.CatalogService
}

// NewServer creates a new API server over repo. One rule engine, and so
// one compiled-pattern cache, is shared by every request.
func NewServer(cfg Config, repo storage.Repository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	engine := rules.NewEngine()

	s := &Server{
		config: cfg,
		router: chi.NewRouter(),
		logger: logger,
		repo:   repo,
		transactions: service.NewTransactionService(repo, engine, logger,
			service.WithRulesOnWrite(cfg.ApplyRulesOnWrite),
			service.WithFormatting(cfg.Formatting)),
		rules:   service.NewRuleService(repo, engine, cfg.BulkApplyTimeout, logger),
		groups:  service.NewGroupService(repo, cfg.Formatting, logger),
		catalog: service.NewCatalogService(repo),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.Recoverer)

	// CORS
	corsConfig := middleware.DefaultCORSConfig()
	if len(s.config.AllowedOrigins) > 0 {
		corsConfig.AllowedOrigins = s.config.AllowedOrigins
	}
	s.router.Use(middleware.CORS(corsConfig))

	// Request logging
	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler(s.repo, s.logger)
	s.router.Get("/health", healthHandler.ServeHTTP)

	s.router.Route("/api", func(r chi.Router) {
		// Reference data
		catalogHandler := handlers.NewCatalogHandler(s.catalog, s.logger)
		r.Get("/categories", catalogHandler.Categories)
		r.Post("/categories", catalogHandler.CreateCategory)
		r.Get("/accounts", catalogHandler.Accounts)
		r.Post("/accounts", catalogHandler.CreateAccount)

		// Groups
		groupsHandler := handlers.NewGroupsHandler(s.groups, s.logger)
		r.Get("/groups", groupsHandler.List)
		r.Post("/groups", groupsHandler.Create)
		r.Get("/groups/{id}", groupsHandler.Get)
		r.Get("/groups/{id}/balances", groupsHandler.Balances)
		r.Post("/splits/preview", groupsHandler.PreviewSplit)

		// Transactions
		txnHandler := handlers.NewTransactionsHandler(s.transactions, s.logger)
		r.Get("/transactions", txnHandler.List)
		r.Post("/transactions", txnHandler.Create)
		r.Get("/transactions/{id}", txnHandler.Get)
		r.Put("/transactions/{id}", txnHandler.Update)
		r.Delete("/transactions/{id}", txnHandler.Delete)

		// Rules
		rulesHandler := handlers.NewRulesHandler(s.rules, s.logger)
		r.Route("/transaction-rules", func(r chi.Router) {
			r.Get("/", rulesHandler.List)
			r.Post("/", rulesHandler.Create)
			r.Post("/bulk-apply", rulesHandler.BulkApply)
			r.Post("/suggest", rulesHandler.Suggest)
			r.Get("/stats", rulesHandler.Stats)
			r.Get("/{id}", rulesHandler.Get)
			r.Put("/{id}", rulesHandler.Update)
			r.Delete("/{id}", rulesHandler.Delete)
		})
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.config.BulkApplyTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
