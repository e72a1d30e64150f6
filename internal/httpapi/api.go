// Package httpapi implements the public REST API of the CPQ service.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"github.com/rafaeljc/cpq/internal/catalog"
	"github.com/rafaeljc/cpq/internal/config"
	"github.com/rafaeljc/cpq/internal/configurator"
	"github.com/rafaeljc/cpq/internal/logger"
	"github.com/rafaeljc/cpq/internal/quote"
	"github.com/rafaeljc/cpq/internal/validation"
)

// ConfigurationService is the configurator surface the API exposes.
// *configurator.Service satisfies it.
type ConfigurationService interface {
	GetServerConfiguration(selection map[string]string) (*configurator.ServerConfiguration, error)
	GetServerOptions(current map[string]string) (map[string][]configurator.ServerOption, error)
	Categories() []catalog.Category
}

// QuoteService is the quote surface the API exposes.
// *quote.Service satisfies it.
type QuoteService interface {
	CreateQuote(ctx context.Context, req quote.Request) (*quote.Response, error)
	GetQuote(ctx context.Context, id string) (*quote.Quote, error)
	ListQuotes(ctx context.Context) ([]quote.Quote, error)
}

// API holds the router and the services behind it.
type API struct {
	// Router is the Chi multiplexer that handles HTTP requests.
	Router *chi.Mux

	servers ConfigurationService
	quotes  QuoteService
	cfg     *config.ServerConfig
	logger  *slog.Logger
}

// NewAPI creates the API and registers its routes.
// Panics if a service or the server config is nil.
func NewAPI(cfg *config.ServerConfig, servers ConfigurationService, quotes QuoteService, log *slog.Logger) *API {
	validation.AssertNotNil(cfg, "server config")
	validation.AssertPresent(servers, "configuration service")
	validation.AssertPresent(quotes, "quote service")
	log = logger.OrDefault(log)

	api := &API{
		Router:  chi.NewRouter(),
		servers: servers,
		quotes:  quotes,
		cfg:     cfg,
		logger:  log,
	}

	api.configureRoutes()
	return api
}

// configureRoutes registers the global middleware stack and API endpoints.
func (a *API) configureRoutes() {
	a.Router.Use(middleware.RequestID)
	a.Router.Use(middleware.RealIP)
	a.Router.Use(Metrics)
	a.Router.Use(RequestLogger(a.logger))
	a.Router.Use(middleware.Recoverer)
	a.Router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: a.cfg.CORSAllowCredentials,
		MaxAge:           300,
	}))
	a.Router.Use(render.SetContentType(render.ContentTypeJSON))

	a.Router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, CodeResourceNotFound, "", nil)
	})
	a.Router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, CodeInvalidArguments, "Method not allowed", nil)
	})

	a.Router.Get("/health", a.handleHealthCheck)

	a.Router.Route("/api/v1", func(r chi.Router) {
		r.Route("/servers", func(r chi.Router) {
			r.Get("/configure", a.handleConfigure)
			r.Get("/options", a.handleOptions)
			r.Get("/categories", a.handleCategories)
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", a.handleListQuotes)
			r.Post("/requests", a.handleCreateQuote)
			r.Get("/{id}", a.handleGetQuote)
		})
	})
}

// handleHealthCheck reports that the API is serving. Dependency checks live
// on the observability server's readiness probe.
func (a *API) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{"status": "ok"})
}
