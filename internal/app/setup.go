// Package app contains the application setup for the storefront service.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/shopper"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/internal/transport/rest"
	pkgconfig "github.com/abgdnv/storefront/pkg/config"
	"github.com/abgdnv/storefront/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Dependencies struct {
	Catalog *catalog.Cache
	Shopper shopper.ShopperService
	Logger  *slog.Logger
}

// SetupDependencies builds the catalog cache, slot store and shopper service
// from configuration. dbPool may be nil unless the postgres backend is selected.
func SetupDependencies(cfg *config.Config, dbPool *pgxpool.Pool, logger *slog.Logger) (*Dependencies, error) {
	var source catalog.Source
	if cfg.Catalog.File != "" {
		source = catalog.NewFileSource(cfg.Catalog.File)
	} else {
		source = catalog.NewHTTPSource(cfg.Catalog.URL, cfg.Catalog.Timeout)
	}
	cache := catalog.NewCache(source, logger)

	slots, err := setupSlotStore(cfg, dbPool)
	if err != nil {
		return nil, err
	}

	return &Dependencies{
		Catalog: cache,
		Shopper: shopper.NewService(slots, cache, logger),
		Logger:  logger,
	}, nil
}

func setupSlotStore(cfg *config.Config, dbPool *pgxpool.Pool) (store.SlotStore, error) {
	switch cfg.Storage.Backend {
	case pkgconfig.StorageBackendFile:
		return store.NewFileStore(cfg.Storage.Dir)
	case pkgconfig.StorageBackendMemory:
		return store.NewMemStore(), nil
	case pkgconfig.StorageBackendPostgres:
		if dbPool == nil {
			return nil, fmt.Errorf("postgres storage backend selected but no database pool provided")
		}
		return store.NewPgStore(dbPool), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", cfg.Storage.Backend)
	}
}

// SetupHttpHandler initializes the HTTP routes for the storefront application.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the storefront application.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	storefrontHandler := rest.NewHandler(deps.Catalog, deps.Shopper, deps.Logger)
	storefrontHandler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the storefront application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
