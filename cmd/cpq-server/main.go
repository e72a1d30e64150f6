// Package main initializes and runs the CPQ server configurator API.
//
// It is the composition root: it loads the catalog, wires the rule engine,
// the configurator and the quote store, and handles the server lifecycle.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rafaeljc/cpq/internal/catalog"
	"github.com/rafaeljc/cpq/internal/config"
	"github.com/rafaeljc/cpq/internal/configurator"
	"github.com/rafaeljc/cpq/internal/database"
	"github.com/rafaeljc/cpq/internal/httpapi"
	"github.com/rafaeljc/cpq/internal/logger"
	"github.com/rafaeljc/cpq/internal/observability"
	"github.com/rafaeljc/cpq/internal/quote"
	"github.com/rafaeljc/cpq/internal/ruleengine"
)

const poolMonitorInterval = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// -------------------------------------------------------------------------
	// 1. Configuration & logging
	// -------------------------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(&cfg.App)
	slog.SetDefault(log)
	cfg.LogConfig(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// -------------------------------------------------------------------------
	// 2. Catalog & rule engine
	// -------------------------------------------------------------------------
	store, err := catalog.Load(cfg.Catalog.DataDir, log)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	publishCatalogStats(store.Stats())

	registry := ruleengine.NewRegistry(store, log)
	engine := ruleengine.New(store, registry, log)
	servers := configurator.NewService(store, engine, log)

	checkers := []observability.Checker{catalog.NewHealthChecker(store)}

	// -------------------------------------------------------------------------
	// 3. Quote persistence
	// -------------------------------------------------------------------------
	var repo quote.Repository
	switch cfg.Quotes.Backend {
	case config.QuotesBackendPostgres:
		if cfg.Database.AutoMigrate {
			if _, err := database.Migrate(&cfg.Database, log); err != nil {
				return err
			}
		}

		pool, err := database.NewPostgresPool(ctx, &cfg.Database, log)
		if err != nil {
			return err
		}
		defer pool.Close()

		go database.RunPoolMonitor(ctx, pool, poolMonitorInterval)
		checkers = append(checkers, database.NewHealthChecker(pool))
		repo = quote.NewPostgresStore(pool)
	default:
		fileStore, err := quote.NewFileStore(cfg.Quotes.File, log)
		if err != nil {
			return err
		}
		repo = fileStore
	}

	quotes := quote.NewService(servers, repo, log)

	// -------------------------------------------------------------------------
	// 4. Servers
	// -------------------------------------------------------------------------
	api := httpapi.NewAPI(&cfg.Server, servers, quotes, log)

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           api.Router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}

	var obs *observability.Server
	if cfg.Observability.Enabled {
		obs = observability.NewServer(log, &cfg.Observability, checkers...)
		obs.Start()
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("starting API server",
			slog.String("addr", srv.Addr),
			slog.Any("rule_types", registry.SupportedTypes()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("API server failed: %w", err)
		}
	}()

	// -------------------------------------------------------------------------
	// 5. Graceful shutdown
	// -------------------------------------------------------------------------
	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := srv.Shutdown(shutdownCtx); err != nil {
		shutdownErr = errors.Join(shutdownErr, fmt.Errorf("API server shutdown: %w", err))
	}
	if obs != nil {
		if err := obs.Shutdown(shutdownCtx); err != nil {
			shutdownErr = errors.Join(shutdownErr, fmt.Errorf("observability server shutdown: %w", err))
		}
	}
	if shutdownErr != nil {
		return shutdownErr
	}

	log.Info("service exited successfully")
	return nil
}

func publishCatalogStats(stats catalog.Stats) {
	observability.CatalogEntities.WithLabelValues("categories").Set(float64(stats.Categories))
	observability.CatalogEntities.WithLabelValues("options").Set(float64(stats.Options))
	observability.CatalogEntities.WithLabelValues("rules").Set(float64(stats.Rules))
	observability.CatalogEntities.WithLabelValues("active_rules").Set(float64(stats.ActiveRules))
	observability.CatalogEntities.WithLabelValues("settings").Set(float64(stats.Settings))
}
