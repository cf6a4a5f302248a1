package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arasmu/andorra-props/app/api"
	"github.com/arasmu/andorra-props/app/cfg"
	"github.com/arasmu/andorra-props/app/database"
	"github.com/arasmu/andorra-props/app/listing"
	"github.com/arasmu/andorra-props/app/scrape"
	"github.com/arasmu/andorra-props/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Andorra Props server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Connected to database", "path", appCfg.DBPath)

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Migrations applied", "version", version, "dirty", dirty)

	configCache := scrape.NewConfigCache(appCfg.SitesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load site configurations", "error", err)
		os.Exit(1)
	}
	slog.Info("Site configurations loaded", "count", configCache.GetConfigCount())

	listingRepo := database.NewListingRepository(db)
	siteRepo := database.NewSiteRepository(db)

	extractors := make(map[string]scrape.Extractor)
	for name, siteConfig := range configCache.GetConfigs() {
		client := scrape.NewSiteClient(appCfg.UserAgent, siteConfig)
		extractor, err := scrape.NewExtractor(client, siteConfig)
		if err != nil {
			slog.Warn("Skipping site without extractor", "site", name, "error", err)
			continue
		}
		extractors[name] = extractor
	}
	slog.Info("Extractors initialized", "count", len(extractors))

	builder := listing.NewBuilder()
	gate := listing.NewGate(appCfg.PriceCeiling)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)
	scheduler := tasks.NewScheduler(configCache, listingRepo, siteRepo, extractors, builder, gate)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(configCache, listingRepo, siteRepo, db, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
