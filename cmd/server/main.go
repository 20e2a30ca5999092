package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tripweave/tripweave/internal/api"
	"github.com/tripweave/tripweave/internal/config"
	"github.com/tripweave/tripweave/internal/extract"
	"github.com/tripweave/tripweave/internal/geocode"
	"github.com/tripweave/tripweave/internal/storage/sqlite"
	"github.com/tripweave/tripweave/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "tripweave: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	log.Info("Starting tripweave ingestion service",
		logger.String("addr", cfg.Server.Addr()),
		logger.String("db_path", cfg.Storage.DBPath))

	// Storage
	db, err := sqlite.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	geocache := sqlite.NewGeocodeCache(db, log)

	// Location resolution
	geocodeClient := geocode.NewClient(
		cfg.Geocoding.BaseURL,
		cfg.Geocoding.CountryCode,
		time.Duration(cfg.Geocoding.TimeoutSeconds)*time.Second,
		log,
	)
	resolver := geocode.NewResolver(geocodeClient, geocache, geocode.Config{
		BaseURL:              cfg.Geocoding.BaseURL,
		CountryCode:          cfg.Geocoding.CountryCode,
		RequestDelayMs:       cfg.Geocoding.RequestDelayMs,
		MaxLookupsPerRequest: cfg.Geocoding.MaxLookupsPerRequest,
		TimeoutSeconds:       cfg.Geocoding.TimeoutSeconds,
		FallbackName:         cfg.Geocoding.FallbackName,
		FallbackLat:          cfg.Geocoding.FallbackLat,
		FallbackLng:          cfg.Geocoding.FallbackLng,
	}, log)

	// Extraction strategies
	ruleStrategy := extract.NewRuleBased(resolver, log)
	modelStrategy := extract.NewModelBased(extract.ModelConfig{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		Model:          cfg.OpenAI.Model,
		MaxTokens:      cfg.OpenAI.MaxTokens,
		Temperature:    cfg.OpenAI.Temperature,
		TimeoutSeconds: cfg.OpenAI.TimeoutSeconds,
	}, log)

	router := api.NewRouter(ruleStrategy, modelStrategy, geocache, cfg, log)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-sigCh:
		log.Info("Shutting down", logger.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Shutdown complete")
	return nil
}
