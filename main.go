package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SigNoz/ecommerce-console/internal/api"
	"github.com/SigNoz/ecommerce-console/internal/client"
	"github.com/SigNoz/ecommerce-console/internal/console"
	"github.com/SigNoz/ecommerce-console/internal/logging"
	"github.com/SigNoz/ecommerce-console/internal/metrics"
	"github.com/SigNoz/ecommerce-console/internal/services"
	"github.com/SigNoz/ecommerce-console/internal/tokenstore"
	"github.com/SigNoz/ecommerce-console/pkg/config"
	"github.com/gorilla/mux"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()
	logger := logging.New(cfg)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize OpenTelemetry metrics and tracing
	appMetrics, meterProvider, err := metrics.InitMetrics(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("error shutting down meter provider")
		}
	}()

	tracerProvider, err := metrics.InitTracing(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	// Token storage
	tokens, closeTokens, err := tokenstore.Open(ctx, cfg, appMetrics, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.TokenStore).Msg("failed to open token store")
	}
	defer func() {
		if err := closeTokens(); err != nil {
			logger.Error().Err(err).Msg("error closing token store")
		}
	}()
	session := console.NewSession(tokens, appMetrics, logger)

	// Upstream API client
	apiClient, err := client.New(cfg.APIBaseURL, tokens,
		client.WithTimeout(cfg.APITimeout),
		client.WithRedirector(session),
		client.WithMetrics(appMetrics),
		client.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal().Err(err).Str("base_url", cfg.APIBaseURL).Msg("invalid upstream API configuration")
	}

	// Initialize services and the console
	registry := services.New(apiClient, services.Limits{
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
	})
	con := console.New(ctx, registry, session, console.SettingsFromConfig(cfg), appMetrics, logger)
	defer con.Close()

	app := api.NewApp(con, appMetrics, logger)

	// Setup router
	router := mux.NewRouter()
	app.SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.APITimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.AppPort).
			Str("api_base_url", cfg.APIBaseURL).
			Str("otlp_endpoint", cfg.OTELExporterOTLPEndpoint).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	stop()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	logger.Info().Msg("server exited")
}
