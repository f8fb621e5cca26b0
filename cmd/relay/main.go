package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Belphemur/EpisodeRelay/internal/bot"
	"github.com/Belphemur/EpisodeRelay/internal/bus"
	"github.com/Belphemur/EpisodeRelay/internal/cache"
	"github.com/Belphemur/EpisodeRelay/internal/client"
	"github.com/Belphemur/EpisodeRelay/internal/config"
	"github.com/Belphemur/EpisodeRelay/internal/digest"
	grpcserver "github.com/Belphemur/EpisodeRelay/internal/grpc"
	"github.com/Belphemur/EpisodeRelay/internal/httpapi"
	"github.com/Belphemur/EpisodeRelay/internal/intent"
	"github.com/Belphemur/EpisodeRelay/internal/llm"
	"github.com/Belphemur/EpisodeRelay/internal/metrics"
	"github.com/Belphemur/EpisodeRelay/internal/orchestrator"
	"github.com/Belphemur/EpisodeRelay/internal/resolver"
	"github.com/Belphemur/EpisodeRelay/internal/subtitles"
)

func main() {
	cfg := config.GetConfig()
	logger := config.GetLogger()

	logger.Info().
		Str("catalog_base_url", cfg.Catalog.BaseURL).
		Str("stream_base_url", cfg.Stream.BaseURL).
		Str("subtitles_base_url", cfg.Subtitles.BaseURL).
		Str("cache_provider", cfg.Cache.Provider).
		Int("http_port", cfg.Server.HTTPPort).
		Int("grpc_port", cfg.Server.GRPCPort).
		Msg("Application started with configuration")

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
		}); err != nil {
			logger.Error().Err(err).Msg("Failed to initialise Sentry")
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := cache.New(cfg.Cache.Provider, cache.Options{
		Size:          cfg.Cache.Size,
		TTL:           config.ParseDuration("cache.ttl", cfg.Cache.TTL, time.Hour),
		Logger:        logger,
		RedisAddress:  cfg.Cache.Redis.Address,
		RedisPassword: cfg.Cache.Redis.Password,
		RedisDB:       cfg.Cache.Redis.DB,
		Group:         "catalog",
	})
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.Cache.Provider).Msg("Failed to create cache")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close cache")
		}
	}()

	model := llm.NewClient(llm.Config{
		APIKey:     cfg.LLM.APIKey,
		BaseURL:    cfg.LLM.BaseURL,
		Model:      cfg.LLM.Model,
		Timeout:    config.ParseDuration("llm.timeout", cfg.LLM.Timeout, 15*time.Second),
		MaxRetries: cfg.LLM.MaxRetries,
	})
	if !model.Configured() {
		logger.Warn().Msg("Language model not configured, using fallback parsing only")
	}

	backend := client.NewClient(cfg, store)
	defer backend.Close()

	pipeline := subtitles.NewPipeline(backend, subtitles.OptionsFromConfig(cfg), logger)
	relay := orchestrator.New(
		intent.NewExtractor(model, logger),
		resolver.NewCandidateResolver(model, logger),
		backend,
		pipeline,
		cfg.Subtitles.DefaultLanguage,
		logger,
	)

	refresher := digest.NewRefresher(backend, config.ParseDuration("digest.interval", cfg.Digest.Interval, 30*time.Minute), logger)
	go refresher.Run(ctx)

	events := bus.New()
	defer events.Close()

	messenger, err := httpapi.NewMessenger(events, cfg.Server.MessageHistory)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create message store")
	}
	chat := bot.New(messenger, relay, refresher, logger)
	api := httpapi.NewServer(ctx, logger, chat, messenger, events)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.HTTPPort),
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("address", httpServer.Addr).Msg("Starting HTTP chat server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to serve HTTP")
		}
	}()

	// Start Prometheus metrics HTTP server
	if cfg.Metrics.Enabled {
		metricsServer := metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
		go func() {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal().Err(err).Msg("Failed to serve metrics")
			}
		}()
		defer func() {
			if err := metricsServer.Shutdown(context.Background()); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}()
	}

	grpcServer, healthServer := grpcserver.NewGRPCServer()
	address := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.GRPCPort)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		logger.Fatal().Err(err).Str("address", address).Msg("Failed to create listener")
	}
	go func() {
		logger.Info().Str("address", address).Msg("Starting gRPC health server")
		if err := grpcServer.Serve(listener); err != nil {
			logger.Fatal().Err(err).Msg("Failed to serve gRPC")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Received shutdown signal")

	healthServer.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to shutdown HTTP server")
	}
	api.Wait()
	grpcServer.GracefulStop()

	logger.Info().Msg("Server stopped gracefully")
}
