package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/local/slidegen/internal/ai"
	cfgpkg "github.com/local/slidegen/internal/config"
	logpkg "github.com/local/slidegen/internal/logger"
	"github.com/local/slidegen/internal/metrics"
	"github.com/local/slidegen/internal/orchestrator"
	"github.com/local/slidegen/internal/statuscheck"
	"github.com/local/slidegen/internal/storage"
	"github.com/local/slidegen/internal/store"
)

func main() {
	cfg, err := cfgpkg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Init logging
	if err := logpkg.Init(logpkg.Options{
		Level:        cfg.Logging.Level,
		Pretty:       cfg.Logging.Pretty,
		File:         cfg.Logging.File,
		MaxSizeMB:    cfg.Logging.MaxSizeMB,
		MaxBackups:   cfg.Logging.MaxBackups,
		MaxAgeDays:   cfg.Logging.MaxAgeDays,
		Compress:     cfg.Logging.Compress,
		SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
		AxiomAPIKey:  cfg.Axiom.APIKey,
		AxiomOrgID:   cfg.Axiom.OrgID,
		AxiomDataset: cfg.Axiom.Dataset,
		AxiomFlush:   cfg.Axiom.FlushInterval,
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to init logger")
	}
	defer logpkg.Close()

	metrics.Init()

	active := cfg.Provider.Active()
	client, err := ai.New(ai.Options{
		Provider:    cfg.Provider.Name,
		APIKey:      active.APIKey,
		Model:       active.Model,
		BaseURL:     active.BaseURL,
		Timeout:     cfg.Provider.RequestTimeout,
		MaxTokens:   cfg.Provider.MaxTokens,
		Temperature: cfg.Provider.Temperature,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init model client")
	}
	if active.APIKey == "" {
		log.Warn().Str("provider", client.Name()).Msg("API key missing; generation requests will fail with a configuration error")
	}

	deps := orchestrator.Dependencies{
		Pipeline: orchestrator.NewPipeline(orchestrator.PipelineOptions{
			Client:             client,
			DuplicateThreshold: cfg.Generation.DuplicateThreshold,
			MaxTokens:          cfg.Provider.MaxTokens,
			Temperature:        cfg.Provider.Temperature,
		}),
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		ArchiveTimeout: cfg.Archive.Timeout,
	}
	health := statuscheck.Options{
		Provider: statuscheck.Provider{Name: client.Name(), APIKey: active.APIKey, BaseURL: active.BaseURL},
	}

	// Status store (optional)
	if cfg.Store.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rs, err := store.NewRedisStatus(ctx, cfg.Store.RedisURL, cfg.Store.StatusTTL)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init redis status store")
		}
		defer rs.Close()
		deps.Status = orchestrator.NewStatusAdapter(rs)
		health.Redis = rs
	}

	// Deck archive (optional)
	if cfg.Archive.Bucket != "" {
		archive, err := storage.NewArchive(context.Background(), storage.Options{
			Bucket:     cfg.Archive.Bucket,
			Prefix:     cfg.Archive.Prefix,
			Passphrase: cfg.Archive.Passphrase,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to init deck archive")
		}
		deps.Archive = archive
		health.Archive = archive
	}
	deps.Health = statuscheck.New(health)

	orch := orchestrator.New(deps)
	mux := http.NewServeMux()
	orch.RegisterRoutes(mux)
	mux.Handle("/metrics", metrics.Handler())

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	}).Handler(mux)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Provider.RequestTimeout + 15*time.Second,
	}

	go func() {
		log.Info().Str("provider", client.Name()).Str("model", client.Model()).Msgf("HTTP server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	orch.Wait()
	log.Info().Msg("shutdown complete")
}
