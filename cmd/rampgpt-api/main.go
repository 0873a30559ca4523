package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rampgpt/rampgpt/internal/api"
	"github.com/rampgpt/rampgpt/internal/auth"
	"github.com/rampgpt/rampgpt/internal/config"
	corpuspostgres "github.com/rampgpt/rampgpt/internal/corpus/postgres"
	"github.com/rampgpt/rampgpt/internal/index"
	"github.com/rampgpt/rampgpt/internal/nlsql"
	"github.com/rampgpt/rampgpt/internal/observability"
	s3store "github.com/rampgpt/rampgpt/internal/storage/s3"
	"github.com/rampgpt/rampgpt/internal/tenant"
)

func main() {
	cfg, err := config.LoadFromEnv("rampgpt-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	registry, err := tenant.NewRegistry(cfg.Tenant.Garages)
	if err != nil {
		logger.Error("failed to parse garage registry", slog.Any("error", err))
		os.Exit(1)
	}
	selections := tenant.NewSelectionStore(registry, cfg.Tenant.SelectionTTL)
	sessions, err := tenant.NewSessionOpener(registry, cfg.Tenant.DSNTemplate, cfg.Tenant.PingTimeout)
	if err != nil {
		logger.Error("failed to build session opener", slog.Any("error", err))
		os.Exit(1)
	}

	corpusDB, err := corpuspostgres.Open(context.Background(), corpuspostgres.DBConfig{
		DSN:             cfg.Corpus.DSN,
		MaxOpenConns:    cfg.Corpus.MaxOpenConns,
		MaxIdleConns:    cfg.Corpus.MaxIdleConns,
		ConnMaxIdleTime: cfg.Corpus.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Corpus.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to open corpus db", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = corpusDB.Close() }()
	corpusRepo := corpuspostgres.NewRepository(corpusDB)

	embedder, err := index.NewEmbeddingClient(index.EmbeddingClientConfig{
		BaseURL:    firstNonEmpty(cfg.Embedding.BaseURL, cfg.Generation.BaseURL),
		APIKey:     firstNonEmpty(cfg.Embedding.APIKey, cfg.Generation.APIKey),
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    cfg.Embedding.Timeout,
	})
	if err != nil {
		logger.Error("failed to build embedding client", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.ObjectStore.Enabled {
		objectStore, err := s3store.New(context.Background(), s3store.Config{
			Endpoint:         cfg.ObjectStore.Endpoint,
			Region:           cfg.ObjectStore.Region,
			Bucket:           cfg.ObjectStore.Bucket,
			AccessKeyID:      cfg.ObjectStore.AccessKeyID,
			SecretAccessKey:  cfg.ObjectStore.SecretAccessKey,
			UseSSL:           cfg.ObjectStore.UseSSL,
			Prefix:           cfg.ObjectStore.Prefix,
			AutoCreateBucket: cfg.ObjectStore.AutoCreateBucket,
		})
		if err != nil {
			logger.Error("failed to initialize object store", slog.Any("error", err))
			os.Exit(1)
		}
		if err := index.DownloadSnapshot(context.Background(), objectStore, cfg.Index.ObjectKey, cfg.Index.Path); err != nil {
			// A stale local index still serves; a missing one fails below.
			logger.Warn("failed to download index snapshot", slog.Any("error", err))
		}
	}

	searcher, err := index.NewSearcher(cfg.Index.Path, embedder)
	if err != nil {
		logger.Error("failed to open similarity index", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = searcher.Close() }()

	generator, err := nlsql.NewChatClient(nlsql.ChatClientConfig{
		BaseURL:     cfg.Generation.BaseURL,
		APIKey:      cfg.Generation.APIKey,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
		TopP:        cfg.Generation.TopP,
		MaxTokens:   cfg.Generation.MaxTokens,
		Timeout:     cfg.Generation.Timeout,
	})
	if err != nil {
		logger.Error("failed to build generation client", slog.Any("error", err))
		os.Exit(1)
	}

	pipeline := nlsql.NewPipeline(searcher, generator, cfg.Index.TopK, logger)

	deps := api.Dependencies{
		Logger:     logger,
		Registry:   registry,
		Selections: selections,
		Sessions:   sessions,
		Pipeline:   pipeline,
		Corpus:     corpusRepo,
		Readiness: api.CombineReadinessChecks(
			corpusRepo.HealthCheck,
			searcher.HealthCheck,
			api.CheckGarageRegistry(registry),
		),
		DependencyTimeout: time.Second,
	}
	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
