// Command rampgpt-indexer rebuilds the similarity index from the example
// corpus and, when an object store is configured, publishes the snapshot
// for the api instances to download.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/rampgpt/rampgpt/internal/config"
	corpuspostgres "github.com/rampgpt/rampgpt/internal/corpus/postgres"
	"github.com/rampgpt/rampgpt/internal/index"
	"github.com/rampgpt/rampgpt/internal/observability"
	"github.com/rampgpt/rampgpt/internal/storage"
	s3store "github.com/rampgpt/rampgpt/internal/storage/s3"
)

func main() {
	cfg, err := config.LoadFromEnv("rampgpt-indexer")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	ctx := context.Background()

	corpusDB, err := corpuspostgres.Open(ctx, corpuspostgres.DBConfig{
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

	examples, err := corpuspostgres.NewRepository(corpusDB).ListExamples(ctx)
	if err != nil {
		logger.Error("failed to list corpus examples", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("loaded example corpus", slog.Int("examples", len(examples)))

	embedder, err := index.NewEmbeddingClient(index.EmbeddingClientConfig{
		BaseURL:    cfg.Embedding.BaseURL,
		APIKey:     cfg.Embedding.APIKey,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    cfg.Embedding.Timeout,
	})
	if err != nil {
		logger.Error("failed to build embedding client", slog.Any("error", err))
		os.Exit(1)
	}

	buildStart := time.Now()
	if err := index.NewBuilder(embedder).Build(ctx, cfg.Index.Path, examples); err != nil {
		logger.Error("failed to build similarity index", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("built similarity index",
		slog.String("path", cfg.Index.Path),
		slog.Int("examples", len(examples)),
		slog.Duration("elapsed", time.Since(buildStart)),
	)

	if !cfg.ObjectStore.Enabled {
		return
	}

	objectStore, err := s3store.New(ctx, s3store.Config{
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

	versionedKey, err := storage.BuildIndexSnapshotKey(time.Now().UTC(), len(examples))
	if err != nil {
		logger.Error("failed to build snapshot key", slog.Any("error", err))
		os.Exit(1)
	}
	if _, err := index.UploadSnapshot(ctx, objectStore, versionedKey, cfg.Index.Path); err != nil {
		logger.Error("failed to upload versioned snapshot", slog.Any("error", err), slog.String("key", versionedKey))
		os.Exit(1)
	}
	// The stable key is what api instances poll; write it last so a partial
	// run never clobbers a good snapshot.
	info, err := index.UploadSnapshot(ctx, objectStore, cfg.Index.ObjectKey, cfg.Index.Path)
	if err != nil {
		logger.Error("failed to upload snapshot", slog.Any("error", err), slog.String("key", cfg.Index.ObjectKey))
		os.Exit(1)
	}
	logger.Info("published index snapshot",
		slog.String("versioned_key", versionedKey),
		slog.String("key", info.Key),
		slog.Int64("size_bytes", info.Size),
	)
}
