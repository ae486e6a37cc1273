package admin

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cloo-solutions/pmstd/internal/ai"
	"github.com/cloo-solutions/pmstd/internal/config"
	"github.com/cloo-solutions/pmstd/internal/database"
	"github.com/cloo-solutions/pmstd/internal/domain"
	"github.com/cloo-solutions/pmstd/internal/logger"
	"github.com/cloo-solutions/pmstd/internal/openai"
	"github.com/cloo-solutions/pmstd/internal/service"
	"github.com/cloo-solutions/pmstd/internal/storage"
)

// setup loads configuration and builds the process logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

func openPool(ctx context.Context, cfg *config.Config, log *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, err
	}
	log.Info("connected to database")
	return pool, nil
}

func newS3Client(ctx context.Context, cfg *config.Config, log *zap.Logger) (*storage.S3Client, error) {
	if !cfg.HasS3() {
		return nil, domain.ErrStorageNotConfigured
	}
	client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	if err := client.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure S3 bucket: %w", err)
	}
	log.Info("S3 bucket ready", zap.String("bucket", cfg.S3Bucket))
	return client, nil
}

// newGenerator picks the configured text generation provider. Without an
// API key the services fall back to their deterministic output.
func newGenerator(cfg *config.Config, log *zap.Logger) (ai.Generator, error) {
	if !cfg.HasOpenAI() {
		log.Warn("no AI provider configured, using fallback output")
		return ai.Disabled{}, nil
	}

	switch cfg.AIProvider {
	case "langchain":
		gen, err := ai.NewLangChain(ai.LangChainConfig{
			Token:       cfg.OpenAIAPIKey,
			Model:       cfg.OpenAIModel,
			BaseURL:     cfg.OpenAIBaseURL,
			Temperature: openai.DefaultTemperature,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create langchain generator: %w", err)
		}
		log.Info("AI provider ready", zap.String("provider", gen.Name()), zap.String("model", cfg.OpenAIModel))
		return gen, nil
	default:
		gen := openai.NewClientWithConfig(openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
		log.Info("AI provider ready", zap.String("provider", gen.Name()), zap.String("model", cfg.OpenAIModel))
		return gen, nil
	}
}

// corpusSource resolves where corpus files are read from. An explicit
// directory wins, then an S3 prefix.
func corpusSource(dir, prefix string, store service.ObjectStore) (service.CorpusSource, error) {
	switch {
	case dir != "":
		return service.DirSource{Dir: dir}, nil
	case prefix != "" && store != nil:
		return service.ObjectSource{Store: store, Prefix: prefix}, nil
	case prefix != "":
		return nil, domain.ErrStorageNotConfigured
	default:
		return nil, fmt.Errorf("a corpus directory or S3 prefix is required")
	}
}
