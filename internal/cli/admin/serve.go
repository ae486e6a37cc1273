package admin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cloo-solutions/pmstd/internal/analytics"
	"github.com/cloo-solutions/pmstd/internal/api/handlers"
	"github.com/cloo-solutions/pmstd/internal/cache"
	"github.com/cloo-solutions/pmstd/internal/config"
	"github.com/cloo-solutions/pmstd/internal/database"
	"github.com/cloo-solutions/pmstd/internal/jobs"
	"github.com/cloo-solutions/pmstd/internal/repository"
	"github.com/cloo-solutions/pmstd/internal/server"
	"github.com/cloo-solutions/pmstd/internal/service"
	"github.com/cloo-solutions/pmstd/internal/telemetry"
	"github.com/cloo-solutions/pmstd/internal/topics"
)

const shutdownTimeout = 30 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the pmstd API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides PMSTD_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().String("migrations", database.DefaultMigrationsURL, "Migration source URL")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	flush := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		TracesSampleRate: telemetry.SampleRate(cfg.Environment),
		Debug:            cfg.Debug,
	}, log)
	defer flush()

	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := openPool(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	if noMigrate, _ := cmd.Flags().GetBool("no-migrate"); !noMigrate {
		source, _ := cmd.Flags().GetString("migrations")
		if err := database.Migrate(cfg.DatabaseURL, source, log); err != nil {
			return err
		}
	}

	standardRepo := repository.NewStandardRepository(pool)
	sectionRepo := repository.NewSectionRepository(pool)

	checks := map[string]handlers.Pinger{"database": pool}

	var searchCache cache.Cache = cache.Noop{}
	if cfg.HasRedis() {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rc.Close()
		searchCache = rc
		checks["redis"] = rc
		log.Info("search cache enabled", zap.Duration("ttl", cfg.CacheTTL))
	}

	recorders := analytics.Fanout{repository.NewSearchLogRepository(pool)}
	if cfg.HasKafka() {
		publisher := analytics.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer publisher.Close()
		recorders = append(recorders, publisher)
		log.Info("search analytics publishing to kafka", zap.String("topic", cfg.KafkaTopic))
	}
	recorder := analytics.NewAsyncRecorder(recorders, analytics.DefaultBufferSize, log)
	defer recorder.Close()

	generator, err := newGenerator(cfg, log)
	if err != nil {
		return err
	}

	catalog, err := loadTopics(cfg)
	if err != nil {
		return err
	}

	var store service.ObjectStore
	if cfg.HasS3() {
		client, err := newS3Client(ctx, cfg, log)
		if err != nil {
			return err
		}
		store = NewS3StorageAdapter(client)
	}

	standardSvc := service.NewStandardService(standardRepo, sectionRepo)
	searchSvc := service.NewSearchService(standardRepo, sectionRepo,
		service.WithSearchCache(searchCache, cfg.CacheTTL),
		service.WithSearchRecorder(recorder),
		service.WithSearchLogger(log),
	)
	comparisonSvc := service.NewComparisonService(standardRepo, sectionRepo, catalog, generator, log)
	processSvc := service.NewProcessService(standardRepo, sectionRepo, generator, log)
	seedSvc := service.NewSeedService(repository.NewTxRunner(pool), searchSvc, cfg.SeedWorkers, log)

	var source service.CorpusSource
	if store != nil {
		source = service.ObjectSource{Store: store, Prefix: cfg.S3Prefix}
	} else if cfg.CorpusDir != "" {
		source = service.DirSource{Dir: cfg.CorpusDir}
	}

	var syncWorker *jobs.Worker
	if cfg.CorpusSyncEnabled() {
		syncWorker = jobs.NewWorker("corpus-sync",
			jobs.NewCorpusSync(source, seedSvc, log),
			cfg.CorpusSyncInterval,
			jobs.WithRunOnStart(),
			jobs.WithLogger(log),
		)
		go syncWorker.Start(ctx)
	}

	router := server.NewRouter(server.RouterConfig{
		Logger:            log,
		AdminAPIKey:       cfg.AdminAPIKey,
		HealthHandler:     handlers.NewHealthHandler(checks),
		StandardHandler:   handlers.NewStandardHandler(standardSvc),
		SearchHandler:     handlers.NewSearchHandler(searchSvc),
		ComparisonHandler: handlers.NewComparisonHandler(comparisonSvc),
		ProcessHandler:    handlers.NewProcessHandler(processSvc),
		AdminHandler:      handlers.NewAdminHandler(seedSvc, source),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info("shutting down")

	if syncWorker != nil {
		syncWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}

func loadTopics(cfg *config.Config) (*topics.Catalog, error) {
	if cfg.TopicsFile == "" {
		return topics.Default()
	}
	catalog, err := topics.Load(cfg.TopicsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load topics from %s: %w", cfg.TopicsFile, err)
	}
	return catalog, nil
}
