package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cloo-solutions/pmstd/internal/cache"
	"github.com/cloo-solutions/pmstd/internal/repository"
	"github.com/cloo-solutions/pmstd/internal/service"
)

// SeedCmd returns the seed command
func SeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load standards corpus files into the database",
		Long: `Load standards corpus JSON files from a local directory or an S3 prefix.
Each file replaces the sections of the standard it describes.`,
		RunE: runSeed,
	}

	cmd.Flags().String("dir", "", "Directory containing corpus JSON files (default PMSTD_CORPUS_DIR)")
	cmd.Flags().String("s3-prefix", "", "S3 prefix containing corpus JSON files")
	cmd.Flags().StringP("output", "o", "text", "Output format (text or json)")

	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	dir, _ := cmd.Flags().GetString("dir")
	prefix, _ := cmd.Flags().GetString("s3-prefix")
	outputFormat, _ := cmd.Flags().GetString("output")
	if dir == "" && prefix == "" {
		dir = cfg.CorpusDir
	}

	var store service.ObjectStore
	if prefix != "" && cfg.HasS3() {
		client, err := newS3Client(ctx, cfg, log)
		if err != nil {
			return err
		}
		store = NewS3StorageAdapter(client)
	}

	src, err := corpusSource(dir, prefix, store)
	if err != nil {
		return err
	}

	pool, err := openPool(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	var invalidator service.CacheInvalidator
	if cfg.HasRedis() {
		rc, err := cache.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, search cache left to expire", zap.Error(err))
		} else {
			defer rc.Close()
			invalidator = service.NewSearchService(
				repository.NewStandardRepository(pool),
				repository.NewSectionRepository(pool),
				service.WithSearchCache(rc, cfg.CacheTTL),
				service.WithSearchLogger(log),
			)
		}
	}

	seedSvc := service.NewSeedService(repository.NewTxRunner(pool), invalidator, cfg.SeedWorkers, log)

	report, err := seedSvc.Seed(ctx, src)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	log.Info("seeding finished",
		zap.String("source", report.Source),
		zap.Int("standards", report.Standards),
		zap.Int("sections", report.Sections),
		zap.Int("failed", report.Failed),
	)
	if err := printSeedReport(cmd.OutOrStdout(), report, outputFormat); err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", report.Failed, len(report.Files))
	}
	return nil
}

func printSeedReport(w io.Writer, report *service.SeedReport, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	for _, f := range report.Files {
		if f.Error != "" {
			fmt.Fprintf(w, "FAIL  %s: %s\n", f.File, f.Error)
			continue
		}
		fmt.Fprintf(w, "OK    %s -> %s (%d sections)\n", f.File, f.StandardCode, f.Sections)
	}
	fmt.Fprintf(w, "\nSeeded %d standards, %d sections from %s in %dms\n",
		report.Standards, report.Sections, report.Source, report.DurationMs)
	return nil
}
