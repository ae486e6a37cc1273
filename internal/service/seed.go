package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/cloo-solutions/pmstd/internal/domain"
	"github.com/cloo-solutions/pmstd/internal/metrics"
	"github.com/cloo-solutions/pmstd/internal/telemetry"
)

const DefaultSeedWorkers = 4

// CacheInvalidator drops cached search responses after the corpus changes.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

type SeedFileResult struct {
	File         string `json:"file"`
	StandardID   int64  `json:"standardId,omitempty"`
	StandardCode string `json:"standardCode,omitempty"`
	Sections     int    `json:"sections"`
	Error        string `json:"error,omitempty"`
}

// SeedReport summarises one seeding run.
type SeedReport struct {
	Source     string           `json:"source"`
	Files      []SeedFileResult `json:"files"`
	Standards  int              `json:"standards"`
	Sections   int              `json:"sections"`
	Failed     int              `json:"failed"`
	DurationMs int64            `json:"durationMs"`
}

// SeedService loads corpus files into the database
type SeedService struct {
	tx      TxRunner
	cache   CacheInvalidator
	workers int
	log     *zap.Logger
	now     func() time.Time
}

// NewSeedService creates a new SeedService instance
func NewSeedService(tx TxRunner, cache CacheInvalidator, workers int, log *zap.Logger) *SeedService {
	if workers <= 0 {
		workers = DefaultSeedWorkers
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SeedService{
		tx:      tx,
		cache:   cache,
		workers: workers,
		log:     log,
		now:     time.Now,
	}
}

// Seed imports every corpus file of src concurrently. Failed files are
// reported, not returned as errors.
func (s *SeedService) Seed(ctx context.Context, src CorpusSource) (*SeedReport, error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "SeedService.Seed", telemetry.SpanAttributes{Operation: src.Name()})
	defer span.End()

	entries, err := src.List(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return nil, fmt.Errorf("create seed pool: %w", err)
	}
	defer pool.Release()

	results := make([]SeedFileResult, len(entries))
	var wg sync.WaitGroup
	for i, entry := range entries {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			results[i] = s.seedEntry(ctx, src, entry)
		}); err != nil {
			wg.Done()
			results[i] = SeedFileResult{File: entry.Name, Error: err.Error()}
		}
	}
	wg.Wait()

	report := &SeedReport{Source: src.Name(), Files: results}
	for _, r := range results {
		if r.Error != "" {
			report.Failed++
			continue
		}
		report.Standards++
		report.Sections += r.Sections
	}

	if report.Standards > 0 {
		s.invalidate(ctx)
	}
	report.DurationMs = time.Since(start).Milliseconds()

	s.log.Info("corpus seeded",
		zap.String("source", report.Source),
		zap.Int("standards", report.Standards),
		zap.Int("sections", report.Sections),
		zap.Int("failed", report.Failed),
		zap.Int64("duration_ms", report.DurationMs))
	return report, nil
}

// SeedEntry imports a single corpus file and invalidates the search cache.
func (s *SeedService) SeedEntry(ctx context.Context, src CorpusSource, entry CorpusEntry) (SeedFileResult, error) {
	res := s.seedEntry(ctx, src, entry)
	if res.Error != "" {
		return res, fmt.Errorf("seed %s: %s", entry.Name, res.Error)
	}
	s.invalidate(ctx)
	return res, nil
}

// SeedFile parses corpus JSON and replaces the standard's sections in one transaction.
func (s *SeedService) SeedFile(ctx context.Context, data []byte) (*domain.Standard, int, error) {
	var file domain.CorpusFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, 0, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, domain.ErrInvalidCorpus.Message, err)
	}
	if err := file.Validate(); err != nil {
		return nil, 0, err
	}

	std, sections := file.ToDomain(s.now().UTC())
	if err := domain.ValidateStandard(std); err != nil {
		return nil, 0, err
	}

	err := s.tx.WithTx(ctx, func(repos TxRepositories) error {
		if err := repos.Standards().Upsert(ctx, std); err != nil {
			return fmt.Errorf("upsert standard %s: %w", std.Code, err)
		}
		for _, sec := range sections {
			sec.StandardID = std.ID
		}
		if err := repos.Sections().ReplaceForStandard(ctx, std.ID, sections); err != nil {
			return fmt.Errorf("replace sections of %s: %w", std.Code, err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	metrics.SeededSectionsTotal.Add(float64(len(sections)))
	return std, len(sections), nil
}

func (s *SeedService) seedEntry(ctx context.Context, src CorpusSource, entry CorpusEntry) SeedFileResult {
	res := SeedFileResult{File: entry.Name}

	data, err := src.Read(ctx, entry)
	if err != nil {
		res.Error = err.Error()
		s.log.Warn("failed to read corpus file", zap.String("file", entry.Name), zap.Error(err))
		return res
	}

	std, n, err := s.SeedFile(ctx, data)
	if err != nil {
		res.Error = err.Error()
		s.log.Warn("failed to seed corpus file", zap.String("file", entry.Name), zap.Error(err))
		return res
	}

	res.StandardID = std.ID
	res.StandardCode = std.Code
	res.Sections = n
	return res
}

func (s *SeedService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCache(ctx); err != nil {
		s.log.Warn("failed to invalidate search cache", zap.Error(err))
	}
}
