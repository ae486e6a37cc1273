package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cloo-solutions/pmstd/internal/service"
)

const (
	// MaxRetries is how often a changed file is retried before it is skipped until it changes again
	MaxRetries = 3
)

// CorpusSeeder imports one corpus file
type CorpusSeeder interface {
	SeedEntry(ctx context.Context, src service.CorpusSource, entry service.CorpusEntry) (service.SeedFileResult, error)
}

// CorpusSync re-seeds corpus files whose ETag changed since the last poll.
// The first poll seeds every file.
type CorpusSync struct {
	source service.CorpusSource
	seeder CorpusSeeder
	log    *zap.Logger

	mu       sync.Mutex
	seen     map[string]string
	failures map[string]int
}

// NewCorpusSync creates a new CorpusSync processor
func NewCorpusSync(source service.CorpusSource, seeder CorpusSeeder, log *zap.Logger) *CorpusSync {
	if log == nil {
		log = zap.NewNop()
	}
	return &CorpusSync{
		source:   source,
		seeder:   seeder,
		log:      log,
		seen:     make(map[string]string),
		failures: make(map[string]int),
	}
}

// ProcessJobs seeds changed files and returns the joined seeding errors
func (c *CorpusSync) ProcessJobs(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.source.List(ctx)
	if err != nil {
		return fmt.Errorf("list corpus: %w", err)
	}

	var errs []error
	for _, entry := range entries {
		if etag, ok := c.seen[entry.Name]; ok && etag == entry.ETag {
			continue
		}

		res, err := c.seeder.SeedEntry(ctx, c.source, entry)
		if err != nil {
			c.failures[entry.Name]++
			if c.failures[entry.Name] >= MaxRetries {
				c.log.Error("corpus file failed repeatedly, skipping until it changes",
					zap.String("file", entry.Name),
					zap.Int("attempts", c.failures[entry.Name]),
					zap.Error(err))
				c.markSeen(entry)
			}
			errs = append(errs, err)
			continue
		}

		c.markSeen(entry)
		c.log.Info("corpus file synced",
			zap.String("file", entry.Name),
			zap.String("standard", res.StandardCode),
			zap.Int("sections", res.Sections))
	}
	return errors.Join(errs...)
}

func (c *CorpusSync) markSeen(entry service.CorpusEntry) {
	c.seen[entry.Name] = entry.ETag
	delete(c.failures, entry.Name)
}
