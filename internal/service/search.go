package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/cloo-solutions/pmstd/internal/cache"
	"github.com/cloo-solutions/pmstd/internal/domain"
	"github.com/cloo-solutions/pmstd/internal/metrics"
	"github.com/cloo-solutions/pmstd/internal/relevance"
	"github.com/cloo-solutions/pmstd/internal/telemetry"
)

const (
	DefaultStandardSearchLimit = 20
	DefaultSearchLimit         = 10
	MaxSearchLimit             = 50

	searchCacheKind = "search"
)

type SearchResultItem struct {
	ID            int64   `json:"id"`
	SectionNumber string  `json:"sectionNumber"`
	Title         string  `json:"title"`
	Snippet       string  `json:"snippet"`
	Similarity    float64 `json:"similarity"`
	Standard      string  `json:"standard"`
	StandardID    int64   `json:"standardId"`
	StandardCode  string  `json:"standardCode"`
	Chapter       string  `json:"chapter"`
	Rank          int     `json:"rank"`
}

// StandardScore summarises the results that came from one standard.
type StandardScore struct {
	StandardID int64   `json:"standardId"`
	Standard   string  `json:"standard"`
	Count      int     `json:"count"`
	MeanScore  float64 `json:"meanScore"`
}

type SearchMetadata struct {
	Kind         SearchKind      `json:"kind"`
	StandardIDs  []int64         `json:"standardIds,omitempty"`
	Limit        int             `json:"limit"`
	Candidates   int             `json:"candidates"`
	AverageScore float64         `json:"averageScore"`
	ByStandard   []StandardScore `json:"byStandard"`
	Cached       bool            `json:"cached"`
	DurationMs   int64           `json:"durationMs"`
}

type SearchResponse struct {
	Query          string             `json:"query"`
	TotalResults   int                `json:"totalResults"`
	Results        []SearchResultItem `json:"results"`
	SearchMetadata SearchMetadata     `json:"searchMetadata"`
}

type SearchStandardInput struct {
	StandardID int64
	Query      string
	Limit      int
}

type SearchAllInput struct {
	Query       string
	StandardIDs []int64
	Limit       int
}

// SearchService ranks sections against free-text queries
type SearchService struct {
	standards StandardRepositoryInterface
	sections  SectionRepositoryInterface
	engine    *relevance.Engine
	cache     cache.Cache
	cacheTTL  time.Duration
	recorder  SearchRecorder
	uuidGen   UUIDGenerator
	group     singleflight.Group
	log       *zap.Logger
}

type SearchOption func(*SearchService)

// WithSearchCache caches responses for ttl.
func WithSearchCache(c cache.Cache, ttl time.Duration) SearchOption {
	return func(s *SearchService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithSearchRecorder records every executed search.
func WithSearchRecorder(r SearchRecorder) SearchOption {
	return func(s *SearchService) { s.recorder = r }
}

func WithSearchLogger(l *zap.Logger) SearchOption {
	return func(s *SearchService) { s.log = l }
}

func WithSearchUUIDGen(g UUIDGenerator) SearchOption {
	return func(s *SearchService) { s.uuidGen = g }
}

// NewSearchService creates a new SearchService instance
func NewSearchService(standards StandardRepositoryInterface, sections SectionRepositoryInterface, opts ...SearchOption) *SearchService {
	s := &SearchService{
		standards: standards,
		sections:  sections,
		engine:    relevance.New(relevance.DefaultOptions()),
		cache:     cache.Noop{},
		recorder:  NoopSearchRecorder{},
		uuidGen:   &DefaultUUIDGenerator{},
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SearchStandard searches within one standard
func (s *SearchService) SearchStandard(ctx context.Context, input SearchStandardInput) (*SearchResponse, error) {
	start := time.Now()
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, domain.ErrInvalidQuery
	}
	if input.StandardID <= 0 {
		return nil, domain.ErrInvalidID
	}
	limit, err := searchLimit(input.Limit, DefaultStandardSearchLimit)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "SearchService.SearchStandard", telemetry.SpanAttributes{
		StandardID: input.StandardID,
		Query:      query,
	})
	defer span.End()

	std, err := s.standards.GetByID(ctx, input.StandardID)
	if err != nil {
		return nil, err
	}

	ids := []int64{input.StandardID}
	key := cache.Key(searchCacheKind, string(SearchKindStandard), joinIDs(ids), query, strconv.Itoa(limit))
	resp, hit, err := s.cached(ctx, key, func(ctx context.Context) (*SearchResponse, error) {
		sections, err := s.sections.ListByStandards(ctx, ids)
		if err != nil {
			return nil, err
		}
		results := s.engine.Rank(domain.SectionsToRecords(sections), relevance.Query{Text: query}, limit)
		return buildSearchResponse(query, SearchKindStandard, ids, limit, len(sections), results,
			map[int64]*domain.Standard{std.ID: std}), nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return s.finish(ctx, query, resp, hit, start), nil
}

// SearchAll searches across standards, optionally restricted to StandardIDs
func (s *SearchService) SearchAll(ctx context.Context, input SearchAllInput) (*SearchResponse, error) {
	start := time.Now()
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, domain.ErrInvalidQuery
	}
	limit, err := searchLimit(input.Limit, DefaultSearchLimit)
	if err != nil {
		return nil, err
	}
	ids, err := normalizeIDs(input.StandardIDs)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "SearchService.SearchAll", telemetry.SpanAttributes{Query: query})
	defer span.End()

	key := cache.Key(searchCacheKind, string(SearchKindAll), joinIDs(ids), query, strconv.Itoa(limit))
	resp, hit, err := s.cached(ctx, key, func(ctx context.Context) (*SearchResponse, error) {
		standards, err := s.standards.List(ctx)
		if err != nil {
			return nil, err
		}
		sections, err := s.sections.SearchCandidates(ctx, query, ids)
		if err != nil {
			return nil, err
		}
		results := s.engine.Rank(domain.SectionsToRecords(sections), relevance.Query{Text: query}, limit)
		return buildSearchResponse(query, SearchKindAll, ids, limit, len(sections), results, standardsByID(standards)), nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return s.finish(ctx, query, resp, hit, start), nil
}

// InvalidateCache drops every cached search response.
func (s *SearchService) InvalidateCache(ctx context.Context) error {
	n, err := s.cache.InvalidatePrefix(ctx, cache.KindPrefix(searchCacheKind))
	if err != nil {
		return err
	}
	s.log.Info("search cache invalidated", zap.Int64("keys_deleted", n))
	return nil
}

// finish copies the shared response, stamps per-call metadata, and records the search.
func (s *SearchService) finish(ctx context.Context, query string, shared *SearchResponse, hit bool, start time.Time) *SearchResponse {
	resp := *shared
	resp.Query = query
	resp.SearchMetadata.Cached = hit
	resp.SearchMetadata.DurationMs = time.Since(start).Milliseconds()

	metrics.ObserveSearch(string(resp.SearchMetadata.Kind), resp.TotalResults)

	resultIDs := make([]int64, len(resp.Results))
	for i, r := range resp.Results {
		resultIDs[i] = r.ID
	}
	event := SearchEvent{
		ID:          s.uuidGen.NewString(),
		Kind:        resp.SearchMetadata.Kind,
		Query:       resp.Query,
		StandardIDs: resp.SearchMetadata.StandardIDs,
		ResultIDs:   resultIDs,
		ResultCount: resp.TotalResults,
		CacheHit:    hit,
		DurationMs:  resp.SearchMetadata.DurationMs,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.recorder.RecordSearch(ctx, event); err != nil {
		s.log.Warn("failed to record search", zap.String("search_id", event.ID), zap.Error(err))
	}
	return &resp
}

// cached serves key from the cache, otherwise computes it once across
// concurrent callers and stores the result. The shared computation is
// detached from the first caller's cancellation.
func (s *SearchService) cached(ctx context.Context, key string, compute func(context.Context) (*SearchResponse, error)) (*SearchResponse, bool, error) {
	if resp, ok := s.lookup(ctx, key); ok {
		metrics.ObserveCache(true)
		return resp, true, nil
	}
	metrics.ObserveCache(false)

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		shared := context.WithoutCancel(ctx)
		resp, err := compute(shared)
		if err != nil {
			return nil, err
		}
		s.store(shared, key, resp)
		return resp, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*SearchResponse), false, nil
}

func (s *SearchService) lookup(ctx context.Context, key string) (*SearchResponse, bool) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn("search cache get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var resp SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		s.log.Warn("search cache unmarshal failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &resp, true
}

func (s *SearchService) store(ctx context.Context, key string, resp *SearchResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Warn("search cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.log.Warn("search cache set failed", zap.String("key", key), zap.Error(err))
	}
}

func buildSearchResponse(
	query string,
	kind SearchKind,
	ids []int64,
	limit, candidates int,
	results []relevance.ScoredResult,
	standards map[int64]*domain.Standard,
) *SearchResponse {
	items := make([]SearchResultItem, len(results))
	for i, r := range results {
		item := SearchResultItem{
			ID:            r.ID,
			SectionNumber: r.SectionNumber,
			Title:         r.Title,
			Snippet:       r.Snippet,
			Similarity:    r.Score,
			StandardID:    r.StandardID,
			Chapter:       r.Chapter,
			Rank:          r.Rank,
		}
		if std, ok := standards[r.StandardID]; ok {
			item.Standard = std.Name
			item.StandardCode = std.Code
		}
		items[i] = item
	}

	groups := relevance.GroupMeans(results)
	byStandard := make([]StandardScore, len(groups))
	for i, g := range groups {
		byStandard[i] = StandardScore{
			StandardID: g.StandardID,
			Count:      g.Count,
			MeanScore:  round3(g.Mean),
		}
		if std, ok := standards[g.StandardID]; ok {
			byStandard[i].Standard = std.Name
		}
	}

	return &SearchResponse{
		Query:        query,
		TotalResults: len(items),
		Results:      items,
		SearchMetadata: SearchMetadata{
			Kind:         kind,
			StandardIDs:  ids,
			Limit:        limit,
			Candidates:   candidates,
			AverageScore: round3(relevance.AverageScore(results)),
			ByStandard:   byStandard,
		},
	}
}

// searchLimit applies def to zero, caps at MaxSearchLimit, and rejects negatives.
func searchLimit(limit, def int) (int, error) {
	switch {
	case limit < 0:
		return 0, domain.ErrInvalidLimit
	case limit == 0:
		return def, nil
	case limit > MaxSearchLimit:
		return MaxSearchLimit, nil
	default:
		return limit, nil
	}
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
