package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cloo-solutions/pmstd/internal/ai"
	"github.com/cloo-solutions/pmstd/internal/domain"
	"github.com/cloo-solutions/pmstd/internal/metrics"
	"github.com/cloo-solutions/pmstd/internal/relevance"
	"github.com/cloo-solutions/pmstd/internal/telemetry"
)

const (
	DefaultPerStandard = 5
	MaxPerStandard     = 20

	InsightsSourceAI       = "ai"
	InsightsSourceFallback = "fallback"

	compareConcurrency  = 4
	insightMatchesShown = 3
	insightContentChars = 400
)

// TopicCatalog resolves comparison topics.
type TopicCatalog interface {
	All() []domain.Topic
	Find(ref string) (domain.Topic, bool)
}

type CompareInput struct {
	Topic           string
	Keywords        []string
	StandardIDs     []int64
	PerStandard     int
	IncludeInsights bool
}

type ComparisonMatch struct {
	ID            int64  `json:"id"`
	SectionNumber string `json:"sectionNumber"`
	Title         string `json:"title"`
	Chapter       string `json:"chapter"`
	Snippet       string `json:"snippet"`
	Score         int    `json:"score"`
	Rank          int    `json:"rank"`

	content string
}

// StandardComparison holds one standard's best matches for a topic.
type StandardComparison struct {
	StandardID   int64             `json:"standardId"`
	StandardCode string            `json:"standardCode"`
	Standard     string            `json:"standard"`
	Coverage     int               `json:"coverage"`
	MeanScore    float64           `json:"meanScore"`
	KeywordHits  map[string]int    `json:"keywordHits"`
	Matches      []ComparisonMatch `json:"matches"`
}

type ComparisonResult struct {
	Topic     string               `json:"topic"`
	Keywords  []string             `json:"keywords"`
	Standards []StandardComparison `json:"standards"`
	Insights  *Insights            `json:"insights,omitempty"`
}

// Insights is the narrative comparison of a topic across standards.
type Insights struct {
	Summary         string              `json:"summary"`
	Similarities    []string            `json:"similarities"`
	Differences     []string            `json:"differences"`
	UniquePoints    map[string][]string `json:"uniquePoints"`
	Recommendations []string            `json:"recommendations"`
	Source          string              `json:"source"`
}

// ComparisonService lines up how standards treat a topic
type ComparisonService struct {
	standards StandardRepositoryInterface
	sections  SectionRepositoryInterface
	catalog   TopicCatalog
	engine    *relevance.Engine
	generator ai.Generator
	retry     ai.RetryConfig
	log       *zap.Logger
}

// NewComparisonService creates a new ComparisonService instance
func NewComparisonService(
	standards StandardRepositoryInterface,
	sections SectionRepositoryInterface,
	catalog TopicCatalog,
	generator ai.Generator,
	log *zap.Logger,
) *ComparisonService {
	if generator == nil {
		generator = ai.Disabled{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ComparisonService{
		standards: standards,
		sections:  sections,
		catalog:   catalog,
		engine:    relevance.New(relevance.Options{Mode: relevance.ModeKeywordTally}),
		generator: generator,
		retry:     ai.DefaultRetryConfig(),
		log:       log,
	}
}

// Topics returns the topic catalogue
func (s *ComparisonService) Topics() []domain.Topic {
	return s.catalog.All()
}

// Compare tallies topic keywords over every selected standard
func (s *ComparisonService) Compare(ctx context.Context, input CompareInput) (*ComparisonResult, error) {
	topic, keywords, err := s.resolveTopic(input.Topic, input.Keywords)
	if err != nil {
		return nil, err
	}
	perStandard, err := perStandardLimit(input.PerStandard)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartSpan(ctx, "ComparisonService.Compare", telemetry.SpanAttributes{Topic: topic})
	defer span.End()

	selected, err := s.selectStandards(ctx, input.StandardIDs)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	comparisons := make([]StandardComparison, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(compareConcurrency)
	for i, std := range selected {
		g.Go(func() error {
			sections, err := s.sections.ListByStandards(gctx, []int64{std.ID})
			if err != nil {
				return fmt.Errorf("load sections of %s: %w", std.Code, err)
			}
			comparisons[i] = s.compareStandard(std, domain.SectionsToRecords(sections), keywords, perStandard)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.SetError(err)
		return nil, err
	}

	result := &ComparisonResult{
		Topic:     topic,
		Keywords:  keywords,
		Standards: comparisons,
	}
	if input.IncludeInsights {
		result.Insights = s.generateInsights(ctx, result)
	}
	return result, nil
}

// Insights compares the topic and returns only the narrative
func (s *ComparisonService) Insights(ctx context.Context, input CompareInput) (*Insights, error) {
	input.IncludeInsights = true
	result, err := s.Compare(ctx, input)
	if err != nil {
		return nil, err
	}
	return result.Insights, nil
}

func (s *ComparisonService) resolveTopic(ref string, extra []string) (string, []string, error) {
	ref = strings.TrimSpace(ref)
	var keywords []string
	name := ref
	if ref != "" {
		if t, ok := s.catalog.Find(ref); ok {
			name = t.Name
			keywords = append(keywords, t.Keywords...)
		} else if len(extra) == 0 {
			return "", nil, domain.ErrTopicNotFound
		}
	}
	keywords = mergeKeywords(keywords, extra)
	if len(keywords) == 0 {
		return "", nil, domain.ErrMissingTopic
	}
	if name == "" {
		name = strings.Join(keywords, ", ")
	}
	return name, keywords, nil
}

// selectStandards returns the requested standards in code order, or all of them.
func (s *ComparisonService) selectStandards(ctx context.Context, ids []int64) ([]*domain.Standard, error) {
	ids, err := normalizeIDs(ids)
	if err != nil {
		return nil, err
	}
	all, err := s.standards.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return all, nil
	}

	byID := standardsByID(all)
	selected := make([]*domain.Standard, 0, len(ids))
	for _, id := range ids {
		std, ok := byID[id]
		if !ok {
			return nil, domain.ErrStandardNotFound
		}
		selected = append(selected, std)
	}
	sort.SliceStable(selected, func(i, j int) bool { return selected[i].Code < selected[j].Code })
	return selected, nil
}

func (s *ComparisonService) compareStandard(std *domain.Standard, records []relevance.Record, keywords []string, perStandard int) StandardComparison {
	out := StandardComparison{
		StandardID:   std.ID,
		StandardCode: std.Code,
		Standard:     std.Name,
		KeywordHits:  make(map[string]int, len(keywords)),
		Matches:      []ComparisonMatch{},
	}
	if len(records) == 0 {
		return out
	}

	ranked := s.engine.Rank(records, relevance.Query{Keywords: keywords}, len(records))
	out.Coverage = len(ranked)
	out.MeanScore = round3(relevance.AverageScore(ranked))

	for _, r := range ranked {
		title, content := strings.ToLower(r.Title), strings.ToLower(r.Content)
		for _, kw := range keywords {
			if strings.Contains(title, kw) || strings.Contains(content, kw) {
				out.KeywordHits[kw]++
			}
		}
	}

	if len(ranked) > perStandard {
		ranked = ranked[:perStandard]
	}
	for _, r := range ranked {
		out.Matches = append(out.Matches, ComparisonMatch{
			ID:            r.ID,
			SectionNumber: r.SectionNumber,
			Title:         r.Title,
			Chapter:       r.Chapter,
			Snippet:       r.Snippet,
			Score:         int(r.Score),
			Rank:          r.Rank,
			content:       r.Content,
		})
	}
	return out
}

// generateInsights asks the generator for a comparison narrative and falls
// back to a summary derived from keyword coverage on any failure.
func (s *ComparisonService) generateInsights(ctx context.Context, result *ComparisonResult) *Insights {
	ctx, span := telemetry.StartSpan(ctx, "ComparisonService.Insights", telemetry.SpanAttributes{
		Topic:     result.Topic,
		Operation: s.generator.Name(),
	})
	defer span.End()

	if !hasMatches(result) {
		metrics.ObserveAI("insights", true)
		return fallbackInsights(result)
	}

	var out Insights
	err := ai.GenerateJSON(ctx, s.generator, insightsPrompt(result), s.retry, &out)
	if err == nil && strings.TrimSpace(out.Summary) == "" {
		err = errors.New("insights response has no summary")
	}
	if err != nil {
		s.log.Warn("insights generation failed, using fallback",
			zap.String("topic", result.Topic),
			zap.String("generator", s.generator.Name()),
			zap.Error(err))
		if !errors.Is(err, ai.ErrNotConfigured) {
			telemetry.CaptureError(ctx, err)
			span.SetError(err)
		}
		metrics.ObserveAI("insights", true)
		return fallbackInsights(result)
	}

	metrics.ObserveAI("insights", false)
	out.Source = InsightsSourceAI
	normalizeInsights(&out)
	return &out
}

func insightsPrompt(result *ComparisonResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Compare how the following project management standards treat the topic %q (keywords: %s).\n\n",
		result.Topic, strings.Join(result.Keywords, ", "))
	for _, sc := range result.Standards {
		fmt.Fprintf(&b, "## %s (%s): %d matching sections\n", sc.Standard, sc.StandardCode, sc.Coverage)
		for i, m := range sc.Matches {
			if i == insightMatchesShown {
				break
			}
			fmt.Fprintf(&b, "- %s %s: %s\n", m.SectionNumber, m.Title, truncateRunes(m.content, insightContentChars))
		}
		b.WriteString("\n")
	}
	b.WriteString(`Respond with a single JSON object and nothing else:
{"summary": "...", "similarities": ["..."], "differences": ["..."], "uniquePoints": {"<standard code>": ["..."]}, "recommendations": ["..."]}`)
	return b.String()
}

// fallbackInsights derives a deterministic narrative from keyword coverage.
func fallbackInsights(result *ComparisonResult) *Insights {
	out := &Insights{
		Similarities:    []string{},
		Differences:     []string{},
		UniquePoints:    map[string][]string{},
		Recommendations: []string{},
		Source:          InsightsSourceFallback,
	}

	var covering []StandardComparison
	for _, sc := range result.Standards {
		if sc.Coverage > 0 {
			covering = append(covering, sc)
		}
	}

	if len(covering) == 0 {
		out.Summary = fmt.Sprintf("None of the %d selected standards has sections matching %q.", len(result.Standards), result.Topic)
		out.Recommendations = append(out.Recommendations, "Try a broader topic or additional keywords.")
		return out
	}

	parts := make([]string, len(covering))
	for i, sc := range covering {
		parts[i] = fmt.Sprintf("%s (%d sections)", sc.StandardCode, sc.Coverage)
	}
	out.Summary = fmt.Sprintf("%q is addressed by %d of %d standards: %s.",
		result.Topic, len(covering), len(result.Standards), strings.Join(parts, ", "))

	for _, kw := range result.Keywords {
		var holders []string
		for _, sc := range covering {
			if sc.KeywordHits[kw] > 0 {
				holders = append(holders, sc.StandardCode)
			}
		}
		switch {
		case len(covering) > 1 && len(holders) == len(covering):
			out.Similarities = append(out.Similarities, fmt.Sprintf("All %d standards address %q.", len(covering), kw))
		case len(holders) == 1:
			out.UniquePoints[holders[0]] = append(out.UniquePoints[holders[0]], fmt.Sprintf("Only %s covers %q.", holders[0], kw))
		}
	}

	most, least := covering[0], covering[0]
	for _, sc := range covering[1:] {
		if sc.Coverage > most.Coverage {
			most = sc
		}
		if sc.Coverage < least.Coverage {
			least = sc
		}
	}
	if most.Coverage != least.Coverage {
		out.Differences = append(out.Differences, fmt.Sprintf("%s devotes %d sections to this topic, %s only %d.",
			most.StandardCode, most.Coverage, least.StandardCode, least.Coverage))
	}
	for _, sc := range result.Standards {
		if sc.Coverage == 0 {
			out.Differences = append(out.Differences, fmt.Sprintf("%s has no sections matching this topic.", sc.StandardCode))
		}
	}

	out.Recommendations = append(out.Recommendations,
		fmt.Sprintf("Start with %s for the most detailed guidance on %s.", most.Standard, result.Topic))
	if len(most.Matches) > 0 {
		top := most.Matches[0]
		out.Recommendations = append(out.Recommendations,
			fmt.Sprintf("Read %s %s %q first.", most.StandardCode, top.SectionNumber, top.Title))
	}
	return out
}

func normalizeInsights(in *Insights) {
	if in.Similarities == nil {
		in.Similarities = []string{}
	}
	if in.Differences == nil {
		in.Differences = []string{}
	}
	if in.UniquePoints == nil {
		in.UniquePoints = map[string][]string{}
	}
	if in.Recommendations == nil {
		in.Recommendations = []string{}
	}
}

func hasMatches(result *ComparisonResult) bool {
	for _, sc := range result.Standards {
		if sc.Coverage > 0 {
			return true
		}
	}
	return false
}

func perStandardLimit(n int) (int, error) {
	switch {
	case n < 0:
		return 0, domain.ErrInvalidLimit
	case n == 0:
		return DefaultPerStandard, nil
	case n > MaxPerStandard:
		return MaxPerStandard, nil
	default:
		return n, nil
	}
}

// mergeKeywords lower-cases and de-duplicates keyword lists in order.
func mergeKeywords(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, k := range list {
			k = strings.ToLower(strings.TrimSpace(k))
			if k == "" {
				continue
			}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + relevance.Ellipsis
}
