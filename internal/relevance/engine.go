package relevance

import (
	"cmp"
	"slices"
	"strings"
)

// DefaultLimit caps ranked output when the caller passes no limit.
const DefaultLimit = 10

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	Mode           Mode
	KeywordWeights KeywordWeights
	SnippetWindow  int
	Limit          int
	Marker         Marker
}

// DefaultOptions returns free-text options with the default weight table.
func DefaultOptions() Options {
	return Options{
		Mode:           ModeFreeText,
		KeywordWeights: DefaultKeywordWeights,
		SnippetWindow:  DefaultSnippetWindow,
		Limit:          DefaultLimit,
		Marker:         DefaultMarker,
	}
}

// Engine ranks records in one of the two scoring modes.
type Engine struct {
	opts Options
}

// New creates an Engine, filling zero option fields with defaults.
func New(opts Options) *Engine {
	defaults := DefaultOptions()
	if opts.Mode == "" {
		opts.Mode = defaults.Mode
	}
	if opts.KeywordWeights == (KeywordWeights{}) {
		opts.KeywordWeights = defaults.KeywordWeights
	}
	if opts.SnippetWindow <= 0 {
		opts.SnippetWindow = defaults.SnippetWindow
	}
	if opts.Limit <= 0 {
		opts.Limit = defaults.Limit
	}
	if opts.Marker == (Marker{}) {
		opts.Marker = defaults.Marker
	}
	return &Engine{opts: opts}
}

// Mode returns the engine's scoring mode.
func (e *Engine) Mode() Mode {
	return e.opts.Mode
}

// Rank scores, sorts and truncates records for q. A non-positive limit uses
// the engine default. Results are ordered by score descending, then title
// ascending (case-insensitive), then id ascending.
func (e *Engine) Rank(records []Record, q Query, limit int) []ScoredResult {
	if limit <= 0 {
		limit = e.opts.Limit
	}

	var scored []ScoredResult
	switch e.opts.Mode {
	case ModeKeywordTally:
		scored = e.rankKeywords(records, q.Keywords)
	default:
		scored = e.rankFreeText(records, q.Text)
	}

	slices.SortStableFunc(scored, compareResults)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	for i := range scored {
		scored[i].Rank = i + 1
	}
	return scored
}

func (e *Engine) rankFreeText(records []Record, text string) []ScoredResult {
	q := normalize(text)
	if q == "" {
		return []ScoredResult{}
	}

	out := make([]ScoredResult, 0, len(records))
	for _, r := range records {
		if !matchesFreeText(r, q) {
			continue
		}
		out = append(out, ScoredResult{
			Record:  r,
			Score:   ScoreRecord(r, q),
			Snippet: Highlight(Snippet(r.Content, q, e.opts.SnippetWindow), e.opts.Marker, q),
		})
	}
	return out
}

func (e *Engine) rankKeywords(records []Record, keywords []string) []ScoredResult {
	kws := normalizeKeywords(keywords)
	if len(kws) == 0 {
		return []ScoredResult{}
	}

	out := make([]ScoredResult, 0, len(records))
	for _, r := range records {
		tally := ScoreKeywords(r, kws, e.opts.KeywordWeights)
		if tally <= 0 {
			continue
		}
		anchor := firstKeywordIn(r.Content, kws)
		out = append(out, ScoredResult{
			Record:  r,
			Score:   float64(tally),
			Snippet: Highlight(Snippet(r.Content, anchor, e.opts.SnippetWindow), e.opts.Marker, kws...),
		})
	}
	return out
}

// firstKeywordIn returns the keyword occurring earliest in content, falling
// back to the first keyword.
func firstKeywordIn(content string, keywords []string) string {
	lower := strings.ToLower(content)
	best, bestIdx := keywords[0], -1
	for _, kw := range keywords {
		idx := strings.Index(lower, kw)
		if idx >= 0 && (bestIdx < 0 || idx < bestIdx) {
			best, bestIdx = kw, idx
		}
	}
	return best
}

func compareResults(a, b ScoredResult) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)); c != 0 {
		return c
	}
	if c := strings.Compare(a.Title, b.Title); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// RankAndLimit ranks records against a free-text query with default options.
func RankAndLimit(records []Record, query string, limit int) []ScoredResult {
	return New(DefaultOptions()).Rank(records, Query{Text: query}, limit)
}
