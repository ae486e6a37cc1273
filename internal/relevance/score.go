package relevance

import "strings"

// Free-text tiers.
const (
	ExactTitleScore      = 1.0
	TitleContainsScore   = 0.8
	ContentContainsScore = 0.6
	MaxOverlapScore      = 0.5
	MinScore             = 0.1
)

// Token overlap is tallied in tenths so the sums stay exact.
const (
	titleWordTenths   = 3
	contentWordTenths = 2
	maxOverlapTenths  = 5
)

// ScoreRecord scores a record against a free-text query. The result is always
// within [MinScore, ExactTitleScore].
func ScoreRecord(r Record, query string) float64 {
	q := normalize(query)
	if q == "" {
		return MinScore
	}
	title := normalize(r.Title)
	content := normalize(r.Content)

	switch {
	case title == q:
		return ExactTitleScore
	case strings.Contains(title, q):
		return TitleContainsScore
	case strings.Contains(content, q):
		return ContentContainsScore
	}

	tenths := overlapTenths(title, content, q)
	if tenths > maxOverlapTenths {
		tenths = maxOverlapTenths
	}
	score := float64(tenths) / 10
	if score < MinScore {
		return MinScore
	}
	return score
}

// matchesFreeText reports whether a record is a candidate for q at all: a
// substring hit in title or content, or at least one related word.
func matchesFreeText(r Record, q string) bool {
	title := normalize(r.Title)
	content := normalize(r.Content)
	if strings.Contains(title, q) || strings.Contains(content, q) {
		return true
	}
	return overlapTenths(title, content, q) > 0
}

// overlapTenths expects lowercased inputs and returns the unclamped tally.
func overlapTenths(title, content, q string) int {
	titleWords := strings.Fields(title)
	contentWords := strings.Fields(content)

	total := 0
	for _, word := range strings.Fields(q) {
		if anyRelated(titleWords, word) {
			total += titleWordTenths
		}
		if anyRelated(contentWords, word) {
			total += contentWordTenths
		}
	}
	return total
}

func anyRelated(words []string, queryWord string) bool {
	for _, w := range words {
		if strings.Contains(w, queryWord) || strings.Contains(queryWord, w) {
			return true
		}
	}
	return false
}

// ScoreKeywords tallies keyword hits: weights.Title for each keyword found in
// the title plus weights.Content for each keyword found in the content.
// Duplicate and blank keywords are ignored.
func ScoreKeywords(r Record, keywords []string, weights KeywordWeights) int {
	title := normalize(r.Title)
	content := normalize(r.Content)

	tally := 0
	for _, kw := range normalizeKeywords(keywords) {
		if strings.Contains(title, kw) {
			tally += weights.Title
		}
		if strings.Contains(content, kw) {
			tally += weights.Content
		}
	}
	return tally
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		n := normalize(kw)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
