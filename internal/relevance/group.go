package relevance

import (
	"cmp"
	"slices"
)

// GroupSummary aggregates the scores of results sharing a standard.
type GroupSummary struct {
	StandardID int64
	Count      int
	Total      float64
	Mean       float64
}

// GroupMeans returns one summary per standard present in results, ordered by
// standard id. Standards without results do not appear.
func GroupMeans(results []ScoredResult) []GroupSummary {
	byStandard := make(map[int64]*GroupSummary)
	for _, r := range results {
		g, ok := byStandard[r.StandardID]
		if !ok {
			g = &GroupSummary{StandardID: r.StandardID}
			byStandard[r.StandardID] = g
		}
		g.Count++
		g.Total += r.Score
	}

	out := make([]GroupSummary, 0, len(byStandard))
	for _, g := range byStandard {
		g.Mean = mean(g.Total, g.Count)
		out = append(out, *g)
	}
	slices.SortFunc(out, func(a, b GroupSummary) int { return cmp.Compare(a.StandardID, b.StandardID) })
	return out
}

// AverageScore is the mean score of results, or 0 for none.
func AverageScore(results []ScoredResult) float64 {
	total := 0.0
	for _, r := range results {
		total += r.Score
	}
	return mean(total, len(results))
}

func mean(total float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
