package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreRecord_Tiers(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		query  string
		want   float64
	}{
		{
			name:   "exact title after lowercasing",
			record: Record{Title: "Risk Management", Content: "identify the risk register"},
			query:  "risk management",
			want:   ExactTitleScore,
		},
		{
			name:   "exact title ignores query case",
			record: Record{Title: "RISK", Content: "anything"},
			query:  "Risk",
			want:   ExactTitleScore,
		},
		// A shorter query inside a longer title takes the substring tier,
		// not the exact-title tier; only an equal lowercased title scores 1.0.
		{
			name:   "title substring",
			record: Record{Title: "RISK MANAGEMENT", Content: "anything"},
			query:  "Risk",
			want:   TitleContainsScore,
		},
		{
			name:   "content substring",
			record: Record{Title: "Quality", Content: "We manage Risk Registers weekly"},
			query:  "risk register",
			want:   ContentContainsScore,
		},
		{
			name:   "token overlap title and content",
			record: Record{Title: "Quality Planning", Content: "plan the work"},
			query:  "planning schedule",
			want:   0.5,
		},
		{
			name:   "token overlap content only",
			record: Record{Title: "Quality", Content: "...manage risk here..."},
			query:  "risk management",
			want:   0.2,
		},
		{
			name:   "token overlap clamped to half",
			record: Record{Title: "Issue Risk", Content: "log of risk"},
			query:  "risk log issue",
			want:   MaxOverlapScore,
		},
		{
			name:   "no relation floors at minimum",
			record: Record{Title: "Cost", Content: "money"},
			query:  "risk",
			want:   MinScore,
		},
		{
			name:   "empty fields",
			record: Record{},
			query:  "risk",
			want:   MinScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ScoreRecord(tt.record, tt.query), 1e-9)
		})
	}
}

func TestScoreRecord_TierMonotonicity(t *testing.T) {
	query := "stakeholder engagement"
	exact := ScoreRecord(Record{Title: "Stakeholder Engagement"}, query)
	title := ScoreRecord(Record{Title: "Plan Stakeholder Engagement"}, query)
	content := ScoreRecord(Record{Title: "Communications", Content: "stakeholder engagement matters"}, query)
	overlap := ScoreRecord(Record{Title: "Stakeholders", Content: "engage them early"}, query)

	assert.Greater(t, exact, title)
	assert.Greater(t, title, content)
	assert.Greater(t, content, overlap)
	assert.GreaterOrEqual(t, overlap, MinScore)
}

func TestScoreRecord_Bounds(t *testing.T) {
	records := []Record{
		{Title: "Risk", Content: "risk"},
		{Title: "Scope Baseline", Content: "the approved scope statement"},
		{Title: "", Content: ""},
		{Title: "Änderungsmanagement", Content: "Änderungen steuern"},
	}
	queries := []string{"risk", "scope", "a b c d e f", "änderung", "risk (management)"}

	for _, r := range records {
		for _, q := range queries {
			score := ScoreRecord(r, q)
			assert.GreaterOrEqual(t, score, MinScore, "record %q query %q", r.Title, q)
			assert.LessOrEqual(t, score, ExactTitleScore, "record %q query %q", r.Title, q)
		}
	}
}

func TestScoreRecord_Deterministic(t *testing.T) {
	r := Record{Title: "Benefits Realization", Content: "track benefits after closure"}
	first := ScoreRecord(r, "benefit tracking")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ScoreRecord(r, "benefit tracking"))
	}
}

func TestScoreKeywords(t *testing.T) {
	r := Record{Title: "Risk Management", Content: "Identify risks and plan a response."}

	tally := ScoreKeywords(r, []string{"risk", "response", "Risk", " ", "budget"}, DefaultKeywordWeights)

	// risk: title 2 + content 1; response: content 1; duplicates and blanks ignored.
	assert.Equal(t, 4, tally)
}

func TestScoreKeywords_CustomWeights(t *testing.T) {
	r := Record{Title: "Quality Control", Content: "quality audits"}

	tally := ScoreKeywords(r, []string{"quality"}, KeywordWeights{Title: 1, Content: 1})

	assert.Equal(t, 2, tally)
}

func TestScoreKeywords_NoKeywords(t *testing.T) {
	r := Record{Title: "Quality Control", Content: "quality audits"}
	assert.Equal(t, 0, ScoreKeywords(r, nil, DefaultKeywordWeights))
}
