//go:build e2e

package e2e

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/pmstd/internal/domain"
	"github.com/cloo-solutions/pmstd/internal/service"
)

func pmbokCorpus() domain.CorpusFile {
	return domain.CorpusFile{
		Standard: domain.CorpusStandard{Code: "pmbok", Name: "PMBOK Guide", Version: "7", Publisher: "PMI"},
		Sections: []domain.CorpusSection{
			{SectionNumber: "2.8", Chapter: "Performance Domains", Title: "Uncertainty", Content: "Risk is an uncertain event. Risk responses address threats and opportunities."},
			{SectionNumber: "4.6", Chapter: "Models", Title: "Risk Management", Content: "Identify, analyze and respond to project risk with a risk register."},
			{SectionNumber: "2.1", Chapter: "Performance Domains", Title: "Stakeholders", Content: "Engage stakeholders throughout the project."},
		},
	}
}

func prince2Corpus() domain.CorpusFile {
	return domain.CorpusFile{
		Standard: domain.CorpusStandard{Code: "prince2", Name: "PRINCE2", Version: "7", Publisher: "Axelos"},
		Sections: []domain.CorpusSection{
			{SectionNumber: "4.2", Chapter: "Practices", Title: "Risk", Content: "The risk practice keeps a risk register and assigns risk owners."},
			{SectionNumber: "3.1", Chapter: "Practices", Title: "Business Case", Content: "The business case justifies the project."},
			{SectionNumber: "5.1", Chapter: "Processes", Title: "Starting up a project", Content: "Appoint the project board and prepare the project brief."},
		},
	}
}

func TestE2E_SeedSearchCompare(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	env := SetupE2EEnv(t)
	defer env.Cleanup()

	env.UploadCorpus("pmbok.json", pmbokCorpus())
	env.UploadCorpus("prince2.json", prince2Corpus())

	t.Run("seed requires admin key", func(t *testing.T) {
		resp := env.Post("/admin/seed", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.Status)
	})

	t.Run("seed from object storage", func(t *testing.T) {
		resp := env.Seed()
		require.Equal(t, http.StatusOK, resp.Status, resp.Error)

		var report service.SeedReport
		resp.Decode(t, &report)
		assert.Equal(t, "s3:"+corpusPrefix, report.Source)
		assert.Equal(t, 2, report.Standards)
		assert.Equal(t, 6, report.Sections)
		assert.Zero(t, report.Failed)
	})

	var standards []struct {
		ID           int64  `json:"id"`
		Code         string `json:"code"`
		SectionCount int    `json:"sectionCount"`
	}
	t.Run("list standards", func(t *testing.T) {
		resp := env.Get("/api/standards")
		require.Equal(t, http.StatusOK, resp.Status)
		resp.Decode(t, &standards)
		require.Len(t, standards, 2)
		for _, s := range standards {
			assert.Equal(t, 3, s.SectionCount, s.Code)
		}
	})

	t.Run("cross-standard search", func(t *testing.T) {
		resp := env.Get("/api/search?q=risk")
		require.Equal(t, http.StatusOK, resp.Status)

		var search service.SearchResponse
		resp.Decode(t, &search)
		require.NotEmpty(t, search.Results)
		assert.Equal(t, "risk", search.Query)
		assert.Equal(t, len(search.Results), search.TotalResults)

		top := search.Results[0]
		assert.Equal(t, 1.0, top.Similarity)
		assert.Equal(t, "Risk", top.Title)
		assert.Contains(t, top.Snippet, "<mark>")
		for i := 1; i < len(search.Results); i++ {
			assert.GreaterOrEqual(t, search.Results[i-1].Similarity, search.Results[i].Similarity)
		}
		assert.Len(t, search.SearchMetadata.ByStandard, 2)
	})

	t.Run("in-standard search", func(t *testing.T) {
		var pmbokID int64
		for _, s := range standards {
			if s.Code == "PMBOK" {
				pmbokID = s.ID
			}
		}
		require.NotZero(t, pmbokID)

		resp := env.Get(fmt.Sprintf("/api/standards/%d/search?q=stakeholders&limit=1", pmbokID))
		require.Equal(t, http.StatusOK, resp.Status)

		var search service.SearchResponse
		resp.Decode(t, &search)
		require.Len(t, search.Results, 1)
		assert.Equal(t, "Stakeholders", search.Results[0].Title)
		assert.Equal(t, "PMBOK Guide", search.Results[0].Standard)
	})

	t.Run("empty query is rejected", func(t *testing.T) {
		resp := env.Get("/api/search?q=")
		assert.Equal(t, http.StatusBadRequest, resp.Status)
		assert.Equal(t, "query is required", resp.Error)
	})

	t.Run("search is logged", func(t *testing.T) {
		var n int
		require.NoError(t, env.Pool.QueryRow(env.Ctx, "SELECT COUNT(*) FROM search_logs").Scan(&n))
		assert.GreaterOrEqual(t, n, 2)
	})

	t.Run("compare topic", func(t *testing.T) {
		resp := env.Post("/api/compare", map[string]any{"topic": "risk-management", "includeInsights": true})
		require.Equal(t, http.StatusOK, resp.Status, resp.Error)

		var result service.ComparisonResult
		resp.Decode(t, &result)
		require.Len(t, result.Standards, 2)
		for _, s := range result.Standards {
			assert.Positive(t, s.Coverage, s.Standard)
		}
		require.NotNil(t, result.Insights)
		assert.Equal(t, service.InsightsSourceFallback, result.Insights.Source)
	})

	t.Run("process generator cites sections", func(t *testing.T) {
		resp := env.Post("/api/process", map[string]any{"projectType": "software", "size": "small"})
		require.Equal(t, http.StatusOK, resp.Status, resp.Error)

		var plan service.ProcessPlan
		resp.Decode(t, &plan)
		assert.Equal(t, service.ProcessSourceTemplate, plan.Source)
		require.NotEmpty(t, plan.Phases)

		cited := 0
		for _, phase := range plan.Phases {
			for _, activity := range phase.Activities {
				cited += len(activity.Evidence)
			}
		}
		assert.Positive(t, cited)
	})

	t.Run("reseed is idempotent", func(t *testing.T) {
		resp := env.Seed()
		require.Equal(t, http.StatusOK, resp.Status)

		var n int
		require.NoError(t, env.Pool.QueryRow(env.Ctx, "SELECT COUNT(*) FROM sections").Scan(&n))
		assert.Equal(t, 6, n)
	})
}
