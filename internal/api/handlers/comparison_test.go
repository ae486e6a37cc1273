package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/pmstd/internal/domain"
	"github.com/cloo-solutions/pmstd/internal/service"
)

func TestComparisonHandler_Topics(t *testing.T) {
	mockSvc := new(MockComparisonService)
	handler := NewComparisonHandler(mockSvc)

	mockSvc.On("Topics").Return([]domain.Topic{
		{Slug: "risk-management", Name: "Risk Management", Keywords: []string{"risk"}},
	})

	w := httptest.NewRecorder()
	handler.Topics(w, httptest.NewRequest(http.MethodGet, "/api/topics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"risk-management"`)
}

func TestComparisonHandler_Compare(t *testing.T) {
	mockSvc := new(MockComparisonService)
	handler := NewComparisonHandler(mockSvc)

	mockSvc.On("Compare", mock.Anything, service.CompareInput{
		Topic:           "Risk Management",
		StandardIDs:     []int64{1, 2},
		PerStandard:     3,
		IncludeInsights: true,
	}).Return(&service.ComparisonResult{
		Topic:    "Risk Management",
		Keywords: []string{"risk"},
		Standards: []service.StandardComparison{{
			StandardID: 1,
			Standard:   "ISO 21500",
			Coverage:   1,
			MeanScore:  3,
			Matches:    []service.ComparisonMatch{{ID: 4, Title: "Risk", Score: 3, Rank: 1}},
		}},
		Insights: &service.Insights{Summary: "aligned", Source: service.InsightsSourceFallback},
	}, nil)

	body := `{"topic":"Risk Management","standardIds":[1,2],"perStandard":3,"includeInsights":true}`
	w := httptest.NewRecorder()
	handler.Compare(w, jsonRequest(http.MethodPost, "/api/compare", body))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data service.ComparisonResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Data.Standards, 1)
	assert.Equal(t, 1, resp.Data.Standards[0].Coverage)
	require.NotNil(t, resp.Data.Insights)
	assert.Equal(t, "aligned", resp.Data.Insights.Summary)
	mockSvc.AssertExpectations(t)
}

func TestComparisonHandler_Compare_InvalidBody(t *testing.T) {
	mockSvc := new(MockComparisonService)
	handler := NewComparisonHandler(mockSvc)

	for _, body := range []string{`{`, `{"topic":"x","unknown":1}`} {
		w := httptest.NewRecorder()
		handler.Compare(w, jsonRequest(http.MethodPost, "/api/compare", body))
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.JSONEq(t, `{"error":"invalid request body"}`, w.Body.String())
	}
	mockSvc.AssertNotCalled(t, "Compare", mock.Anything, mock.Anything)
}

func TestComparisonHandler_Compare_MissingTopic(t *testing.T) {
	mockSvc := new(MockComparisonService)
	handler := NewComparisonHandler(mockSvc)

	mockSvc.On("Compare", mock.Anything, mock.Anything).Return(nil, domain.ErrMissingTopic)

	w := httptest.NewRecorder()
	handler.Compare(w, jsonRequest(http.MethodPost, "/api/compare", `{}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"topic or keywords are required"}`, w.Body.String())
}

func TestComparisonHandler_Insights(t *testing.T) {
	mockSvc := new(MockComparisonService)
	handler := NewComparisonHandler(mockSvc)

	mockSvc.On("Insights", mock.Anything, service.CompareInput{
		Keywords: []string{"quality", "audit"},
	}).Return(&service.Insights{
		Summary:      "All standards audit quality.",
		Similarities: []string{"audits"},
		Source:       service.InsightsSourceAI,
	}, nil)

	w := httptest.NewRecorder()
	handler.Insights(w, jsonRequest(http.MethodPost, "/api/insights", `{"keywords":["quality","audit"]}`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"summary":"All standards audit quality."`)
	mockSvc.AssertExpectations(t)
}
