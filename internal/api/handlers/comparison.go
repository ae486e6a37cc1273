package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/pmstd/internal/api"
	"github.com/cloo-solutions/pmstd/internal/domain"
	"github.com/cloo-solutions/pmstd/internal/service"
)

type ComparisonService interface {
	Topics() []domain.Topic
	Compare(ctx context.Context, input service.CompareInput) (*service.ComparisonResult, error)
	Insights(ctx context.Context, input service.CompareInput) (*service.Insights, error)
}

type ComparisonHandler struct {
	svc ComparisonService
}

func NewComparisonHandler(svc ComparisonService) *ComparisonHandler {
	return &ComparisonHandler{svc: svc}
}

type CompareRequest struct {
	Topic           string   `json:"topic"`
	Keywords        []string `json:"keywords"`
	StandardIDs     []int64  `json:"standardIds"`
	PerStandard     int      `json:"perStandard"`
	IncludeInsights bool     `json:"includeInsights"`
}

func (req CompareRequest) toInput() service.CompareInput {
	return service.CompareInput{
		Topic:           req.Topic,
		Keywords:        req.Keywords,
		StandardIDs:     req.StandardIDs,
		PerStandard:     req.PerStandard,
		IncludeInsights: req.IncludeInsights,
	}
}

func (h *ComparisonHandler) Topics(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.svc.Topics())
}

func (h *ComparisonHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Compare(r.Context(), req.toInput())
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, result)
}

func (h *ComparisonHandler) Insights(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	insights, err := h.svc.Insights(r.Context(), req.toInput())
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, insights)
}
