package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/pmstd/internal/api"
	"github.com/cloo-solutions/pmstd/internal/service"
)

type ProcessService interface {
	Generate(ctx context.Context, input service.ProcessInput) (*service.ProcessPlan, error)
}

type ProcessHandler struct {
	svc ProcessService
}

func NewProcessHandler(svc ProcessService) *ProcessHandler {
	return &ProcessHandler{svc: svc}
}

type ProcessRequest struct {
	ProjectType string   `json:"projectType"`
	Size        string   `json:"size"`
	Industry    string   `json:"industry"`
	Constraints []string `json:"constraints"`
	StandardIDs []int64  `json:"standardIds"`
}

func (h *ProcessHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := decodeJSON(r, &req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	plan, err := h.svc.Generate(r.Context(), service.ProcessInput{
		ProjectType: req.ProjectType,
		Size:        req.Size,
		Industry:    req.Industry,
		Constraints: req.Constraints,
		StandardIDs: req.StandardIDs,
	})
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, plan)
}
