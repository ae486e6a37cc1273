package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cloo-solutions/pmstd/internal/api"
	"github.com/cloo-solutions/pmstd/internal/domain"
	"github.com/cloo-solutions/pmstd/internal/pagination"
	"github.com/cloo-solutions/pmstd/internal/service"
)

type StandardService interface {
	List(ctx context.Context) ([]*domain.Standard, error)
	Get(ctx context.Context, id int64) (*domain.Standard, error)
	ListSections(ctx context.Context, input service.ListSectionsInput) (*service.ListSectionsOutput, error)
	GetSection(ctx context.Context, id int64) (*domain.Section, error)
}

type StandardHandler struct {
	svc StandardService
}

func NewStandardHandler(svc StandardService) *StandardHandler {
	return &StandardHandler{svc: svc}
}

type StandardResponse struct {
	ID           int64  `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	Version      string `json:"version"`
	Publisher    string `json:"publisher"`
	Description  string `json:"description"`
	SectionCount int    `json:"sectionCount"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

type SectionResponse struct {
	ID            int64  `json:"id"`
	StandardID    int64  `json:"standardId"`
	SectionNumber string `json:"sectionNumber"`
	Chapter       string `json:"chapter"`
	Title         string `json:"title"`
	Content       string `json:"content"`
	Position      int    `json:"position"`
}

func standardToResponse(s *domain.Standard) StandardResponse {
	return StandardResponse{
		ID:           s.ID,
		Code:         s.Code,
		Name:         s.Name,
		Version:      s.Version,
		Publisher:    s.Publisher,
		Description:  s.Description,
		SectionCount: s.SectionCount,
		CreatedAt:    s.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func sectionToResponse(s *domain.Section) SectionResponse {
	return SectionResponse{
		ID:            s.ID,
		StandardID:    s.StandardID,
		SectionNumber: s.SectionNumber,
		Chapter:       s.Chapter,
		Title:         s.Title,
		Content:       s.Content,
		Position:      s.Position,
	}
}

func (h *StandardHandler) List(w http.ResponseWriter, r *http.Request) {
	standards, err := h.svc.List(r.Context())
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	resp := make([]StandardResponse, 0, len(standards))
	for _, s := range standards {
		resp = append(resp, standardToResponse(s))
	}
	api.Success(w, http.StatusOK, resp)
}

func (h *StandardHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	standard, err := h.svc.Get(r.Context(), id)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, standardToResponse(standard))
}

func (h *StandardHandler) ListSections(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	out, err := h.svc.ListSections(r.Context(), service.ListSectionsInput{
		StandardID: id,
		Cursor:     r.URL.Query().Get("cursor"),
		Limit:      limit,
	})
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	items := make([]SectionResponse, 0, len(out.Items))
	for _, s := range out.Items {
		items = append(items, sectionToResponse(s))
	}
	api.Success(w, http.StatusOK, pagination.PageResult[SectionResponse]{
		Items:   items,
		Cursor:  out.Cursor,
		HasMore: out.HasMore,
	})
}

func (h *StandardHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	section, err := h.svc.GetSection(r.Context(), id)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, sectionToResponse(section))
}
