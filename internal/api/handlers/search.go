package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/pmstd/internal/api"
	"github.com/cloo-solutions/pmstd/internal/service"
)

type SearchService interface {
	SearchStandard(ctx context.Context, input service.SearchStandardInput) (*service.SearchResponse, error)
	SearchAll(ctx context.Context, input service.SearchAllInput) (*service.SearchResponse, error)
}

type SearchHandler struct {
	svc SearchService
}

func NewSearchHandler(svc SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// SearchStandard handles GET /api/standards/{id}/search?q=&limit=
func (h *SearchHandler) SearchStandard(w http.ResponseWriter, r *http.Request) {
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

	resp, err := h.svc.SearchStandard(r.Context(), service.SearchStandardInput{
		StandardID: id,
		Query:      r.URL.Query().Get("q"),
		Limit:      limit,
	})
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, resp)
}

// SearchAll handles GET /api/search?q=&standards=1,2&limit=
func (h *SearchHandler) SearchAll(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	ids, err := parseIDList(r.URL.Query().Get("standards"))
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	resp, err := h.svc.SearchAll(r.Context(), service.SearchAllInput{
		Query:       r.URL.Query().Get("q"),
		StandardIDs: ids,
		Limit:       limit,
	})
	if err != nil {
		api.HandleError(w, r, err)
		return
	}
	api.Success(w, http.StatusOK, resp)
}
