package handlers

import (
	"context"
	"net/http"

	"github.com/cloo-solutions/pmstd/internal/api"
	"github.com/cloo-solutions/pmstd/internal/domain"
	"github.com/cloo-solutions/pmstd/internal/service"
)

type Seeder interface {
	Seed(ctx context.Context, src service.CorpusSource) (*service.SeedReport, error)
}

// AdminHandler exposes corpus maintenance operations
type AdminHandler struct {
	seeder Seeder
	source service.CorpusSource
}

// NewAdminHandler creates an AdminHandler. A nil seeder or source makes
// seeding report ErrSeedingNotConfigured.
func NewAdminHandler(seeder Seeder, source service.CorpusSource) *AdminHandler {
	return &AdminHandler{seeder: seeder, source: source}
}

func (h *AdminHandler) Seed(w http.ResponseWriter, r *http.Request) {
	if h.seeder == nil || h.source == nil {
		api.HandleError(w, r, domain.ErrSeedingNotConfigured)
		return
	}

	report, err := h.seeder.Seed(r.Context(), h.source)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	status := http.StatusOK
	if report.Failed > 0 {
		status = http.StatusMultiStatus
	}
	api.Success(w, status, report)
}
