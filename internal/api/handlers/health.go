package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cloo-solutions/pmstd/internal/api"
	"github.com/cloo-solutions/pmstd/internal/logger"
	"go.uber.org/zap"
)

const readyTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Live always reports ok while the process serves requests.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready pings every dependency and reports 503 when one is down.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := http.StatusOK
	result := map[string]string{"status": "ok"}
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			logger.FromContext(r.Context()).Warn("readiness check failed", zap.String("check", name), zap.Error(err))
			result[name] = "unavailable"
			result["status"] = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		result[name] = "ok"
	}
	api.JSON(w, status, api.SuccessResponse{Data: result})
}
