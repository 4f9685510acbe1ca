package transport

import (
	"net/http"

	"inventory-backoffice/internal/middleware"
	"inventory-backoffice/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DashboardHandler serves the back-office counters
type DashboardHandler struct {
	dashboardService service.DashboardService
	logger           *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// RegisterRoutes registers all dashboard routes
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/dashboard/stats", h.Stats)
}

// Stats returns record counts and stock levels
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.Stats(r.Context())
	if err != nil {
		h.logger.Error("Failed to load dashboard stats", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadGateway, "failed to load dashboard stats")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, stats)
}
