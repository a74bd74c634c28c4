package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/parkstats/internal/adapters/geodesic"
	service "github.com/okian/parkstats/internal/app"
	"github.com/okian/parkstats/pkg/logger"
)

// SummaryDependencies defines the interface for summary operations.
type SummaryDependencies interface {
	Summary(ctx context.Context, unit geodesic.Unit) (service.Summary, error)
}

// SummaryHandler handles summary requests.
type SummaryHandler struct {
	deps        SummaryDependencies
	defaultUnit geodesic.Unit
	log         logger.Logger
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(deps SummaryDependencies, defaultUnit geodesic.Unit, log logger.Logger) *SummaryHandler {
	return &SummaryHandler{deps: deps, defaultUnit: defaultUnit, log: log}
}

// HandleSummary handles GET /summary?unit=km|mi requests.
func (h *SummaryHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_summary"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	unit := h.defaultUnit
	if raw := strings.TrimSpace(r.URL.Query().Get("unit")); raw != "" {
		u, err := geodesic.ParseUnit(raw)
		if err != nil {
			fail(w, r, h.log, op, err)
			return
		}
		unit = u
	}

	sum, err := h.deps.Summary(r.Context(), unit)
	if err != nil {
		fail(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
