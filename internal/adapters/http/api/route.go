package api

import (
	"context"
	"net/http"

	service "github.com/okian/parkstats/internal/app"
	"github.com/okian/parkstats/pkg/logger"
)

// RouteDependencies defines the interface for route projection.
type RouteDependencies interface {
	Route(ctx context.Context) (service.RouteProjection, error)
}

// RouteHandler handles route requests.
type RouteHandler struct {
	deps RouteDependencies
	log  logger.Logger
}

// NewRouteHandler creates a new route handler.
func NewRouteHandler(deps RouteDependencies, log logger.Logger) *RouteHandler {
	return &RouteHandler{deps: deps, log: log}
}

// HandleRoute handles GET /route requests.
func (h *RouteHandler) HandleRoute(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_route"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	proj, err := h.deps.Route(r.Context())
	if err != nil {
		fail(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, proj)
}
