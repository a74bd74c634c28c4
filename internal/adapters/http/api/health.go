package api

import (
	"net/http"

	service "github.com/okian/parkstats/internal/app"
)

// StatusProvider reports what the service has loaded.
type StatusProvider interface {
	Status() service.Status
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	deps StatusProvider
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps StatusProvider) *HealthHandler {
	return &HealthHandler{deps: deps}
}

type healthResponse struct {
	Status  string         `json:"status"`
	Dataset service.Status `json:"dataset"`
}

// HandleHealth handles GET /healthz requests. The process is healthy even
// before a dataset is loaded; the status field then reads "empty".
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	st := h.deps.Status()
	resp := healthResponse{Status: "ok", Dataset: st}
	if !st.Loaded {
		resp.Status = "empty"
	}
	writeJSON(w, http.StatusOK, resp)
}
