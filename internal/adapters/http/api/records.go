package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/parkstats/internal/domain/model"
	"github.com/okian/parkstats/pkg/logger"
)

// RecordsDependencies defines the interface for reading normalized records.
type RecordsDependencies interface {
	Records(ctx context.Context) ([]model.NormalizedRecord, error)
}

// RecordsHandler handles records requests.
type RecordsHandler struct {
	deps RecordsDependencies
	log  logger.Logger
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps RecordsDependencies, log logger.Logger) *RecordsHandler {
	return &RecordsHandler{deps: deps, log: log}
}

// HandleRecords handles GET /records requests. Optional query parameters:
// event keeps only runs at that event; limit keeps the most recent N runs.
func (h *RecordsHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_records"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fail(w, r, h.log, op, fmt.Errorf("%w: %w", ErrBadRequest, ErrBadLimit))
			return
		}
		limit = n
	}

	recs, err := h.deps.Records(r.Context())
	if err != nil {
		fail(w, r, h.log, op, err)
		return
	}

	if event := strings.TrimSpace(q.Get("event")); event != "" {
		kept := recs[:0]
		for _, rec := range recs {
			if strings.EqualFold(rec.Event, event) {
				kept = append(kept, rec)
			}
		}
		recs = kept
	}
	if limit > 0 && len(recs) > limit {
		recs = recs[len(recs)-limit:]
	}
	if recs == nil {
		recs = []model.NormalizedRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}
