package handlers

import (
	"net/http"
	"time"

	"github.com/botucare/clinic-backend/internal/stats"
	"github.com/botucare/clinic-backend/internal/workflow"
	"github.com/botucare/clinic-backend/pkg/logging"
)

// DashboardHandler serves the overview counters.
type DashboardHandler struct {
	workflow *workflow.Service
	logger   *logging.Logger
	now      func() time.Time
}

func NewDashboardHandler(svc *workflow.Service, logger *logging.Logger) *DashboardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DashboardHandler{workflow: svc, logger: logger, now: time.Now}
}

// Overview computes the dashboard counters over the actor's visible data,
// optionally bounded by ?start= and ?end=.
// Route: GET /api/dashboard
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	scope, err := h.workflow.Snapshot(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	start, end, err := dateRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if !start.IsZero() || !end.IsZero() {
		scope = scope.InRange(start, end)
	}
	writeJSON(w, http.StatusOK, stats.ComputeOverview(scope, h.now()))
}
