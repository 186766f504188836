package handlers

import (
	"errors"
	"net/http"

	"github.com/botucare/clinic-backend/internal/clinical"
	"github.com/botucare/clinic-backend/internal/observability/metrics"
	"github.com/botucare/clinic-backend/internal/workflow"
	"github.com/botucare/clinic-backend/pkg/logging"
)

// FollowUpsHandler exposes post-injection follow-ups.
type FollowUpsHandler struct {
	workflow *workflow.Service
	metrics  *metrics.ClinicMetrics
	logger   *logging.Logger
}

func NewFollowUpsHandler(svc *workflow.Service, m *metrics.ClinicMetrics, logger *logging.Logger) *FollowUpsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &FollowUpsHandler{workflow: svc, metrics: m, logger: logger}
}

type followUpResponse struct {
	clinical.FollowUp
	Derived      *clinical.Appointment `json:"derivedAppointment,omitempty"`
	CascadeError string                `json:"cascadeError,omitempty"`
}

// List returns the follow-ups visible to the actor, optionally for one
// patient via ?patient=.
// Route: GET /api/followups
func (h *FollowUpsHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	followUps, err := h.workflow.ListFollowUps(r.Context(), actor, r.URL.Query().Get("patient"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, followUps)
}

// Create persists a follow-up and submits its cascade-derived next
// appointment when both date and time are planned.
// Route: POST /api/followups
func (h *FollowUpsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var fu clinical.FollowUp
	if !decodeBody(w, r, &fu) {
		return
	}
	created, derived, err := h.workflow.CreateFollowUp(r.Context(), actor, fu)
	var cascadeErr *workflow.CascadeError
	if err != nil && !errors.As(err, &cascadeErr) {
		h.metrics.ObserveMutation("followUps", "create", "error")
		writeError(w, err)
		return
	}
	h.metrics.ObserveMutation("followUps", "create", "ok")
	resp := followUpResponse{FollowUp: created, Derived: derived}
	switch {
	case derived != nil:
		h.metrics.ObserveCascade("followup", "derived")
	case cascadeErr != nil:
		h.metrics.ObserveCascade("followup", "error")
		resp.CascadeError = cascadeErr.Error()
	default:
		h.metrics.ObserveCascade("followup", "skipped")
	}
	writeJSON(w, http.StatusCreated, resp)
}
