package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/botucare/clinic-backend/internal/clinical"
	"github.com/botucare/clinic-backend/internal/observability/metrics"
	"github.com/botucare/clinic-backend/internal/workflow"
	"github.com/botucare/clinic-backend/pkg/logging"
)

// InjectionsHandler exposes injection sessions.
type InjectionsHandler struct {
	workflow *workflow.Service
	metrics  *metrics.ClinicMetrics
	logger   *logging.Logger
}

func NewInjectionsHandler(svc *workflow.Service, m *metrics.ClinicMetrics, logger *logging.Logger) *InjectionsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &InjectionsHandler{workflow: svc, metrics: m, logger: logger}
}

// injectionResponse augments the stored record with its computed total and
// any appointment the cascade derived on creation.
type injectionResponse struct {
	clinical.Injection
	TotalDosage  float64               `json:"totalDosage"`
	Derived      *clinical.Appointment `json:"derivedAppointment,omitempty"`
	CascadeError string                `json:"cascadeError,omitempty"`
}

// List returns the injections visible to the actor, optionally for one
// patient via ?patient=.
// Route: GET /api/injections
func (h *InjectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	injections, err := h.workflow.ListInjections(r.Context(), actor, r.URL.Query().Get("patient"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]injectionResponse, 0, len(injections))
	for _, inj := range injections {
		out = append(out, injectionResponse{Injection: inj, TotalDosage: inj.TotalDosage()})
	}
	writeJSON(w, http.StatusOK, out)
}

// Create persists an injection and submits its cascade-derived follow-up
// appointment when one is planned.
// Route: POST /api/injections
func (h *InjectionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var inj clinical.Injection
	if !decodeBody(w, r, &inj) {
		return
	}
	created, derived, err := h.workflow.CreateInjection(r.Context(), actor, inj)
	var cascadeErr *workflow.CascadeError
	if err != nil && !errors.As(err, &cascadeErr) {
		h.metrics.ObserveMutation("injections", "create", "error")
		writeError(w, err)
		return
	}
	h.metrics.ObserveMutation("injections", "create", "ok")
	resp := injectionResponse{
		Injection:   created,
		TotalDosage: created.TotalDosage(),
		Derived:     derived,
	}
	switch {
	case derived != nil:
		h.metrics.ObserveCascade("injection", "derived")
	case cascadeErr != nil:
		h.metrics.ObserveCascade("injection", "error")
		resp.CascadeError = cascadeErr.Error()
	default:
		h.metrics.ObserveCascade("injection", "skipped")
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Update replaces mutable fields on an injection.
// Route: PATCH /api/injections/{injectionID}
func (h *InjectionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var patch map[string]any
	if !decodeBody(w, r, &patch) {
		return
	}
	id := chi.URLParam(r, "injectionID")
	if err := h.workflow.UpdateInjection(r.Context(), actor, id, patch); err != nil {
		h.metrics.ObserveMutation("injections", "update", "error")
		writeError(w, err)
		return
	}
	h.metrics.ObserveMutation("injections", "update", "ok")
	w.WriteHeader(http.StatusNoContent)
}
