package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/botucare/clinic-backend/internal/clinical"
	"github.com/botucare/clinic-backend/internal/observability/metrics"
	"github.com/botucare/clinic-backend/internal/workflow"
	"github.com/botucare/clinic-backend/pkg/logging"
)

// PatientsHandler exposes CRUD over patient records.
type PatientsHandler struct {
	workflow *workflow.Service
	metrics  *metrics.ClinicMetrics
	logger   *logging.Logger
}

func NewPatientsHandler(svc *workflow.Service, m *metrics.ClinicMetrics, logger *logging.Logger) *PatientsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &PatientsHandler{workflow: svc, metrics: m, logger: logger}
}

// List returns the patients visible to the actor.
// Route: GET /api/patients
func (h *PatientsHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	patients, err := h.workflow.ListPatients(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, patients)
}

// Create persists a new patient owned by the actor.
// Route: POST /api/patients
func (h *PatientsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var p clinical.Patient
	if !decodeBody(w, r, &p) {
		return
	}
	created, err := h.workflow.CreatePatient(r.Context(), actor, p)
	if err != nil {
		h.metrics.ObserveMutation("patients", "create", "error")
		writeError(w, err)
		return
	}
	h.metrics.ObserveMutation("patients", "create", "ok")
	writeJSON(w, http.StatusCreated, created)
}

// Get returns one patient.
// Route: GET /api/patients/{patientID}
func (h *PatientsHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	p, err := h.workflow.GetPatient(r.Context(), actor, chi.URLParam(r, "patientID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Update applies a partial update.
// Route: PATCH /api/patients/{patientID}
func (h *PatientsHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var patch map[string]any
	if !decodeBody(w, r, &patch) {
		return
	}
	id := chi.URLParam(r, "patientID")
	if err := h.workflow.UpdatePatient(r.Context(), actor, id, patch); err != nil {
		h.metrics.ObserveMutation("patients", "update", "error")
		writeError(w, err)
		return
	}
	h.metrics.ObserveMutation("patients", "update", "ok")
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a patient. Related records are orphaned, not deleted.
// Route: DELETE /api/patients/{patientID}
func (h *PatientsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	if err := h.workflow.DeletePatient(r.Context(), actor, chi.URLParam(r, "patientID")); err != nil {
		h.metrics.ObserveMutation("patients", "delete", "error")
		writeError(w, err)
		return
	}
	h.metrics.ObserveMutation("patients", "delete", "ok")
	w.WriteHeader(http.StatusNoContent)
}
