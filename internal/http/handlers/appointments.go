package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/botucare/clinic-backend/internal/clinical"
	"github.com/botucare/clinic-backend/internal/observability/metrics"
	"github.com/botucare/clinic-backend/internal/schedule"
	"github.com/botucare/clinic-backend/internal/workflow"
	"github.com/botucare/clinic-backend/pkg/logging"
)

// AppointmentsHandler exposes the appointment calendar.
type AppointmentsHandler struct {
	workflow *workflow.Service
	metrics  *metrics.ClinicMetrics
	logger   *logging.Logger
	now      func() time.Time
}

func NewAppointmentsHandler(svc *workflow.Service, m *metrics.ClinicMetrics, logger *logging.Logger) *AppointmentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AppointmentsHandler{workflow: svc, metrics: m, logger: logger, now: time.Now}
}

// appointmentResponse carries the stored record plus its temporal state,
// which is recomputed on every read and never persisted.
type appointmentResponse struct {
	clinical.Appointment
	State schedule.State `json:"state"`
}

func (h *AppointmentsHandler) respond(appts []clinical.Appointment) []appointmentResponse {
	now := h.now()
	out := make([]appointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, appointmentResponse{Appointment: a, State: schedule.Classify(a, now)})
	}
	return out
}

// List returns the appointments visible to the actor. ?patient= narrows to
// one patient, ?on=YYYY-MM-DD to one calendar day.
// Route: GET /api/appointments
func (h *AppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	appts, err := h.workflow.ListAppointments(r.Context(), actor, r.URL.Query().Get("patient"))
	if err != nil {
		writeError(w, err)
		return
	}
	if on := r.URL.Query().Get("on"); on != "" {
		day, err := time.ParseInLocation(clinical.DateOnly, on, time.Local)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "on must be a YYYY-MM-DD date"})
			return
		}
		appts = schedule.OnDay(appts, day)
	}
	writeJSON(w, http.StatusOK, h.respond(appts))
}

// Upcoming returns the scheduled appointments in the next seven days.
// Route: GET /api/appointments/upcoming
func (h *AppointmentsHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	appts, err := h.workflow.ListAppointments(r.Context(), actor, "")
	if err != nil {
		writeError(w, err)
		return
	}
	upcoming := schedule.UpcomingWithin(appts, h.now(), 7*24*time.Hour)
	writeJSON(w, http.StatusOK, h.respond(upcoming))
}

// Create schedules an appointment directly.
// Route: POST /api/appointments
func (h *AppointmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var appt clinical.Appointment
	if !decodeBody(w, r, &appt) {
		return
	}
	created, err := h.workflow.CreateAppointment(r.Context(), actor, appt)
	if err != nil {
		h.metrics.ObserveMutation("appointments", "create", "error")
		writeError(w, err)
		return
	}
	h.metrics.ObserveMutation("appointments", "create", "ok")
	writeJSON(w, http.StatusCreated, appointmentResponse{Appointment: created, State: schedule.Classify(created, h.now())})
}

type statusRequest struct {
	Status clinical.AppointmentStatus `json:"status"`
}

// UpdateStatus transitions the appointment lifecycle. Completed and
// cancelled are terminal.
// Route: PATCH /api/appointments/{appointmentID}/status
func (h *AppointmentsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "appointmentID")
	if err := h.workflow.UpdateAppointmentStatus(r.Context(), actor, id, req.Status); err != nil {
		h.metrics.ObserveMutation("appointments", "update", "error")
		writeError(w, err)
		return
	}
	h.metrics.ObserveMutation("appointments", "update", "ok")
	w.WriteHeader(http.StatusNoContent)
}
