package workflow

import (
	"context"

	"github.com/botucare/clinic-backend/internal/access"
	"github.com/botucare/clinic-backend/internal/clinical"
	"github.com/botucare/clinic-backend/internal/gateway"
)

// CreateAppointment validates and persists a directly scheduled appointment.
func (s *Service) CreateAppointment(ctx context.Context, actor clinical.Actor, appt clinical.Appointment) (clinical.Appointment, error) {
	ctx, span := tracer.Start(ctx, "workflow.create_appointment")
	defer span.End()

	if !actor.IsAdmin() {
		appt.DoctorID = actor.ID
	}
	if appt.Status == "" {
		appt.Status = clinical.StatusScheduled
	}
	if err := appt.Validate(); err != nil {
		return clinical.Appointment{}, err
	}
	if _, err := s.GetPatient(ctx, actor, appt.PatientID); err != nil {
		return clinical.Appointment{}, err
	}

	id, err := s.gw.Create(ctx, gateway.CollectionAppointments, appt)
	if err != nil {
		span.RecordError(err)
		return clinical.Appointment{}, err
	}
	appt.ID = id
	s.logger.Info("appointment created", "appointment_id", id, "type", appt.Type)
	return appt, nil
}

// ListAppointments returns the appointments visible to the actor, optionally
// narrowed to one patient.
func (s *Service) ListAppointments(ctx context.Context, actor clinical.Actor, patientID string) ([]clinical.Appointment, error) {
	var appts []clinical.Appointment
	filter := gateway.Filter{DoctorID: access.QueryFilterFor(actor)}
	if err := s.gw.Query(ctx, gateway.CollectionAppointments, filter, &appts); err != nil {
		return nil, err
	}
	appts = access.Visible(appts, actor)
	if patientID == "" {
		return appts, nil
	}
	out := make([]clinical.Appointment, 0, len(appts))
	for _, a := range appts {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

// UpdateAppointmentStatus transitions an appointment's lifecycle state.
// Completed and cancelled are terminal; once reached the appointment never
// reopens.
func (s *Service) UpdateAppointmentStatus(ctx context.Context, actor clinical.Actor, id string, status clinical.AppointmentStatus) error {
	ctx, span := tracer.Start(ctx, "workflow.update_appointment_status")
	defer span.End()

	if !status.Valid() {
		return &clinical.ValidationError{Field: "status", Reason: "must be scheduled, completed or cancelled"}
	}

	var appt clinical.Appointment
	if err := s.gw.Get(ctx, gateway.CollectionAppointments, id, &appt); err != nil {
		return err
	}
	if !access.CanSee(actor, appt.DoctorID) {
		return ErrForbidden
	}
	if appt.Status.Terminal() {
		return ErrTerminalStatus
	}

	if err := s.gw.Update(ctx, gateway.CollectionAppointments, id, map[string]any{"status": status}); err != nil {
		span.RecordError(err)
		return err
	}
	s.logger.Info("appointment status changed", "appointment_id", id, "status", status)
	return nil
}
