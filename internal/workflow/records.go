package workflow

import (
	"context"

	"github.com/botucare/clinic-backend/internal/access"
	"github.com/botucare/clinic-backend/internal/cascade"
	"github.com/botucare/clinic-backend/internal/clinical"
	"github.com/botucare/clinic-backend/internal/gateway"
)

// CreateInjection validates and persists an injection, then submits the
// cascade-derived follow-up appointment when one is planned. The injection
// is persisted first; a failed appointment write never fails the injection
// but is surfaced as a CascadeError alongside the persisted record.
func (s *Service) CreateInjection(ctx context.Context, actor clinical.Actor, inj clinical.Injection) (clinical.Injection, *clinical.Appointment, error) {
	ctx, span := tracer.Start(ctx, "workflow.create_injection")
	defer span.End()

	if !actor.IsAdmin() {
		inj.DoctorID = actor.ID
	}
	if _, err := s.GetPatient(ctx, actor, inj.PatientID); err != nil {
		return clinical.Injection{}, nil, err
	}
	if err := inj.Validate(s.catalog.Current()); err != nil {
		return clinical.Injection{}, nil, err
	}

	id, err := s.gw.Create(ctx, gateway.CollectionInjections, inj)
	if err != nil {
		span.RecordError(err)
		return clinical.Injection{}, nil, err
	}
	inj.ID = id
	s.logger.Info("injection created", "injection_id", id, "patient_id", inj.PatientID)

	appt, ok, err := cascade.FollowUpAppointment(inj)
	if err != nil {
		s.logger.Warn("follow-up appointment not derived", "injection_id", id, "error", err)
		return inj, nil, nil
	}
	if !ok {
		return inj, nil, nil
	}
	apptID, err := s.gw.Create(ctx, gateway.CollectionAppointments, appt)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn("derived appointment not persisted", "injection_id", id, "error", err)
		return inj, nil, &CascadeError{Err: err}
	}
	appt.ID = apptID
	s.logger.Info("follow-up appointment derived", "injection_id", id, "appointment_id", apptID)
	return inj, &appt, nil
}

// ListInjections returns the injections visible to the actor, optionally
// narrowed to one patient.
func (s *Service) ListInjections(ctx context.Context, actor clinical.Actor, patientID string) ([]clinical.Injection, error) {
	var injections []clinical.Injection
	filter := gateway.Filter{DoctorID: access.QueryFilterFor(actor)}
	if err := s.gw.Query(ctx, gateway.CollectionInjections, filter, &injections); err != nil {
		return nil, err
	}
	injections = access.Visible(injections, actor)
	if patientID == "" {
		return injections, nil
	}
	out := make([]clinical.Injection, 0, len(injections))
	for _, inj := range injections {
		if inj.PatientID == patientID {
			out = append(out, inj)
		}
	}
	return out, nil
}

// UpdateInjection replaces mutable fields on an injection the actor owns.
func (s *Service) UpdateInjection(ctx context.Context, actor clinical.Actor, id string, patch map[string]any) error {
	ctx, span := tracer.Start(ctx, "workflow.update_injection")
	defer span.End()

	var inj clinical.Injection
	if err := s.gw.Get(ctx, gateway.CollectionInjections, id, &inj); err != nil {
		return err
	}
	if !access.CanSee(actor, inj.DoctorID) {
		return ErrForbidden
	}
	delete(patch, "id")
	delete(patch, "patientId")
	if !actor.IsAdmin() {
		delete(patch, "doctorId")
	}
	if err := s.gw.Update(ctx, gateway.CollectionInjections, id, patch); err != nil {
		span.RecordError(err)
		return err
	}
	s.logger.Info("injection updated", "injection_id", id)
	return nil
}

// CreateFollowUp validates and persists a follow-up, then submits the
// cascade-derived next appointment when both its date and time are planned.
// A follow-up requires at least one injection on record for the patient, and
// its injection reference must resolve. A failed appointment write surfaces
// as a CascadeError without failing the follow-up.
func (s *Service) CreateFollowUp(ctx context.Context, actor clinical.Actor, fu clinical.FollowUp) (clinical.FollowUp, *clinical.Appointment, error) {
	ctx, span := tracer.Start(ctx, "workflow.create_followup")
	defer span.End()

	if !actor.IsAdmin() {
		fu.DoctorID = actor.ID
	}
	if err := fu.Validate(); err != nil {
		return clinical.FollowUp{}, nil, err
	}

	var src clinical.Injection
	if err := s.gw.Get(ctx, gateway.CollectionInjections, fu.InjectionID, &src); err != nil {
		return clinical.FollowUp{}, nil, err
	}
	if !access.CanSee(actor, src.DoctorID) {
		return clinical.FollowUp{}, nil, ErrForbidden
	}
	if src.PatientID != fu.PatientID {
		return clinical.FollowUp{}, nil, ErrNoInjection
	}

	id, err := s.gw.Create(ctx, gateway.CollectionFollowUps, fu)
	if err != nil {
		span.RecordError(err)
		return clinical.FollowUp{}, nil, err
	}
	fu.ID = id
	s.logger.Info("follow-up created", "followup_id", id, "injection_id", fu.InjectionID)

	appt, ok, err := cascade.NextAppointment(fu)
	if err != nil {
		s.logger.Warn("next appointment not derived", "followup_id", id, "error", err)
		return fu, nil, nil
	}
	if !ok {
		return fu, nil, nil
	}
	apptID, err := s.gw.Create(ctx, gateway.CollectionAppointments, appt)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn("derived appointment not persisted", "followup_id", id, "error", err)
		return fu, nil, &CascadeError{Err: err}
	}
	appt.ID = apptID
	s.logger.Info("next appointment derived", "followup_id", id, "appointment_id", apptID)
	return fu, &appt, nil
}

// ListFollowUps returns the follow-ups visible to the actor, optionally
// narrowed to one patient.
func (s *Service) ListFollowUps(ctx context.Context, actor clinical.Actor, patientID string) ([]clinical.FollowUp, error) {
	var followUps []clinical.FollowUp
	filter := gateway.Filter{DoctorID: access.QueryFilterFor(actor)}
	if err := s.gw.Query(ctx, gateway.CollectionFollowUps, filter, &followUps); err != nil {
		return nil, err
	}
	followUps = access.Visible(followUps, actor)
	if patientID == "" {
		return followUps, nil
	}
	out := make([]clinical.FollowUp, 0, len(followUps))
	for _, fu := range followUps {
		if fu.PatientID == patientID {
			out = append(out, fu)
		}
	}
	return out, nil
}
