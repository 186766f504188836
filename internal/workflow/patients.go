package workflow

import (
	"context"
	"time"

	"github.com/botucare/clinic-backend/internal/access"
	"github.com/botucare/clinic-backend/internal/clinical"
	"github.com/botucare/clinic-backend/internal/gateway"
)

// CreatePatient validates and persists a new patient. A doctor always owns
// the patients they create; an admin may assign any owning doctor.
func (s *Service) CreatePatient(ctx context.Context, actor clinical.Actor, p clinical.Patient) (clinical.Patient, error) {
	ctx, span := tracer.Start(ctx, "workflow.create_patient")
	defer span.End()

	if !actor.IsAdmin() {
		p.DoctorID = actor.ID
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := p.Validate(s.catalog.Current()); err != nil {
		return clinical.Patient{}, err
	}

	id, err := s.gw.Create(ctx, gateway.CollectionPatients, p)
	if err != nil {
		span.RecordError(err)
		return clinical.Patient{}, err
	}
	p.ID = id
	s.logger.Info("patient created", "patient_id", id, "doctor_id", p.DoctorID)
	return p, nil
}

// GetPatient loads one patient the actor may read.
func (s *Service) GetPatient(ctx context.Context, actor clinical.Actor, id string) (clinical.Patient, error) {
	var p clinical.Patient
	if err := s.gw.Get(ctx, gateway.CollectionPatients, id, &p); err != nil {
		return clinical.Patient{}, err
	}
	if !access.CanSee(actor, p.DoctorID) {
		return clinical.Patient{}, ErrForbidden
	}
	return p, nil
}

// ListPatients returns the patients visible to the actor.
func (s *Service) ListPatients(ctx context.Context, actor clinical.Actor) ([]clinical.Patient, error) {
	var patients []clinical.Patient
	filter := gateway.Filter{DoctorID: access.QueryFilterFor(actor)}
	if err := s.gw.Query(ctx, gateway.CollectionPatients, filter, &patients); err != nil {
		return nil, err
	}
	return access.Visible(patients, actor), nil
}

// UpdatePatient applies a partial update to a patient the actor owns. The
// patch never moves ownership for a doctor, and updatedAt is always
// refreshed.
func (s *Service) UpdatePatient(ctx context.Context, actor clinical.Actor, id string, patch map[string]any) error {
	ctx, span := tracer.Start(ctx, "workflow.update_patient")
	defer span.End()

	if _, err := s.GetPatient(ctx, actor, id); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		delete(patch, "doctorId")
	}
	delete(patch, "id")
	delete(patch, "createdAt")
	patch["updatedAt"] = time.Now().UTC()

	if diagnosis, ok := patch["diagnosis"].(string); ok {
		if !s.catalog.Current().HasDiagnosis(diagnosis) {
			return &clinical.ValidationError{Field: "diagnosis", Reason: "not in the configured diagnosis list"}
		}
	}

	if err := s.gw.Update(ctx, gateway.CollectionPatients, id, patch); err != nil {
		span.RecordError(err)
		return err
	}
	s.logger.Info("patient updated", "patient_id", id)
	return nil
}

// DeletePatient removes the patient record. Related injections, follow-ups
// and appointments are orphaned on purpose, never cascade-deleted.
func (s *Service) DeletePatient(ctx context.Context, actor clinical.Actor, id string) error {
	ctx, span := tracer.Start(ctx, "workflow.delete_patient")
	defer span.End()

	if _, err := s.GetPatient(ctx, actor, id); err != nil {
		return err
	}
	if err := s.gw.Delete(ctx, gateway.CollectionPatients, id); err != nil {
		span.RecordError(err)
		return err
	}
	s.logger.Info("patient deleted", "patient_id", id)
	return nil
}
