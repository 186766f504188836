package workflow

import (
	"context"

	"github.com/botucare/clinic-backend/internal/clinical"
	"github.com/botucare/clinic-backend/internal/stats"
)

// Snapshot loads every collection the actor may see into one stats scope.
// Dashboards and reports aggregate over this filtered snapshot only.
func (s *Service) Snapshot(ctx context.Context, actor clinical.Actor) (stats.Scope, error) {
	ctx, span := tracer.Start(ctx, "workflow.snapshot")
	defer span.End()

	patients, err := s.ListPatients(ctx, actor)
	if err != nil {
		span.RecordError(err)
		return stats.Scope{}, err
	}
	injections, err := s.ListInjections(ctx, actor, "")
	if err != nil {
		span.RecordError(err)
		return stats.Scope{}, err
	}
	followUps, err := s.ListFollowUps(ctx, actor, "")
	if err != nil {
		span.RecordError(err)
		return stats.Scope{}, err
	}
	appts, err := s.ListAppointments(ctx, actor, "")
	if err != nil {
		span.RecordError(err)
		return stats.Scope{}, err
	}

	return stats.Scope{
		Patients:     patients,
		Injections:   injections,
		FollowUps:    followUps,
		Appointments: appts,
	}, nil
}
