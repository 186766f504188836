package gateway

import (
	"context"
	"errors"
	"fmt"
)

// Persisted collections. Names match the original document-store layout so
// seeded environments stay portable.
const (
	CollectionPatients      = "patients"
	CollectionInjections    = "injections"
	CollectionFollowUps     = "followUps"
	CollectionAppointments  = "appointments"
	CollectionUsers         = "users"
	CollectionConfiguration = "configuration"
)

var (
	// ErrNotFound is returned when the target record id does not exist.
	ErrNotFound = errors.New("gateway: record not found")

	// ErrPersistence marks backend failures. Callers match it with errors.Is;
	// the underlying cause stays wrapped.
	ErrPersistence = errors.New("gateway: persistence failure")
)

// Filter narrows a Query. The zero value matches every record in the
// collection; a non-empty DoctorID matches records owned by that doctor.
type Filter struct {
	DoctorID string
}

// Gateway is the persistence contract the core depends on. Implementations
// never guarantee result ordering; callers impose their own.
type Gateway interface {
	// Create assigns a fresh identifier, persists the record and returns the id.
	Create(ctx context.Context, collection string, record any) (string, error)

	// Update applies a partial record to an existing document.
	Update(ctx context.Context, collection, id string, patch map[string]any) error

	// Delete removes a document. Deleting a patient orphans related records;
	// no cascade delete happens at this layer.
	Delete(ctx context.Context, collection, id string) error

	// Query unmarshals all matching records into out (a pointer to a slice).
	Query(ctx context.Context, collection string, filter Filter, out any) error

	// Get unmarshals a single record by id into out.
	Get(ctx context.Context, collection, id string, out any) error
}

func persistErr(op, collection string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrPersistence, op, collection, err)
}
