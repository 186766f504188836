// Package workflow holds the mutation entry points. Each operation runs as
// an ordered sequence of awaited gateway calls: validation first, the source
// record next, any cascade-derived appointment last, so a failed derivation
// never implies the source record failed.
package workflow

import (
	"errors"

	"go.opentelemetry.io/otel"

	"github.com/botucare/clinic-backend/internal/catalog"
	"github.com/botucare/clinic-backend/internal/gateway"
	"github.com/botucare/clinic-backend/pkg/logging"
)

var tracer = otel.Tracer("clinic.internal.workflow")

var (
	// ErrForbidden reports a doctor touching a record they do not own.
	ErrForbidden = errors.New("workflow: actor may not access this record")
	// ErrTerminalStatus reports a status change on a completed or
	// cancelled appointment.
	ErrTerminalStatus = errors.New("workflow: appointment status is terminal")
	// ErrNoInjection reports a follow-up created for a patient without any
	// injection on record.
	ErrNoInjection = errors.New("workflow: patient has no injection to follow up")
)

// CascadeError reports that a source record was persisted but the
// appointment derived from it was not. The source record's success stands;
// the wrapped error is the gateway failure for the appointment write.
type CascadeError struct {
	Err error
}

func (e *CascadeError) Error() string {
	return "workflow: derived appointment not persisted: " + e.Err.Error()
}

func (e *CascadeError) Unwrap() error { return e.Err }

// Service executes clinical mutations against the gateway.
type Service struct {
	gw      gateway.Gateway
	catalog *catalog.Store
	logger  *logging.Logger
}

// NewService wires the workflow service. Gateway and catalog are required.
func NewService(gw gateway.Gateway, cat *catalog.Store, logger *logging.Logger) *Service {
	if gw == nil {
		panic("workflow: gateway is required")
	}
	if cat == nil {
		panic("workflow: catalog store is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{gw: gw, catalog: cat, logger: logger}
}
