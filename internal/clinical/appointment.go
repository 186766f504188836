package clinical

import (
	"strings"
	"time"
)

// AppointmentType distinguishes injection sessions from follow-up visits.
type AppointmentType string

const (
	AppointmentInjection AppointmentType = "injection"
	AppointmentFollowUp  AppointmentType = "followup"
)

// Valid reports whether the type is injection or followup.
func (t AppointmentType) Valid() bool {
	return t == AppointmentInjection || t == AppointmentFollowUp
}

// Location of an appointment. The operating room is only meaningful for
// injection appointments (sedation cases).
type Location string

const (
	LocationService       Location = "service"
	LocationOperatingRoom Location = "operating_room"
)

// Valid reports whether the location is one of the accepted values.
func (l Location) Valid() bool {
	return l == LocationService || l == LocationOperatingRoom
}

// AppointmentStatus is the lifecycle state of an appointment. Completed and
// cancelled are terminal.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Valid reports whether the status is one of the accepted values.
func (s AppointmentStatus) Valid() bool {
	return s == StatusScheduled || s == StatusCompleted || s == StatusCancelled
}

// Terminal reports whether the status permits no further transition.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Appointment is a scheduled visit, created directly by a user or derived by
// the cascade engine from an injection or a follow-up.
type Appointment struct {
	ID        string            `dynamodbav:"id" json:"id"`
	PatientID string            `dynamodbav:"patientId" json:"patientId"`
	Date      time.Time         `dynamodbav:"date" json:"date"`
	Type      AppointmentType   `dynamodbav:"type" json:"type"`
	Location  Location          `dynamodbav:"location" json:"location"`
	Status    AppointmentStatus `dynamodbav:"status" json:"status"`
	Notes     string            `dynamodbav:"notes" json:"notes"`
	DoctorID  string            `dynamodbav:"doctorId" json:"doctorId"`
}

// OwnerID implements access.Owned.
func (a Appointment) OwnerID() string { return a.DoctorID }

// Validate rejects an appointment missing its references, date or enums.
func (a *Appointment) Validate() error {
	if strings.TrimSpace(a.PatientID) == "" {
		return invalid("patientId", "required")
	}
	if strings.TrimSpace(a.DoctorID) == "" {
		return invalid("doctorId", "required")
	}
	if a.Date.IsZero() {
		return invalid("date", "required")
	}
	if !a.Type.Valid() {
		return invalid("type", "must be injection or followup")
	}
	if !a.Location.Valid() {
		return invalid("location", "must be service or operating_room")
	}
	if !a.Status.Valid() {
		return invalid("status", "must be scheduled, completed or cancelled")
	}
	return nil
}
