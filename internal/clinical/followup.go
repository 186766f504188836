package clinical

import (
	"strings"
	"time"
)

// Objective is the outcome recorded at a post-injection follow-up.
type Objective string

const (
	ObjectiveAchieved    Objective = "achieved"
	ObjectivePartial     Objective = "partial"
	ObjectiveNotAchieved Objective = "not_achieved"
)

// Valid reports whether the objective is one of the accepted outcomes.
func (o Objective) Valid() bool {
	return o == ObjectiveAchieved || o == ObjectivePartial || o == ObjectiveNotAchieved
}

// HourMinute is the layout for time-of-day fields.
const HourMinute = "15:04"

// FollowUp is a post-injection assessment. Its injection reference is
// immutable once created.
type FollowUp struct {
	ID                  string    `dynamodbav:"id" json:"id"`
	PatientID           string    `dynamodbav:"patientId" json:"patientId"`
	InjectionID         string    `dynamodbav:"injectionId" json:"injectionId"`
	Date                time.Time `dynamodbav:"date" json:"date"`
	ObjectiveAchieved   Objective `dynamodbav:"objectiveAchieved" json:"objectiveAchieved"`
	Comments            string    `dynamodbav:"comments" json:"comments"`
	NextAppointment     string    `dynamodbav:"nextAppointment,omitempty" json:"nextAppointment,omitempty"`     // date only
	NextAppointmentTime string    `dynamodbav:"nextAppointmentTime,omitempty" json:"nextAppointmentTime,omitempty"` // HH:MM
	DoctorID            string    `dynamodbav:"doctorId" json:"doctorId"`
}

// OwnerID implements access.Owned.
func (f FollowUp) OwnerID() string { return f.DoctorID }

// Validate rejects a follow-up missing its references, date or outcome.
func (f *FollowUp) Validate() error {
	if strings.TrimSpace(f.PatientID) == "" {
		return invalid("patientId", "required")
	}
	if strings.TrimSpace(f.InjectionID) == "" {
		return invalid("injectionId", "required")
	}
	if strings.TrimSpace(f.DoctorID) == "" {
		return invalid("doctorId", "required")
	}
	if f.Date.IsZero() {
		return invalid("date", "required")
	}
	if !f.ObjectiveAchieved.Valid() {
		return invalid("objectiveAchieved", "must be achieved, partial or not_achieved")
	}
	if f.NextAppointment != "" {
		if _, err := time.Parse(DateOnly, f.NextAppointment); err != nil {
			return invalid("nextAppointment", "must be a YYYY-MM-DD date")
		}
	}
	if f.NextAppointmentTime != "" {
		if _, err := time.Parse(HourMinute, f.NextAppointmentTime); err != nil {
			return invalid("nextAppointmentTime", "must be an HH:MM time")
		}
	}
	return nil
}
