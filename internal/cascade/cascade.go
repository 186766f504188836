// Package cascade derives appointments from clinical records. Saving an
// injection with a follow-up date, or a follow-up with a planned next
// session, yields an appointment the user never typed in by hand.
package cascade

import (
	"errors"
	"fmt"
	"time"

	"github.com/botucare/clinic-backend/internal/clinical"
)

// ErrInvalidDate reports a planned date or time that does not parse.
var ErrInvalidDate = errors.New("cascade: invalid planned date")

// DefaultFollowUpHour is the time of day assigned to appointments derived
// from an injection's follow-up date, which carries no time of its own.
const DefaultFollowUpHour = 10

// FollowUpAppointment derives the follow-up visit planned on an injection.
// It returns false when the injection plans no follow-up. The appointment is
// placed at 10:00 local time on the planned date, in the service room, and
// starts its life as scheduled.
func FollowUpAppointment(inj clinical.Injection) (clinical.Appointment, bool, error) {
	if inj.FollowUpDate == "" {
		return clinical.Appointment{}, false, nil
	}
	day, err := time.ParseInLocation(clinical.DateOnly, inj.FollowUpDate, time.Local)
	if err != nil {
		return clinical.Appointment{}, false, fmt.Errorf("%w: followUpDate %q", ErrInvalidDate, inj.FollowUpDate)
	}
	at := time.Date(day.Year(), day.Month(), day.Day(), DefaultFollowUpHour, 0, 0, 0, time.Local)
	return clinical.Appointment{
		PatientID: inj.PatientID,
		Date:      at,
		Type:      clinical.AppointmentFollowUp,
		Location:  clinical.LocationService,
		Status:    clinical.StatusScheduled,
		Notes:     fmt.Sprintf("Follow-up after injection of %s", inj.Date.Format(clinical.DateOnly)),
		DoctorID:  inj.DoctorID,
	}, true, nil
}

// NextAppointment derives the next injection session planned on a follow-up.
// The follow-up must carry both a date and a time; a date alone means the
// session is not yet firmly planned and yields nothing.
func NextAppointment(fu clinical.FollowUp) (clinical.Appointment, bool, error) {
	if fu.NextAppointment == "" || fu.NextAppointmentTime == "" {
		return clinical.Appointment{}, false, nil
	}
	day, err := time.ParseInLocation(clinical.DateOnly, fu.NextAppointment, time.Local)
	if err != nil {
		return clinical.Appointment{}, false, fmt.Errorf("%w: nextAppointment %q", ErrInvalidDate, fu.NextAppointment)
	}
	hm, err := time.Parse(clinical.HourMinute, fu.NextAppointmentTime)
	if err != nil {
		return clinical.Appointment{}, false, fmt.Errorf("%w: nextAppointmentTime %q", ErrInvalidDate, fu.NextAppointmentTime)
	}
	at := time.Date(day.Year(), day.Month(), day.Day(), hm.Hour(), hm.Minute(), 0, 0, time.Local)
	return clinical.Appointment{
		PatientID: fu.PatientID,
		Date:      at,
		Type:      clinical.AppointmentInjection,
		Location:  clinical.LocationService,
		Status:    clinical.StatusScheduled,
		Notes:     fmt.Sprintf("Injection session planned at follow-up of %s", fu.Date.Format(clinical.DateOnly)),
		DoctorID:  fu.DoctorID,
	}, true, nil
}
