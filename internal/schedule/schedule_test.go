package schedule

import (
	"testing"
	"time"

	"github.com/botucare/clinic-backend/internal/clinical"
)

var now = time.Date(2024, 5, 15, 12, 0, 0, 0, time.Local)

func appt(date time.Time, status clinical.AppointmentStatus) clinical.Appointment {
	return clinical.Appointment{
		PatientID: "p1",
		DoctorID:  "d1",
		Date:      date,
		Type:      clinical.AppointmentInjection,
		Location:  clinical.LocationService,
		Status:    status,
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		appt  clinical.Appointment
		state State
	}{
		{"future day", appt(now.AddDate(0, 0, 3), clinical.StatusScheduled), StateScheduledFuture},
		{"later today", appt(now.Add(2*time.Hour), clinical.StatusScheduled), StateDueToday},
		{"earlier today", appt(now.Add(-2*time.Hour), clinical.StatusScheduled), StateOverdue},
		{"past day", appt(now.AddDate(0, 0, -10), clinical.StatusScheduled), StateOverdue},
		{"completed in the past", appt(now.AddDate(0, 0, -10), clinical.StatusCompleted), StateCompleted},
		{"cancelled in the past", appt(now.AddDate(0, 0, -10), clinical.StatusCancelled), StateCancelled},
		{"completed in the future", appt(now.AddDate(0, 0, 3), clinical.StatusCompleted), StateCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.appt, now); got != tt.state {
				t.Errorf("Classify() = %s, want %s", got, tt.state)
			}
		})
	}
}

func TestCountOverdueIgnoresTerminalStatuses(t *testing.T) {
	appts := []clinical.Appointment{
		appt(now.AddDate(0, 0, -1), clinical.StatusScheduled),
		appt(now.AddDate(0, 0, -2), clinical.StatusCompleted),
		appt(now.AddDate(0, 0, -3), clinical.StatusCancelled),
		appt(now.AddDate(0, 0, 1), clinical.StatusScheduled),
	}
	if got := CountOverdue(appts, now); got != 1 {
		t.Errorf("CountOverdue() = %d, want 1", got)
	}
}

func TestUpcomingWithin(t *testing.T) {
	inWindow := appt(now.AddDate(0, 0, 2), clinical.StatusScheduled)
	sooner := appt(now.Add(3*time.Hour), clinical.StatusScheduled)
	appts := []clinical.Appointment{
		inWindow,
		appt(now.AddDate(0, 0, 10), clinical.StatusScheduled), // beyond window
		appt(now.Add(-time.Hour), clinical.StatusScheduled),   // already overdue
		appt(now.AddDate(0, 0, 2), clinical.StatusCancelled),
		sooner,
	}

	got := UpcomingWithin(appts, now, 7*24*time.Hour)
	if len(got) != 2 {
		t.Fatalf("expected 2 upcoming appointments, got %d", len(got))
	}
	if !got[0].Date.Equal(sooner.Date) || !got[1].Date.Equal(inWindow.Date) {
		t.Errorf("not sorted soonest first: %v then %v", got[0].Date, got[1].Date)
	}
}

func TestOnDay(t *testing.T) {
	appts := []clinical.Appointment{
		appt(time.Date(2024, 5, 15, 9, 0, 0, 0, time.Local), clinical.StatusScheduled),
		appt(time.Date(2024, 5, 15, 16, 0, 0, 0, time.Local), clinical.StatusCompleted),
		appt(time.Date(2024, 5, 16, 9, 0, 0, 0, time.Local), clinical.StatusScheduled),
	}
	got := OnDay(appts, now)
	if len(got) != 2 {
		t.Fatalf("expected 2 appointments on the day, got %d", len(got))
	}
	if got[0].Date.Hour() != 9 || got[1].Date.Hour() != 16 {
		t.Errorf("not sorted by time of day")
	}
}
