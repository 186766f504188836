// Package schedule classifies appointments against the clock. Nothing here
// mutates a record: an overdue appointment stays scheduled in storage and is
// only presented as overdue.
package schedule

import (
	"sort"
	"time"

	"github.com/botucare/clinic-backend/internal/clinical"
)

// State is the presentation state of an appointment at a given instant.
type State string

const (
	StateScheduledFuture State = "scheduled_future"
	StateDueToday        State = "due_today"
	StateOverdue         State = "overdue"
	StateCompleted       State = "completed"
	StateCancelled       State = "cancelled"
)

// Classify maps an appointment onto its state as of now. Terminal statuses
// win regardless of the date. A scheduled appointment whose instant has
// passed is overdue; one later today is due_today.
func Classify(appt clinical.Appointment, now time.Time) State {
	switch appt.Status {
	case clinical.StatusCompleted:
		return StateCompleted
	case clinical.StatusCancelled:
		return StateCancelled
	}
	if appt.Date.Before(now) {
		return StateOverdue
	}
	if sameDay(appt.Date, now) {
		return StateDueToday
	}
	return StateScheduledFuture
}

// Overdue reports whether the appointment is scheduled and its instant has
// passed.
func Overdue(appt clinical.Appointment, now time.Time) bool {
	return Classify(appt, now) == StateOverdue
}

// CountOverdue counts the overdue appointments in a collection.
func CountOverdue(appts []clinical.Appointment, now time.Time) int {
	n := 0
	for _, a := range appts {
		if Overdue(a, now) {
			n++
		}
	}
	return n
}

// UpcomingWithin returns the scheduled appointments falling in [now, now+d),
// soonest first.
func UpcomingWithin(appts []clinical.Appointment, now time.Time, d time.Duration) []clinical.Appointment {
	limit := now.Add(d)
	out := make([]clinical.Appointment, 0)
	for _, a := range appts {
		if a.Status != clinical.StatusScheduled {
			continue
		}
		if a.Date.Before(now) || !a.Date.Before(limit) {
			continue
		}
		out = append(out, a)
	}
	sortByDate(out)
	return out
}

// OnDay returns the appointments whose date falls on the same calendar day
// as the given instant, regardless of status, soonest first.
func OnDay(appts []clinical.Appointment, day time.Time) []clinical.Appointment {
	out := make([]clinical.Appointment, 0)
	for _, a := range appts {
		if sameDay(a.Date, day) {
			out = append(out, a)
		}
	}
	sortByDate(out)
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func sortByDate(appts []clinical.Appointment) {
	sort.Slice(appts, func(i, j int) bool { return appts[i].Date.Before(appts[j].Date) })
}
