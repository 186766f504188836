// Package stats computes dashboard counters and report breakdowns. Every
// reducer is a pure function over a Scope: an access-filtered, optionally
// date-bounded snapshot of the collections. Nothing here caches or mutates;
// running a reducer twice over the same scope yields the same result.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/botucare/clinic-backend/internal/access"
	"github.com/botucare/clinic-backend/internal/catalog"
	"github.com/botucare/clinic-backend/internal/clinical"
	"github.com/botucare/clinic-backend/internal/schedule"
)

// Scope is the slice of data a computation runs over. Build it with ScopeFor
// so the access filter is applied before anything is counted.
type Scope struct {
	Patients     []clinical.Patient
	Injections   []clinical.Injection
	FollowUps    []clinical.FollowUp
	Appointments []clinical.Appointment

	// Start and End record the bounds InRange applied; zero when open.
	Start time.Time
	End   time.Time
}

// ScopeFor applies the access filter to every collection. Aggregates must
// never run over unfiltered data.
func ScopeFor(actor clinical.Actor, patients []clinical.Patient, injections []clinical.Injection, followUps []clinical.FollowUp, appointments []clinical.Appointment) Scope {
	return Scope{
		Patients:     access.Visible(patients, actor),
		Injections:   access.Visible(injections, actor),
		FollowUps:    access.Visible(followUps, actor),
		Appointments: access.Visible(appointments, actor),
	}
}

// InRange bounds the dated collections to [start, end]. Patients carry no
// clinical date and stay in scope; zero bounds are open-ended.
func (s Scope) InRange(start, end time.Time) Scope {
	out := Scope{Patients: s.Patients, Start: start, End: end}
	for _, inj := range s.Injections {
		if within(inj.Date, start, end) {
			out.Injections = append(out.Injections, inj)
		}
	}
	for _, fu := range s.FollowUps {
		if within(fu.Date, start, end) {
			out.FollowUps = append(out.FollowUps, fu)
		}
	}
	for _, a := range s.Appointments {
		if within(a.Date, start, end) {
			out.Appointments = append(out.Appointments, a)
		}
	}
	return out
}

func within(t, start, end time.Time) bool {
	if !start.IsZero() && t.Before(start) {
		return false
	}
	if !end.IsZero() && t.After(end) {
		return false
	}
	return true
}

// Overview is the dashboard counter block.
type Overview struct {
	TotalPatients       int                     `json:"totalPatients"`
	TotalInjections     int                     `json:"totalInjections"`
	TotalFollowUps      int                     `json:"totalFollowUps"`
	TotalAppointments   int                     `json:"totalAppointments"`
	InjectedPatients    int                     `json:"injectedPatients"`
	WaitingPatients     int                     `json:"waitingPatients"`
	OverdueAppointments int                     `json:"overdueAppointments"`
	SuccessRatePct      int                     `json:"successRatePct"`
	AverageAgeYears     int                     `json:"averageAgeYears"`
	// AverageInjectionIntervalDays is the scope's day span divided by its
	// injection count, zero below two injections.
	AverageInjectionIntervalDays int                     `json:"averageInjectionIntervalDays"`
	GenderDistribution           map[clinical.Gender]int `json:"genderDistribution"`
}

// ComputeOverview reduces the scope to the dashboard counters. An empty
// scope yields zeros, never an error.
func ComputeOverview(s Scope, now time.Time) Overview {
	injected := make(map[string]bool, len(s.Injections))
	for _, inj := range s.Injections {
		injected[inj.PatientID] = true
	}

	injectedCount := 0
	genders := make(map[clinical.Gender]int)
	ageSum := 0
	aged := 0
	for _, p := range s.Patients {
		if injected[p.ID] {
			injectedCount++
		}
		genders[p.Gender]++
		if dob, err := time.Parse(clinical.DateOnly, p.DateOfBirth); err == nil {
			ageSum += now.Year() - dob.Year()
			aged++
		}
	}

	achieved := 0
	for _, fu := range s.FollowUps {
		if fu.ObjectiveAchieved == clinical.ObjectiveAchieved {
			achieved++
		}
	}

	avgAge := 0
	if aged > 0 {
		avgAge = roundHalfUp(float64(ageSum) / float64(aged))
	}

	interval := 0
	if len(s.Injections) > 1 {
		start, end := s.Start, s.End
		if start.IsZero() || end.IsZero() {
			start, end = injectionSpan(s.Injections)
		}
		if days := end.Sub(start).Hours() / 24; days > 0 {
			interval = roundHalfUp(days / float64(len(s.Injections)))
		}
	}

	return Overview{
		TotalPatients:       len(s.Patients),
		TotalInjections:     len(s.Injections),
		TotalFollowUps:      len(s.FollowUps),
		TotalAppointments:   len(s.Appointments),
		InjectedPatients:    injectedCount,
		WaitingPatients:     len(s.Patients) - injectedCount,
		OverdueAppointments: schedule.CountOverdue(s.Appointments, now),
		SuccessRatePct:      percent(achieved, len(s.FollowUps)),
		AverageAgeYears:     avgAge,

		AverageInjectionIntervalDays: interval,
		GenderDistribution:           genders,
	}
}

// injectionSpan finds the earliest and latest injection dates, for scopes
// built without explicit range bounds.
func injectionSpan(injections []clinical.Injection) (time.Time, time.Time) {
	start, end := injections[0].Date, injections[0].Date
	for _, inj := range injections[1:] {
		if inj.Date.Before(start) {
			start = inj.Date
		}
		if inj.Date.After(end) {
			end = inj.Date
		}
	}
	return start, end
}

// ProductUsage is the per-product injection breakdown.
type ProductUsage struct {
	Product       string  `json:"product"`
	Injections    int     `json:"injections"`
	TotalDosage   float64 `json:"totalDosage"`
	AverageDosage float64 `json:"averageDosage"`
}

// ComputeProductUsage breaks injections down per configured product. Products
// never used appear with zero counts so reports stay aligned with the
// catalog.
func ComputeProductUsage(s Scope, cat catalog.Catalog) []ProductUsage {
	out := make([]ProductUsage, 0, len(cat.Products))
	for _, product := range cat.Products {
		row := ProductUsage{Product: product}
		for _, inj := range s.Injections {
			if inj.Product != product {
				continue
			}
			row.Injections++
			row.TotalDosage += inj.TotalDosage()
		}
		if row.Injections > 0 {
			row.AverageDosage = round1(row.TotalDosage / float64(row.Injections))
		}
		out = append(out, row)
	}
	return out
}

// DiagnosisStat is the per-diagnosis patient and injection breakdown.
type DiagnosisStat struct {
	Diagnosis            string  `json:"diagnosis"`
	Patients             int     `json:"patients"`
	Injections           int     `json:"injections"`
	InjectionsPerPatient float64 `json:"injectionsPerPatient"`
}

// ComputeDiagnosisBreakdown counts patients and their injections per
// configured diagnosis. The per-patient average carries one decimal place.
func ComputeDiagnosisBreakdown(s Scope, cat catalog.Catalog) []DiagnosisStat {
	byPatient := make(map[string]int, len(s.Injections))
	for _, inj := range s.Injections {
		byPatient[inj.PatientID]++
	}

	out := make([]DiagnosisStat, 0, len(cat.Diagnoses))
	for _, diagnosis := range cat.Diagnoses {
		row := DiagnosisStat{Diagnosis: diagnosis}
		for _, p := range s.Patients {
			if p.Diagnosis != diagnosis {
				continue
			}
			row.Patients++
			row.Injections += byPatient[p.ID]
		}
		if row.Patients > 0 {
			row.InjectionsPerPatient = round1(float64(row.Injections) / float64(row.Patients))
		}
		out = append(out, row)
	}
	return out
}

// MuscleStat is the per-muscle usage row.
type MuscleStat struct {
	MuscleID      string  `json:"muscleId"`
	Name          string  `json:"name"`
	Region        string  `json:"region"`
	Injections    int     `json:"injections"`
	TotalDosage   float64 `json:"totalDosage"`
	AverageDosage float64 `json:"averageDosage"`
}

// ComputeMuscleUsage counts, per catalog muscle, the injections referencing
// it and the dosage summed over every entry. An injection treating the same
// muscle on both sides contributes one to the count and both dosages to the
// sum. Rows are sorted by injection count descending.
func ComputeMuscleUsage(s Scope, cat catalog.Catalog) []MuscleStat {
	out := make([]MuscleStat, 0, len(cat.Muscles))
	for _, m := range cat.Muscles {
		row := MuscleStat{MuscleID: m.ID, Name: m.Name, Region: m.Region}
		for _, inj := range s.Injections {
			if !inj.UsesMuscle(m.ID) {
				continue
			}
			row.Injections++
			row.TotalDosage += inj.MuscleDosage(m.ID)
		}
		if row.Injections > 0 {
			row.AverageDosage = round1(row.TotalDosage / float64(row.Injections))
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Injections > out[j].Injections })
	return out
}

// EventStat is the per-adverse-event frequency row.
type EventStat struct {
	Event      string `json:"event"`
	Injections int    `json:"injections"`
	Percent    int    `json:"percent"`
}

// ComputeAdverseEvents counts, per configured event label, the injections
// listing it and its share of all injections in scope.
func ComputeAdverseEvents(s Scope, cat catalog.Catalog) []EventStat {
	out := make([]EventStat, 0, len(cat.PostInjectionEvents))
	for _, event := range cat.PostInjectionEvents {
		row := EventStat{Event: event}
		for _, inj := range s.Injections {
			if inj.HasEvent(event) {
				row.Injections++
			}
		}
		row.Percent = percent(row.Injections, len(s.Injections))
		out = append(out, row)
	}
	return out
}

// percent is num/den as an integer percentage, round-half-up, 0 when den is 0.
func percent(num, den int) int {
	if den == 0 {
		return 0
	}
	return roundHalfUp(float64(num) / float64(den) * 100)
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
