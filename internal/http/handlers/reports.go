package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/botucare/clinic-backend/internal/catalog"
	"github.com/botucare/clinic-backend/internal/stats"
	"github.com/botucare/clinic-backend/internal/workflow"
	"github.com/botucare/clinic-backend/pkg/logging"
)

// ReportsHandler serves the aggregate report breakdowns, as JSON or CSV.
type ReportsHandler struct {
	workflow *workflow.Service
	catalog  *catalog.Store
	logger   *logging.Logger
	now      func() time.Time
}

func NewReportsHandler(svc *workflow.Service, cat *catalog.Store, logger *logging.Logger) *ReportsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReportsHandler{workflow: svc, catalog: cat, logger: logger, now: time.Now}
}

// scope loads the actor's visible data bounded by start/end. With no bounds
// given, reports default to the year to date.
func (h *ReportsHandler) scope(w http.ResponseWriter, r *http.Request) (stats.Scope, bool) {
	actor, ok := requireActor(w, r)
	if !ok {
		return stats.Scope{}, false
	}
	scope, err := h.workflow.Snapshot(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return stats.Scope{}, false
	}
	start, end, err := dateRange(r)
	if err != nil {
		writeError(w, err)
		return stats.Scope{}, false
	}
	if start.IsZero() && end.IsZero() {
		now := h.now()
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.Local)
		end = now
	}
	return scope.InRange(start, end), true
}

func wantsCSV(r *http.Request) bool {
	return r.URL.Query().Get("format") == "csv"
}

func writeCSV(w http.ResponseWriter, filename string, header []string, rows [][]string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	cw := csv.NewWriter(w)
	_ = cw.Write(header)
	for _, row := range rows {
		_ = cw.Write(row)
	}
	cw.Flush()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Overview reports the headline counters for the bounded range.
// Route: GET /api/reports/overview
func (h *ReportsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	overview := stats.ComputeOverview(scope, h.now())
	if !wantsCSV(r) {
		writeJSON(w, http.StatusOK, overview)
		return
	}
	records := [][]string{
		{"total_patients", strconv.Itoa(overview.TotalPatients)},
		{"total_injections", strconv.Itoa(overview.TotalInjections)},
		{"total_follow_ups", strconv.Itoa(overview.TotalFollowUps)},
		{"total_appointments", strconv.Itoa(overview.TotalAppointments)},
		{"injected_patients", strconv.Itoa(overview.InjectedPatients)},
		{"waiting_patients", strconv.Itoa(overview.WaitingPatients)},
		{"overdue_appointments", strconv.Itoa(overview.OverdueAppointments)},
		{"success_rate_pct", strconv.Itoa(overview.SuccessRatePct)},
		{"average_age_years", strconv.Itoa(overview.AverageAgeYears)},
		{"average_injection_interval_days", strconv.Itoa(overview.AverageInjectionIntervalDays)},
	}
	writeCSV(w, "overview.csv", []string{"metric", "value"}, records)
}

// Products reports per-product injection counts and dosage.
// Route: GET /api/reports/products
func (h *ReportsHandler) Products(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	rows := stats.ComputeProductUsage(scope, h.catalog.Current())
	if !wantsCSV(r) {
		writeJSON(w, http.StatusOK, rows)
		return
	}
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.Product,
			strconv.Itoa(row.Injections),
			formatFloat(row.TotalDosage),
			formatFloat(row.AverageDosage),
		})
	}
	writeCSV(w, "products.csv", []string{"product", "injections", "total_dosage", "average_dosage"}, records)
}

// Diagnoses reports per-diagnosis patient and injection counts.
// Route: GET /api/reports/diagnoses
func (h *ReportsHandler) Diagnoses(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	rows := stats.ComputeDiagnosisBreakdown(scope, h.catalog.Current())
	if !wantsCSV(r) {
		writeJSON(w, http.StatusOK, rows)
		return
	}
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.Diagnosis,
			strconv.Itoa(row.Patients),
			strconv.Itoa(row.Injections),
			formatFloat(row.InjectionsPerPatient),
		})
	}
	writeCSV(w, "diagnoses.csv", []string{"diagnosis", "patients", "injections", "injections_per_patient"}, records)
}

// Muscles reports per-muscle usage, most injected first.
// Route: GET /api/reports/muscles
func (h *ReportsHandler) Muscles(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	rows := stats.ComputeMuscleUsage(scope, h.catalog.Current())
	if !wantsCSV(r) {
		writeJSON(w, http.StatusOK, rows)
		return
	}
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.MuscleID,
			row.Name,
			row.Region,
			strconv.Itoa(row.Injections),
			formatFloat(row.TotalDosage),
			formatFloat(row.AverageDosage),
		})
	}
	writeCSV(w, "muscles.csv", []string{"muscle_id", "name", "region", "injections", "total_dosage", "average_dosage"}, records)
}

// Events reports per-adverse-event frequency.
// Route: GET /api/reports/events
func (h *ReportsHandler) Events(w http.ResponseWriter, r *http.Request) {
	scope, ok := h.scope(w, r)
	if !ok {
		return
	}
	rows := stats.ComputeAdverseEvents(scope, h.catalog.Current())
	if !wantsCSV(r) {
		writeJSON(w, http.StatusOK, rows)
		return
	}
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.Event,
			strconv.Itoa(row.Injections),
			strconv.Itoa(row.Percent),
		})
	}
	writeCSV(w, "events.csv", []string{"event", "injections", "percent"}, records)
}
