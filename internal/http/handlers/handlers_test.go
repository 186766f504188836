package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/botucare/clinic-backend/internal/catalog"
	"github.com/botucare/clinic-backend/internal/clinical"
	"github.com/botucare/clinic-backend/internal/gateway"
	"github.com/botucare/clinic-backend/internal/identity"
	"github.com/botucare/clinic-backend/internal/workflow"
	"github.com/botucare/clinic-backend/pkg/logging"
)

var (
	doctorActor = clinical.Actor{ID: "d1", Role: clinical.RoleDoctor}
	adminActor  = clinical.Actor{ID: "u0", Role: clinical.RoleAdmin}
)

type fixture struct {
	gw       gateway.Gateway
	catalog  *catalog.Store
	workflow *workflow.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gw := gateway.NewMemoryGateway()
	cat := catalog.NewStoreWithCatalog(catalog.Defaults())
	return &fixture{
		gw:       gw,
		catalog:  cat,
		workflow: workflow.NewService(gw, cat, logging.Default()),
	}
}

func asActor(r *http.Request, actor clinical.Actor) *http.Request {
	return r.WithContext(identity.WithActor(r.Context(), actor))
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(data)
}

func seedPatient(t *testing.T, f *fixture, actor clinical.Actor) clinical.Patient {
	t.Helper()
	p, err := f.workflow.CreatePatient(context.Background(), actor, clinical.Patient{
		FirstName:   "Ada",
		LastName:    "Moreau",
		DateOfBirth: "1975-06-20",
		Gender:      clinical.GenderFemale,
		Diagnosis:   "Cervical dystonia",
	})
	if err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return p
}

func TestPatientsCreateAndList(t *testing.T) {
	f := newFixture(t)
	h := NewPatientsHandler(f.workflow, nil, logging.Default())

	body := jsonBody(t, clinical.Patient{
		FirstName:   "Jean",
		LastName:    "Petit",
		DateOfBirth: "1962-11-02",
		Gender:      clinical.GenderMale,
		Diagnosis:   "Chronic migraine",
	})
	req := asActor(httptest.NewRequest(http.MethodPost, "/api/patients", body), doctorActor)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var created clinical.Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.DoctorID != doctorActor.ID {
		t.Errorf("DoctorID = %s", created.DoctorID)
	}

	rec = httptest.NewRecorder()
	h.List(rec, asActor(httptest.NewRequest(http.MethodGet, "/api/patients", nil), doctorActor))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed []clinical.Patient
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d patients, want 1", len(listed))
	}
}

func TestPatientsCreateValidationError(t *testing.T) {
	f := newFixture(t)
	h := NewPatientsHandler(f.workflow, nil, logging.Default())

	req := asActor(httptest.NewRequest(http.MethodPost, "/api/patients", jsonBody(t, clinical.Patient{FirstName: "Only"})), doctorActor)
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPatientsGetForbidden(t *testing.T) {
	f := newFixture(t)
	h := NewPatientsHandler(f.workflow, nil, logging.Default())
	p := seedPatient(t, f, doctorActor)

	r := chi.NewRouter()
	r.Get("/api/patients/{patientID}", h.Get)

	other := clinical.Actor{ID: "d2", Role: clinical.RoleDoctor}
	req := asActor(httptest.NewRequest(http.MethodGet, "/api/patients/"+p.ID, nil), other)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestInjectionsCreateReturnsDerivedAppointment(t *testing.T) {
	f := newFixture(t)
	h := NewInjectionsHandler(f.workflow, nil, logging.Default())
	p := seedPatient(t, f, doctorActor)

	body := jsonBody(t, clinical.Injection{
		PatientID:    p.ID,
		Date:         time.Date(2024, 2, 1, 14, 0, 0, 0, time.Local),
		Product:      "Botox",
		Muscles:      []clinical.InjectedMuscle{{MuscleID: "1", Dosage: 40, Side: clinical.SideLeft}},
		GuidanceType: []string{"Ultrasound"},
		FollowUpDate: "2024-03-01",
	})
	req := asActor(httptest.NewRequest(http.MethodPost, "/api/injections", body), doctorActor)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		TotalDosage float64               `json:"totalDosage"`
		Derived     *clinical.Appointment `json:"derivedAppointment"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalDosage != 40 {
		t.Errorf("totalDosage = %v", resp.TotalDosage)
	}
	if resp.Derived == nil || resp.Derived.Type != clinical.AppointmentFollowUp {
		t.Errorf("derivedAppointment = %+v", resp.Derived)
	}
}

// brokenAppointmentWrites fails appointment creation only, the way a backend
// outage between the two cascade writes would.
type brokenAppointmentWrites struct {
	gateway.Gateway
}

func (g *brokenAppointmentWrites) Create(ctx context.Context, collection string, record any) (string, error) {
	if collection == gateway.CollectionAppointments {
		return "", gateway.ErrPersistence
	}
	return g.Gateway.Create(ctx, collection, record)
}

func TestInjectionsCreateReportsFailedCascadeWrite(t *testing.T) {
	f := newFixture(t)
	p := seedPatient(t, f, doctorActor)

	broken := workflow.NewService(&brokenAppointmentWrites{Gateway: f.gw}, f.catalog, logging.Default())
	h := NewInjectionsHandler(broken, nil, logging.Default())

	body := jsonBody(t, clinical.Injection{
		PatientID:    p.ID,
		Date:         time.Date(2024, 2, 1, 14, 0, 0, 0, time.Local),
		Product:      "Botox",
		Muscles:      []clinical.InjectedMuscle{{MuscleID: "1", Dosage: 40, Side: clinical.SideLeft}},
		GuidanceType: []string{"Ultrasound"},
		FollowUpDate: "2024-03-01",
	})
	req := asActor(httptest.NewRequest(http.MethodPost, "/api/injections", body), doctorActor)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("injection success must stand, status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		ID           string                `json:"id"`
		Derived      *clinical.Appointment `json:"derivedAppointment"`
		CascadeError string                `json:"cascadeError"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID == "" {
		t.Error("injection id missing from response")
	}
	if resp.Derived != nil {
		t.Errorf("derivedAppointment = %+v, want none", resp.Derived)
	}
	if resp.CascadeError == "" {
		t.Error("cascadeError missing: the failed appointment write is indistinguishable from no cascade")
	}
}

func TestPatientsUpdateRejectsUnknownDiagnosis(t *testing.T) {
	f := newFixture(t)
	h := NewPatientsHandler(f.workflow, nil, logging.Default())
	p := seedPatient(t, f, doctorActor)

	r := chi.NewRouter()
	r.Patch("/api/patients/{patientID}", h.Update)

	body := jsonBody(t, map[string]string{"diagnosis": "Torticollis"})
	req := asActor(httptest.NewRequest(http.MethodPatch, "/api/patients/"+p.ID, body), doctorActor)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAppointmentsUpdateStatusTerminalConflict(t *testing.T) {
	f := newFixture(t)
	h := NewAppointmentsHandler(f.workflow, nil, logging.Default())
	p := seedPatient(t, f, doctorActor)

	appt, err := f.workflow.CreateAppointment(context.Background(), doctorActor, clinical.Appointment{
		PatientID: p.ID,
		Date:      time.Date(2024, 5, 1, 9, 0, 0, 0, time.Local),
		Type:      clinical.AppointmentInjection,
		Location:  clinical.LocationService,
	})
	if err != nil {
		t.Fatalf("seed appointment: %v", err)
	}
	if err := f.workflow.UpdateAppointmentStatus(context.Background(), doctorActor, appt.ID, clinical.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	r := chi.NewRouter()
	r.Patch("/api/appointments/{appointmentID}/status", h.UpdateStatus)

	body := jsonBody(t, map[string]string{"status": "scheduled"})
	req := asActor(httptest.NewRequest(http.MethodPatch, "/api/appointments/"+appt.ID+"/status", body), doctorActor)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestAppointmentsListOnDay(t *testing.T) {
	f := newFixture(t)
	h := NewAppointmentsHandler(f.workflow, nil, logging.Default())
	p := seedPatient(t, f, doctorActor)

	for _, day := range []int{10, 11} {
		_, err := f.workflow.CreateAppointment(context.Background(), doctorActor, clinical.Appointment{
			PatientID: p.ID,
			Date:      time.Date(2024, 5, day, 9, 0, 0, 0, time.Local),
			Type:      clinical.AppointmentFollowUp,
			Location:  clinical.LocationService,
		})
		if err != nil {
			t.Fatalf("seed appointment: %v", err)
		}
	}

	req := asActor(httptest.NewRequest(http.MethodGet, "/api/appointments?on=2024-05-10", nil), doctorActor)
	rec := httptest.NewRecorder()
	h.List(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var listed []appointmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d appointments, want 1", len(listed))
	}
}

func TestDashboardOverview(t *testing.T) {
	f := newFixture(t)
	h := NewDashboardHandler(f.workflow, logging.Default())
	seedPatient(t, f, doctorActor)

	req := asActor(httptest.NewRequest(http.MethodGet, "/api/dashboard", nil), doctorActor)
	rec := httptest.NewRecorder()
	h.Overview(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var ov struct {
		TotalPatients   int `json:"totalPatients"`
		WaitingPatients int `json:"waitingPatients"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &ov); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ov.TotalPatients != 1 || ov.WaitingPatients != 1 {
		t.Errorf("overview = %+v", ov)
	}
}

func TestDashboardRejectsBadRange(t *testing.T) {
	f := newFixture(t)
	h := NewDashboardHandler(f.workflow, logging.Default())

	req := asActor(httptest.NewRequest(http.MethodGet, "/api/dashboard?start=01-01-2024", nil), doctorActor)
	rec := httptest.NewRecorder()
	h.Overview(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestReportsProductsCSV(t *testing.T) {
	f := newFixture(t)
	h := NewReportsHandler(f.workflow, f.catalog, logging.Default())
	p := seedPatient(t, f, doctorActor)
	_, _, err := f.workflow.CreateInjection(context.Background(), doctorActor, clinical.Injection{
		PatientID:    p.ID,
		Date:         time.Now().Add(-time.Hour),
		Product:      "Botox",
		Muscles:      []clinical.InjectedMuscle{{MuscleID: "1", Dosage: 50, Side: clinical.SideLeft}},
		GuidanceType: []string{"Ultrasound"},
	})
	if err != nil {
		t.Fatalf("seed injection: %v", err)
	}

	req := asActor(httptest.NewRequest(http.MethodGet, "/api/reports/products?format=csv", nil), doctorActor)
	rec := httptest.NewRecorder()
	h.Products(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %s", ct)
	}
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if lines[0] != "product,injections,total_dosage,average_dosage" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Botox,1,50") {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestReportsEventsJSON(t *testing.T) {
	f := newFixture(t)
	h := NewReportsHandler(f.workflow, f.catalog, logging.Default())

	req := asActor(httptest.NewRequest(http.MethodGet, "/api/reports/events", nil), doctorActor)
	rec := httptest.NewRecorder()
	h.Events(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var rows []struct {
		Event   string `json:"event"`
		Percent int    `json:"percent"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) == 0 {
		t.Fatal("expected one row per configured event")
	}
	for _, row := range rows {
		if row.Percent != 0 {
			t.Errorf("%s percent = %d on empty scope", row.Event, row.Percent)
		}
	}
}

func TestCatalogUpdate(t *testing.T) {
	f := newFixture(t)
	h := NewCatalogHandler(f.catalog, logging.Default())

	products := []string{"Botox", "Dysport", "Xeomin"}
	body := jsonBody(t, map[string]any{"products": products})
	req := asActor(httptest.NewRequest(http.MethodPatch, "/api/catalog", body), adminActor)
	rec := httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var next catalog.Catalog
	if err := json.Unmarshal(rec.Body.Bytes(), &next); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !next.HasProduct("Xeomin") || next.Version != 2 {
		t.Errorf("catalog = version %d products %v", next.Version, next.Products)
	}
}

func TestUsersCreateAndList(t *testing.T) {
	f := newFixture(t)
	h := NewUsersHandler(f.gw, logging.Default())

	body := jsonBody(t, map[string]string{
		"email":    "new.doctor@clinic.test",
		"name":     "New Doctor",
		"role":     "doctor",
		"password": "correct-horse",
	})
	req := asActor(httptest.NewRequest(http.MethodPost, "/api/users", body), adminActor)
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "passwordHash") {
		t.Error("response leaks the password hash")
	}

	rec = httptest.NewRecorder()
	h.Create(rec, asActor(httptest.NewRequest(http.MethodPost, "/api/users", jsonBody(t, map[string]string{
		"email":    "New.Doctor@clinic.test",
		"role":     "doctor",
		"password": "correct-horse",
	})), adminActor))
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate email status = %d, want 409", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.List(rec, asActor(httptest.NewRequest(http.MethodGet, "/api/users", nil), adminActor))
	var users []userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("listed %d users, want 1", len(users))
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
