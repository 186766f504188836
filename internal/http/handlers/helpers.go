package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/botucare/clinic-backend/internal/clinical"
	"github.com/botucare/clinic-backend/internal/gateway"
	"github.com/botucare/clinic-backend/internal/identity"
	"github.com/botucare/clinic-backend/internal/workflow"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

// statusFor maps the domain error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case clinical.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, gateway.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, workflow.ErrTerminalStatus), errors.Is(err, workflow.ErrNoInjection):
		return http.StatusConflict
	case errors.Is(err, identity.ErrAuth):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// requireActor pulls the authenticated actor off the context. The auth
// middleware guarantees one on every protected route; a missing actor means
// the route was wired outside it.
func requireActor(w http.ResponseWriter, r *http.Request) (clinical.Actor, bool) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return clinical.Actor{}, false
	}
	return actor, true
}

// dateRange parses optional start/end query parameters (YYYY-MM-DD). An
// absent bound stays zero and is treated as open. The end bound is pushed to
// the end of its day so the range is inclusive.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	var start, end time.Time
	if v := r.URL.Query().Get("start"); v != "" {
		t, err := time.ParseInLocation(clinical.DateOnly, v, time.Local)
		if err != nil {
			return start, end, &clinical.ValidationError{Field: "start", Reason: "must be a YYYY-MM-DD date"}
		}
		start = t
	}
	if v := r.URL.Query().Get("end"); v != "" {
		t, err := time.ParseInLocation(clinical.DateOnly, v, time.Local)
		if err != nil {
			return start, end, &clinical.ValidationError{Field: "end", Reason: "must be a YYYY-MM-DD date"}
		}
		end = t.Add(24*time.Hour - time.Nanosecond)
	}
	return start, end, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}
