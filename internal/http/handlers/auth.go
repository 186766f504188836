package handlers

import (
	"net/http"
	"strings"

	"github.com/botucare/clinic-backend/internal/identity"
	"github.com/botucare/clinic-backend/internal/observability/metrics"
	"github.com/botucare/clinic-backend/pkg/logging"
)

// AuthHandler exposes login and logout.
type AuthHandler struct {
	identity *identity.Service
	metrics  *metrics.ClinicMetrics
	logger   *logging.Logger
}

func NewAuthHandler(svc *identity.Service, m *metrics.ClinicMetrics, logger *logging.Logger) *AuthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AuthHandler{identity: svc, metrics: m, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	ID    string `json:"id"`
	Role  string `json:"role"`
}

// Login authenticates credentials and returns a bearer token.
// Route: POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	actor, token, err := h.identity.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.ObserveLogin("rejected")
		writeError(w, err)
		return
	}
	h.metrics.ObserveLogin("ok")
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ID: actor.ID, Role: string(actor.Role)})
}

// Logout revokes the session behind the presented token.
// Route: POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing bearer token"})
		return
	}
	if err := h.identity.Logout(r.Context(), strings.TrimPrefix(auth, "Bearer ")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
