package handlers

import (
	"net/http"
	"strings"

	"github.com/botucare/clinic-backend/internal/clinical"
	"github.com/botucare/clinic-backend/internal/gateway"
	"github.com/botucare/clinic-backend/internal/identity"
	"github.com/botucare/clinic-backend/pkg/logging"
)

// UsersHandler manages identity records. All routes are admin-only.
type UsersHandler struct {
	gw     gateway.Gateway
	logger *logging.Logger
}

func NewUsersHandler(gw gateway.Gateway, logger *logging.Logger) *UsersHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &UsersHandler{gw: gw, logger: logger}
}

// userResponse never carries the password hash.
type userResponse struct {
	ID    string        `json:"id"`
	Email string        `json:"email"`
	Name  string        `json:"name"`
	Role  clinical.Role `json:"role"`
}

// List returns every user.
// Route: GET /api/users
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	var users []clinical.User
	if err := h.gw.Query(r.Context(), gateway.CollectionUsers, gateway.Filter{}, &users); err != nil {
		writeError(w, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role})
	}
	writeJSON(w, http.StatusOK, out)
}

type createUserRequest struct {
	Email    string        `json:"email"`
	Name     string        `json:"name"`
	Role     clinical.Role `json:"role"`
	Password string        `json:"password"`
}

// Create registers a doctor or admin account.
// Route: POST /api/users
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "a valid email is required"})
		return
	}
	if !req.Role.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role must be doctor or admin"})
		return
	}

	var existing []clinical.User
	if err := h.gw.Query(r.Context(), gateway.CollectionUsers, gateway.Filter{}, &existing); err != nil {
		writeError(w, err)
		return
	}
	for _, u := range existing {
		if strings.EqualFold(u.Email, req.Email) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "email already registered"})
			return
		}
	}

	hash, err := identity.HashPassword(req.Password)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	user := clinical.User{Email: req.Email, Name: req.Name, Role: req.Role, PasswordHash: hash}
	id, err := h.gw.Create(r.Context(), gateway.CollectionUsers, user)
	if err != nil {
		writeError(w, err)
		return
	}
	h.logger.Info("user created", "user_id", id, "role", req.Role)
	writeJSON(w, http.StatusCreated, userResponse{ID: id, Email: user.Email, Name: user.Name, Role: user.Role})
}
