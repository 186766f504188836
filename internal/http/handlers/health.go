package handlers

import "net/http"

// Health reports process liveness.
// Route: GET /healthz
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
