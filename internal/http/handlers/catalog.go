package handlers

import (
	"net/http"

	"github.com/botucare/clinic-backend/internal/catalog"
	"github.com/botucare/clinic-backend/pkg/logging"
)

// CatalogHandler exposes the controlled-vocabulary configuration. Reads are
// open to every authenticated actor; updates are admin-only (enforced by the
// router).
type CatalogHandler struct {
	catalog *catalog.Store
	logger  *logging.Logger
}

func NewCatalogHandler(cat *catalog.Store, logger *logging.Logger) *CatalogHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &CatalogHandler{catalog: cat, logger: logger}
}

// Get returns the current catalog.
// Route: GET /api/catalog
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Current())
}

// Update applies a partial catalog mutation and returns the new version.
// Historical records keep values removed from the lists.
// Route: PATCH /api/catalog
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	var u catalog.Update
	if !decodeBody(w, r, &u) {
		return
	}
	next, err := h.catalog.Apply(r.Context(), u)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, next)
}
