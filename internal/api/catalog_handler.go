package api

import (
	"net/http"

	"github.com/phrazzld/taskie-api/internal/api/shared"
	"github.com/phrazzld/taskie-api/internal/service"
)

// CatalogHandler serves the public reference data.
type CatalogHandler struct {
	catalog service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GetCategories handles GET /api/categories.
func (h *CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Error fetching categories")
		return
	}
	shared.RespondWithList(w, r, categories)
}

// GetLocations handles GET /api/locations.
func (h *CatalogHandler) GetLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.catalog.Locations(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Error fetching locations")
		return
	}
	shared.RespondWithList(w, r, locations)
}
