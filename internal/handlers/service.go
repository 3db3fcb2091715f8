package handlers

import (
	"net/http"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/models"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/services"
)

type ServiceHandler struct {
	catalog *services.CatalogService
}

func NewServiceHandler(catalog *services.CatalogService) *ServiceHandler {
	return &ServiceHandler{catalog: catalog}
}

// GetServices lists the catalog. ?fields=name returns only ids and names.
func (h *ServiceHandler) GetServices(w http.ResponseWriter, r *http.Request) {
	nameOnly := r.URL.Query().Get("fields") == "name"
	list, err := h.catalog.List(r.Context(), nameOnly)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !nameOnly {
		writeJSON(w, http.StatusOK, list)
		return
	}

	names := make([]models.ServiceName, 0, len(list))
	for _, s := range list {
		names = append(names, models.ServiceName{ID: s.ID, Name: s.Name})
	}
	writeJSON(w, http.StatusOK, names)
}
