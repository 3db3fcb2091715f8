package handlers

import (
	"net/http"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/services"
)

type AvailabilityHandler struct {
	service *services.AvailabilityService
}

func NewAvailabilityHandler(service *services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// GetAvailable returns every service with the slots still free on ?date=.
func (h *AvailabilityHandler) GetAvailable(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	slots, err := h.service.Available(r.Context(), date)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}
