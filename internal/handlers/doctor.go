package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/models"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/services"
)

type DoctorHandler struct {
	service *services.DoctorService
}

func NewDoctorHandler(service *services.DoctorService) *DoctorHandler {
	return &DoctorHandler{service: service}
}

func (h *DoctorHandler) GetDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doctors)
}

func (h *DoctorHandler) AddDoctor(w http.ResponseWriter, r *http.Request) {
	var doctor models.Doctor
	if err := decodeJSON(r, &doctor, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.service.Add(r.Context(), &doctor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, models.InsertResult{InsertedID: id})
}

func (h *DoctorHandler) DeleteDoctor(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Delete(r.Context(), mux.Vars(r)["email"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.DeleteResult{DeletedCount: n})
}
