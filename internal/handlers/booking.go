package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/models"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/services"
)

type BookingHandler struct {
	service *services.BookingService
}

func NewBookingHandler(service *services.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

type createBookingResponse struct {
	Success bool                 `json:"success"`
	Booking models.Booking       `json:"booking"`
	Result  *models.InsertResult `json:"result,omitempty"`
}

// CreateBooking answers 200 either way; success=false carries the booking
// the patient already holds for that treatment and date.
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var booking models.Booking
	if err := decodeJSON(r, &booking, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.service.Create(r.Context(), &booking)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := createBookingResponse{Success: res.Accepted, Booking: res.Booking}
	if res.Accepted {
		resp.Result = &models.InsertResult{InsertedID: res.InsertedID}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetBookings lists the caller's bookings. Ownership of ?patient= is
// enforced by middleware.
func (h *BookingHandler) GetBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.service.ListByPatient(r.Context(), r.URL.Query().Get("patient"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	var req models.MarkPaidRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.MarkPaid(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
