package handlers

import (
	"net/http"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/models"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/services"
)

type PaymentHandler struct {
	service *services.PaymentService
}

func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentIntentRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	secret, err := h.service.CreateIntent(r.Context(), req.Price)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.PaymentIntentResponse{ClientSecret: secret})
}
