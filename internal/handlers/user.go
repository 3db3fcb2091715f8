package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/markjakearzadon/doctors-portal-gobackend/internal/auth"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/models"
	"github.com/markjakearzadon/doctors-portal-gobackend/internal/services"
)

type UserHandler struct {
	service *services.UserService
	tokens  *auth.TokenService
}

func NewUserHandler(service *services.UserService, tokens *auth.TokenService) *UserHandler {
	return &UserHandler{service: service, tokens: tokens}
}

// UpsertUser stores the profile for {email} and hands back a fresh token.
func (h *UserHandler) UpsertUser(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]

	var profile models.User
	if err := decodeJSON(r, &profile, true); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.service.Upsert(r.Context(), email, profile)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	token, err := h.tokens.Issue(email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result, "token": token})
}

func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetAdmin reports whether {email} is an admin. Unknown emails are not.
func (h *UserHandler) GetAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := h.service.IsAdmin(r.Context(), mux.Vars(r)["email"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"admin": admin})
}

func (h *UserHandler) MakeAdmin(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.MakeAdmin(r.Context(), mux.Vars(r)["email"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}
