package handlers

import (
	"net/http"

	"riffraff/internal/engine/accounts"
	"riffraff/internal/pkg/errors"
	"riffraff/internal/platform/models"
)

type UserHandler struct {
	accounts *accounts.Service
}

func NewUserHandler(accounts *accounts.Service) *UserHandler {
	return &UserHandler{accounts: accounts}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "user_id")
	if !ok {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid user id", nil)
		return
	}

	var req models.UserPatch
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.accounts.UpdateUser(r.Context(), id, req)
	if err != nil {
		errors.WriteFromError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
