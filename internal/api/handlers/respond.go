package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	apiContext "riffraff/internal/api/context"
	"riffraff/internal/pkg/errors"
	"riffraff/internal/platform/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeBody writes a 400 and returns false when the body is not valid JSON.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return false
	}
	return true
}

func pathID(r *http.Request, name string) (int64, bool) {
	params, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	id, err := strconv.ParseInt(params.ByName(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func currentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(apiContext.User).(*models.User)
	return user
}

func organizationID(r *http.Request) int64 {
	id, _ := r.Context().Value(apiContext.OrganizationID).(int64)
	return id
}
