package handlers

import (
	"mime"
	"net/http"

	"riffraff/internal/engine/accounts"
	"riffraff/internal/pkg/errors"
	"riffraff/internal/platform/models"
)

type AuthHandler struct {
	accounts *accounts.Service
}

func NewAuthHandler(accounts *accounts.Service) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterInput
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		errors.WriteFromError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login accepts the OAuth2 password form as well as a JSON body.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if isForm(r) {
		if err := parseForm(r); err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
			return
		}
		req.Username = r.PostForm.Get("username")
		req.Password = r.PostForm.Get("password")
	} else if !decodeBody(w, r, &req) {
		return
	}

	if req.Username == "" || req.Password == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "username and password are required", nil)
		return
	}

	pair, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		errors.WriteFromError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if isForm(r) {
		if err := parseForm(r); err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
			return
		}
		req.RefreshToken = r.PostForm.Get("refresh_token")
	} else if !decodeBody(w, r, &req) {
		return
	}

	if req.RefreshToken == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "refresh_token is required", nil)
		return
	}

	pair, err := h.accounts.RefreshAccessToken(r.Context(), req.RefreshToken)
	if err != nil {
		errors.WriteFromError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

const maxFormMemory = 1 << 20

func mediaType(r *http.Request) string {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt
}

func isForm(r *http.Request) bool {
	mt := mediaType(r)
	return mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data"
}

// parseForm fills r.PostForm for both urlencoded and multipart bodies.
func parseForm(r *http.Request) error {
	if mediaType(r) == "multipart/form-data" {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}
