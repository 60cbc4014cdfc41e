package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	apiContext "riffraff/internal/api/context"
	"riffraff/internal/pkg/errors"
	"riffraff/internal/platform/models"
)

// Authenticator resolves an access token to the user it was issued to.
type Authenticator interface {
	CurrentUser(ctx context.Context, accessToken string) (*models.User, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

func (m *AuthMiddleware) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Missing authorization header", nil)
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid authorization header format", nil)
			return
		}

		user, err := m.auth.CurrentUser(r.Context(), parts[1])
		if err != nil {
			// A valid token whose user is gone is still a failed authentication.
			if stderrors.Is(err, errors.ErrNotFound) {
				errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Could not validate credentials", nil)
				return
			}
			errors.WriteFromError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.User, user)
		next(w, r.WithContext(ctx))
	}
}
