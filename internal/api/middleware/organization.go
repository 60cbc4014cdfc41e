package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	apiContext "riffraff/internal/api/context"
	"riffraff/internal/pkg/errors"
)

type OrganizationChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// OrganizationScope resolves the :org_id route parameter to an existing
// organization and stores its id in the request context.
type OrganizationScope struct {
	orgs OrganizationChecker
}

func NewOrganizationScope(orgs OrganizationChecker) *OrganizationScope {
	return &OrganizationScope{orgs: orgs}
}

func (m *OrganizationScope) Handle(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, _ := r.Context().Value(apiContext.Params).(httprouter.Params)

		id, err := strconv.ParseInt(params.ByName("org_id"), 10, 64)
		if err != nil || id <= 0 {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid organization id", nil)
			return
		}

		ok, err := m.orgs.Exists(r.Context(), id)
		if err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Int64("organization_id", id).Msg("failed to load organization")
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to load organization", nil)
			return
		}
		if !ok {
			errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "organization not found", nil)
			return
		}

		ctx := context.WithValue(r.Context(), apiContext.OrganizationID, id)
		next(w, r.WithContext(ctx))
	}
}
