package api

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	apiContext "riffraff/internal/api/context"
	"riffraff/internal/api/handlers"
	"riffraff/internal/api/middleware"
	"riffraff/internal/pkg/errors"
)

type Dependencies struct {
	AuthHandler       *handlers.AuthHandler
	UserHandler       *handlers.UserHandler
	OrgHandler        *handlers.OrgHandler
	HealthHandler     *handlers.HealthHandler
	MetricsHandler    *handlers.MetricsHandler
	AuthMiddleware    *middleware.AuthMiddleware
	OrganizationScope *middleware.OrganizationScope
}

type Middleware = func(http.HandlerFunc) http.HandlerFunc

func NewRouter(deps *Dependencies) *httprouter.Router {
	router := httprouter.New()

	// Every route is logged under its registered pattern.
	handle := func(method, path string, handler http.HandlerFunc, middlewares ...Middleware) {
		middlewares = append([]Middleware{middleware.RequestLogger(path)}, middlewares...)
		router.Handle(method, path, chain(handler, middlewares...))
	}

	authMid := deps.AuthMiddleware.Handle
	orgScope := deps.OrganizationScope.Handle

	// Operational
	handle(http.MethodGet, "/health", deps.HealthHandler.Check)
	handle(http.MethodGet, "/metrics", deps.MetricsHandler.Export)

	// Accounts and tokens
	handle(http.MethodPost, "/users", deps.AuthHandler.Register)
	handle(http.MethodPost, "/token", deps.AuthHandler.Login)
	handle(http.MethodPost, "/token/refresh", deps.AuthHandler.Refresh)

	handle(http.MethodGet, "/users/me", deps.UserHandler.Me, authMid)
	handle(http.MethodPatch, "/users/:user_id", deps.UserHandler.Update, authMid)

	// Organizations
	handle(http.MethodGet, "/organizations", deps.OrgHandler.List, authMid)
	handle(http.MethodPost, "/organizations", deps.OrgHandler.Create, authMid)
	handle(http.MethodGet, "/organizations/:org_id", deps.OrgHandler.Get, authMid, orgScope)
	handle(http.MethodPatch, "/organizations/:org_id", deps.OrgHandler.Update, authMid, orgScope)

	handle(http.MethodPost, "/organizations/:org_id/addresses", deps.OrgHandler.CreateAddress, authMid, orgScope)
	handle(http.MethodGet, "/organizations/:org_id/addresses", deps.OrgHandler.ListAddresses, authMid, orgScope)
	handle(http.MethodPost, "/organizations/:org_id/custom-fields", deps.OrgHandler.CreateCustomField, authMid, orgScope)
	handle(http.MethodGet, "/organizations/:org_id/custom-fields", deps.OrgHandler.ListCustomFields, authMid, orgScope)

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Route not found", nil)
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		errors.WriteError(w, http.StatusMethodNotAllowed, errors.ErrCodeInvalidInput, "Method not allowed", nil)
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v interface{}) {
		log.Error().Interface("panic", v).Str("path", r.URL.Path).Msg("handler panicked")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Internal server error", nil)
	}

	return router
}

// Helper function to chain middlewares
func chain(handler http.HandlerFunc, middlewares ...Middleware) httprouter.Handle {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return wrap(handler)
}

// Convert http.HandlerFunc to httprouter.Handle
func wrap(handler http.HandlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), apiContext.Params, ps)
		handler(w, r.WithContext(ctx))
	}
}
