package handlers

import (
	"net/http"
	"strconv"

	"riffraff/internal/engine/organizations"
	"riffraff/internal/pkg/errors"
	"riffraff/internal/platform/models"
)

type OrgHandler struct {
	orgs *organizations.Service
}

func NewOrgHandler(orgs *organizations.Service) *OrgHandler {
	return &OrgHandler{orgs: orgs}
}

func (h *OrgHandler) List(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.orgs.ListOrganizations(r.Context())
	if err != nil {
		errors.WriteFromError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orgs)
}

// Create makes the authenticated user the organization's administrator.
func (h *OrgHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.OrganizationInput
	if !decodeBody(w, r, &req) {
		return
	}

	org, err := h.orgs.CreateOrganization(r.Context(), currentUser(r).ID, req)
	if err != nil {
		errors.WriteFromError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, org)
}

func (h *OrgHandler) Get(w http.ResponseWriter, r *http.Request) {
	nested := false
	if v := r.URL.Query().Get("nested"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "nested must be a boolean", nil)
			return
		}
		nested = b
	}

	org, err := h.orgs.GetOrganization(r.Context(), organizationID(r), nested)
	if err != nil {
		errors.WriteFromError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (h *OrgHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.OrganizationFields
	if !decodeBody(w, r, &req) {
		return
	}

	org, err := h.orgs.UpdateOrganization(r.Context(), organizationID(r), req)
	if err != nil {
		errors.WriteFromError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

func (h *OrgHandler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	var req models.AddressInput
	if !decodeBody(w, r, &req) {
		return
	}

	address, err := h.orgs.CreateAddress(r.Context(), organizationID(r), req)
	if err != nil {
		errors.WriteFromError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, address)
}

func (h *OrgHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	addresses, err := h.orgs.ListAddresses(r.Context(), organizationID(r))
	if err != nil {
		errors.WriteFromError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addresses)
}

func (h *OrgHandler) CreateCustomField(w http.ResponseWriter, r *http.Request) {
	var req models.CustomFieldInput
	if !decodeBody(w, r, &req) {
		return
	}

	field, err := h.orgs.CreateCustomField(r.Context(), organizationID(r), req)
	if err != nil {
		errors.WriteFromError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, field)
}

func (h *OrgHandler) ListCustomFields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.orgs.ListCustomFields(r.Context(), organizationID(r))
	if err != nil {
		errors.WriteFromError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fields)
}
